// Package repositories implements SQLite persistence for the catalog.
//
// Each repository works against a [DBTX], so the same code runs on a bare [sql.DB] for reads
// and inside a [sql.Tx] for units of work.
//
// Key Implementations:
//   - [TagRepository] : genre labels with exact-name lookups
//   - [ArtistRepository] : artists keyed by unique name, filterable by tag
//   - [AlbumRepository] : albums unique per (artist, title) with insert-if-absent
//   - [ArtistTagRepository] : junction table linking artists to tags
//   - [Catalog] : the [models.CatalogStore] unit of work plus read projections
//
// Sequence numbers provide stable, human-readable ordering (e.g., artist #42, album #15) independent of UUIDs.
// [NextSequence] increments per-table counters in dedicated sequence tables inside the caller's transaction.
package repositories
