// Package models defines domain entities and persistence interfaces for the lfx music catalog.
//
// The package contains three categories of types:
//
// 1. Persistent Entities: Database-backed records owned by the catalog repository
//   - [Artist] : Artist identified by unique name, with optional MusicBrainz ID and URL
//   - [Album] : Album belonging to exactly one artist, unique by (artist, title)
//   - [Tag] : Free-text genre label, unique by name
//   - [ArtistTag] : Association linking an artist to a tag
//
// 2. Read Projections: Response shapes for the read-only catalog views
//   - [ArtistSummary], [ArtistDetail], [AlbumSummary], [TagSummary], [CatalogStats]
//
// 3. Persistence Interfaces
//   - [CatalogStore] opens units of work ([CatalogTx]) whose staged writes become durable on Commit
//
// All persistent entities implement the [Model] interface providing ID, timestamps and validation.
package models
