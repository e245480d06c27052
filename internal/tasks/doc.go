// Package tasks imports remote catalog listings into the local catalog with real-time progress reporting.
//
// # Core Operations
//
// The [Importer] interface defines two operations:
//
//  1. [Importer.ImportArtistsByTag] : Single tag import
//     - Ensures the tag exists, committing it before anything else
//     - Fetches the tag's top artists from the [services.Provider]
//     - Reuses or creates each artist by exact name and links it to the tag
//     - Fetches each artist's top albums and creates the ones it does not have yet
//
//  2. [Importer.ImportTags] : Sequential multi-tag import
//     - Runs a single tag import per tag, continuing past whole-tag failures
//     - Returns every tag failure joined into one error
//
// # Failure Isolation
//
// A remote listing that cannot be fetched counts as empty. One artist or album that fails to import is
// recorded in the [ImportResult] with [StatusFailed] and the run moves on. Only failing to ensure the tag
// itself aborts a tag import.
//
// Every artist reconciliation and every album creation is its own unit of work. Units of work run detached
// from cancellation so a commit is never torn; the context is checked between artists and between albums.
//
// # Progress Reporting
//
// Operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
