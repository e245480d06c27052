// Package server exposes the catalog over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering, so path patterns
// may carry wildcards such as {id}.
//
// # Catalog Handler
//
// [CatalogHandler] serves JSON read projections of the catalog and triggers tag imports:
//   - GET /api/artists[?tag=T] : artist summaries, optionally filtered by tag
//   - GET /api/artists/complete : every artist with tags and albums
//   - GET /api/artists/{id} : one artist, 404 when missing
//   - GET /api/tags : tags with artist counts
//   - GET /api/stats : row counts
//   - POST /api/import : {"tag": ..., "limit": ...} runs an import and returns its report
//   - GET /health
//
// # Lifecycle
//
// [Serve] runs an [http.Server] until its context is cancelled and then shuts it down gracefully.
package server
