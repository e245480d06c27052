// Package services defines the [Provider] interface for remote music-metadata catalogs and implements it for Last.fm.
//
// # Provider Interface
//
// The import engine only needs two listings from a remote catalog: the top artists for a tag and the top
// albums for an artist. Both return plain [Artist] and [Album] records, leaving reconciliation to the caller.
//
// # Last.fm Implementation
//
// [LastFMService] issues one GET per listing against the Last.fm 2.0 endpoint with an API key.
// Calls are one-shot: there are no retries and no caching. An optional [rate.Limiter] spaces requests out
// when requests_per_second is configured.
//
// Last.fm quirks handled while decoding:
//   - a list with one entry may be returned as a bare object instead of an array
//   - images are listed smallest first, so the last entry with a URL is the largest
//   - a missing topartists/topalbums key means "no data" rather than a parse failure
//
// # Error Handling
//
// Failures are returned as wrapped sentinel errors from the shared package and logged at warn level:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrMalformedResponse] : body is not the expected JSON
//   - [shared.ErrProviderError] : Last.fm returned an {"error": N, "message": ...} payload
//
// Callers are expected to treat any of these as an empty listing.
//
// # Raw Calls
//
// [LastFMService.Call] performs an arbitrary API method and returns the undecoded [APIResponse] for debugging.
package services
