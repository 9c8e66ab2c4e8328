// Package httpapi exposes namecheck.Engine resolutions over HTTP.
//
// # Routes
//
//   - GET  /lookup?id=...   — resolve one player id.
//   - POST /lookup          — JSON body {"id": "..."}.
//   - GET  /cache/entries   — dump every cached mapping.
//   - GET  /metrics         — counter snapshot.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// talk to the upstream storefront or API itself — all lookup logic is
// delegated to Engine.Resolve.
//
// # What this package must NOT do
//
//   - Read session state or credentials (Engine handles I/O).
//   - Classify upstream responses (outcome kinds arrive pre-tagged).
//   - Retry failed resolutions (the Engine owns the retry budget).
package httpapi
