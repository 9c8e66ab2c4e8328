// Package session provides the file-backed persistence of the authenticated
// browsing state (cookie jar, CSRF token, registration id) for the cookie
// upstream.
//
// # Persistence
//
// State is stored as a versioned JSON document written atomically (temp file
// plus rename) so a crash mid-save never leaves a torn state file. A second,
// minimal file mirrors only the resumable session cookie value, allowing the
// login flow to attempt a cheap session resume without reading full state.
//
// # Architecture boundaries
//
// This package owns the [Session] model and the [FileStore]. It does NOT
// perform HTTP requests, scrape pages, or decide when a session is stale —
// those responsibilities belong to the Engine's login flow.
//
// # What this package must NOT do
//
//   - Import namecheck or any of its subpackages (no upward imports).
//   - Issue network calls of any kind.
//   - Drop the baseline consent/region cookies on save.
package session
