// Package namecheck resolves numeric game player ids to display usernames by
// querying third-party top-up shop surfaces that require an authenticated
// browser-like session (cookies plus CSRF token) or a bearer-token API, with
// a write-once lookup cache in front of both.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// namecheck is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Outcome, MetricsSnapshot, AuditEvent). Session persistence
// lives in the session subpackage, the lookup cache in the cache subpackage,
// and HTML field discovery under internal/ — none of them issue lookup
// decisions on their own.
//
// # What this package must NOT do
//
//   - Retry any upstream call more than once per resolution (the policy is
//     attempt, refresh credentials, retry exactly once).
//   - Touch the network when the lookup cache answers.
//   - Log or persist the configured credentials in any form.
//
// # Failure contract
//
// Resolve never panics and never lets one failed lookup affect another: every
// upstream condition is folded into the returned [Outcome], and errors are
// reserved for caller mistakes (empty id) or an unbuilt engine.
package namecheck
