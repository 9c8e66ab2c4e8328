// Package cache provides the write-once lookup cache mapping player ids to
// resolved usernames: a Redis document backend, an embedded bbolt file
// backend, or both in a replicated configuration.
//
// # Semantics
//
// The cache is a monotonically growing total mapping. Absence of a key means
// "not yet resolved", never "known absent", and entries carry no TTL. Writes
// are first-write-wins in every backend, so a username observed once is never
// replaced for the lifetime of the cache.
//
// # Replication
//
// With both backends configured, Put fans out best-effort (a single backend
// failure is reported through the error hook, not returned) and Get prefers
// Redis, falling back to the file backend on miss or Redis outage.
//
// # Architecture boundaries
//
// This package never issues upstream lookups and never decides what to
// cache — the Engine writes only successful resolutions.
package cache
