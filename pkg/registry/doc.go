// Package registry manages the provider and access-token tables that
// drive request routing and authentication.
//
// The tables are plain text files with pipe-separated fields. The
// provider table maps a provider name to its upstream base URL and API
// key; the token table lists the bearer tokens clients may present.
// Lines that are empty or start with '#' are ignored.
//
// # Snapshots
//
// The registry exposes its state as an immutable Snapshot. Handlers
// capture a snapshot at the start of a request and use it for the
// request's lifetime, so a concurrent reload never changes routing or
// authentication decisions mid-request:
//
//	snap := reg.Snapshot()
//	provider, ref, err := snap.Resolve("openai/gpt-4o")
//
// # Reloading
//
// Load re-reads both table files and swaps in a new snapshot only if
// both parse successfully. On any error the previous snapshot remains
// active, so a bad edit can never take the gateway down.
//
// A Watcher can be attached to reload automatically when either file
// changes on disk, with debouncing to absorb editor write storms.
package registry
