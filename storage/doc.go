// Package storage defines the durable key-value capability the session store persists
// its snapshot through, and ships adapters for the places a Go client keeps state.
//
//   - [Memory]: process-local, TTL-aware; tests and short-lived tools.
//   - [Cookie]: the browser, via Set-Cookie on the current response.
//   - [Redis]: a shared Redis, keyed under a prefix.
//   - [Badger]: an embedded on-disk database for CLI and desktop clients.
//
// # Architecture boundaries
//
// Adapters move opaque bytes. They do NOT know the snapshot format or the session
// state; encoding belongs to the snapshot package and policy to the store.
package storage
