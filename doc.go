// Package goSession provides the authentication state store of a web or CLI client:
// the current user's profile and login flag, mirrored to durable storage and restored
// on start.
//
// A [Store] is an explicit object built once by [Builder.Build] and handed to whatever
// needs it, either directly or through a request context ([NewContext], [FromContext]).
// The storage adapter and the identity collaborator are passed in as capabilities.
//
// # Failure model
//
// The store exposes one failure mode: not authenticated. FetchUser collapses network
// errors, non-200 responses and empty payloads into {IsLoggedIn: false, User: nil}.
// Persistence failures are logged and counted but never returned; the store keeps
// working in memory.
//
// # Architecture boundaries
//
// goSession owns state transitions and their persistence. Snapshot encoding lives in
// snapshot, adapters in storage, and the profile endpoint client in identity.
package goSession
