// Package identity defines the identity collaborator consulted by the session store to
// refresh the current user's profile, and ships an HTTP client plus a reference REST
// backend that speaks the same contract.
//
// # Contract
//
// A [Client] performs one read: [Client.Me]. The store treats a nil error, a 200 status
// and a non-nil profile as success; every other combination is a failure and is collapsed
// into the logged-out state by the caller.
//
// # Architecture boundaries
//
// This package owns the [User] profile shape and the wire format of the identity
// endpoints. It does NOT hold session state or persist anything.
//
// # What this package must NOT do
//
//   - Import goSession, snapshot, or storage (no upward imports).
//   - Retry or de-duplicate requests; callers decide how often to refresh.
package identity
