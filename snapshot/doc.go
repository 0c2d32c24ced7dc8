// Package snapshot defines the durable projection of session state and its codec.
//
// # Wire format
//
// A snapshot is a JSON envelope:
//
//	{"state":{"isLoggedIn":true,"user":{...}},"version":0}
//
// version is the schema of the state object. Decoding accepts every version up to
// [CurrentVersion] and rejects newer ones, so an older client never silently
// misreads a snapshot written by a newer one.
//
// # What this package must NOT do
//
//   - Import goSession or storage (no upward imports).
//   - Perform I/O; callers move bytes to and from storage.
package snapshot
