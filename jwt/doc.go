// Package jwt issues and verifies the bearer access tokens that the reference identity
// server hands out on login and checks on every profile read.
//
// Only Ed25519 (default) and HS256 are accepted. Parsing pins the algorithm, the issuer
// and the audience configured on the [Manager]; a token signed with anything else is
// rejected before its claims are looked at.
package jwt
