// Package middleware connects goSession stores to net/http handlers.
//
// [Provide] builds one Store per request and places it in the request context.
// [RequireLogin] and [RequireVerified] gate handlers on the Store's login state:
// RequireLogin trusts the rehydrated snapshot, RequireVerified first refreshes the
// profile from the identity collaborator.
//
// The package translates HTTP into Store calls and makes no authentication decisions
// of its own.
package middleware
