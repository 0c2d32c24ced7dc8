package middleware

import "net/http"

// RequireVerified calls FetchUser and admits the request only if the identity
// collaborator still recognizes the credential. A rejection also rewrites the
// session cookie to logged out.
func RequireVerified(next http.Handler) http.Handler {
	return Guard(ModeVerified)(next)
}
