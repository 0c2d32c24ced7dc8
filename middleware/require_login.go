package middleware

import "net/http"

// RequireLogin admits requests whose persisted session says logged in. No network
// call is made.
func RequireLogin(next http.Handler) http.Handler {
	return Guard(ModeSnapshot)(next)
}
