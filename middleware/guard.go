package middleware

import (
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// Mode selects how a guard decides that the request is authenticated.
type Mode int

const (
	// ModeSnapshot trusts the login flag restored from the persisted snapshot.
	ModeSnapshot Mode = iota
	// ModeVerified refreshes the profile from the identity collaborator first.
	ModeVerified
)

// Guard rejects requests whose Store is missing or logged out with 401. It must run
// inside Provide.
func Guard(mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := goSession.FromContext(r.Context())
			if store == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			loggedIn := store.IsLoggedIn()
			if mode == ModeVerified {
				loggedIn = store.FetchUser(r.Context()).IsLoggedIn
			}
			if !loggedIn || store.User() == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
