package middleware

import (
	"net/http"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/storage"
)

// Factory builds the Store serving one request.
type Factory func(w http.ResponseWriter, r *http.Request) (*goSession.Store, error)

// Provide runs factory for every request, attaches the Store to the request context
// and closes it once next returns. A factory error answers 500.
func Provide(factory Factory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if factory == nil {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			store, err := factory(w, r)
			if err != nil || store == nil {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			defer store.Close()

			next.ServeHTTP(w, r.WithContext(goSession.NewContext(r.Context(), store)))
		})
	}
}

// CookieFactory returns a Factory whose stores persist into a cookie on the current
// request. newBuilder must return a fresh Builder on every call; the cookie adapter is
// set on it before Build.
func CookieFactory(newBuilder func() *goSession.Builder, defaults storage.SetOptions) Factory {
	return func(w http.ResponseWriter, r *http.Request) (*goSession.Store, error) {
		return newBuilder().
			WithStorage(storage.NewCookie(w, r, defaults)).
			Build(r.Context())
	}
}
