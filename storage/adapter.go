package storage

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	// ErrNotFound is returned by Get when no live value exists for the key.
	ErrNotFound = errors.New("storage: key not found")
	// ErrCorrupt is returned by Get when a stored value cannot be decoded by the
	// transport itself. The value should be discarded.
	ErrCorrupt = errors.New("storage: stored value corrupt")
)

// SetOptions describe how long and where a value is kept. Path, Domain, Secure,
// HTTPOnly and SameSite only matter to transports that expose them (cookies);
// other adapters honor TTL and ignore the rest.
type SetOptions struct {
	TTL      time.Duration
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// Adapter is the capability set the session store depends on.
//
// Remove of an absent key is not an error. A zero or negative TTL means the value
// does not expire on its own.
type Adapter interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, opts SetOptions) error
	Remove(ctx context.Context, key string) error
}
