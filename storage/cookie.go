package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// MaxCookieValueBytes is the largest encoded value Cookie will emit; browsers cap a
// whole cookie at about 4 KiB.
const MaxCookieValueBytes = 4000

// ErrValueTooLarge is returned when a value does not fit in a cookie.
var ErrValueTooLarge = errors.New("storage: value too large for cookie")

// Cookie stores values in cookies of a single HTTP exchange: reads come from the
// request, writes go out as Set-Cookie headers. Values are base64url encoded so
// JSON survives cookie value rules. Reads observe writes made earlier in the same
// exchange. A Cookie must not outlive its handler.
type Cookie struct {
	w        http.ResponseWriter
	r        *http.Request
	defaults SetOptions
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]*string
}

// NewCookie binds an adapter to one request/response pair. defaults supply the
// Path, Domain, Secure, HTTPOnly and SameSite attributes used when a cookie is
// removed, so deletion matches the cookie that was set.
func NewCookie(w http.ResponseWriter, r *http.Request, defaults SetOptions) *Cookie {
	if defaults.Path == "" {
		defaults.Path = "/"
	}
	return &Cookie{
		w:        w,
		r:        r,
		defaults: defaults,
		now:      time.Now,
		pending:  make(map[string]*string),
	}
}

func (c *Cookie) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	pending, written := c.pending[key]
	c.mu.Unlock()

	var raw string
	switch {
	case written && pending == nil:
		return nil, ErrNotFound
	case written:
		raw = *pending
	default:
		ck, err := c.r.Cookie(key)
		if err != nil || ck.Value == "" {
			return nil, ErrNotFound
		}
		raw = ck.Value
	}

	value, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: cookie %q: %v", ErrCorrupt, key, err)
	}
	return value, nil
}

func (c *Cookie) Set(_ context.Context, key string, value []byte, opts SetOptions) error {
	encoded := base64.RawURLEncoding.EncodeToString(value)
	if len(encoded) > MaxCookieValueBytes {
		return ErrValueTooLarge
	}
	if opts.Path == "" {
		opts.Path = c.defaults.Path
	}

	ck := &http.Cookie{
		Name:     key,
		Value:    encoded,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Secure:   opts.Secure,
		HttpOnly: opts.HTTPOnly,
		SameSite: opts.SameSite,
	}
	if opts.TTL > 0 {
		ck.Expires = c.now().Add(opts.TTL).UTC()
		ck.MaxAge = int(opts.TTL / time.Second)
	}
	if err := ck.Valid(); err != nil {
		return fmt.Errorf("storage: cookie %q: %w", key, err)
	}

	http.SetCookie(c.w, ck)

	c.mu.Lock()
	c.pending[key] = &encoded
	c.mu.Unlock()
	return nil
}

func (c *Cookie) Remove(_ context.Context, key string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     c.defaults.Path,
		Domain:   c.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   c.defaults.Secure,
		HttpOnly: c.defaults.HTTPOnly,
		SameSite: c.defaults.SameSite,
	})

	c.mu.Lock()
	c.pending[key] = nil
	c.mu.Unlock()
	return nil
}
