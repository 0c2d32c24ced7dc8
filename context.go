package goSession

import "context"

type storeContextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, s)
}

// FromContext returns the Store attached by NewContext, or nil.
func FromContext(ctx context.Context) *Store {
	if ctx == nil {
		return nil
	}

	s, _ := ctx.Value(storeContextKey{}).(*Store)
	return s
}
