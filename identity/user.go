package identity

import (
	"context"
	"errors"
)

var (
	// ErrMalformedProfile is returned when a 200 response carries a body that is not a profile.
	ErrMalformedProfile = errors.New("identity: malformed profile payload")
	// ErrInvalidCredentials is returned by Login when the backend rejects the credentials.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	// ErrUnauthorized is returned by the reference server when a bearer token is missing or invalid.
	ErrUnauthorized = errors.New("identity: unauthorized")
	// ErrUserExists is returned by the reference server when an email is already registered.
	ErrUserExists = errors.New("identity: user already exists")
)

// User is the authenticated user's profile as served by the identity endpoint.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// Clone returns a copy of u, or nil when u is nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Result is the outcome of a profile read. StatusCode is the HTTP status observed
// (0 when no response was received).
type Result struct {
	StatusCode int
	User       *User
}

// Client reads the current user's profile using a credential the transport already holds.
type Client interface {
	Me(ctx context.Context) (Result, error)
}

// TokenSource yields the bearer credential attached to identity requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}
