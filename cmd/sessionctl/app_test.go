package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/password"
	"github.com/urfave/cli/v2"
)

type backend struct {
	*httptest.Server
	srv  *identity.Server
	user identity.User
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     time.Hour,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("sessionctl-test-secret-0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	hasher, err := password.NewArgon2(password.Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	srv := identity.NewServer(tokens, hasher, nil)
	u, err := srv.Register(identity.User{Name: "Alice", Email: "alice@example.com"}, "correct-horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	b := &backend{Server: httptest.NewServer(srv.Handler()), srv: srv, user: u}
	t.Cleanup(b.Close)
	return b
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"sessionctl"}, args...))
	return out.String(), err
}

func TestLoginWhoamiRefreshLogout(t *testing.T) {
	b := newBackend(t)
	dir := t.TempDir()
	global := []string{"--base-url", b.URL, "--data-dir", dir}

	out, err := runCLI(t, append(global, "login", "--email", "alice@example.com", "--password", "correct-horse")...)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "logged in as Alice <alice@example.com>") {
		t.Fatalf("unexpected login output %q", out)
	}

	out, err = runCLI(t, append(global, "whoami")...)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "id "+b.user.ID) {
		t.Fatalf("whoami should read the persisted session, got %q", out)
	}

	out, err = runCLI(t, append(global, "refresh")...)
	if err != nil || !strings.Contains(out, "logged in as Alice") {
		t.Fatalf("refresh: %q, %v", out, err)
	}

	out, err = runCLI(t, append(global, "logout")...)
	if err != nil || strings.TrimSpace(out) != "not logged in" {
		t.Fatalf("logout: %q, %v", out, err)
	}

	out, err = runCLI(t, append(global, "whoami")...)
	if err != nil || strings.TrimSpace(out) != "not logged in" {
		t.Fatalf("whoami after logout: %q, %v", out, err)
	}
}

func TestRefreshAfterAccountRemovalLogsOut(t *testing.T) {
	b := newBackend(t)
	global := []string{"--base-url", b.URL, "--data-dir", t.TempDir()}

	if _, err := runCLI(t, append(global, "login", "-e", "alice@example.com", "-p", "correct-horse")...); err != nil {
		t.Fatalf("login: %v", err)
	}
	b.srv.Delete(b.user.ID)

	out, err := runCLI(t, append(global, "refresh")...)
	if err != nil || strings.TrimSpace(out) != "not logged in" {
		t.Fatalf("refresh: %q, %v", out, err)
	}
	out, _ = runCLI(t, append(global, "whoami")...)
	if strings.TrimSpace(out) != "not logged in" {
		t.Fatalf("logged-out state must persist, got %q", out)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	b := newBackend(t)

	_, err := runCLI(t, "--base-url", b.URL, "--data-dir", t.TempDir(),
		"login", "--email", "alice@example.com", "--password", "wrong-password")
	if !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestWhoamiJSONOutput(t *testing.T) {
	b := newBackend(t)
	global := []string{"--base-url", b.URL, "--data-dir", t.TempDir(), "--output", "json"}

	if _, err := runCLI(t, append(global, "login", "-e", "alice@example.com", "-p", "correct-horse")...); err != nil {
		t.Fatalf("login: %v", err)
	}
	out, err := runCLI(t, append(global, "whoami")...)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}

	var st goSession.State
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if !st.IsLoggedIn || st.User == nil || st.User.Email != "alice@example.com" {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestMissingBaseURL(t *testing.T) {
	t.Setenv("GOSESSION_IDENTITY_BASE_URL", "")
	_, err := runCLI(t, "--data-dir", t.TempDir(), "whoami")
	if err == nil || !strings.Contains(err.Error(), "no identity backend") {
		t.Fatalf("expected missing backend error, got %v", err)
	}
}
