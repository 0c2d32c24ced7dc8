package storage

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// exerciseAdapter checks the contract every adapter shares.
func exerciseAdapter(t *testing.T, a Adapter) {
	t.Helper()
	ctx := context.Background()

	if _, err := a.Get(ctx, "user-storage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty adapter, got %v", err)
	}

	payload := []byte(`{"state":{"isLoggedIn":true},"version":0}`)
	if err := a.Set(ctx, "user-storage", payload, SetOptions{TTL: time.Hour, Path: "/"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := a.Get(ctx, "user-storage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %s, got %s", payload, got)
	}

	if err := a.Set(ctx, "user-storage", []byte("second"), SetOptions{TTL: time.Hour}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := a.Get(ctx, "user-storage"); string(got) != "second" {
		t.Fatalf("expected overwrite to win, got %q", got)
	}

	if err := a.Remove(ctx, "user-storage"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := a.Get(ctx, "user-storage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if err := a.Remove(ctx, "user-storage"); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
}

func TestMemoryAdapterContract(t *testing.T) {
	exerciseAdapter(t, NewMemory())
}

func TestMemoryAdapterExpires(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }

	if err := m.Set(context.Background(), "k", []byte("v"), SetOptions{TTL: time.Minute}); err != nil {
		t.Fatalf("set: %v", err)
	}
	now = now.Add(time.Minute)
	if _, err := m.Get(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected expired key to be dropped, len=%d", m.Len())
	}
}

func TestMemoryAdapterCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	if err := m.Set(context.Background(), "k", buf, SetOptions{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	buf[0] = 'x'
	got, _ := m.Get(context.Background(), "k")
	if string(got) != "abc" {
		t.Fatalf("adapter kept caller's buffer: %q", got)
	}
}

func newRedisAdapter(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return NewRedis(rdb, "gs:device-1:"), mr
}

func TestRedisAdapterContract(t *testing.T) {
	a, _ := newRedisAdapter(t)
	exerciseAdapter(t, a)
}

func TestRedisAdapterPrefixAndTTL(t *testing.T) {
	a, mr := newRedisAdapter(t)
	ctx := context.Background()

	if err := a.Set(ctx, "user-storage", []byte("v"), SetOptions{TTL: 7 * 24 * time.Hour}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("gs:device-1:user-storage") {
		t.Fatalf("expected prefixed key, have %v", mr.Keys())
	}
	if ttl := mr.TTL("gs:device-1:user-storage"); ttl != 7*24*time.Hour {
		t.Fatalf("expected 7d TTL, got %v", ttl)
	}

	mr.FastForward(7*24*time.Hour + time.Second)
	if _, err := a.Get(ctx, "user-storage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected key to expire, got %v", err)
	}
}

func TestRedisAdapterUnavailable(t *testing.T) {
	a, mr := newRedisAdapter(t)
	mr.Close()
	if _, err := a.Get(context.Background(), "user-storage"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestBadgerAdapterContract(t *testing.T) {
	b, err := OpenBadger("", "gs:", nil)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	defer b.Close()
	exerciseAdapter(t, b)
}

func TestBadgerAdapterPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	b, err := OpenBadger(dir, "gs:", nil)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	if err := b.Set(ctx, "user-storage", []byte("durable"), SetOptions{TTL: time.Hour}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenBadger(dir, "gs:", nil)
	if err != nil {
		t.Fatalf("reopen badger: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(ctx, "user-storage")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != "durable" {
		t.Fatalf("expected durable value, got %q", got)
	}
}

func TestCookieAdapterSetWritesAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := NewCookie(rec, req, SetOptions{Path: "/", Secure: true, HTTPOnly: true, SameSite: http.SameSiteLaxMode})

	opts := SetOptions{TTL: 7 * 24 * time.Hour, Path: "/", Secure: true, HTTPOnly: true, SameSite: http.SameSiteLaxMode}
	if err := c.Set(context.Background(), "user-storage", []byte(`{"a":"b, c; d"}`), opts); err != nil {
		t.Fatalf("set: %v", err)
	}

	header := rec.Header().Get("Set-Cookie")
	for _, want := range []string{"user-storage=", "Path=/", "Max-Age=604800", "Secure", "HttpOnly", "SameSite=Lax", "Expires="} {
		if !strings.Contains(header, want) {
			t.Fatalf("expected %q in Set-Cookie, got %q", want, header)
		}
	}

	got, err := c.Get(context.Background(), "user-storage")
	if err != nil {
		t.Fatalf("get within same exchange: %v", err)
	}
	if string(got) != `{"a":"b, c; d"}` {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestCookieAdapterReadsRequestCookie(t *testing.T) {
	first := httptest.NewRecorder()
	c := NewCookie(first, httptest.NewRequest(http.MethodGet, "/", nil), SetOptions{})
	if err := c.Set(context.Background(), "user-storage", []byte("hello"), SetOptions{TTL: time.Hour}); err != nil {
		t.Fatalf("set: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range first.Result().Cookies() {
		req.AddCookie(ck)
	}
	next := NewCookie(httptest.NewRecorder(), req, SetOptions{})
	got, err := next.Get(context.Background(), "user-storage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("expected hello, got %q", got)
	}
}

func TestCookieAdapterRemoveExpiresCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "user-storage", Value: "aGVsbG8"})
	rec := httptest.NewRecorder()
	c := NewCookie(rec, req, SetOptions{Path: "/", Secure: true})

	if err := c.Remove(context.Background(), "user-storage"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	header := rec.Header().Get("Set-Cookie")
	if !strings.Contains(header, "Max-Age=0") || !strings.Contains(header, "Path=/") {
		t.Fatalf("expected expiring cookie, got %q", header)
	}
	if _, err := c.Get(context.Background(), "user-storage"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected removal to hide request cookie, got %v", err)
	}
}

func TestCookieAdapterRejectsOversizeValue(t *testing.T) {
	c := NewCookie(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), SetOptions{})
	big := bytes.Repeat([]byte("x"), MaxCookieValueBytes)
	if err := c.Set(context.Background(), "user-storage", big, SetOptions{}); !errors.Is(err, ErrValueTooLarge) {
		t.Fatalf("expected ErrValueTooLarge, got %v", err)
	}
}

func TestCookieAdapterCorruptValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "user-storage", Value: "!!not-base64!!"})
	c := NewCookie(httptest.NewRecorder(), req, SetOptions{})
	if _, err := c.Get(context.Background(), "user-storage"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
