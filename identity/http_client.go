package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMePath is the profile endpoint of the social backend.
	DefaultMePath = "/users/me"
	// DefaultLoginPath is the credential exchange endpoint of the social backend.
	DefaultLoginPath = "/auth/login"

	defaultTimeout          = 10 * time.Second
	defaultMaxResponseBytes = 1 << 20

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	BaseURL          string
	MePath           string
	LoginPath        string
	Timeout          time.Duration
	MaxResponseBytes int64
	UserAgent        string
}

// HTTPClient talks to the identity endpoints of a REST backend.
type HTTPClient struct {
	base   *url.URL
	cfg    HTTPConfig
	tokens TokenSource
	http   *http.Client
}

// NewHTTPClient validates cfg and returns a client. A nil hc gets a dedicated
// http.Client with cfg.Timeout; a nil tokens sends unauthenticated requests.
func NewHTTPClient(cfg HTTPConfig, tokens TokenSource, hc *http.Client) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("identity: base URL required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("identity: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("identity: unsupported base URL scheme %q", base.Scheme)
	}
	if cfg.MePath == "" {
		cfg.MePath = DefaultMePath
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = defaultMaxResponseBytes
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if tokens == nil {
		tokens = StaticToken("")
	}

	return &HTTPClient{
		base:   base,
		cfg:    cfg,
		tokens: tokens,
		http:   hc,
	}, nil
}

// Me fetches the current profile. Non-200 statuses are reported through
// Result.StatusCode with a nil error; transport failures and undecodable
// 200 bodies are returned as errors.
func (c *HTTPClient) Me(ctx context.Context) (Result, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.cfg.MePath, nil)
	if err != nil {
		return Result{}, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("identity: token source: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("identity: request profile: %w", err)
	}
	defer drain(resp.Body)

	res := Result{StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		return res, nil
	}

	var user User
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes)).Decode(&user); err != nil {
		return res, fmt.Errorf("%w: %v", ErrMalformedProfile, err)
	}
	res.User = &user
	return res, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges email and password for a bearer token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.cfg.LoginPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity: login request: %w", err)
	}
	defer drain(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrInvalidCredentials
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	default:
		return "", fmt.Errorf("identity: login returned status %d", resp.StatusCode)
	}

	var out loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("identity: decode login response: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("identity: login response without token")
	}
	return out.AccessToken, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	endpoint := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	return req, nil
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
