package goSession

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config defines how a Store persists its snapshot and reaches the identity collaborator.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Persistence PersistenceConfig
	Identity    IdentityConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
PERSISTENCE CONFIG
====================================
*/

// PersistenceConfig controls the durable snapshot.
//
// Path, Domain, Secure, HTTPOnly and SameSite are passed to the adapter on every write;
// adapters without those concepts ignore them.
type PersistenceConfig struct {
	Key              string
	Expiration       time.Duration
	Path             string
	Domain           string
	Secure           bool
	HTTPOnly         bool
	SameSite         http.SameSite
	MaxSnapshotBytes int
}

/*
====================================
IDENTITY CONFIG
====================================
*/

// IdentityConfig configures the HTTP identity client built by Builder when no client
// is supplied through WithIdentity.
type IdentityConfig struct {
	BaseURL          string
	MePath           string
	Timeout          time.Duration
	MaxResponseBytes int64
	UserAgent        string
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and the fetch latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

const (
	// DefaultPersistenceKey is the fixed key the snapshot is stored under.
	DefaultPersistenceKey = "user-storage"
	// DefaultExpiration is the lifetime of a persisted snapshot.
	DefaultExpiration     = 7 * 24 * time.Hour

	maxExpiration = 400 * 24 * time.Hour
)

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a seven-day, root-scoped, secure-only snapshot configuration.
func DefaultConfig() Config {
	return Config{
		Persistence: PersistenceConfig{
			Key:              DefaultPersistenceKey,
			Expiration:       DefaultExpiration,
			Path:             "/",
			Secure:           true,
			HTTPOnly:         true,
			SameSite:         http.SameSiteLaxMode,
			MaxSnapshotBytes: 4096,
		},
		Identity: IdentityConfig{
			MePath:           "/users/me",
			Timeout:          10 * time.Second,
			MaxResponseBytes: 1 << 20,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	p := c.Persistence
	if p.Key == "" {
		return invalid("Persistence Key must not be empty")
	}
	if strings.ContainsAny(p.Key, " \t\r\n;,=\"") {
		return invalid("Persistence Key %q contains characters not allowed in a key", p.Key)
	}
	if p.Expiration <= 0 {
		return invalid("Persistence Expiration must be > 0")
	}
	if p.Expiration > maxExpiration {
		return invalid("Persistence Expiration must be <= %s", maxExpiration)
	}
	if !strings.HasPrefix(p.Path, "/") {
		return invalid("Persistence Path must start with /")
	}
	if p.MaxSnapshotBytes <= 0 {
		return invalid("Persistence MaxSnapshotBytes must be > 0")
	}
	if p.SameSite == http.SameSiteNoneMode && !p.Secure {
		return invalid("Persistence SameSite=None requires Secure")
	}

	id := c.Identity
	if id.BaseURL != "" {
		u, err := url.Parse(id.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("Identity BaseURL %q must be an absolute http(s) URL", id.BaseURL)
		}
	}
	if id.MePath != "" && !strings.HasPrefix(id.MePath, "/") {
		return invalid("Identity MePath must start with /")
	}
	if id.Timeout < 0 {
		return invalid("Identity Timeout must be >= 0")
	}
	if id.MaxResponseBytes < 0 {
		return invalid("Identity MaxResponseBytes must be >= 0")
	}

	if c.Audit.BufferSize < 0 {
		return invalid("Audit BufferSize must be >= 0")
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

