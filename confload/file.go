package confload

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

// File is the on-disk shape of goSession.Config.
type File struct {
	Persistence struct {
		Key              string        `koanf:"key"`
		Expiration       time.Duration `koanf:"expiration"`
		Path             string        `koanf:"path"`
		Domain           string        `koanf:"domain"`
		Secure           bool          `koanf:"secure"`
		HTTPOnly         bool          `koanf:"http_only"`
		SameSite         string        `koanf:"same_site"`
		MaxSnapshotBytes int           `koanf:"max_snapshot_bytes"`
	} `koanf:"persistence"`

	Identity struct {
		BaseURL          string        `koanf:"base_url"`
		MePath           string        `koanf:"me_path"`
		Timeout          time.Duration `koanf:"timeout"`
		MaxResponseBytes int64         `koanf:"max_response_bytes"`
		UserAgent        string        `koanf:"user_agent"`
	} `koanf:"identity"`

	Audit struct {
		Enabled    bool `koanf:"enabled"`
		BufferSize int  `koanf:"buffer_size"`
		DropIfFull bool `koanf:"drop_if_full"`
	} `koanf:"audit"`

	Metrics struct {
		Enabled                 bool `koanf:"enabled"`
		EnableLatencyHistograms bool `koanf:"latency_histograms"`
	} `koanf:"metrics"`
}

func fromConfig(c goSession.Config) File {
	var f File
	p := &f.Persistence
	p.Key = c.Persistence.Key
	p.Expiration = c.Persistence.Expiration
	p.Path = c.Persistence.Path
	p.Domain = c.Persistence.Domain
	p.Secure = c.Persistence.Secure
	p.HTTPOnly = c.Persistence.HTTPOnly
	p.SameSite = sameSiteName(c.Persistence.SameSite)
	p.MaxSnapshotBytes = c.Persistence.MaxSnapshotBytes

	f.Identity.BaseURL = c.Identity.BaseURL
	f.Identity.MePath = c.Identity.MePath
	f.Identity.Timeout = c.Identity.Timeout
	f.Identity.MaxResponseBytes = c.Identity.MaxResponseBytes
	f.Identity.UserAgent = c.Identity.UserAgent

	f.Audit.Enabled = c.Audit.Enabled
	f.Audit.BufferSize = c.Audit.BufferSize
	f.Audit.DropIfFull = c.Audit.DropIfFull

	f.Metrics.Enabled = c.Metrics.Enabled
	f.Metrics.EnableLatencyHistograms = c.Metrics.EnableLatencyHistograms
	return f
}

func (f File) toConfig() (goSession.Config, error) {
	sameSite, err := parseSameSite(f.Persistence.SameSite)
	if err != nil {
		return goSession.Config{}, err
	}

	return goSession.Config{
		Persistence: goSession.PersistenceConfig{
			Key:              f.Persistence.Key,
			Expiration:       f.Persistence.Expiration,
			Path:             f.Persistence.Path,
			Domain:           f.Persistence.Domain,
			Secure:           f.Persistence.Secure,
			HTTPOnly:         f.Persistence.HTTPOnly,
			SameSite:         sameSite,
			MaxSnapshotBytes: f.Persistence.MaxSnapshotBytes,
		},
		Identity: goSession.IdentityConfig{
			BaseURL:          f.Identity.BaseURL,
			MePath:           f.Identity.MePath,
			Timeout:          f.Identity.Timeout,
			MaxResponseBytes: f.Identity.MaxResponseBytes,
			UserAgent:        f.Identity.UserAgent,
		},
		Audit: goSession.AuditConfig{
			Enabled:    f.Audit.Enabled,
			BufferSize: f.Audit.BufferSize,
			DropIfFull: f.Audit.DropIfFull,
		},
		Metrics: goSession.MetricsConfig{
			Enabled:                 f.Metrics.Enabled,
			EnableLatencyHistograms: f.Metrics.EnableLatencyHistograms,
		},
	}, nil
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return http.SameSiteDefaultMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("%w: persistence same_site %q must be lax, strict, none or default", goSession.ErrInvalidConfig, s)
	}
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteLaxMode:
		return "lax"
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return "default"
	}
}
