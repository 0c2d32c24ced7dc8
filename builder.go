package goSession

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/identity"
	internalaudit "github.com/MrEthical07/goSession/internal/audit"
	"github.com/MrEthical07/goSession/storage"
	"go.uber.org/zap"
)

// Builder assembles a Store from a Config and its collaborators.
//
// A Builder is used once: configure it during initialization and call Build.
type Builder struct {
	config Config

	storage  storage.Adapter
	identity identity.Client
	tokens   identity.TokenSource
	logger   *zap.Logger
	metrics  *Metrics

	auditSink AuditSink

	built bool
}

// New returns a Builder holding DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStorage sets the adapter the snapshot is read from and written to. Required.
func (b *Builder) WithStorage(a storage.Adapter) *Builder {
	b.storage = a
	return b
}

// WithIdentity sets the collaborator FetchUser consults.
//
// Without it, Build constructs an identity.HTTPClient from Config.Identity, which then
// requires a BaseURL.
func (b *Builder) WithIdentity(c identity.Client) *Builder {
	b.identity = c
	return b
}

// WithTokenSource sets the bearer credential source of the HTTP identity client built
// from Config.Identity. It is ignored when WithIdentity is used.
func (b *Builder) WithTokenSource(ts identity.TokenSource) *Builder {
	b.tokens = ts
	return b
}

// WithLogger sets the logger. The default discards everything.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets the sink audit events are delivered to when Config.Audit is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetrics makes the store record into m instead of its own Metrics. Share one
// Metrics between the stores of a process to aggregate their counters; Config.Metrics
// is then ignored.
func (b *Builder) WithMetrics(m *Metrics) *Builder {
	b.metrics = m
	return b
}

// WithMetricsEnabled toggles Config.Metrics.Enabled.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles Config.Metrics.EnableLatencyHistograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, restores the persisted snapshot through the
// storage adapter and returns the ready Store. The returned Store has already been
// rehydrated: a missing or unreadable snapshot leaves it logged out.
//
// Build fails with ErrBuilderUsed on a second call, ErrStorageRequired without an
// adapter, ErrIdentityRequired without an identity collaborator, or an error wrapping
// ErrInvalidConfig.
func (b *Builder) Build(ctx context.Context) (*Store, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.storage == nil {
		return nil, ErrStorageRequired
	}

	client := b.identity
	if client == nil {
		if cfg.Identity.BaseURL == "" {
			return nil, ErrIdentityRequired
		}
		hc, err := identity.NewHTTPClient(identity.HTTPConfig{
			BaseURL:          cfg.Identity.BaseURL,
			MePath:           cfg.Identity.MePath,
			Timeout:          cfg.Identity.Timeout,
			MaxResponseBytes: cfg.Identity.MaxResponseBytes,
			UserAgent:        cfg.Identity.UserAgent,
		}, b.tokens, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		client = hc
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := b.metrics
	if metrics == nil {
		metrics = NewMetrics(cfg.Metrics)
	}

	var dispatcher *internalaudit.Dispatcher
	if cfg.Audit.Enabled {
		dispatcher = internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink)
	}

	s := &Store{
		persist:  newPersister(b.storage, cfg.Persistence),
		identity: client,
		logger:   logger.With(zap.String("component", "gosession")),
		metrics:  metrics,
		audit:    dispatcher,
		now:      time.Now,
		subs:     make(map[uint64]func(State)),
	}
	s.rehydrate(ctx)

	b.built = true
	return s, nil
}
