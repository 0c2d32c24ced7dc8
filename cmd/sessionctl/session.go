package main

import (
	"context"
	"errors"
	"fmt"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/confload"
	"github.com/MrEthical07/goSession/identity"
	"github.com/MrEthical07/goSession/storage"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// session is everything one command invocation works with.
type session struct {
	cfg    goSession.Config
	db     *storage.Badger
	store  *goSession.Store
	logger *zap.Logger
}

func withSession(c *cli.Context, fn func(context.Context, *session) error) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(c.Context, s)
}

func openSession(c *cli.Context) (*session, error) {
	logger, err := newLogger(c.Bool("debug"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	overrides := map[string]any{}
	if u := c.String("base-url"); u != "" {
		overrides["identity.base_url"] = u
	}
	cfg, err := confload.Load(c.String("config"), confload.WithOverrides(overrides))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if c.Bool("debug") {
		cfg.Audit.Enabled = true
	}
	if cfg.Identity.BaseURL == "" {
		return nil, errors.New("no identity backend: set --base-url or identity.base_url")
	}

	dir := c.String("data-dir")
	if dir == "" {
		if dir, err = defaultDataDir(); err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
	}
	db, err := storage.OpenBadger(dir, "sessionctl/", logger)
	if err != nil {
		return nil, err
	}

	store, err := goSession.New().
		WithConfig(cfg).
		WithStorage(db).
		WithTokenSource(adapterToken{adapter: db, key: tokenKey}).
		WithLogger(logger).
		WithAuditSink(goSession.NewLoggerSink(logger.Named("audit"))).
		Build(c.Context)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("session opened", zap.String("data_dir", dir), zap.Bool("logged_in", store.IsLoggedIn()))
	return &session{cfg: cfg, db: db, store: store, logger: logger}, nil
}

func (s *session) loginClient() (*identity.HTTPClient, error) {
	return identity.NewHTTPClient(identity.HTTPConfig{
		BaseURL:          s.cfg.Identity.BaseURL,
		Timeout:          s.cfg.Identity.Timeout,
		MaxResponseBytes: s.cfg.Identity.MaxResponseBytes,
		UserAgent:        s.cfg.Identity.UserAgent,
	}, nil, nil)
}

func (s *session) close() {
	s.store.Close()
	if err := s.db.Close(); err != nil {
		s.logger.Warn("close session database", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// adapterToken reads the bearer token saved by login.
type adapterToken struct {
	adapter storage.Adapter
	key     string
}

func (t adapterToken) Token(ctx context.Context) (string, error) {
	raw, err := t.adapter.Get(ctx, t.key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
