package confload

import (
	"errors"
	"fmt"
	"strings"

	goSession "github.com/MrEthical07/goSession"
	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix.
const DefaultEnvPrefix = "GOSESSION_"

// Loader collects configuration sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	overrides map[string]any
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces DefaultEnvPrefix. An empty prefix disables environment loading.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile names a YAML file to load. A missing file is an error.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides sets dotted keys ("identity.base_url") that win over every other
// source. Commands use it for flags.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		l.overrides = values
	}
}

// NewLoader returns a Loader with the given options applied.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every source and returns the validated configuration.
func (l *Loader) Load() (goSession.Config, error) {
	if l.filePath != "" {
		if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return goSession.Config{}, fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
	}

	if l.envPrefix != "" {
		if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
			return goSession.Config{}, fmt.Errorf("load env: %w", err)
		}
	}

	if len(l.overrides) > 0 {
		if err := l.k.Load(mapProvider(maps.Unflatten(l.overrides, ".")), nil); err != nil {
			return goSession.Config{}, fmt.Errorf("load overrides: %w", err)
		}
	}

	f := fromConfig(goSession.DefaultConfig())
	if err := l.k.Unmarshal("", &f); err != nil {
		return goSession.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg, err := f.toConfig()
	if err != nil {
		return goSession.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return goSession.Config{}, err
	}
	return cfg, nil
}

// Keys lists the loaded keys, for diagnostics.
func (l *Loader) Keys() []string {
	return l.k.Keys()
}

// Load is NewLoader(WithConfigFile(path), opts...).Load(). An empty path skips the file.
func Load(path string, opts ...Option) (goSession.Config, error) {
	return NewLoader(append([]Option{WithConfigFile(path)}, opts...)...).Load()
}

// envKey maps GOSESSION_PERSISTENCE_MAX_SNAPSHOT_BYTES to persistence.max_snapshot_bytes:
// the first segment names the section, the rest is the key.
func (l *Loader) envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + key
}

var errReadBytes = errors.New("confload: map provider has no byte form")

type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errReadBytes
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}
