package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when --config is not given
const DefaultFile = "dvsim.toml"

// EnvPrefix marks environment variables that override config keys
const EnvPrefix = "DVSIM_"

// Config holds all configuration for the application
type Config struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	CORSOrigin  string        `koanf:"cors-origin"`
	LogLevel    string        `koanf:"log-level"`
	LogJSON     bool          `koanf:"log-json"`
	StreamDelay time.Duration `koanf:"stream-delay"`

	File   string `koanf:"file"`
	Source string `koanf:"source"`
	Format string `koanf:"format"`
	Watch  bool   `koanf:"watch"`
	Verify bool   `koanf:"verify"`
	Color  bool   `koanf:"color"`
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Defaults returns the built-in configuration values
func Defaults() map[string]any {
	return map[string]any{
		"host":         "",
		"port":         5001,
		"cors-origin":  "*",
		"log-level":    "info",
		"log-json":     false,
		"stream-delay": "0s",
		"file":         "",
		"source":       "",
		"format":       "table",
		"watch":        false,
		"verify":       false,
		"color":        true,
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(makeMapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// A missing default file is fine; a missing explicit one is not
	path, explicit := configPath(f)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// DVSIM_STREAM_DELAY=250ms -> stream-delay
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func configPath(f *pflag.FlagSet) (string, bool) {
	if f == nil {
		return DefaultFile, false
	}
	if flag := f.Lookup("config"); flag != nil && flag.Value.String() != "" {
		return flag.Value.String(), flag.Changed
	}
	return DefaultFile, false
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]any
}

func makeMapProvider(m map[string]any) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]any, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("not implemented")
}
