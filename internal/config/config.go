// Package config resolves runtime settings from defaults, an optional YAML
// file and VERIXA_* environment variables, in that order of precedence
// (later wins). Command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/verixa/internal/store"
)

// Config holds runtime settings.
type Config struct {
	// Backend selects the engine variant: "sqlite" or "postgres".
	Backend string `yaml:"backend"`

	// DatabasePath is the SQLite file (or ":memory:").
	DatabasePath string `yaml:"database_path"`

	// PostgresDSN is the connection string of the hosted variant.
	PostgresDSN string `yaml:"postgres_dsn"`

	// StateDir holds the persisted cart and wishlist.
	StateDir string `yaml:"state_dir"`

	// CatalogPath overrides the built-in catalog used for seeding.
	CatalogPath string `yaml:"catalog_path"`

	InitTimeout time.Duration `yaml:"init_timeout"`
	LogLevel    string        `yaml:"log_level"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Backend:      store.BackendSQLite,
		DatabasePath: "verixa.db",
		StateDir:     ".verixa",
		InitTimeout:  store.DefaultInitTimeout,
		LogLevel:     "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg, err := Resolve(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve is Load without validation, for callers that apply further
// overrides (command-line flags) and validate afterwards.
func Resolve(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode overlays YAML onto cfg. Unknown keys are rejected.
func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Backend = getEnv("VERIXA_BACKEND", cfg.Backend)
	cfg.DatabasePath = getEnv("VERIXA_DB", cfg.DatabasePath)
	cfg.PostgresDSN = getEnv("VERIXA_DSN", cfg.PostgresDSN)
	cfg.StateDir = getEnv("VERIXA_STATE_DIR", cfg.StateDir)
	cfg.CatalogPath = getEnv("VERIXA_CATALOG", cfg.CatalogPath)
	cfg.LogLevel = getEnv("VERIXA_LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("VERIXA_INIT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("VERIXA_INIT_TIMEOUT: %w", err)
		}
		cfg.InitTimeout = d
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Validate checks that the settings are usable together.
func (c Config) Validate() error {
	var errs []error

	switch c.Backend {
	case store.BackendSQLite:
		if strings.TrimSpace(c.DatabasePath) == "" {
			errs = append(errs, errors.New("database_path is required for the sqlite backend"))
		}
	case store.BackendPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("postgres_dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q: must be %q or %q", c.Backend, store.BackendSQLite, store.BackendPostgres))
	}

	if c.InitTimeout <= 0 {
		errs = append(errs, fmt.Errorf("init_timeout must be positive, got %s", c.InitTimeout))
	}
	if strings.TrimSpace(c.StateDir) == "" {
		errs = append(errs, errors.New("state_dir must not be empty"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
