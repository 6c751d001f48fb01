// Package config provides application configuration loading.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment variable overrides,
// e.g. CONSOLE_DATABASE_URL overrides database.url.
const envPrefix = "CONSOLE_"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Worker   WorkerConfig   `koanf:"worker"`
	Log      LogConfig      `koanf:"log"`
	CORS     CORSConfig     `koanf:"cors"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts"`
	MigrateOnStart  bool          `koanf:"migrate_on_start"`
}

// WorkerConfig contains automation worker settings.
type WorkerConfig struct {
	Enabled       bool          `koanf:"enabled"`
	PollInterval  time.Duration `koanf:"poll_interval"`
	ErrorBackoff  time.Duration `koanf:"error_backoff"`
	LeaseDuration time.Duration `koanf:"lease_duration"`
	HTTPTimeout   time.Duration `koanf:"http_timeout"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

// CORSConfig contains CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectTimeout:  30 * time.Second,
			ConnectAttempts: 5,
			MigrateOnStart:  true,
		},
		Worker: WorkerConfig{
			Enabled:       true,
			PollInterval:  3 * time.Second,
			ErrorBackoff:  5 * time.Second,
			LeaseDuration: 5 * time.Minute,
			HTTPTimeout:   10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load reads configuration from the optional YAML file at path and applies
// environment variable overrides on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// CONSOLE_WORKER_POLL_INTERVAL → worker.poll_interval. Sections are
	// single words, so only the first underscore separates the section from
	// the key; the rest stays snake_case.
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}

	if c.Worker.PollInterval <= 0 {
		return errors.New("worker.poll_interval must be positive")
	}
	if c.Worker.ErrorBackoff <= 0 {
		return errors.New("worker.error_backoff must be positive")
	}
	if c.Worker.LeaseDuration <= 0 {
		return errors.New("worker.lease_duration must be positive")
	}

	return nil
}
