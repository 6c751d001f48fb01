package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9999"
database:
  url: postgres://localhost:5432/console
worker:
  poll_interval: 1s
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "postgres://localhost:5432/console", cfg.Database.URL)
	assert.Equal(t, 1*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched values keep their defaults
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, 5*time.Second, cfg.Worker.ErrorBackoff)
	assert.True(t, cfg.Worker.Enabled)
	assert.True(t, cfg.Database.MigrateOnStart)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: postgres://from-file:5432/console
`)
	t.Setenv("CONSOLE_DATABASE_URL", "postgres://from-env:5432/console")
	t.Setenv("CONSOLE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://from-env:5432/console", cfg.Database.URL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvOverridesMultiWordKeys(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: postgres://localhost:5432/console
`)
	t.Setenv("CONSOLE_WORKER_POLL_INTERVAL", "9s")
	t.Setenv("CONSOLE_SERVER_METRICS_PORT", "7777")
	t.Setenv("CONSOLE_DATABASE_MIGRATE_ON_START", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, "7777", cfg.Server.MetricsPort)
	assert.False(t, cfg.Database.MigrateOnStart)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Database.URL = "postgres://localhost:5432/console"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"missing database url", func(c *Config) { c.Database.URL = "" }, "database.url"},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"zero poll interval", func(c *Config) { c.Worker.PollInterval = 0 }, "poll_interval"},
		{"negative error backoff", func(c *Config) { c.Worker.ErrorBackoff = -time.Second }, "error_backoff"},
		{"zero lease duration", func(c *Config) { c.Worker.LeaseDuration = 0 }, "lease_duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
