package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":5173", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8000", cfg.Service.URL)
	assert.Zero(t, cfg.Service.Timeout)
	assert.Equal(t, 32<<20, cfg.Upload.MaxBytes)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
service:
  url: "http://analysis.internal:8000"
  timeout: 45s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://analysis.internal:8000", cfg.Service.URL)
	assert.Equal(t, 45*time.Second, cfg.Service.Timeout)
	// untouched sections keep defaults
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.True(t, cfg.Server.AccessLog)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EXPENSE_INSIGHT_SERVICE_URL", "https://example.test")
	t.Setenv("EXPENSE_INSIGHT_SERVICE_TIMEOUT", "2m")
	t.Setenv("EXPENSE_INSIGHT_SERVER_ACCESS_LOG", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://example.test", cfg.Service.URL)
	assert.Equal(t, 2*time.Minute, cfg.Service.Timeout)
	assert.False(t, cfg.Server.AccessLog)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("EXPENSE_INSIGHT_UPLOAD_MAX_BYTES", "lots")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"non-http service", func(c *Config) { c.Service.URL = "ftp://host" }},
		{"negative timeout", func(c *Config) { c.Service.Timeout = -time.Second }},
		{"zero max bytes", func(c *Config) { c.Upload.MaxBytes = 0 }},
		{"zero idle timeout", func(c *Config) { c.Session.IdleTimeout = 0 }},
	}

	require.NoError(t, DefaultConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
