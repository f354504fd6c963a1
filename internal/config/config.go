package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Service ServiceConfig `yaml:"service" json:"service"`
	Upload  UploadConfig  `yaml:"upload" json:"upload"`
	Session SessionConfig `yaml:"session" json:"session"`
}

// ServerConfig configures the web front-end listener
type ServerConfig struct {
	Addr      string `yaml:"addr" json:"addr"`
	AccessLog bool   `yaml:"access_log" json:"access_log"`
}

// ServiceConfig points at the external analysis service
type ServiceConfig struct {
	URL     string        `yaml:"url" json:"url"`         // origin, /upload is appended
	Timeout time.Duration `yaml:"timeout" json:"timeout"` // 0 = no client-side timeout
}

// UploadConfig limits what the form accepts
type UploadConfig struct {
	MaxBytes int `yaml:"max_bytes" json:"max_bytes"`
}

// SessionConfig controls per-browser state lifetime
type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":5173",
			AccessLog: true,
		},
		Service: ServiceConfig{
			URL:     "http://localhost:8000",
			Timeout: 0,
		},
		Upload: UploadConfig{
			MaxBytes: 32 << 20,
		},
		Session: SessionConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	u, err := url.Parse(c.Service.URL)
	if err != nil {
		return fmt.Errorf("invalid service.url %q: %w", c.Service.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("service.url must be http or https, got %q", c.Service.URL)
	}
	if c.Service.Timeout < 0 {
		return fmt.Errorf("service.timeout must not be negative")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session.idle_timeout must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive")
	}
	return nil
}
