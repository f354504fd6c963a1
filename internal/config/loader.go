package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given and the file exists.
const DefaultPath = "./.expense-insight.yaml"

// Load builds the configuration: defaults, then the YAML file, then
// EXPENSE_INSIGHT_* environment variables. An explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	switch {
	case path != "":
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	case fileExists(DefaultPath):
		if err := loadFromFile(cfg, DefaultPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", DefaultPath, err)
		}
	}

	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile decodes YAML over cfg; keys absent from the file keep their
// current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - operator supplied path
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	envMappings := map[string]func(string) error{
		"EXPENSE_INSIGHT_SERVER_ADDR":       func(v string) error { cfg.Server.Addr = v; return nil },
		"EXPENSE_INSIGHT_SERVER_ACCESS_LOG": func(v string) error { return parseBool(v, &cfg.Server.AccessLog) },
		"EXPENSE_INSIGHT_SERVICE_URL":       func(v string) error { cfg.Service.URL = v; return nil },
		"EXPENSE_INSIGHT_SERVICE_TIMEOUT":   func(v string) error { return parseDuration(v, &cfg.Service.Timeout) },
		"EXPENSE_INSIGHT_UPLOAD_MAX_BYTES":  func(v string) error { return parseInt(v, &cfg.Upload.MaxBytes) },
		"EXPENSE_INSIGHT_SESSION_IDLE":      func(v string) error { return parseDuration(v, &cfg.Session.IdleTimeout) },
	}

	for key, apply := range envMappings {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		if err := apply(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid boolean %q", v)
	}
	*dst = b
	return nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid integer %q", v)
	}
	*dst = n
	return nil
}

func parseDuration(v string, dst *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration %q", v)
	}
	*dst = d
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
