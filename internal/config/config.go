// Package config loads application configuration from a YAML file.
// A missing file is created with defaults; missing fields fall back to
// defaults individually, so partial configs stay valid across upgrades.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	StoragePath  string `yaml:"storagePath"`
	HistoryLimit int    `yaml:"historyLimit"`

	LogLevel  string `yaml:"logLevel"`  // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"prettyLog"` // console output instead of JSON

	Health  HealthConfig  `yaml:"health"`
	Domains DomainsConfig `yaml:"domains"`
}

// HealthConfig configures link-health scanning.
type HealthConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	ExcludeDomains []string      `yaml:"excludeDomains"` // 404s here are possibly-private, not dead
}

// DomainsConfig overrides the built-in smart-filter domain lists.
// Empty lists keep the defaults.
type DomainsConfig struct {
	Media    []string `yaml:"media"`
	Social   []string `yaml:"social"`
	Shopping []string `yaml:"shopping"`
	News     []string `yaml:"news"`
}

// Default returns the default configuration. The storage path is resolved
// lazily in Load so Default stays pure.
func Default() Config {
	return Config{
		HistoryLimit: 100,
		LogLevel:     "info",
		PrettyLog:    true,
		Health: HealthConfig{
			Timeout:        10 * time.Second,
			ExcludeDomains: []string{"github.com", "gitlab.com"},
		},
	}
}

// Load reads config from the YAML file at path. A missing file is created
// with defaults; creation failure is non-fatal and defaults are returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.StoragePath = defaultStoragePath(path)
			_ = Save(path, &cfg)
			return &cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	defaults := Default()
	if cfg.StoragePath == "" {
		cfg.StoragePath = defaultStoragePath(path)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaults.HistoryLimit
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.Health.Timeout <= 0 {
		cfg.Health.Timeout = defaults.Health.Timeout
	}
	if cfg.Health.ExcludeDomains == nil {
		cfg.Health.ExcludeDomains = defaults.Health.ExcludeDomains
	}
	return &cfg, nil
}

// Save writes config as YAML, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns ~/.config/linkhoard/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "linkhoard", "config.yaml"), nil
}

// defaultStoragePath places the database next to the config file.
func defaultStoragePath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "linkhoard.db")
}
