// Package config loads expert-dx settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config holds CLI settings. Precedence: defaults, file, environment, flags.
type Config struct {
	DBPath        string `yaml:"db_path" env:"EXPERT_DX_DB"`
	DefaultEngine string `yaml:"default_engine" env:"EXPERT_DX_ENGINE"`
	LogLevel      string `yaml:"log_level" env:"EXPERT_DX_LOG_LEVEL"`
	Format        string `yaml:"format" env:"EXPERT_DX_FORMAT"`
}

// Dir returns the per-user state directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".expert-dx")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DBPath:        filepath.Join(Dir(), "learning.db"),
		DefaultEngine: "rule-based",
		LogLevel:      "info",
		Format:        FormatJSON,
	}
}

// Load reads path (a missing file is not an error) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	switch c.Format {
	case FormatJSON, FormatText:
	default:
		return fmt.Errorf("invalid format %q (want json or text)", c.Format)
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path is required")
	}
	return nil
}
