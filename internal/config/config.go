// Package config provides configuration management for gentle.
//
// Config file locations (priority order):
//  1. $GENTLE_CONFIG
//  2. ./gentle.yaml
//  3. $XDG_CONFIG_HOME/gentle/config.yaml
//  4. ~/.config/gentle/config.yaml
//  5. /etc/gentle/config.yaml
//
// Missing values fall back to DefaultConfig. Command line flags override
// file values in cmd/server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gentle/internal/domain"
	"gentle/internal/geometry"
)

// Defaults
const (
	DefaultAddr            = ":3000"
	DefaultDatabasePath    = "./gentle.db"
	DefaultRespondentLabel = "You"
	DefaultIdleTimeout     = 2 * time.Hour
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	// maxPseudonymKey is the longest key blake2b accepts
	maxPseudonymKey = 64
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel.String()
	}
	if c.Elicitation.MaxAlters == 0 {
		c.Elicitation.MaxAlters = geometry.Slots
	}
	if c.Elicitation.RespondentLabel == "" {
		c.Elicitation.RespondentLabel = DefaultRespondentLabel
	}
	if len(c.Elicitation.Categories) == 0 {
		for _, cat := range domain.DefaultCategories() {
			c.Elicitation.Categories = append(c.Elicitation.Categories, CategoryConfig{Text: cat.Text, Color: cat.Color})
		}
	}
	if c.Sessions.IdleTimeout == 0 {
		c.Sessions.IdleTimeout = Duration(DefaultIdleTimeout)
	}
}

// Validate reports every problem with the configuration
func (c *Config) Validate() error {
	var errs []error

	if n := c.Elicitation.MaxAlters; n < 1 || n > geometry.Slots {
		errs = append(errs, fmt.Errorf("elicitation.max_alters must be between 1 and %d, got %d", geometry.Slots, n))
	}
	for i, cat := range c.Elicitation.Categories {
		if strings.TrimSpace(cat.Text) == "" {
			errs = append(errs, fmt.Errorf("elicitation.categories[%d]: text required", i))
		}
		if strings.TrimSpace(cat.Color) == "" {
			errs = append(errs, fmt.Errorf("elicitation.categories[%d]: color required", i))
		}
	}
	if len(c.Export.PseudonymKey) > maxPseudonymKey {
		errs = append(errs, fmt.Errorf("export.pseudonym_key longer than %d bytes", maxPseudonymKey))
	}
	if c.Sessions.IdleTimeout < 0 {
		errs = append(errs, errors.New("sessions.idle_timeout must not be negative"))
	}

	return errors.Join(errs...)
}

// Palette returns the configured categories with IDs assigned by position
func (c *Config) Palette() domain.Palette {
	palette := make(domain.Palette, 0, len(c.Elicitation.Categories))
	for i, cat := range c.Elicitation.Categories {
		palette = append(palette, domain.Category{ID: i, Text: cat.Text, Color: cat.Color})
	}
	return palette
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	summary += fmt.Sprintf("Max alters: %d, Categories: %d, Idle timeout: %s",
		c.Elicitation.MaxAlters, len(c.Elicitation.Categories), c.Sessions.IdleTimeout.Duration())
	if c.Debug {
		summary += ", strict assertions on"
	}
	return summary
}
