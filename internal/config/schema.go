package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version     int               `yaml:"version"`
	Debug       bool              `yaml:"debug"`
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Elicitation ElicitationConfig `yaml:"elicitation"`
	Export      ExportConfig      `yaml:"export"`
	Sessions    SessionsConfig    `yaml:"sessions"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout    Duration `yaml:"write_timeout,omitempty"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout,omitempty"`
}

// DatabaseConfig holds database settings. ":memory:" keeps sessions for the
// lifetime of the process only.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ElicitationConfig holds the questionnaire settings
type ElicitationConfig struct {
	MaxAlters       int              `yaml:"max_alters"`
	RespondentLabel string           `yaml:"respondent_label"`
	Categories      []CategoryConfig `yaml:"categories,omitempty"`
}

// CategoryConfig is one option of the categorical stage
type CategoryConfig struct {
	Text  string `yaml:"text"`
	Color string `yaml:"color"`
}

// ExportConfig holds export settings. A non-empty pseudonym key replaces
// session IDs in exported documents with a keyed hash.
type ExportConfig struct {
	PseudonymKey string `yaml:"pseudonym_key,omitempty"`
}

// SessionsConfig holds in-memory session settings
type SessionsConfig struct {
	IdleTimeout Duration `yaml:"idle_timeout,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
