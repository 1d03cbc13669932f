// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: environment variables > config file > defaults.
//
// The sampling cadence is fixed and intentionally not configurable.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up next to the plugin binary.
const FileName = "vitalis-deck.yaml"

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "5s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all plugin configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Host    HostConfig    `yaml:"host"`
	Push    PushConfig    `yaml:"push"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// HostConfig holds the host websocket transport settings.
type HostConfig struct {
	Address      string   `yaml:"address"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// PushConfig bounds the fire-and-forget title pushes.
type PushConfig struct {
	MaxInFlight int `yaml:"max_in_flight"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Host: HostConfig{
			Address:      "127.0.0.1",
			WriteTimeout: Duration{5 * time.Second},
		},
		Push: PushConfig{
			MaxInFlight: 64,
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take highest precedence and override values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// pluginDirPaths returns the config path beside the executable. Hosts launch
// plugins from their install directory, so this is checked first.
func pluginDirPaths() []string {
	exe, err := os.Executable()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(filepath.Dir(exe), FileName)}
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("VD_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if file := os.Getenv("VD_LOG_FILE"); file != "" {
		cfg.Logging.File = file
	}
	if addr := os.Getenv("VD_HOST_ADDRESS"); addr != "" {
		cfg.Host.Address = addr
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	if c.Host.Address == "" {
		errs = append(errs, errors.New("host address is required"))
	}
	if c.Host.WriteTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("host write timeout must be positive (got %s)", c.Host.WriteTimeout.Duration))
	}
	if c.Push.MaxInFlight < 1 {
		errs = append(errs, fmt.Errorf("push max_in_flight must be at least 1 (got %d)", c.Push.MaxInFlight))
	}
	return errors.Join(errs...)
}
