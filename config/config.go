// Package config loads the catalog CLI's TOML configuration and builds its logger.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultPath is read when no --config flag is given and the file exists.
const DefaultPath = "library.toml"

var (
	ErrMissingConfig = errors.New("configuration not found")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Catalog CatalogConfig `toml:"catalog"`
	Shell   ShellConfig   `toml:"shell"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Timestamps bool   `toml:"timestamps"`
}

type CatalogConfig struct {
	Seed string `toml:"seed"`
}

type ShellConfig struct {
	Prompt string `toml:"prompt"`
}

// LoadConfig reads and parses a TOML configuration file from path.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Resolve loads path when given. Otherwise it loads DefaultPath if present and
// falls back to the embedded defaults.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	}
	config, err := LoadConfig(DefaultPath)
	if errors.Is(err, ErrMissingConfig) {
		return DefaultConfig(), nil
	}
	return config, err
}

// DefaultConfig returns the configuration embedded in config.example.toml.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile writes the embedded example config to path. It refuses to
// overwrite an existing file.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.WriteFile(path, exampleConf, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks values that cannot be enforced by the TOML schema.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// NewLogger creates a [log.Logger] writing to w at the configured level.
// The writer defaults to [os.Stderr]; an unparsable level falls back to info.
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: c.Log.Timestamps,
		Level:           level,
		Prefix:          "library",
	})
}
