// Package config reads and writes the asrnet YAML configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/FlavioCFOliveira/asrnet/internal/models"
	"github.com/FlavioCFOliveira/asrnet/internal/seqlen"
)

// Config represents the application configuration
type Config struct {
	// Model settings
	Model struct {
		Architecture       string `yaml:"architecture"`
		models.Hyperparams `yaml:",inline"`
	} `yaml:"model"`

	// Prediction settings
	Predict struct {
		// Frames is the length of the generated feature sequence, 0 disables
		// the prediction run.
		Frames int   `yaml:"frames"`
		Seed   int64 `yaml:"seed"`
	} `yaml:"predict"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Model defaults
	cfg.Model.Architecture = "final"
	cfg.Model.Hyperparams = models.DefaultHyperparams()

	// Prediction defaults
	cfg.Predict.Frames = 0
	cfg.Predict.Seed = 1

	return cfg
}

// Validate checks the settings that do not need a model to be built.
func (c *Config) Validate() error {
	known := false
	for _, name := range models.Names() {
		if name == c.Model.Architecture {
			known = true
			break
		}
	}
	if !known {
		return errors.Wrapf(seqlen.ErrInvalidConfiguration, "unknown architecture %q", c.Model.Architecture)
	}
	if err := c.Model.BorderMode.Validate(); err != nil {
		return err
	}
	if c.Predict.Frames < 0 {
		return errors.Wrapf(seqlen.ErrInvalidConfiguration, "predict frames must not be negative, got %d", c.Predict.Frames)
	}
	return nil
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config file %s", path)
	}
	return cfg, nil
}

// UserConfigName is the per-user configuration file in the home directory.
const UserConfigName = ".asrnetrc"

// SystemConfigPath is the system-wide configuration file.
var SystemConfigPath = "/etc/asrnet/config.yaml"

// LoadWithFallback attempts to load configuration from multiple locations
// Priority: explicit path > ~/.asrnetrc > /etc/asrnet/config.yaml > defaults
// The first file that exists is used; if it cannot be read, parsed or
// validated the error is returned instead of falling through.
func LoadWithFallback(explicitPath string) (*Config, error) {
	// If explicit path is provided, use it
	if explicitPath != "" {
		return Load(explicitPath)
	}

	// Try user config
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(homeDir, UserConfigName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return Load(userConfigPath)
		}
	}

	// Try system config
	if _, err := os.Stat(SystemConfigPath); err == nil {
		return Load(SystemConfigPath)
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}
