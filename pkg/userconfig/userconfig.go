// Package userconfig provides user-level configuration for quill, stored in
// ~/.config/quill/config.yaml: backend endpoint, model and UI preferences.
package userconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/quillhq/quill/pkg/paths"
)

// CurrentVersion is the current version of the user config format
const CurrentVersion = "v1"

// Defaults applied when the config file is missing or partial.
const (
	DefaultModel     = "gpt-4o-mini"
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
)

// Config represents the user-level quill configuration
type Config struct {
	// Version is the config format version
	Version string `yaml:"version,omitempty"`
	// BaseURL is the backend chat API endpoint. Empty means the provider
	// default.
	BaseURL string `yaml:"base_url,omitempty"`
	// Model is the model identifier sent with chat requests
	Model string `yaml:"model,omitempty"`
	// APIKeyEnv names the environment variable holding the API key
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	// Theme is the theme reference ("dark", "light", or a file under
	// ~/.config/quill/themes/<theme>.yaml)
	Theme string `yaml:"theme,omitempty"`
	// HideReasoning hides assistant reasoning blocks in the TUI
	HideReasoning bool `yaml:"hide_reasoning,omitempty"`
}

// Path returns the path to the config file
func Path() string {
	return filepath.Join(paths.GetConfigDir(), "config.yaml")
}

// Load loads the user configuration from the config file. A missing file is
// not an error: defaults are returned.
func Load() (*Config, error) {
	return loadFrom(Path())
}

func loadFrom(configPath string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			config.applyDefaults()
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = DefaultAPIKeyEnv
	}
}

// Save saves the configuration to the config file
func (c *Config) Save() error {
	return c.saveTo(Path())
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Ensure version is always set to current version when saving
	c.Version = CurrentVersion

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return atomic.WriteFile(path, bytes.NewReader(data))
}
