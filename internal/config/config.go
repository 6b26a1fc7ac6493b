// Package config loads ollamachat configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (OLLAMACHAT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: OLLAMACHAT_PORT -> port, etc.
	if err := k.Load(env.Provider("OLLAMACHAT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "OLLAMACHAT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.OllamaURL == "" {
		return fmt.Errorf("ollama_url is required")
	}
	if !strings.HasPrefix(c.OllamaURL, "http://") && !strings.HasPrefix(c.OllamaURL, "https://") {
		return fmt.Errorf("ollama_url must be an http(s) URL, got %q", c.OllamaURL)
	}
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Context.TreeDepth < 0 || c.Context.ScanDepth < 0 {
		return fmt.Errorf("context depths must be non-negative")
	}
	if c.Context.MaxFileSize < 0 {
		return fmt.Errorf("context max_file_size must be non-negative")
	}
	return nil
}
