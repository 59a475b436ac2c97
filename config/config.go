// Package config loads client configuration for llmstream from YAML with
// environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/llmstream/logging"
)

// Config is the root configuration for a streaming client.
type Config struct {
	Providers ProvidersConfig `yaml:"providers"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ProvidersConfig holds per-provider API credentials.
type ProvidersConfig struct {
	OpenAIKey    string `yaml:"openai_key"`
	AnthropicKey string `yaml:"anthropic_key"`
}

// DefaultsConfig holds default generation parameters.
type DefaultsConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// DefaultConfig returns a baseline configuration suitable for local use.
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML config file, layering it over DefaultConfig and applying
// environment overrides. A missing path returns the defaults (with env
// overrides) rather than an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays secrets from the environment so keys never need to live
// in the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Providers.OpenAIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Providers.AnthropicKey = v
	}
}

// Logger builds a structured logger from the logging section.
func (c *Config) Logger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(c.Logging.Level),
		Format: c.Logging.Format,
		Output: os.Stderr,
	})
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Defaults.Provider {
	case "", "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown provider %q", c.Defaults.Provider)
	}
	if c.Defaults.Temperature < 0 || c.Defaults.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", c.Defaults.Temperature)
	}
	if c.Defaults.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative")
	}
	return nil
}
