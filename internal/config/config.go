// Package config loads skillforge configuration from .forge/config.yaml
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all skillforge configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Gemini backend configuration
	Gemini GeminiConfig `yaml:"gemini"`

	// Optimizer search knobs
	Optimizer OptimizerConfig `yaml:"optimizer"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeminiConfig configures the text-generation backend.
type GeminiConfig struct {
	// Binary is the Gemini CLI binary path used when no API key is set.
	Binary string `yaml:"binary"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
	// Timeout bounds a single generation call (adapter rollout or
	// reflection proposal).
	Timeout string `yaml:"timeout"`
	// ReflectionTimeout bounds reflection calls, which carry much smaller
	// prompts than adapter rollouts.
	ReflectionTimeout string `yaml:"reflection_timeout"`
}

// OptimizerConfig configures the instruction search.
type OptimizerConfig struct {
	// Breadth is the number of candidate instructions proposed per round.
	Breadth int `yaml:"breadth"`
	// Depth is the number of refinement rounds.
	Depth int `yaml:"depth"`
	// MaxRollouts caps the training contexts consumed per run.
	MaxRollouts int `yaml:"max_rollouts"`
}

// LoggingConfig controls the categorized file logging in internal/logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "skillforge",
		Version: "0.3.0",

		Gemini: GeminiConfig{
			Binary:            "gemini",
			Timeout:           "300s",
			ReflectionTimeout: "120s",
		},

		Optimizer: OptimizerConfig{
			Breadth:     3,
			Depth:       2,
			MaxRollouts: 10,
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads configuration from the given path, falling back to defaults
// when the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to the given path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv("SKILLFORGE_GEMINI_BINARY"); v != "" {
		c.Gemini.Binary = v
	}
}

// GetGenerationTimeout returns the parsed generation timeout.
func (c *Config) GetGenerationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.Timeout)
	if err != nil {
		return 300 * time.Second
	}
	return d
}

// GetReflectionTimeout returns the parsed reflection timeout.
func (c *Config) GetReflectionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Gemini.ReflectionTimeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// UseAPI reports whether the direct Gemini API should be used instead of
// the CLI binary.
func (c *Config) UseAPI() bool {
	return c.Gemini.APIKey != ""
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Optimizer.Breadth < 1 {
		return fmt.Errorf("optimizer breadth must be >= 1, got %d", c.Optimizer.Breadth)
	}
	if c.Optimizer.Depth < 1 {
		return fmt.Errorf("optimizer depth must be >= 1, got %d", c.Optimizer.Depth)
	}
	if c.Optimizer.MaxRollouts < 1 {
		return fmt.Errorf("optimizer max_rollouts must be >= 1, got %d", c.Optimizer.MaxRollouts)
	}
	if !c.UseAPI() && c.Gemini.Binary == "" {
		return fmt.Errorf("gemini binary is required when no API key is configured")
	}
	return nil
}
