package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Gemini.Binary != "gemini" {
		t.Errorf("Binary = %q", cfg.Gemini.Binary)
	}
	if cfg.Optimizer.Breadth != 3 || cfg.Optimizer.Depth != 2 || cfg.Optimizer.MaxRollouts != 10 {
		t.Errorf("optimizer defaults = %+v", cfg.Optimizer)
	}
	if cfg.GetGenerationTimeout() != 300*time.Second {
		t.Errorf("generation timeout = %v", cfg.GetGenerationTimeout())
	}
	if cfg.GetReflectionTimeout() != 120*time.Second {
		t.Errorf("reflection timeout = %v", cfg.GetReflectionTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gemini.Binary != "gemini" {
		t.Errorf("Binary = %q, want default", cfg.Gemini.Binary)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Gemini.Model = "gemini-2.5-pro"
	cfg.Optimizer.Breadth = 5
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", loaded.Gemini.Model)
	}
	if loaded.Optimizer.Breadth != 5 {
		t.Errorf("Breadth = %d", loaded.Optimizer.Breadth)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-env-model")
	t.Setenv("SKILLFORGE_GEMINI_BINARY", "/opt/bin/gemini")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Gemini.APIKey != "test-key" {
		t.Errorf("APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.Gemini.Model != "gemini-env-model" {
		t.Errorf("Model = %q", cfg.Gemini.Model)
	}
	if cfg.Gemini.Binary != "/opt/bin/gemini" {
		t.Errorf("Binary = %q", cfg.Gemini.Binary)
	}
	if !cfg.UseAPI() {
		t.Error("UseAPI() = false with API key set")
	}
}

func TestGetTimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gemini.Timeout = "not-a-duration"
	if cfg.GetGenerationTimeout() != 300*time.Second {
		t.Errorf("fallback timeout = %v", cfg.GetGenerationTimeout())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"zero breadth", func(c *Config) { c.Optimizer.Breadth = 0 }, true},
		{"zero depth", func(c *Config) { c.Optimizer.Depth = 0 }, true},
		{"zero rollouts", func(c *Config) { c.Optimizer.MaxRollouts = 0 }, true},
		{"no binary no key", func(c *Config) { c.Gemini.Binary = "" }, true},
		{"no binary with key", func(c *Config) { c.Gemini.Binary = ""; c.Gemini.APIKey = "k" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
