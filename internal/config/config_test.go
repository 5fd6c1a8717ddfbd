package config

import (
	"errors"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Cutoff != DefaultCutoff || cfg.Block != DefaultBlock || cfg.Unknown != DefaultUnknown {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Workers < 1 {
		t.Fatalf("workers must default to at least 1, got %d", cfg.Workers)
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	got := base.Merge(Config{Cutoff: 5, LogFormat: "json"})

	if got.Cutoff != 5 || got.LogFormat != "json" {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Block != base.Block || got.Workers != base.Workers || got.Unknown != base.Unknown || got.LogLevel != base.LogLevel {
		t.Fatalf("zero fields overrode defaults: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cutoff", func(c *Config) { c.Cutoff = 0 }},
		{"negative block", func(c *Config) { c.Block = -1 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }},
		{"bad format", func(c *Config) { c.LogFormat = "yaml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
