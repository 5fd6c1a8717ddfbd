// Package config holds ngram's tunable settings.
//
// Settings come from three layers: built-in defaults, the optional config
// file in the home directory (see internal/config/file), and command-line
// flags. Later layers override earlier ones.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"ngram/internal/logging"
)

const (
	// DefaultCutoff is the minimum frequency for a word to get a token.
	DefaultCutoff = 400

	// DefaultBlock is the target split size for parallel work.
	DefaultBlock = 64 << 20 // 64 MiB

	// DefaultUnknown is written by decode in place of token 0.
	DefaultUnknown = "<unk>"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the full set of settings.
type Config struct {
	Cutoff    int32  `json:"cutoff"`
	Block     int64  `json:"block"`
	Workers   int    `json:"workers"`
	Unknown   string `json:"unknown"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Cutoff:    DefaultCutoff,
		Block:     DefaultBlock,
		Workers:   runtime.NumCPU(),
		Unknown:   DefaultUnknown,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Merge overlays the non-zero fields of o onto c.
func (c Config) Merge(o Config) Config {
	if o.Cutoff != 0 {
		c.Cutoff = o.Cutoff
	}
	if o.Block != 0 {
		c.Block = o.Block
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.Unknown != "" {
		c.Unknown = o.Unknown
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	return c
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Cutoff < 1 {
		return fmt.Errorf("%w: cutoff must be at least 1, got %d", ErrInvalidConfig, c.Cutoff)
	}
	if c.Block < 1 {
		return fmt.Errorf("%w: block must be at least 1, got %d", ErrInvalidConfig, c.Block)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
