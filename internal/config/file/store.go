// Package file persists config.Config as a versioned JSON envelope:
//
//	{"version": 1, "config": { ... }}
//
// Writes are atomic via temp file + rename with round-trip validation.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ngram/internal/config"
)

const currentVersion = 1

// envelope is the versioned on-disk format.
type envelope struct {
	Version int            `json:"version"`
	Config  *config.Config `json:"config"`
}

// Store reads and writes one config file.
type Store struct {
	path string
}

// NewStore creates a store for the config file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the config file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the config file. Returns nil, nil if it does not exist.
func (s *Store) Load() (*config.Config, error) {
	data, err := os.ReadFile(filepath.Clean(s.path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if env.Version == 0 {
		return nil, fmt.Errorf("unversioned config file %s", s.path)
	}
	if env.Version > currentVersion {
		return nil, fmt.Errorf("config file version %d is newer than supported version %d", env.Version, currentVersion)
	}
	return env.Config, nil
}

// Resolve returns the defaults overlaid with the file's settings.
func (s *Store) Resolve() (config.Config, error) {
	cfg := config.Default()
	stored, err := s.Load()
	if err != nil {
		return cfg, err
	}
	if stored != nil {
		cfg = cfg.Merge(*stored)
	}
	return cfg, nil
}

// Save atomically writes cfg to disk.
func (s *Store) Save(cfg config.Config) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	env := envelope{Version: currentVersion, Config: &cfg}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	// Round-trip validation: re-read and verify valid JSON.
	check, err := os.ReadFile(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("read-back temp file: %w", err)
	}
	var verify envelope
	if err := json.Unmarshal(check, &verify); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("round-trip validation failed: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename config file: %w", err)
	}
	return nil
}
