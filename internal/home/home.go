// Package home manages the ngram home directory layout.
//
// Layout:
//
//	<root>/
//	  config.json                      (optional settings, see internal/config)
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir represents an ngram home directory.
type Dir struct {
	root string
}

// New creates a Dir with an explicit root path.
func New(root string) Dir {
	return Dir{root: root}
}

// Default returns a Dir using the platform-appropriate default location:
//   - Linux:   ~/.config/ngram
//   - macOS:   ~/Library/Application Support/ngram
//   - Windows: %APPDATA%/ngram
func Default() (Dir, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Dir{}, fmt.Errorf("determine config directory: %w", err)
	}
	return Dir{root: filepath.Join(base, "ngram")}, nil
}

// Resolve returns New(root) when root is set, otherwise Default().
func Resolve(root string) (Dir, error) {
	if root != "" {
		return New(root), nil
	}
	return Default()
}

// Root returns the home directory path.
func (d Dir) Root() string {
	return d.root
}

// ConfigPath returns the path to the config file.
func (d Dir) ConfigPath() string {
	return filepath.Join(d.root, "config.json")
}

// EnsureExists creates the home directory (and parents) if it doesn't exist.
func (d Dir) EnsureExists() error {
	if err := os.MkdirAll(d.root, 0o750); err != nil {
		return fmt.Errorf("create home directory %s: %w", d.root, err)
	}
	return nil
}
