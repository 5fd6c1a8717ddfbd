// Package corpus opens corpus input files.
//
// Inputs may be plain text or compressed with zstd (.zst) or brotli (.br).
// Plain files and seekable zstd files can be split for parallel work; other
// compressed inputs are read sequentially.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies how an input file is encoded.
type Compression int

const (
	None Compression = iota
	Zstd
	Brotli
)

func (c Compression) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case Brotli:
		return "brotli"
	default:
		return "none"
	}
}

var ErrNoMatch = errors.New("pattern matched no files")

// Detect infers the compression of path from its extension.
func Detect(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".br":
		return Brotli
	default:
		return None
	}
}

// Open opens path and returns its decompressed content.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	switch Detect(path) {
	case Zstd:
		if s, err := OpenSeekable(path); err == nil {
			_ = f.Close()
			return s, nil
		}
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("open zstd stream %s: %w", path, err)
		}
		return &readCloser{Reader: dec, close: func() error {
			dec.Close()
			return f.Close()
		}}, nil
	case Brotli:
		return &readCloser{Reader: brotli.NewReader(f), close: f.Close}, nil
	default:
		return f, nil
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error { return r.close() }

// Expand resolves each pattern with doublestar globbing (so "corpus/**/*.txt"
// works) and returns the matches in order without duplicates. A pattern that
// matches nothing is an error.
func Expand(patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, p)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}
