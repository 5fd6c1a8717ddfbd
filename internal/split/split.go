// Package split carves a byte source into contiguous, non-overlapping ranges
// whose boundaries sit just after a byte accepted by an Edge predicate.
//
// The ranges are computed by a single sequential scan. Each resulting Split
// is a plain value: opening it yields an independent Reader bounded to the
// range, so separate goroutines or processes can consume disjoint parts of
// one file without sharing any state.
package split

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Edge reports whether b may be the last byte of a range.
type Edge func(b byte) bool

// Newline accepts '\n', keeping lines whole.
func Newline(b byte) bool { return b == '\n' }

// Delimiter returns an Edge accepting the single byte d.
func Delimiter(d byte) Edge {
	return func(b byte) bool { return b == d }
}

var ErrInvalidBlock = errors.New("block size must be at least 1")

// Split is the half-open byte range [Start, End) of the source Name.
type Split struct {
	Name  string
	Start int64
	End   int64
}

// Len returns End - Start.
func (s Split) Len() int64 {
	return s.End - s.Start
}

// Compute scans src, which holds size bytes, and returns splits covering
// [0, size) in order. Each split except the last ends just after a byte
// accepted by edge; the scan for a boundary starts block-1 bytes past the
// previous boundary and walks forward, never backward. If no boundary is
// found the remainder becomes the last split. I/O errors are returned as is.
func Compute(src io.ReadSeeker, size int64, name string, block int64, edge Edge) ([]Split, error) {
	if block < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlock, block)
	}

	var splits []Split
	var start int64

	// cursor is always the offset of the next unread byte.
	cursor := block - 1
	if cursor >= size {
		return []Split{{Name: name, Start: 0, End: size}}, nil
	}

	br := bufio.NewReader(src)
	if err := seek(src, br, cursor); err != nil {
		return nil, err
	}
	for cursor < size {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		cursor++

		if !edge(b) {
			continue
		}
		splits = append(splits, Split{Name: name, Start: start, End: cursor})
		start = cursor
		cursor += block - 1
		if cursor >= size {
			break
		}
		if err := seek(src, br, cursor); err != nil {
			return nil, err
		}
	}
	splits = append(splits, Split{Name: name, Start: start, End: size})
	return splits, nil
}

// seek repositions src and drops whatever br had buffered.
func seek(src io.ReadSeeker, br *bufio.Reader, offset int64) error {
	if _, err := src.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	br.Reset(src)
	return nil
}

// File computes the splits of the file at path.
func File(path string, block int64, edge Edge) ([]Split, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Compute(f, info.Size(), path, block, edge)
}
