// Package plan persists a split computation so that independent processes
// can each take one range of a corpus file without rescanning it.
//
// File layout:
//
//	header (4, format.TypeSplitPlan) | msgpack-encoded Plan
package plan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ngram/internal/corpus"
	"ngram/internal/format"
	"ngram/internal/split"

	"github.com/vmihailenco/msgpack/v5"
)

const currentVersion = 0x01

var (
	ErrInvalidPlan = errors.New("invalid split plan")
	ErrStalePlan   = errors.New("split plan does not match source")
)

// Range is one [Start, End) split of the source.
type Range struct {
	Start int64 `msgpack:"s"`
	End   int64 `msgpack:"e"`
}

// Plan is the persisted form of a split computation.
type Plan struct {
	Source    string  `msgpack:"source"`
	Size      int64   `msgpack:"size"`
	Block     int64   `msgpack:"block"`
	Delimiter byte    `msgpack:"delimiter"`
	Ranges    []Range `msgpack:"ranges"`
}

// Compute splits the file at path on delimiter and returns the plan. Seekable
// zstd files are planned over their decompressed content.
func Compute(path string, block int64, delimiter byte) (Plan, error) {
	if !corpus.Splittable(path) {
		return Plan{}, fmt.Errorf("%w: %s cannot be split", ErrInvalidPlan, path)
	}
	splits, err := corpus.Splits(path, block, split.Delimiter(delimiter))
	if err != nil {
		return Plan{}, err
	}
	p := Plan{
		Source:    path,
		Size:      splits[len(splits)-1].End,
		Block:     block,
		Delimiter: delimiter,
		Ranges:    make([]Range, len(splits)),
	}
	for i, s := range splits {
		p.Ranges[i] = Range{Start: s.Start, End: s.End}
	}
	return p, nil
}

// Validate checks that the ranges cover [0, Size) contiguously.
func (p Plan) Validate() error {
	if len(p.Ranges) == 0 {
		return fmt.Errorf("%w: no ranges", ErrInvalidPlan)
	}
	var next int64
	for i, r := range p.Ranges {
		if r.Start != next || r.End < r.Start {
			return fmt.Errorf("%w: range %d is [%d, %d), expected start %d", ErrInvalidPlan, i, r.Start, r.End, next)
		}
		next = r.End
	}
	if next != p.Size {
		return fmt.Errorf("%w: ranges end at %d, size is %d", ErrInvalidPlan, next, p.Size)
	}
	return nil
}

// Check validates p and verifies it was computed for a source of size bytes.
func (p Plan) Check(size int64) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Size != size {
		return fmt.Errorf("%w: planned %d bytes, source has %d", ErrStalePlan, p.Size, size)
	}
	return nil
}

// Verify checks that every range but the last ends on the plan's delimiter
// in src. A plan applied to content it was not computed for fails with
// ErrStalePlan.
func (p Plan) Verify(src io.ReaderAt) error {
	if err := p.Validate(); err != nil {
		return err
	}
	var b [1]byte
	for i, r := range p.Ranges[:len(p.Ranges)-1] {
		if r.End == r.Start {
			return fmt.Errorf("%w: range %d is empty", ErrInvalidPlan, i)
		}
		n, err := src.ReadAt(b[:], r.End-1)
		if n < 1 {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("read end of range %d: %w", i, err)
		}
		if b[0] != p.Delimiter {
			return fmt.Errorf("%w: range %d ends at %d on %q, not %q", ErrStalePlan, i, r.End, b[0], p.Delimiter)
		}
	}
	return nil
}

// Splits returns the ranges as splits of the plan's source.
func (p Plan) Splits() []split.Split {
	out := make([]split.Split, len(p.Ranges))
	for i, r := range p.Ranges {
		out[i] = split.Split{Name: p.Source, Start: r.Start, End: r.End}
	}
	return out
}

// Write writes p to w.
func Write(w io.Writer, p Plan) error {
	h := format.Header{Type: format.TypeSplitPlan, Version: currentVersion}
	hdr := h.Encode()
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := msgpack.NewEncoder(w).Encode(&p); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	return nil
}

// Read reads and validates a plan.
func Read(r io.Reader) (Plan, error) {
	var hdr [format.HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Plan{}, fmt.Errorf("split plan: %w", format.ErrHeaderTooSmall)
		}
		return Plan{}, err
	}
	if _, err := format.DecodeAndValidate(hdr[:], format.TypeSplitPlan, currentVersion); err != nil {
		return Plan{}, fmt.Errorf("split plan: %w", err)
	}

	var p Plan
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// WriteFile writes p to path via temp-file-then-rename.
func WriteFile(path string, p Plan) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".plan-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := Write(tmp, p); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// ReadFile reads the plan stored at path.
func ReadFile(path string) (Plan, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Plan{}, err
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}
