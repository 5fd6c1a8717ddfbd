package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ngram/internal/corpus"
	"ngram/internal/dict"
	"ngram/internal/logging"
	"ngram/internal/plan"
	"ngram/internal/split"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// FileEncoder encodes corpus files, one split per worker.
type FileEncoder struct {
	dict    *dict.Dictionary
	logger  *slog.Logger
	block   int64
	workers int
}

// NewFileEncoder creates a FileEncoder. d must not be modified while the
// encoder is in use.
func NewFileEncoder(d *dict.Dictionary, logger *slog.Logger, block int64, workers int) *FileEncoder {
	logger = logging.Default(logger)
	return &FileEncoder{
		dict:    d,
		logger:  logger.With("component", "encoder"),
		block:   block,
		workers: max(workers, 1),
	}
}

// EncodeFile encodes in to out. Splittable inputs (plain and seekable zstd)
// are split on newlines and encoded in parallel; other compressed inputs are
// encoded sequentially.
func (e *FileEncoder) EncodeFile(ctx context.Context, in, out string) (Stats, error) {
	if !corpus.Splittable(in) {
		return e.encodeSequential(in, out)
	}
	splits, err := corpus.Splits(in, e.block, split.Newline)
	if err != nil {
		return Stats{}, fmt.Errorf("split %s: %w", in, err)
	}
	return e.EncodeSplits(ctx, splits, out)
}

// EncodePlan encodes the plan's source using its precomputed splits. The
// plan must be split on newlines, match the source's current size and end
// every range but the last on a newline of the source.
func (e *FileEncoder) EncodePlan(ctx context.Context, p plan.Plan, out string) (Stats, error) {
	if p.Delimiter != '\n' {
		return Stats{}, fmt.Errorf("%w: encoding needs newline splits, plan is split on %q", plan.ErrInvalidPlan, p.Delimiter)
	}
	size, err := corpus.Size(p.Source)
	if err != nil {
		return Stats{}, err
	}
	if err := p.Check(size); err != nil {
		return Stats{}, err
	}
	if err := verifyPlan(p); err != nil {
		return Stats{}, err
	}
	return e.EncodeSplits(ctx, p.Splits(), out)
}

func verifyPlan(p plan.Plan) error {
	src, err := corpus.OpenAt(p.Source)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()
	if err := p.Verify(src); err != nil {
		return fmt.Errorf("%s: %w", p.Source, err)
	}
	return nil
}

// EncodeSplits encodes each split into its own part file, then concatenates
// the parts in order into out. Part files are removed on every exit path and
// out is replaced atomically.
func (e *FileEncoder) EncodeSplits(ctx context.Context, splits []split.Split, out string) (Stats, error) {
	job := uuid.Must(uuid.NewV7()).String()
	logger := e.logger.With("job", job)
	started := time.Now()
	logger.Info("encode started", "splits", len(splits), "workers", e.workers, "output", out)

	dir := filepath.Dir(out)
	parts := make([]string, len(splits))
	for i := range splits {
		parts[i] = filepath.Join(dir, fmt.Sprintf(".%s.%05d.part", job, i))
	}
	defer func() {
		for _, p := range parts {
			_ = os.Remove(p)
		}
	}()

	results := make([]Stats, len(splits))
	progress := rate.Sometimes{First: 1, Interval: time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, s := range splits {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st, err := e.encodeSplit(s, parts[i])
			if err != nil {
				return fmt.Errorf("encode %s [%d, %d): %w", s.Name, s.Start, s.End, err)
			}
			results[i] = st
			progress.Do(func() {
				logger.Info("split encoded", "split", i, "of", len(splits), "lines", st.Lines)
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	err := writeAtomic(out, func(w io.Writer) error {
		for _, p := range parts {
			if err := appendFile(w, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("assemble %s: %w", out, err)
	}

	var total Stats
	for _, st := range results {
		total.add(st)
	}
	logger.Info("encode finished", "lines", total.Lines, "unknown", total.Unknown,
		"bytes", total.Bytes, "elapsed", time.Since(started))
	return total, nil
}

func (e *FileEncoder) encodeSplit(s split.Split, partPath string) (Stats, error) {
	var st Stats
	err := corpus.UseSplit(s, func(r io.Reader) error {
		f, err := os.Create(filepath.Clean(partPath))
		if err != nil {
			return err
		}
		st, err = EncodeStream(e.dict, r, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	})
	return st, err
}

func (e *FileEncoder) encodeSequential(in, out string) (Stats, error) {
	rc, err := corpus.Open(in)
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = rc.Close() }()

	var st Stats
	err = writeAtomic(out, func(w io.Writer) error {
		var encErr error
		st, encErr = EncodeStream(e.dict, rc, w)
		return encErr
	})
	if err != nil {
		return Stats{}, err
	}
	e.logger.Info("encode finished", "input", in, "compression", corpus.Detect(in),
		"lines", st.Lines, "unknown", st.Unknown, "bytes", st.Bytes)
	return st, nil
}

// DecodeFile decodes the token stream in to a word-per-line file out.
func DecodeFile(d *dict.Dictionary, in, out, unknown string) (Stats, error) {
	f, err := os.Open(filepath.Clean(in))
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = f.Close() }()

	var st Stats
	err = writeAtomic(out, func(w io.Writer) error {
		var decErr error
		st, decErr = DecodeStream(d, f, w, unknown)
		return decErr
	})
	return st, err
}

func appendFile(w io.Writer, path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}

// writeAtomic writes path through fn via temp-file-then-rename.
func writeAtomic(path string, fn func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ngram-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := fn(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
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
