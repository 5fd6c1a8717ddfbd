package vocab

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ngram/internal/corpus"
	"ngram/internal/logging"
	"ngram/internal/split"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Counter counts corpus files, splitting plain files on line boundaries and
// counting the splits concurrently.
type Counter struct {
	logger  *slog.Logger
	block   int64
	workers int
}

// NewCounter creates a Counter. block is the target split size and workers
// caps the number of splits counted at once.
func NewCounter(logger *slog.Logger, block int64, workers int) *Counter {
	logger = logging.Default(logger)
	return &Counter{
		logger:  logger.With("component", "vocab"),
		block:   block,
		workers: max(workers, 1),
	}
}

// CountFiles counts every file in paths and merges the results.
func (c *Counter) CountFiles(ctx context.Context, paths []string) (*Counts, error) {
	total := NewCounts()
	for _, p := range paths {
		counts, err := c.CountFile(ctx, p)
		if err != nil {
			return nil, err
		}
		total.Merge(counts)
	}
	return total, nil
}

// CountFile counts one file. The result is the same as Count over the whole
// (decompressed) file.
func (c *Counter) CountFile(ctx context.Context, path string) (*Counts, error) {
	if !corpus.Splittable(path) {
		return c.countSequential(ctx, path)
	}

	splits, err := corpus.Splits(path, c.block, split.Newline)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", path, err)
	}
	c.logger.Debug("counting", "path", path, "splits", len(splits))

	results := make([]*Counts, len(splits))
	progress := rate.Sometimes{First: 1, Interval: time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, s := range splits {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := corpus.UseSplit(s, func(r io.Reader) error {
				counts, err := count(gctx, r)
				results[i] = counts
				return err
			})
			if err != nil {
				return fmt.Errorf("count %s [%d, %d): %w", path, s.Start, s.End, err)
			}
			progress.Do(func() {
				c.logger.Info("split counted", "path", path, "split", i, "of", len(splits))
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := NewCounts()
	for _, r := range results {
		total.Merge(r)
	}
	c.logger.Info("file counted", "path", path, "lines", total.Lines, "words", len(total.Words))
	return total, nil
}

func (c *Counter) countSequential(ctx context.Context, path string) (*Counts, error) {
	rc, err := corpus.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	counts, err := count(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", path, err)
	}
	c.logger.Info("file counted", "path", path, "compression", corpus.Detect(path), "lines", counts.Lines, "words", len(counts.Words))
	return counts, nil
}
