// Package vocab counts word frequencies in newline-delimited corpora and
// ranks them for dictionary construction.
//
// Every line is one word. The line terminator ("\n" or "\r\n") is not part of
// the word; a final line without a terminator still counts.
package vocab

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"io"
	"math"
	"slices"
	"strings"

	"ngram/internal/dict"
)

// ctxCheckInterval is how many lines are counted between context checks.
const ctxCheckInterval = 1 << 12

// Counts holds word frequencies and the number of lines they came from.
type Counts struct {
	Words map[string]int64
	Lines int64
}

// NewCounts returns empty counts.
func NewCounts() *Counts {
	return &Counts{Words: make(map[string]int64)}
}

// Add counts one occurrence of word.
func (c *Counts) Add(word string) {
	c.Words[word]++
	c.Lines++
}

// Merge adds o into c.
func (c *Counts) Merge(o *Counts) {
	for w, n := range o.Words {
		c.Words[w] += n
	}
	c.Lines += o.Lines
}

// Count counts the lines of r.
func Count(r io.Reader) (*Counts, error) {
	return count(context.Background(), r)
}

func count(ctx context.Context, r io.Reader) (*Counts, error) {
	c := NewCounts()
	err := EachLine(r, func(line string) error {
		c.Add(line)
		if c.Lines%ctxCheckInterval == 0 {
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// EachLine calls fn with every line of r, terminator stripped.
func EachLine(r io.Reader, fn func(line string) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if ferr := fn(TrimEOL(line)); ferr != nil {
				return ferr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// TrimEOL strips one trailing "\n" or "\r\n".
func TrimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// Rank orders the words by descending frequency, ties broken by word so the
// result is deterministic. Frequencies above math.MaxInt32 are clamped.
func Rank(c *Counts) []dict.Ranked {
	out := make([]dict.Ranked, 0, len(c.Words))
	for w, n := range c.Words {
		out = append(out, dict.Ranked{Word: w, Freq: int32(min(n, math.MaxInt32))})
	}
	slices.SortFunc(out, func(a, b dict.Ranked) int {
		if a.Freq != b.Freq {
			return cmp.Compare(b.Freq, a.Freq)
		}
		return cmp.Compare(a.Word, b.Word)
	})
	return out
}
