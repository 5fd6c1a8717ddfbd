package dict

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"

	"ngram/internal/token"
)

// Dictionary file layout, a sequence of records until end of file:
//
//	token (2, LE) | frequency (4, LE signed) | wordLen (1) | word (wordLen bytes, UTF-8)
//
// Frequency is informational and ignored by Load. Store assigns tokens in
// file order starting at 1.
const (
	tokenSize    = 2
	freqSize     = 4
	wordLenSize  = 1
	recordHeader = tokenSize + freqSize + wordLenSize

	// MaxWordLen is the longest word, in bytes, a record can hold.
	MaxWordLen = 255
)

var (
	ErrInvalidData = errors.New("invalid dictionary data")
	ErrWordTooLong = errors.New("word longer than 255 bytes")
)

// Load reads records from r until size bytes have been consumed. A record
// that does not fit in the remaining bytes, invalid UTF-8, or a record that
// breaks a dictionary invariant is reported as ErrInvalidData.
func Load(r io.Reader, size int64) (*Dictionary, error) {
	br := bufio.NewReader(io.LimitReader(r, size))
	d := New()

	var hdr [recordHeader]byte
	var word []byte
	var offset int64
	for offset < size {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			return nil, readErr(offset, err)
		}
		tok := token.Token(binary.LittleEndian.Uint16(hdr[0:tokenSize]))
		n := int(hdr[tokenSize+freqSize])

		word = slices.Grow(word[:0], n)[:n]
		if _, err := io.ReadFull(br, word); err != nil {
			return nil, readErr(offset, err)
		}
		if !utf8.Valid(word) {
			return nil, fmt.Errorf("%w: record at offset %d: word is not valid UTF-8", ErrInvalidData, offset)
		}
		if err := d.Insert(string(word), tok); err != nil {
			return nil, fmt.Errorf("%w: record at offset %d: %w", ErrInvalidData, offset, err)
		}
		offset += int64(recordHeader + n)
	}
	return d, nil
}

// readErr classifies a failed record read. Running out of input inside a
// record is a format error; anything else is an I/O error from the source.
func readErr(offset int64, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: record at offset %d truncated: %w", ErrInvalidData, offset, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("read record at offset %d: %w", offset, err)
}

// LoadFile loads the dictionary stored at path.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Load(f, info.Size())
}

// Ranked is a word with its corpus frequency.
type Ranked struct {
	Word string
	Freq int32
}

// StoreStats summarises a Store call.
type StoreStats struct {
	Entries int   // records written
	Mass    int64 // sum of the written frequencies
}

// Retained returns how many leading entries of ranked Store keeps: it stops
// at the first entry below cutoff, and never assigns a token above
// token.Max.
func Retained(ranked []Ranked, cutoff int32) int {
	n := 0
	for n < len(ranked) && n < int(token.Max) && ranked[n].Freq >= cutoff {
		n++
	}
	return n
}

// Store writes the retained prefix of ranked (see Retained) to w, assigning
// tokens 1, 2, 3... in order. ranked must be sorted by descending frequency.
// Every retained word is validated before anything is written, so a failed
// Store leaves w untouched.
func Store(w io.Writer, ranked []Ranked, cutoff int32) (StoreStats, error) {
	kept := ranked[:Retained(ranked, cutoff)]

	seen := make(map[string]struct{}, len(kept))
	for _, e := range kept {
		if len(e.Word) > MaxWordLen {
			return StoreStats{}, fmt.Errorf("%w: %d bytes", ErrWordTooLong, len(e.Word))
		}
		if !utf8.ValidString(e.Word) {
			return StoreStats{}, fmt.Errorf("%w: word %q is not valid UTF-8", ErrInvalidData, e.Word)
		}
		if _, ok := seen[e.Word]; ok {
			return StoreStats{}, fmt.Errorf("%w: word %q", ErrDuplicate, e.Word)
		}
		seen[e.Word] = struct{}{}
	}

	bw := bufio.NewWriter(w)
	var hdr [recordHeader]byte
	var stats StoreStats
	for i, e := range kept {
		binary.LittleEndian.PutUint16(hdr[0:tokenSize], uint16(i+1))
		binary.LittleEndian.PutUint32(hdr[tokenSize:tokenSize+freqSize], uint32(e.Freq))
		hdr[tokenSize+freqSize] = byte(len(e.Word))
		if _, err := bw.Write(hdr[:]); err != nil {
			return stats, fmt.Errorf("write record header: %w", err)
		}
		if _, err := bw.WriteString(e.Word); err != nil {
			return stats, fmt.Errorf("write word: %w", err)
		}
		stats.Entries++
		stats.Mass += int64(e.Freq)
	}
	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("flush dictionary: %w", err)
	}
	return stats, nil
}

// StoreFile stores the dictionary at path, atomically replacing any existing
// file via temp-file-then-rename.
func StoreFile(path string, ranked []Ranked, cutoff int32) (StoreStats, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dict-*")
	if err != nil {
		return StoreStats{}, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	stats, err := Store(tmp, ranked, cutoff)
	if err != nil {
		cleanup()
		return StoreStats{}, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return StoreStats{}, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return StoreStats{}, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return StoreStats{}, err
	}
	return stats, nil
}
