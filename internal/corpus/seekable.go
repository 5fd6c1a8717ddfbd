package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"ngram/internal/split"

	seekable "github.com/SaveTheRbtz/zstd-seekable-format-go/pkg"
	"github.com/klauspost/compress/zstd"
)

// seekableFrameSize is the uncompressed size of each independently
// decodable zstd frame that Compress writes.
const seekableFrameSize = 256 << 10 // 256 KB

var ErrNotSeekable = errors.New("not a seekable zstd file")

// seekDecoder is shared by all seekable readers; DecodeAll is safe for
// concurrent use.
var seekDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
})

// Seekable is random access to the decompressed content of a seekable zstd
// file. Only the frames covering the bytes read are decompressed.
type Seekable struct {
	seekable.Reader
	file *os.File
	size int64
}

// OpenSeekable opens a seekable zstd file. Files without a seek table fail
// with ErrNotSeekable.
func OpenSeekable(path string) (*Seekable, error) {
	dec, err := seekDecoder()
	if err != nil {
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	r, err := seekable.NewReader(f, dec)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrNotSeekable, path, err)
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err == nil {
		_, err = r.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = r.Close()
		_ = f.Close()
		return nil, err
	}
	return &Seekable{Reader: r, file: f, size: size}, nil
}

// Size returns the decompressed size.
func (s *Seekable) Size() int64 {
	return s.size
}

// Close closes the reader and its file.
func (s *Seekable) Close() error {
	return errors.Join(s.Reader.Close(), s.file.Close())
}

// Splittable reports whether path can be read in independent byte ranges:
// plain files and seekable zstd files can, other compressed files cannot.
func Splittable(path string) bool {
	switch Detect(path) {
	case None:
		return true
	case Zstd:
		s, err := OpenSeekable(path)
		if err != nil {
			return false
		}
		_ = s.Close()
		return true
	default:
		return false
	}
}

// Splits computes the splits of a splittable file. Offsets of seekable zstd
// files refer to the decompressed content.
func Splits(path string, block int64, edge split.Edge) ([]split.Split, error) {
	if Detect(path) == None {
		return split.File(path, block, edge)
	}
	s, err := OpenSeekable(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()
	return split.Compute(s, s.Size(), path, block, edge)
}

// Size returns the content size of a splittable file: the file size of a
// plain file, the decompressed size of a seekable zstd file.
func Size(path string) (int64, error) {
	if Detect(path) == None {
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	}
	s, err := OpenSeekable(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = s.Close() }()
	return s.Size(), nil
}

// RandomAccess reads the content of a splittable file at arbitrary offsets.
type RandomAccess interface {
	io.ReaderAt
	io.Closer
}

// OpenAt opens a splittable file for random access. Offsets of seekable zstd
// files refer to the decompressed content.
func OpenAt(path string) (RandomAccess, error) {
	if Detect(path) != None {
		s, err := OpenSeekable(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// UseSplit is split.Split.Use for any splittable file: seekable zstd sources
// are opened through their own decompressing reader.
func UseSplit(s split.Split, fn func(r io.Reader) error) (err error) {
	if Detect(s.Name) == None {
		return s.Use(fn)
	}
	src, err := OpenSeekable(s.Name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := src.Close(); err == nil {
			err = cerr
		}
	}()
	rd, err := s.OpenFrom(src)
	if err != nil {
		return err
	}
	defer func() { _ = rd.Close() }()
	return fn(rd)
}
