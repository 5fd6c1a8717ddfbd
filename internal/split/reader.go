package split

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

var ErrClosed = errors.New("split reader is closed")

// Reader reads one Split. It never returns bytes at or past the split's End,
// whatever the size of the buffer passed to Read.
type Reader struct {
	src    io.Reader
	closer io.Closer
	cursor int64
	end    int64
}

// Open opens the split's source file with its own handle positioned at Start.
// The caller must Close the reader.
func (s Split) Open() (*Reader, error) {
	f, err := os.Open(filepath.Clean(s.Name))
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(s.Start, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Reader{src: f, closer: f, cursor: s.Start, end: s.End}, nil
}

// OpenFrom positions src at Start and reads the split from it. src stays
// owned by the caller; closing the Reader does not close src.
func (s Split) OpenFrom(src io.ReadSeeker) (*Reader, error) {
	if _, err := src.Seek(s.Start, io.SeekStart); err != nil {
		return nil, err
	}
	return &Reader{src: src, cursor: s.Start, end: s.End}, nil
}

// Use opens the split, hands the reader to fn and closes it on every path.
// A close error is returned only when fn succeeded.
func (s Split) Use(fn func(r io.Reader) error) (err error) {
	rd, err := s.Open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rd.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(rd)
}

// Read reads at most End - cursor bytes. It returns io.EOF once the cursor
// reaches End.
func (r *Reader) Read(p []byte) (int, error) {
	if r.src == nil {
		return 0, ErrClosed
	}
	remaining := r.end - r.cursor
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.src.Read(p)
	r.cursor += int64(n)
	return n, err
}

// Offset returns the source offset of the next byte Read will return.
func (r *Reader) Offset() int64 {
	return r.cursor
}

// Remaining returns the number of bytes left in the split.
func (r *Reader) Remaining() int64 {
	return max(r.end-r.cursor, 0)
}

// Close releases the reader's file handle, if it owns one. Closing twice is
// a no-op.
func (r *Reader) Close() error {
	r.src = nil
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
