package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"ngram/internal/split"

	"github.com/klauspost/compress/zstd"
)

func TestCompressRoundTrip(t *testing.T) {
	for _, c := range []Compression{Zstd, Brotli} {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "words.txt")
			writeFile(t, path, []byte(sample))

			out, err := Compress(path, c, false)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}
			if out != path+c.Ext() {
				t.Fatalf("expected %s, got %s", path+c.Ext(), out)
			}
			if Detect(out) != c {
				t.Fatalf("expected %s to be detected as %v", out, c)
			}
			if got := readAll(t, out); got != sample {
				t.Fatalf("round trip: got %q, want %q", got, sample)
			}
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("original should be kept: %v", err)
			}
		})
	}
}

func TestCompressRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	writeFile(t, path, []byte(sample))

	out, err := Compress(path, Zstd, true)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected original removed, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != filepath.Base(out) {
		t.Fatalf("expected only %s, got %v", filepath.Base(out), entries)
	}
}

func TestCompressRejectsCompressedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt.br")
	writeFile(t, path, nil)
	if _, err := Compress(path, Zstd, false); !errors.Is(err, ErrCompressed) {
		t.Fatalf("expected ErrCompressed, got %v", err)
	}
}

func TestCompressMissing(t *testing.T) {
	_, err := Compress(filepath.Join(t.TempDir(), "nope.txt"), Brotli, false)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{"zstd", Zstd, false},
		{"ZST", Zstd, false},
		{"brotli", Brotli, false},
		{"br", Brotli, false},
		{"gzip", None, true},
		{"", None, true},
	}
	for _, tt := range tests {
		got, err := ParseCompression(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%q: unexpected error state: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestCompressedSplittable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	writeFile(t, path, []byte(sample))

	zst, err := Compress(path, Zstd, false)
	if err != nil {
		t.Fatalf("compress zstd: %v", err)
	}
	br, err := Compress(path, Brotli, false)
	if err != nil {
		t.Fatalf("compress brotli: %v", err)
	}
	if !Splittable(zst) {
		t.Fatal("seekable zstd output should be splittable")
	}
	if Splittable(br) {
		t.Fatal("brotli output should not be splittable")
	}
}

// TestSeekableSplits checks that splits of a multi-frame seekable file cover
// the decompressed content, end on newlines and read back exactly.
func TestSeekableSplits(t *testing.T) {
	var buf bytes.Buffer
	for i := 0; buf.Len() < 3*seekableFrameSize; i++ {
		fmt.Fprintf(&buf, "word%d\n", i%997)
	}
	want := buf.Bytes()

	path := filepath.Join(t.TempDir(), "big.txt")
	writeFile(t, path, want)
	zst, err := Compress(path, Zstd, true)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	s, err := OpenSeekable(zst)
	if err != nil {
		t.Fatalf("open seekable: %v", err)
	}
	if s.Size() != int64(len(want)) {
		t.Fatalf("size: got %d, want %d", s.Size(), len(want))
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	splits, err := Splits(zst, 100_000, split.Newline)
	if err != nil {
		t.Fatalf("splits: %v", err)
	}
	if len(splits) < 2 {
		t.Fatalf("expected several splits, got %d", len(splits))
	}

	var got bytes.Buffer
	for i, sp := range splits {
		if i < len(splits)-1 && want[sp.End-1] != '\n' {
			t.Fatalf("split %d ends at %d, not after a newline", i, sp.End)
		}
		err := UseSplit(sp, func(r io.Reader) error {
			_, err := io.Copy(&got, r)
			return err
		})
		if err != nil {
			t.Fatalf("read split %d: %v", i, err)
		}
	}
	if !bytes.Equal(got.Bytes(), want) {
		t.Fatal("reassembled splits differ from the original content")
	}
}

func TestOpenSeekableRejectsPlainZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.zst")
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	writeFile(t, path, enc.EncodeAll([]byte(sample), nil))
	_ = enc.Close()

	if _, err := OpenSeekable(path); !errors.Is(err, ErrNotSeekable) {
		t.Fatalf("expected ErrNotSeekable, got %v", err)
	}
	if Splittable(path) {
		t.Fatal("plain zstd should not be splittable")
	}
	if got := readAll(t, path); got != sample {
		t.Fatalf("sequential read: got %q", got)
	}
}

func TestOpenAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	writeFile(t, path, []byte(sample))
	zst, err := Compress(path, Zstd, false)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	for _, p := range []string{path, zst} {
		ra, err := OpenAt(p)
		if err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
		var b [1]byte
		if _, err := ra.ReadAt(b[:], 4); err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if b[0] != sample[4] {
			t.Fatalf("%s: byte 4 is %q, want %q", p, b[0], sample[4])
		}
		if err := ra.Close(); err != nil {
			t.Fatalf("close %s: %v", p, err)
		}
	}

	if _, err := OpenAt(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
