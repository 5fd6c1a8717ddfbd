package split

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
)

func computeBytes(t *testing.T, data []byte, block int64, edge Edge) []Split {
	t.Helper()
	splits, err := Compute(bytes.NewReader(data), int64(len(data)), "mem", block, edge)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return splits
}

func ranges(splits []Split) [][2]int64 {
	out := make([][2]int64, len(splits))
	for i, s := range splits {
		out[i] = [2]int64{s.Start, s.End}
	}
	return out
}

func TestComputeExample(t *testing.T) {
	data := []byte{1, 1, 1, 2, 1, 1, 1, 2, 1, 1, 1, 1, 2, 1, 1}
	splits := computeBytes(t, data, 4, Delimiter(2))

	want := [][2]int64{{0, 4}, {4, 8}, {8, 13}, {13, 15}}
	got := ranges(splits)
	if len(got) != len(want) {
		t.Fatalf("expected %d splits, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("split %d: got %v, want %v", i, got[i], want[i])
		}
		if splits[i].Name != "mem" {
			t.Fatalf("split %d: name %q", i, splits[i].Name)
		}
	}
}

func TestComputeSingleSplitWhenBlockCoversSource(t *testing.T) {
	data := []byte("a\nb\nc\n")
	never := func(byte) bool { return false }
	always := func(byte) bool { return true }

	for _, block := range []int64{int64(len(data)) + 1, int64(len(data)) + 100} {
		for _, edge := range []Edge{never, always, Newline} {
			got := ranges(computeBytes(t, data, block, edge))
			if len(got) != 1 || got[0] != [2]int64{0, int64(len(data))} {
				t.Fatalf("block %d: expected one split (0,%d), got %v", block, len(data), got)
			}
		}
	}
}

func TestComputeEmptySource(t *testing.T) {
	got := ranges(computeBytes(t, nil, 1, Newline))
	if len(got) != 1 || got[0] != [2]int64{0, 0} {
		t.Fatalf("expected one empty split, got %v", got)
	}
}

func TestComputeNoEdgeFound(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 50)
	got := ranges(computeBytes(t, data, 10, Newline))
	if len(got) != 1 || got[0] != [2]int64{0, 50} {
		t.Fatalf("expected the whole source as one split, got %v", got)
	}
}

func TestComputeEdgeOnLastByte(t *testing.T) {
	data := []byte("abc\n")
	got := ranges(computeBytes(t, data, 2, Newline))
	want := [][2]int64{{0, 4}, {4, 4}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestComputeLines(t *testing.T) {
	data := []byte("alpha\nbeta\ngamma\ndelta\nepsilon\n")
	splits := computeBytes(t, data, 8, Newline)
	for i, s := range splits[:len(splits)-1] {
		if data[s.End-1] != '\n' {
			t.Fatalf("split %d ends mid-line at %d", i, s.End)
		}
	}
}

func TestComputeInvalidBlock(t *testing.T) {
	for _, block := range []int64{0, -1} {
		_, err := Compute(bytes.NewReader([]byte("x")), 1, "mem", block, Newline)
		if !errors.Is(err, ErrInvalidBlock) {
			t.Fatalf("block %d: expected ErrInvalidBlock, got %v", block, err)
		}
	}
}

// TestComputeProperties checks coverage and boundary placement on random
// inputs: splits are contiguous from 0 to N, every split but the last ends
// on an edge byte, and that byte is the first edge at or after start+block-1.
func TestComputeProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for iter := 0; iter < 500; iter++ {
		n := rng.IntN(300)
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(rng.IntN(6))
		}
		block := int64(1 + rng.IntN(40))
		edge := Delimiter(0)

		splits := computeBytes(t, data, block, edge)
		if len(splits) == 0 {
			t.Fatalf("iter %d: no splits", iter)
		}
		if splits[0].Start != 0 || splits[len(splits)-1].End != int64(n) {
			t.Fatalf("iter %d: coverage %v for N=%d", iter, ranges(splits), n)
		}
		if block-1 >= int64(n) && len(splits) != 1 {
			t.Fatalf("iter %d: block %d >= N=%d but got %d splits", iter, block, n, len(splits))
		}
		for i, s := range splits {
			if s.Start > s.End {
				t.Fatalf("iter %d: split %d inverted: %v", iter, i, s)
			}
			if i > 0 && splits[i-1].End != s.Start {
				t.Fatalf("iter %d: gap or overlap at split %d: %v", iter, i, ranges(splits))
			}
			if i == len(splits)-1 {
				continue
			}
			if !edge(data[s.End-1]) {
				t.Fatalf("iter %d: split %d ends on non-edge byte %d", iter, i, data[s.End-1])
			}
			for p := s.Start + block - 1; p < s.End-1; p++ {
				if edge(data[p]) {
					t.Fatalf("iter %d: split %d skipped edge at %d (range %v, block %d)", iter, i, p, s, block)
				}
			}
		}
	}
}

// seekFailer fails every Seek.
type seekFailer struct {
	io.Reader
	err error
}

func (s seekFailer) Seek(int64, int) (int64, error) { return 0, s.err }

// readFailer fails every Read.
type readFailer struct {
	io.Seeker
	err error
}

func (r readFailer) Read([]byte) (int, error) { return 0, r.err }

func TestComputePropagatesIOErrors(t *testing.T) {
	boom := errors.New("boom")
	data := []byte("0123456789")

	_, err := Compute(seekFailer{Reader: bytes.NewReader(data), err: boom}, 10, "x", 3, Newline)
	if !errors.Is(err, boom) {
		t.Fatalf("seek: expected boom, got %v", err)
	}

	_, err = Compute(readFailer{Seeker: bytes.NewReader(data), err: boom}, 10, "x", 3, Newline)
	if !errors.Is(err, boom) {
		t.Fatalf("read: expected boom, got %v", err)
	}
}

func TestReaderClampsToEnd(t *testing.T) {
	data := []byte("0123456789")
	s := Split{Name: "mem", Start: 3, End: 7}

	r, err := s.OpenFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = r.Close() }()

	buf := make([]byte, 100)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "3456" {
		t.Fatalf("read %q, want %q", buf[:n], "3456")
	}
	if r.Offset() != 7 || r.Remaining() != 0 {
		t.Fatalf("offset %d remaining %d", r.Offset(), r.Remaining())
	}
	if n, err := r.Read(buf); n != 0 || err != io.EOF {
		t.Fatalf("read past end: n=%d err=%v", n, err)
	}
}

func TestReaderReadAll(t *testing.T) {
	data := []byte("abcdefghij")
	s := Split{Start: 2, End: 9}
	r, err := s.OpenFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if string(got) != "cdefghi" {
		t.Fatalf("got %q", got)
	}
}

func TestReaderClosed(t *testing.T) {
	r, err := Split{Start: 0, End: 3}.OpenFrom(bytes.NewReader([]byte("abc")))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := r.Read(make([]byte, 1)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestFileSplitsReassemble(t *testing.T) {
	var content bytes.Buffer
	for i := range 200 {
		content.WriteString("line ")
		content.WriteByte(byte('a' + i%26))
		content.WriteByte('\n')
	}
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, content.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	splits, err := File(path, 64, Newline)
	if err != nil {
		t.Fatalf("split file: %v", err)
	}
	if len(splits) < 2 {
		t.Fatalf("expected several splits, got %d", len(splits))
	}

	// Read every split from its own handle, out of order, and reassemble.
	parts := make([][]byte, len(splits))
	for i := len(splits) - 1; i >= 0; i-- {
		err := splits[i].Use(func(r io.Reader) error {
			b, err := io.ReadAll(r)
			parts[i] = b
			return err
		})
		if err != nil {
			t.Fatalf("split %d: %v", i, err)
		}
		if int64(len(parts[i])) != splits[i].Len() {
			t.Fatalf("split %d: read %d bytes, want %d", i, len(parts[i]), splits[i].Len())
		}
	}
	if got := bytes.Join(parts, nil); !bytes.Equal(got, content.Bytes()) {
		t.Fatal("reassembled splits differ from the source")
	}
}

func TestUseReturnsCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	boom := errors.New("worker failed")
	var seen *Reader
	err := Split{Name: path, Start: 0, End: 3}.Use(func(r io.Reader) error {
		seen = r.(*Reader)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if _, err := seen.Read(make([]byte, 1)); !errors.Is(err, ErrClosed) {
		t.Fatalf("reader not closed after failing callback: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Split{Name: filepath.Join(t.TempDir(), "nope")}.Open()
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
