package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	seekable "github.com/SaveTheRbtz/zstd-seekable-format-go/pkg"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

var ErrCompressed = errors.New("input is already compressed")

// ParseCompression parses a codec name: "zstd" ("zst") or "brotli" ("br").
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "zstd", "zst":
		return Zstd, nil
	case "brotli", "br":
		return Brotli, nil
	default:
		return None, fmt.Errorf("unknown compression %q (want zstd or brotli)", s)
	}
}

// Ext returns the extension Compress appends for c.
func (c Compression) Ext() string {
	switch c {
	case Zstd:
		return ".zst"
	case Brotli:
		return ".br"
	default:
		return ""
	}
}

// Compress writes path compressed with c to the sibling path+c.Ext() and
// returns the sibling's name. zstd output is seekable, so it stays
// splittable. The sibling is replaced atomically. The original is removed
// afterwards when remove is set.
func Compress(path string, c Compression, remove bool) (string, error) {
	if c == None {
		return "", fmt.Errorf("compress %s: no compression selected", path)
	}
	if Detect(path) != None {
		return "", fmt.Errorf("%w: %s", ErrCompressed, path)
	}

	src, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	out := path + c.Ext()
	tmp, err := os.CreateTemp(filepath.Dir(out), ".compress-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	if err := encode(tmp, src, c); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("compress %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, out); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	if remove {
		if err := os.Remove(path); err != nil {
			return out, err
		}
	}
	return out, nil
}

func encode(dst io.Writer, src io.Reader, c Compression) error {
	if c == Zstd {
		return encodeSeekable(dst, src)
	}
	w := brotli.NewWriterLevel(dst, brotli.DefaultCompression)
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// encodeSeekable writes src as seekable zstd: every seekableFrameSize bytes
// become an independent frame, and a seek table is appended.
func encodeSeekable(dst io.Writer, src io.Reader) error {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	defer func() { _ = enc.Close() }()

	sw, err := seekable.NewWriter(dst, enc)
	if err != nil {
		return err
	}
	buf := make([]byte, seekableFrameSize)
	for {
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			if _, werr := sw.Write(buf[:n]); werr != nil {
				_ = sw.Close()
				return werr
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			_ = sw.Close()
			return err
		}
	}
	return sw.Close()
}
