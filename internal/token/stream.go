package token

import (
	"bufio"
	"io"
)

// Encoder writes a buffered token stream. Call Flush when done.
type Encoder struct {
	w   *bufio.Writer
	n   int64
	buf [MaxLen]byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode appends the code for t to the stream.
func (e *Encoder) Encode(t Token) error {
	code, err := Append(e.buf[:0], t)
	if err != nil {
		return err
	}
	n, err := e.w.Write(code)
	e.n += int64(n)
	return err
}

// Flush writes any buffered codes to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// Written returns the number of code bytes accepted so far.
func (e *Encoder) Written() int64 {
	return e.n
}

// Decoder reads a token stream.
type Decoder struct {
	r io.ByteReader
}

// NewDecoder wraps r in a bufio.Reader unless it already implements
// io.ByteReader.
func NewDecoder(r io.Reader) *Decoder {
	if br, ok := r.(io.ByteReader); ok {
		return &Decoder{r: br}
	}
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode returns the next token. See Read for the error contract.
func (d *Decoder) Decode() (Token, error) {
	return Read(d.r)
}
