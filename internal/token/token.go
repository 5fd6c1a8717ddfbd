// Package token defines corpus token identifiers and their variable-width
// wire encoding.
//
// Wire layout:
//
//	0..127       one byte:  0ttttttt
//	128..16509   two bytes: 1lllllll 1hhhhhhh   (l = token & 0x7F, h = token >> 7)
//
// The stream is self-delimiting: the high bit of the first byte tells whether
// a second byte follows. Tokens 16384..16509 have h = 128, which does not fit
// in seven bits, so their second byte is 0x80. A two-byte code never carries
// page 0, and the decoder reads that page as 128.
package token

import (
	"errors"
	"fmt"
	"io"
)

// Token is a 16-bit word identifier. Zero is the unknown word.
type Token uint16

const (
	// Unknown is the token assigned to words missing from a dictionary.
	Unknown Token = 0

	// Limit is the first token value the codec cannot represent.
	Limit = 16510

	// Max is the largest encodable token.
	Max Token = Limit - 1

	// MaxLen is the longest code in bytes.
	MaxLen = 2

	continuation = 0x80
	payloadMask  = 0x7F
	pageShift    = 7
	overflowPage = 128
)

var (
	ErrOutOfRange = errors.New("token out of range")
	ErrTruncated  = fmt.Errorf("truncated token: %w", io.ErrUnexpectedEOF)
)

// Len returns the encoded size of t, or 0 if t cannot be encoded.
func Len(t Token) int {
	switch {
	case t < continuation:
		return 1
	case t < Limit:
		return 2
	default:
		return 0
	}
}

// Append appends the code for t to dst. dst is returned unchanged on error.
func Append(dst []byte, t Token) ([]byte, error) {
	switch {
	case t < continuation:
		return append(dst, byte(t)), nil
	case t < Limit:
		return append(dst, continuation|byte(t&payloadMask), continuation|byte(t>>pageShift)), nil
	default:
		return dst, fmt.Errorf("%w: %d", ErrOutOfRange, t)
	}
}

// Write writes the code for t to w in a single call. Nothing is written when
// t is out of range.
func Write(w io.Writer, t Token) error {
	var buf [MaxLen]byte
	code, err := Append(buf[:0], t)
	if err != nil {
		return err
	}
	_, err = w.Write(code)
	return err
}

// Decode decodes the code at the start of buf and returns the token and the
// number of bytes consumed. It returns io.EOF for an empty buf and
// ErrTruncated when buf ends inside a two-byte code.
func Decode(buf []byte) (Token, int, error) {
	if len(buf) == 0 {
		return 0, 0, io.EOF
	}
	if buf[0]&continuation == 0 {
		return Token(buf[0]), 1, nil
	}
	if len(buf) < 2 {
		return 0, 0, ErrTruncated
	}
	return combine(buf[0], buf[1]), 2, nil
}

// Read reads one code from r. A clean end of stream before the first byte is
// io.EOF; running out after the first byte of a two-byte code is ErrTruncated.
// Other errors from r are returned unchanged.
func Read(r io.ByteReader) (Token, error) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b0&continuation == 0 {
		return Token(b0), nil
	}
	b1, err := r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrTruncated
		}
		return 0, err
	}
	return combine(b0, b1), nil
}

func combine(b0, b1 byte) Token {
	page := Token(b1 & payloadMask)
	if page == 0 {
		page = overflowPage
	}
	return page<<pageShift | Token(b0&payloadMask)
}
