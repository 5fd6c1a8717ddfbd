// Package format provides the header shared by ngram's own binary files.
//
// The dictionary and the encoded token stream are headerless by contract;
// the header is used only by auxiliary files such as split plans.
package format

import "errors"

// Header layout (4 bytes):
//
//	signature (1 byte, 'n' = 0x6E)
//	type (1 byte, identifies format)
//	version (1 byte)
//	flags (1 byte, reserved)
//
// Type codes:
//
//	'p' = split plan
const (
	Signature  = 'n'
	HeaderSize = 4

	TypeSplitPlan = 'p'
)

var (
	ErrHeaderTooSmall    = errors.New("header too small")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrVersionMismatch   = errors.New("version mismatch")
)

// Header represents the common 4-byte header.
type Header struct {
	Type    byte
	Version byte
	Flags   byte
}

// Encode returns the header bytes.
func (h Header) Encode() [HeaderSize]byte {
	return [HeaderSize]byte{Signature, h.Type, h.Version, h.Flags}
}

// Decode reads a header from the start of buf.
func Decode(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrHeaderTooSmall
	}
	if buf[0] != Signature {
		return Header{}, ErrSignatureMismatch
	}
	return Header{
		Type:    buf[1],
		Version: buf[2],
		Flags:   buf[3],
	}, nil
}

// DecodeAndValidate reads a header and checks its type and version.
func DecodeAndValidate(buf []byte, expectedType, expectedVersion byte) (Header, error) {
	h, err := Decode(buf)
	if err != nil {
		return Header{}, err
	}
	if h.Type != expectedType {
		return Header{}, ErrTypeMismatch
	}
	if h.Version != expectedVersion {
		return Header{}, ErrVersionMismatch
	}
	return h, nil
}
