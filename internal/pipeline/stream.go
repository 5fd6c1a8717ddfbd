// Package pipeline turns corpora into token streams and back.
//
// EncodeStream and DecodeStream are the sequential drivers. FileEncoder
// splits a plain corpus file on line boundaries and encodes the splits
// concurrently; its output is byte-identical to EncodeStream over the whole
// file, because every split holds whole lines and the codes carry no
// separators.
package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"ngram/internal/dict"
	"ngram/internal/token"
	"ngram/internal/vocab"
)

var ErrUnknownToken = errors.New("token not in dictionary")

// Stats summarises an encode or decode run.
type Stats struct {
	Lines   int64 // lines encoded, or words decoded
	Unknown int64 // lines mapped to, or tokens decoded as, token.Unknown
	Bytes   int64 // code bytes written or read
}

func (s *Stats) add(o Stats) {
	s.Lines += o.Lines
	s.Unknown += o.Unknown
	s.Bytes += o.Bytes
}

// EncodeStream writes the code of each line of r to w. Lines missing from d
// are encoded as token.Unknown.
func EncodeStream(d *dict.Dictionary, r io.Reader, w io.Writer) (Stats, error) {
	enc := token.NewEncoder(w)
	var st Stats
	err := vocab.EachLine(r, func(line string) error {
		tok := d.TokenOf(line)
		if tok == token.Unknown {
			st.Unknown++
		}
		st.Lines++
		return enc.Encode(tok)
	})
	if err != nil {
		st.Bytes = enc.Written()
		return st, fmt.Errorf("encode line %d: %w", st.Lines, err)
	}
	if err := enc.Flush(); err != nil {
		return st, fmt.Errorf("flush tokens: %w", err)
	}
	st.Bytes = enc.Written()
	return st, nil
}

// DecodeStream reads codes from r until a clean end of stream and writes one
// word per line to w. token.Unknown is written as unknown. A truncated code,
// or a token that d does not hold, is an error.
func DecodeStream(d *dict.Dictionary, r io.Reader, w io.Writer, unknown string) (Stats, error) {
	dec := token.NewDecoder(r)
	bw := bufio.NewWriter(w)
	var st Stats
	for {
		tok, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return st, fmt.Errorf("decode token at byte %d: %w", st.Bytes, err)
		}

		word := unknown
		if tok == token.Unknown {
			st.Unknown++
		} else {
			var ok bool
			if word, ok = d.WordOf(tok); !ok {
				return st, fmt.Errorf("%w: %d at byte %d", ErrUnknownToken, tok, st.Bytes)
			}
		}
		if _, err := bw.WriteString(word); err != nil {
			return st, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return st, err
		}
		st.Lines++
		st.Bytes += int64(token.Len(tok))
	}
	if err := bw.Flush(); err != nil {
		return st, fmt.Errorf("flush words: %w", err)
	}
	return st, nil
}
