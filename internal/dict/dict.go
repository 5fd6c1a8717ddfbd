// Package dict maps corpus words to tokens and back.
//
// A Dictionary is built once, by Insert calls or by Load, and is read-only
// afterwards. Lookups do not lock, so a built Dictionary may be shared by any
// number of goroutines as long as nothing inserts into it.
//
// Lookup contract: TokenOf never fails. A word that is not in the dictionary
// maps to token.Unknown. WordOf reports a missing token explicitly; no token
// is ever mapped to a placeholder word here.
package dict

import (
	"errors"
	"fmt"
	"slices"

	"ngram/internal/token"
)

var (
	ErrDuplicate     = errors.New("word or token already in dictionary")
	ErrReservedToken = errors.New("token 0 is reserved for unknown words")
)

// Entry is one word/token pair.
type Entry struct {
	Word  string
	Token token.Token
}

// Dictionary is a bidirectional word/token mapping. The zero value is not
// usable; call New.
type Dictionary struct {
	entries []Entry
	byWord  map[string]int
	byToken map[token.Token]int
}

// New creates an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		byWord:  make(map[string]int),
		byToken: make(map[token.Token]int),
	}
}

// Insert adds word with the given token. It fails if tok is token.Unknown, if
// tok cannot be encoded, or if word or tok is already present.
func (d *Dictionary) Insert(word string, tok token.Token) error {
	if tok == token.Unknown {
		return ErrReservedToken
	}
	if tok > token.Max {
		return fmt.Errorf("%w: %d", token.ErrOutOfRange, tok)
	}
	if _, ok := d.byWord[word]; ok {
		return fmt.Errorf("%w: word %q", ErrDuplicate, word)
	}
	if _, ok := d.byToken[tok]; ok {
		return fmt.Errorf("%w: token %d", ErrDuplicate, tok)
	}
	i := len(d.entries)
	d.entries = append(d.entries, Entry{Word: word, Token: tok})
	d.byWord[word] = i
	d.byToken[tok] = i
	return nil
}

// TokenOf returns the token for word, or token.Unknown if word is absent.
func (d *Dictionary) TokenOf(word string) token.Token {
	if i, ok := d.byWord[word]; ok {
		return d.entries[i].Token
	}
	return token.Unknown
}

// WordOf returns the word for tok, or false if tok is absent.
func (d *Dictionary) WordOf(tok token.Token) (string, bool) {
	i, ok := d.byToken[tok]
	if !ok {
		return "", false
	}
	return d.entries[i].Word, true
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Entries returns a copy of the entries in insertion order.
func (d *Dictionary) Entries() []Entry {
	return slices.Clone(d.entries)
}
