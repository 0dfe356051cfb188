// Package value holds the in-memory tree produced by decoding bencode and
// consumed by encoding it.
package value

import (
	"bytes"
	"strings"
)

type Kind uint8

const (
	IntegerKind Kind = iota
	ByteStringKind
	ListKind
	DictionaryKind
)

func (kind Kind) String() string {
	switch kind {
	case IntegerKind:
		return "integer"
	case ByteStringKind:
		return "byte string"
	case ListKind:
		return "list"
	case DictionaryKind:
		return "dictionary"
	default:
		return "unknown"
	}
}

// Value is one of Integer, ByteString, List or *Dictionary.
type Value interface {
	Kind() Kind
	sealed()
}

type Integer int64

func (Integer) Kind() Kind { return IntegerKind }
func (Integer) sealed()    {}

// ByteString is an opaque byte sequence, not necessarily valid UTF-8.
type ByteString []byte

func (ByteString) Kind() Kind { return ByteStringKind }
func (ByteString) sealed()    {}

// Text maps every byte to the code point with the same number. The view is
// lossy for multi-byte UTF-8 payloads: "é" encoded as two bytes comes back
// as two separate code points.
func (s ByteString) Text() string {
	var builder strings.Builder
	builder.Grow(len(s))
	for _, b := range s {
		builder.WriteRune(rune(b))
	}

	return builder.String()
}

// ByteStringFromText is the inverse of Text. It fails on runes above 255,
// which have no single byte representation.
func ByteStringFromText(text string) (ByteString, bool) {
	result := make(ByteString, 0, len(text))
	for _, r := range text {
		// Invalid UTF-8 decodes as utf8.RuneError, which is above 255 too.
		if r > 0xFF {
			return nil, false
		}
		result = append(result, byte(r))
	}

	return result, true
}

type List []Value

func (List) Kind() Kind { return ListKind }
func (List) sealed()    {}

func (*Dictionary) Kind() Kind { return DictionaryKind }
func (*Dictionary) sealed()    {}

func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch a := a.(type) {
	case Integer:
		return a == b.(Integer)
	case ByteString:
		return bytes.Equal(a, b.(ByteString))
	case List:
		other := b.(List)
		if len(a) != len(other) {
			return false
		}
		for i := range a {
			if !Equal(a[i], other[i]) {
				return false
			}
		}
		return true
	case *Dictionary:
		other := b.(*Dictionary)
		if a.Len() != other.Len() {
			return false
		}
		for i := range a.entries {
			if !bytes.Equal(a.entries[i].key, other.entries[i].key) {
				return false
			}
			if !Equal(a.entries[i].value, other.entries[i].value) {
				return false
			}
		}
		return true
	}

	return false
}
