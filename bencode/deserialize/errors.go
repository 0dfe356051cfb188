package deserialize

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty                   = errors.New("empty byte sequence")
	ErrInvalidStartByte        = errors.New("invalid start byte")
	ErrInvalidEndByte          = errors.New("invalid end byte")
	ErrInvalidInteger          = errors.New("invalid integer")
	ErrIntegerWithLeadingZeros = errors.New("integer with leading zeros")
	ErrNegativeZeroInteger     = errors.New("negative zero is not allowed")
	ErrInvalidByteStringLength = errors.New("invalid byte string length")
	ErrInvalidList             = errors.New("invalid list")
	ErrInvalidDictionary       = errors.New("invalid dictionary")
	ErrInvalidDictionaryKey    = errors.New("invalid type for dictionary key")
	ErrInvalidByteSequence     = errors.New("unexpected bytes after value")
	ErrNestingTooDeep          = errors.New("nesting too deep")
	ErrDuplicateDictionaryKey  = errors.New("duplicate dictionary key")
)

const (
	contextInteger    = "integer"
	contextByteString = "byte string"
)

// Error describes the first malformed byte found while decoding. Kind is
// one of the Err* sentinels and is matched by errors.Is.
type Error struct {
	Kind error
	// Context is set for ErrInvalidEndByte: "integer" or "byte string".
	Context string
	// Offset is the number of bytes consumed when the error was found.
	Offset int64
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%v for type %s at offset %d", e.Kind, e.Context, e.Offset)
	}

	return fmt.Sprintf("%v at offset %d", e.Kind, e.Offset)
}

func (e *Error) Unwrap() error {
	return e.Kind
}
