package value

import (
	"errors"
	"fmt"
)

// Conversion errors. They are returned when a value of one kind is
// requested as another and are unrelated to decoding failures.
var (
	ErrInvalidString     = errors.New("invalid string")
	ErrInvalidInteger    = errors.New("invalid integer")
	ErrInvalidList       = errors.New("invalid list")
	ErrInvalidDictionary = errors.New("invalid dictionary")
)

func kindOf(value Value) string {
	if value == nil {
		return "nil"
	}

	return value.Kind().String()
}

func AsBytes(value Value) ([]byte, error) {
	byteString, ok := value.(ByteString)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidString, kindOf(value))
	}

	return byteString, nil
}

// AsString returns the byte string as a Go string holding the raw bytes.
// Use ByteString.Text for the code point view.
func AsString(value Value) (string, error) {
	raw, err := AsBytes(value)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

func AsInteger(value Value) (int64, error) {
	integer, ok := value.(Integer)
	if !ok {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidInteger, kindOf(value))
	}

	return int64(integer), nil
}

func AsList(value Value) (List, error) {
	list, ok := value.(List)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidList, kindOf(value))
	}

	return list, nil
}

func AsDictionary(value Value) (*Dictionary, error) {
	dictionary, ok := value.(*Dictionary)
	if !ok || dictionary == nil {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidDictionary, kindOf(value))
	}

	return dictionary, nil
}

// Lookup returns the value stored under key. Both a non-dictionary value
// and a missing key fail with ErrInvalidDictionary.
func Lookup(value Value, key string) (Value, error) {
	dictionary, err := AsDictionary(value)
	if err != nil {
		return nil, err
	}

	found, ok := dictionary.Get([]byte(key))
	if !ok {
		return nil, fmt.Errorf("%w: missing key %q", ErrInvalidDictionary, key)
	}

	return found, nil
}
