package deserialize

import (
	"io"
	"strconv"

	"github.com/mertwole/bencode-cli/bencode/value"
)

const DefaultMaxDepth = 512

type options struct {
	maxDepth   int
	strictKeys bool
}

type Option func(*options)

// WithMaxDepth limits how deeply lists and dictionaries may nest. A limit
// of zero or less disables the check.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithStrictKeys rejects dictionaries that repeat a key. By default the
// last occurrence wins.
func WithStrictKeys() Option {
	return func(o *options) {
		o.strictKeys = true
	}
}

type decoder struct {
	cursor  *cursor
	options options
}

// Decode reads exactly one bencoded value from reader and requires the
// input to end right after it.
func Decode(reader io.Reader, opts ...Option) (value.Value, error) {
	decoder := decoder{
		cursor:  newCursor(reader),
		options: options{maxDepth: DefaultMaxDepth},
	}
	for _, opt := range opts {
		opt(&decoder.options)
	}

	firstChar, ok, err := decoder.cursor.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, decoder.cursor.fail(ErrEmpty)
	}

	result, err := decoder.decode(firstChar, 0)
	if err != nil {
		return nil, err
	}

	_, ok, err = decoder.cursor.next()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, decoder.cursor.fail(ErrInvalidByteSequence)
	}

	return result, nil
}

func (d *decoder) decode(firstChar byte, depth int) (value.Value, error) {
	switch {
	case firstChar == 'i':
		return d.decodeInteger()
	case firstChar == 'l':
		return d.decodeList(depth + 1)
	case firstChar == 'd':
		return d.decodeDictionary(depth + 1)
	case isDigit(firstChar):
		byteString, err := d.decodeByteString(firstChar)
		if err != nil {
			return nil, err
		}
		return byteString, nil
	default:
		return nil, d.cursor.fail(ErrInvalidStartByte)
	}
}

func (d *decoder) decodeInteger() (value.Value, error) {
	digits := make([]byte, 0, 20)

	nextChar, ok, err := d.cursor.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, d.cursor.fail(ErrInvalidInteger)
	}

	negative := false
	switch {
	case nextChar == '-':
		negative = true
	case isDigit(nextChar):
		digits = append(digits, nextChar)
	default:
		return nil, d.cursor.fail(ErrInvalidInteger)
	}

	for {
		nextChar, ok, err := d.cursor.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, d.cursor.failIn(ErrInvalidEndByte, contextInteger)
		}

		if nextChar == 'e' {
			break
		}
		if !isDigit(nextChar) {
			return nil, d.cursor.failIn(ErrInvalidEndByte, contextInteger)
		}

		digits = append(digits, nextChar)
	}

	if len(digits) == 0 {
		return nil, d.cursor.fail(ErrInvalidInteger)
	}
	if len(digits) > 1 && digits[0] == '0' {
		return nil, d.cursor.fail(ErrIntegerWithLeadingZeros)
	}
	if negative && len(digits) == 1 && digits[0] == '0' {
		return nil, d.cursor.fail(ErrNegativeZeroInteger)
	}

	// The sign goes into the parsed text so that math.MinInt64 fits.
	text := string(digits)
	if negative {
		text = "-" + text
	}

	parsed, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, d.cursor.fail(ErrInvalidInteger)
	}

	return value.Integer(parsed), nil
}

func (d *decoder) decodeByteString(firstChar byte) (value.ByteString, error) {
	lengthDigits := []byte{firstChar}
	for {
		nextChar, ok, err := d.cursor.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, d.cursor.failIn(ErrInvalidEndByte, contextByteString)
		}

		if nextChar == ':' {
			break
		}
		if !isDigit(nextChar) {
			return nil, d.cursor.failIn(ErrInvalidEndByte, contextByteString)
		}

		lengthDigits = append(lengthDigits, nextChar)
	}

	length, err := strconv.ParseInt(string(lengthDigits), 10, 64)
	if err != nil {
		return nil, d.cursor.fail(ErrInvalidInteger)
	}

	payload, ok, err := d.cursor.readN(make(value.ByteString, 0, min(length, 4096)), length)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, d.cursor.fail(ErrInvalidByteStringLength)
	}

	return payload, nil
}

func (d *decoder) decodeList(depth int) (value.Value, error) {
	if err := d.checkDepth(depth); err != nil {
		return nil, err
	}

	list := make(value.List, 0)
	for {
		nextChar, ok, err := d.cursor.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, d.cursor.fail(ErrInvalidList)
		}

		if nextChar == 'e' {
			break
		}

		element, err := d.decode(nextChar, depth)
		if err != nil {
			return nil, err
		}

		list = append(list, element)
	}

	return list, nil
}

func (d *decoder) decodeDictionary(depth int) (value.Value, error) {
	if err := d.checkDepth(depth); err != nil {
		return nil, err
	}

	dictionary := value.NewDictionary()
	for {
		nextChar, ok, err := d.cursor.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, d.cursor.fail(ErrInvalidDictionary)
		}

		if nextChar == 'e' {
			break
		}
		if !isDigit(nextChar) {
			return nil, d.cursor.fail(ErrInvalidDictionaryKey)
		}

		key, err := d.decodeByteString(nextChar)
		if err != nil {
			return nil, err
		}

		nextChar, ok, err = d.cursor.next()
		if err != nil {
			return nil, err
		}
		// A key must be followed by its value.
		if !ok || nextChar == 'e' {
			return nil, d.cursor.fail(ErrInvalidDictionary)
		}

		entryValue, err := d.decode(nextChar, depth)
		if err != nil {
			return nil, err
		}

		replaced := dictionary.Set(key, entryValue)
		if replaced && d.options.strictKeys {
			return nil, d.cursor.fail(ErrDuplicateDictionaryKey)
		}
	}

	return dictionary, nil
}

func (d *decoder) checkDepth(depth int) error {
	if d.options.maxDepth > 0 && depth > d.options.maxDepth {
		return d.cursor.fail(ErrNestingTooDeep)
	}

	return nil
}

func isDigit(char byte) bool {
	return char >= '0' && char <= '9'
}
