// Package json_bridge maps bencode values to JSON and back.
//
// Integers become JSON numbers, byte strings become JSON strings, lists
// become arrays and dictionaries become objects. By default byte strings go
// through value.ByteString.Text, which maps every byte to one code point and
// is therefore lossy for non-ASCII payloads read by other tools. WithBase64
// stores byte strings and keys as base64 instead.
package json_bridge

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tidwall/jsonc"

	"github.com/mertwole/bencode-cli/bencode/value"
)

var (
	ErrInvalidJSON     = errors.New("invalid json")
	ErrUnsupportedJSON = errors.New("json value has no bencode equivalent")
	ErrNotLatin1       = errors.New("text contains characters above U+00FF")
)

type BytesMode int

const (
	TextBytes BytesMode = iota
	Base64Bytes
)

type options struct {
	bytesMode BytesMode
	indent    string
}

type Option func(*options)

func WithBase64() Option {
	return func(o *options) {
		o.bytesMode = Base64Bytes
	}
}

func WithBytesMode(mode BytesMode) Option {
	return func(o *options) {
		o.bytesMode = mode
	}
}

func WithIndent(indent string) Option {
	return func(o *options) {
		o.indent = indent
	}
}

func collectOptions(opts []Option) options {
	result := options{}
	for _, opt := range opts {
		opt(&result)
	}

	return result
}

func ToJSON(v value.Value, opts ...Option) ([]byte, error) {
	settings := collectOptions(opts)

	tree, err := toTree(v, settings)
	if err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", settings.indent)

	err = encoder.Encode(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize json: %w", err)
	}

	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

func toTree(v value.Value, settings options) (any, error) {
	switch v := v.(type) {
	case value.Integer:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case value.ByteString:
		return bytesToString(v, settings), nil
	case value.List:
		array := make([]any, 0, len(v))
		for _, element := range v {
			converted, err := toTree(element, settings)
			if err != nil {
				return nil, err
			}

			array = append(array, converted)
		}

		return array, nil
	case *value.Dictionary:
		object := make(map[string]any, v.Len())
		for key, entryValue := range v.All() {
			converted, err := toTree(entryValue, settings)
			if err != nil {
				return nil, err
			}

			object[bytesToString(key, settings)] = converted
		}

		return object, nil
	default:
		return nil, fmt.Errorf("%w: unexpected value type %T", ErrUnsupportedJSON, v)
	}
}

func bytesToString(raw []byte, settings options) string {
	if settings.bytesMode == Base64Bytes {
		return base64.StdEncoding.EncodeToString(raw)
	}

	return value.ByteString(raw).Text()
}

// FromJSON parses a JSON document into a value. Comments and trailing
// commas are accepted. Numbers must be integers within the int64 range.
func FromJSON(data []byte, opts ...Option) (value.Value, error) {
	settings := collectOptions(opts)

	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.UseNumber()

	var tree any
	err := decoder.Decode(&tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	_, err = decoder.Token()
	if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after top-level value", ErrInvalidJSON)
	}

	return fromTree(tree, settings)
}

func fromTree(tree any, settings options) (value.Value, error) {
	switch tree := tree.(type) {
	case json.Number:
		integer, err := strconv.ParseInt(tree.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: number %s is not a 64-bit integer", ErrUnsupportedJSON, tree)
		}

		return value.Integer(integer), nil
	case string:
		return stringToBytes(tree, settings)
	case []any:
		list := make(value.List, 0, len(tree))
		for i, element := range tree {
			converted, err := fromTree(element, settings)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}

			list = append(list, converted)
		}

		return list, nil
	case map[string]any:
		dictionary := value.NewDictionary()
		for key, element := range tree {
			convertedKey, err := stringToBytes(key, settings)
			if err != nil {
				return nil, fmt.Errorf("object key %q: %w", key, err)
			}

			converted, err := fromTree(element, settings)
			if err != nil {
				return nil, fmt.Errorf("object key %q: %w", key, err)
			}

			dictionary.Set(convertedKey, converted)
		}

		return dictionary, nil
	case nil:
		return nil, fmt.Errorf("%w: null", ErrUnsupportedJSON)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedJSON, tree)
	}
}

func stringToBytes(text string, settings options) (value.ByteString, error) {
	if settings.bytesMode == Base64Bytes {
		raw, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}

		return raw, nil
	}

	raw, ok := value.ByteStringFromText(text)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotLatin1, text)
	}

	return raw, nil
}

func LoadFile(path string, opts ...Option) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	loaded, err := FromJSON(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return loaded, nil
}

// SaveFile writes the JSON form of v followed by a newline to a new file.
// An existing file is never overwritten.
func SaveFile(path string, v value.Value, opts ...Option) error {
	data, err := ToJSON(v, opts...)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0666)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}

	_, err = file.Write(append(data, '\n'))
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}
