package bencode

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mertwole/bencode-cli/bencode/deserialize"
	"github.com/mertwole/bencode-cli/bencode/serialize"
	"github.com/mertwole/bencode-cli/bencode/value"
)

func Decode(reader io.Reader, opts ...deserialize.Option) (value.Value, error) {
	return deserialize.Decode(reader, opts...)
}

func Encode(v value.Value) []byte {
	return serialize.Encode(v)
}

func Deserialize(reader io.Reader, entity any, opts ...deserialize.Option) error {
	return deserialize.Deserialize(reader, entity, opts...)
}

func Serialize(writer io.Writer, entity any) error {
	return serialize.Serialize(writer, entity)
}

func DecodeFile(path string, opts ...deserialize.Option) (value.Value, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	decoded, err := deserialize.Decode(bufio.NewReader(file), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return decoded, nil
}

// EncodeFile writes the encoding of v to a new file. An existing file is
// never overwritten.
func EncodeFile(path string, v value.Value) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0666)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}

	err = serialize.Write(file, v)
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
