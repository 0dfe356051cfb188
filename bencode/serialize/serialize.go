package serialize

import (
	"io"
	"strconv"

	"github.com/mertwole/bencode-cli/bencode/value"
)

// Encode returns the canonical encoding of v. Dictionary keys come out in
// ascending byte order because that is how dictionaries store them.
func Encode(v value.Value) []byte {
	return appendValue(nil, v)
}

func Write(writer io.Writer, v value.Value) error {
	_, err := writer.Write(Encode(v))
	return err
}

func appendValue(buffer []byte, v value.Value) []byte {
	switch v := v.(type) {
	case value.Integer:
		buffer = append(buffer, 'i')
		buffer = strconv.AppendInt(buffer, int64(v), 10)
		buffer = append(buffer, 'e')
	case value.ByteString:
		buffer = appendByteString(buffer, v)
	case value.List:
		buffer = append(buffer, 'l')
		for _, element := range v {
			buffer = appendValue(buffer, element)
		}
		buffer = append(buffer, 'e')
	case *value.Dictionary:
		buffer = append(buffer, 'd')
		for key, entryValue := range v.All() {
			buffer = appendByteString(buffer, key)
			buffer = appendValue(buffer, entryValue)
		}
		buffer = append(buffer, 'e')
	}

	return buffer
}

func appendByteString(buffer []byte, byteString []byte) []byte {
	buffer = strconv.AppendInt(buffer, int64(len(byteString)), 10)
	buffer = append(buffer, ':')

	return append(buffer, byteString...)
}
