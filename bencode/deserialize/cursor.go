package deserialize

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// cursor reads the input one byte at a time and never goes back.
type cursor struct {
	reader io.ByteReader
	offset int64
}

func newCursor(reader io.Reader) *cursor {
	byteReader, ok := reader.(io.ByteReader)
	if !ok {
		byteReader = bufio.NewReader(reader)
	}

	return &cursor{reader: byteReader}
}

// next returns ok == false at the end of input.
func (c *cursor) next() (b byte, ok bool, err error) {
	b, err = c.reader.ReadByte()
	if errors.Is(err, io.EOF) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read byte at offset %d: %w", c.offset, err)
	}

	c.offset++

	return b, true, nil
}

// readN appends exactly n bytes to dst, growing it as data arrives.
func (c *cursor) readN(dst []byte, n int64) ([]byte, bool, error) {
	for range n {
		b, ok, err := c.next()
		if err != nil || !ok {
			return nil, ok, err
		}

		dst = append(dst, b)
	}

	return dst, true, nil
}

func (c *cursor) fail(kind error) *Error {
	return &Error{Kind: kind, Offset: c.offset}
}

func (c *cursor) failIn(kind error, context string) *Error {
	return &Error{Kind: kind, Context: context, Offset: c.offset}
}
