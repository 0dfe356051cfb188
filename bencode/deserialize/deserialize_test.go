package deserialize

import (
	"errors"
	"math"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertwole/bencode-cli/bencode/value"
)

func TestIntDecode(t *testing.T) {
	testDecode("i10e", value.Integer(10), t)
	testDecode("i-10e", value.Integer(-10), t)
	testDecode("i0e", value.Integer(0), t)
	testDecode("i10000000e", value.Integer(10000000), t)
	testDecode("i9223372036854775807e", value.Integer(math.MaxInt64), t)
	testDecode("i-9223372036854775808e", value.Integer(math.MinInt64), t)
}

func TestStringDecode(t *testing.T) {
	testDecode("0:", value.ByteString(""), t)
	testDecode("4:test", value.ByteString("test"), t)
	testDecode("04:test", value.ByteString("test"), t)
	testDecode("3:\x00\xff\x80", value.ByteString{0x00, 0xFF, 0x80}, t)
}

func TestBinarySafeString(t *testing.T) {
	payload := "1222 str 11112 \r\n 123 ::: :::"

	testDecode("29:"+payload, value.ByteString(payload), t)
}

func TestListDecode(t *testing.T) {
	testDecode("le", value.List{}, t)
	testDecode("l4:test4:liste", value.List{value.ByteString("test"), value.ByteString("list")}, t)

	bencoded := removeWhitespaces(`
		l
			i1e
			l
				i2e
				le
			e
			d
				1:k
					i3e
			e
		e
	`)
	inner := value.NewDictionary()
	inner.Set([]byte("k"), value.Integer(3))

	expected := value.List{
		value.Integer(1),
		value.List{value.Integer(2), value.List{}},
		inner,
	}

	testDecode(bencoded, expected, t)
}

func TestDictionaryDecode(t *testing.T) {
	bencoded := removeWhitespaces(`
		d
			11:StringField
				4:test

			9:DictField
				d
					8:IntField
						i10e
				e
		e
	`)

	inner := value.NewDictionary()
	inner.Set([]byte("IntField"), value.Integer(10))

	expected := value.NewDictionary()
	expected.Set([]byte("StringField"), value.ByteString("test"))
	expected.Set([]byte("DictField"), inner)

	testDecode(bencoded, expected, t)
	testDecode("de", value.NewDictionary(), t)
}

func TestDictionaryKeysAreSorted(t *testing.T) {
	decoded, err := Decode(strings.NewReader("d1:ci1e1:ai2e3:aaai3ee"))
	require.NoError(t, err)

	dictionary, err := value.AsDictionary(decoded)
	require.NoError(t, err)

	keys := make([]string, 0)
	for key := range dictionary.All() {
		keys = append(keys, string(key))
	}

	if diff := cmp.Diff([]string{"a", "aaa", "c"}, keys); diff != "" {
		t.Errorf("unexpected key order (-want +got):\n%s", diff)
	}
}

func TestDuplicateKeyLastWins(t *testing.T) {
	expected := value.NewDictionary()
	expected.Set([]byte("a"), value.Integer(2))

	testDecode("d1:ai1e1:ai2ee", expected, t)
}

func TestDuplicateKeyStrict(t *testing.T) {
	_, err := Decode(strings.NewReader("d1:ai1e1:ai2ee"), WithStrictKeys())
	assert.ErrorIs(t, err, ErrDuplicateDictionaryKey)

	_, err = Decode(strings.NewReader("d1:ai1e1:bi2ee"), WithStrictKeys())
	assert.NoError(t, err)
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		name     string
		bencoded string
		expected error
	}{
		{"empty", "", ErrEmpty},
		{"lone minus", "i-e", ErrInvalidInteger},
		{"no digits", "ie", ErrInvalidInteger},
		{"integer without payload", "i", ErrInvalidInteger},
		{"plus sign", "i+1e", ErrInvalidInteger},
		{"negative zero", "i-0e", ErrNegativeZeroInteger},
		{"leading zeros", "i0100e", ErrIntegerWithLeadingZeros},
		{"negative leading zeros", "i-01e", ErrIntegerWithLeadingZeros},
		{"double zero", "i00e", ErrIntegerWithLeadingZeros},
		{"integer overflow", "i9223372036854775808e", ErrInvalidInteger},
		{"integer underflow", "i-9223372036854775809e", ErrInvalidInteger},
		{"bad start byte", "+0e", ErrInvalidStartByte},
		{"end byte as start", "e", ErrInvalidStartByte},
		{"trailing byte", "i100ei", ErrInvalidByteSequence},
		{"two values", "1:a1:b", ErrInvalidByteSequence},
		{"short byte string", "2:1", ErrInvalidByteStringLength},
		{"missing payload", "5:", ErrInvalidByteStringLength},
		{"length overflow", "99999999999999999999:a", ErrInvalidInteger},
		{"unterminated list", "li1e", ErrInvalidList},
		{"unterminated dictionary", "d1:ai1e", ErrInvalidDictionary},
		{"key without value", "d1:ae", ErrInvalidDictionary},
		{"key at end of input", "d1:a", ErrInvalidDictionary},
		{"integer key", "di1ei2ee", ErrInvalidDictionaryKey},
		{"list key", "dlei2ee", ErrInvalidDictionaryKey},
		{"bad list element", "lxe", ErrInvalidStartByte},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			decoded, err := Decode(strings.NewReader(testCase.bencoded))
			assert.Nil(t, decoded)
			assert.ErrorIs(t, err, testCase.expected)

			var decodeError *Error
			assert.True(t, errors.As(err, &decodeError), "expected *Error, got %T", err)
		})
	}
}

func TestInvalidEndByteContext(t *testing.T) {
	testCases := []struct {
		bencoded string
		context  string
	}{
		{"i12x", "integer"},
		{"i12", "integer"},
		{"i-", "integer"},
		{"12x:ab", "byte string"},
		{"1-:a", "byte string"},
		{"12", "byte string"},
	}

	for _, testCase := range testCases {
		_, err := Decode(strings.NewReader(testCase.bencoded))
		require.ErrorIs(t, err, ErrInvalidEndByte, testCase.bencoded)

		var decodeError *Error
		require.ErrorAs(t, err, &decodeError)
		assert.Equal(t, testCase.context, decodeError.Context, testCase.bencoded)
	}
}

func TestErrorMessage(t *testing.T) {
	_, err := Decode(strings.NewReader("i12x"))
	assert.EqualError(t, err, "invalid end byte for type integer at offset 4")

	_, err = Decode(strings.NewReader("i100ei"))
	assert.EqualError(t, err, "unexpected bytes after value at offset 6")
}

func TestNestingLimit(t *testing.T) {
	deep := strings.Repeat("l", 10) + strings.Repeat("e", 10)

	_, err := Decode(strings.NewReader(deep), WithMaxDepth(10))
	assert.NoError(t, err)

	_, err = Decode(strings.NewReader(deep), WithMaxDepth(9))
	assert.ErrorIs(t, err, ErrNestingTooDeep)

	deepDictionaries := strings.Repeat("d1:a", 4) + "i1e" + strings.Repeat("e", 4)
	_, err = Decode(strings.NewReader(deepDictionaries), WithMaxDepth(3))
	assert.ErrorIs(t, err, ErrNestingTooDeep)

	tooDeepForDefault := strings.Repeat("l", DefaultMaxDepth+1) + strings.Repeat("e", DefaultMaxDepth+1)
	_, err = Decode(strings.NewReader(tooDeepForDefault))
	assert.ErrorIs(t, err, ErrNestingTooDeep)

	_, err = Decode(strings.NewReader(tooDeepForDefault), WithMaxDepth(0))
	assert.NoError(t, err)
}

func TestReaderErrorIsReturned(t *testing.T) {
	readErr := errors.New("connection reset")
	reader := iotest.TimeoutReader(strings.NewReader("l" + strings.Repeat("i1e", 5000) + "e"))

	_, err := Decode(reader)
	require.Error(t, err)
	assert.ErrorIs(t, err, iotest.ErrTimeout)
	assert.NotErrorIs(t, err, readErr)

	_, err = Decode(iotest.ErrReader(readErr))
	assert.ErrorIs(t, err, readErr)
}

func TestDecodeOneByteReader(t *testing.T) {
	reader := iotest.OneByteReader(strings.NewReader("d4:spaml1:a1:bee"))

	decoded, err := Decode(reader)
	require.NoError(t, err)

	list, err := value.Lookup(decoded, "spam")
	require.NoError(t, err)
	assert.True(t, value.Equal(value.List{value.ByteString("a"), value.ByteString("b")}, list))
}

func TestConcurrentDecode(t *testing.T) {
	inputs := []string{"i1e", "l1:ae", "d1:ai1ee", "4:spam"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			for range 100 {
				_, err := Decode(strings.NewReader(input))
				require.NoError(t, err)
			}
		})
	}
}

func removeWhitespaces(input string) string {
	input = strings.ReplaceAll(input, " ", "")
	input = strings.ReplaceAll(input, "\n", "")
	input = strings.ReplaceAll(input, "\r", "")
	input = strings.ReplaceAll(input, "\t", "")

	return input
}

func testDecode(bencoded string, expectedValue value.Value, t *testing.T) {
	t.Helper()

	decoded, err := Decode(strings.NewReader(bencoded))
	if err != nil {
		t.Errorf("failed to decode %q: %v", bencoded, err)
		return
	}

	if !value.Equal(decoded, expectedValue) {
		t.Errorf("values don't match: expected %v, got %v", expectedValue, decoded)
	}
}
