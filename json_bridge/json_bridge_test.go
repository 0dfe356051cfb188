package json_bridge

import (
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertwole/bencode-cli/bencode/value"
)

func sampleValue() value.Value {
	inner := value.NewDictionary()
	inner.Set([]byte("length"), value.Integer(1024))
	inner.Set([]byte("path"), value.List{value.ByteString("a"), value.ByteString("b.txt")})

	root := value.NewDictionary()
	root.Set([]byte("name"), value.ByteString("<sample & co>"))
	root.Set([]byte("files"), value.List{inner})
	root.Set([]byte("max"), value.Integer(math.MaxInt64))
	root.Set([]byte("min"), value.Integer(math.MinInt64))

	return root
}

func TestToJSON(t *testing.T) {
	encoded, err := ToJSON(sampleValue())
	require.NoError(t, err)

	expected := `{"files":[{"length":1024,"path":["a","b.txt"]}],` +
		`"max":9223372036854775807,"min":-9223372036854775808,"name":"<sample & co>"}`
	assert.Equal(t, expected, string(encoded))
}

func TestToJSONIndent(t *testing.T) {
	encoded, err := ToJSON(value.List{value.Integer(1)}, WithIndent("  "))
	require.NoError(t, err)
	assert.Equal(t, "[\n  1\n]", string(encoded))
}

func TestRoundTrip(t *testing.T) {
	for _, mode := range []BytesMode{TextBytes, Base64Bytes} {
		original := sampleValue()

		encoded, err := ToJSON(original, WithBytesMode(mode))
		require.NoError(t, err)

		restored, err := FromJSON(encoded, WithBytesMode(mode))
		require.NoError(t, err)

		assert.True(t, value.Equal(original, restored), "mode %d: %s", mode, encoded)
	}
}

func TestByteToCodepointMapping(t *testing.T) {
	raw := value.ByteString{0x00, 0x41, 0x80, 0xFF}

	encoded, err := ToJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `"\u0000A`+"\u0080ÿ"+`"`, string(encoded))

	restored, err := FromJSON(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, restored)
}

func TestBase64(t *testing.T) {
	dictionary := value.NewDictionary()
	dictionary.Set([]byte{0xFF}, value.ByteString("hi"))

	encoded, err := ToJSON(dictionary, WithBase64())
	require.NoError(t, err)
	assert.Equal(t, `{"/w==":"aGk="}`, string(encoded))

	_, err = FromJSON([]byte(`"not base64!"`), WithBase64())
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestFromJSONAcceptsComments(t *testing.T) {
	document := []byte(`
		{
			// tracker
			"announce": "http://tracker.example/announce",
			/* piece size */
			"piece length": 16384,
		}
	`)

	restored, err := FromJSON(document)
	require.NoError(t, err)

	pieceLength, err := value.Lookup(restored, "piece length")
	require.NoError(t, err)
	assert.Equal(t, value.Integer(16384), pieceLength)
}

func TestFromJSONErrors(t *testing.T) {
	testCases := []struct {
		document string
		expected error
	}{
		{`{"a": `, ErrInvalidJSON},
		{`1 2`, ErrInvalidJSON},
		{`null`, ErrUnsupportedJSON},
		{`true`, ErrUnsupportedJSON},
		{`[1.5]`, ErrUnsupportedJSON},
		{`1e3`, ErrUnsupportedJSON},
		{`9223372036854775808`, ErrUnsupportedJSON},
		{`{"a": {"b": false}}`, ErrUnsupportedJSON},
		{`"snowman ☃"`, ErrNotLatin1},
		{`{"☃": 1}`, ErrNotLatin1},
	}

	for _, testCase := range testCases {
		_, err := FromJSON([]byte(testCase.document))
		assert.ErrorIs(t, err, testCase.expected, testCase.document)
	}
}

func TestFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.json")

	require.NoError(t, SaveFile(path, sampleValue()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), content[len(content)-1])

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, value.Equal(sampleValue(), loaded))

	err = SaveFile(path, sampleValue())
	assert.ErrorIs(t, err, fs.ErrExist)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
