package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mertwole/bencode-cli/bencode/deserialize"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))

	return path
}

func TestDefault(t *testing.T) {
	config := Default()

	assert.Equal(t, deserialize.DefaultMaxDepth, config.MaxDepth)
	assert.False(t, config.StrictKeys)
	assert.Equal(t, BytesText, config.JSON.Bytes)
	assert.NoError(t, config.Validate())
	assert.Len(t, config.DecodeOptions(), 1)
	assert.Len(t, config.JSONOptions(), 1)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
max_depth: 64
strict_keys: true
json:
  bytes: base64
  indent: "  "
log_file: /tmp/bencode.log
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, config.MaxDepth)
	assert.True(t, config.StrictKeys)
	assert.Equal(t, BytesBase64, config.JSON.Bytes)
	assert.Equal(t, "  ", config.JSON.Indent)
	assert.Equal(t, "/tmp/bencode.log", config.LogFile)
	assert.Len(t, config.DecodeOptions(), 2)
	assert.Len(t, config.JSONOptions(), 2)
}

func TestLoadKeepsDefaults(t *testing.T) {
	config, err := Load(writeConfig(t, "strict_keys: true\n"))
	require.NoError(t, err)

	assert.Equal(t, deserialize.DefaultMaxDepth, config.MaxDepth)
	assert.Equal(t, BytesText, config.JSON.Bytes)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeConfig(t, "max_depth: [1, 2"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = Load(writeConfig(t, "max_depth: -1\n"))
	assert.ErrorContains(t, err, "max_depth must not be negative")

	_, err = Load(writeConfig(t, "json:\n  bytes: hex\n"))
	assert.ErrorContains(t, err, `json.bytes must be "text" or "base64"`)
}
