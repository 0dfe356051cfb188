package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mertwole/bencode-cli/bencode/deserialize"
	"github.com/mertwole/bencode-cli/json_bridge"
)

const (
	BytesText   = "text"
	BytesBase64 = "base64"
)

type Config struct {
	MaxDepth   int        `yaml:"max_depth"`
	StrictKeys bool       `yaml:"strict_keys"`
	JSON       JSONConfig `yaml:"json"`
	LogFile    string     `yaml:"log_file"`
}

type JSONConfig struct {
	// Bytes selects how byte strings appear in JSON: "text" or "base64".
	Bytes  string `yaml:"bytes"`
	Indent string `yaml:"indent"`
}

func Default() *Config {
	return &Config{
		MaxDepth: deserialize.DefaultMaxDepth,
		JSON: JSONConfig{
			Bytes: BytesText,
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}

	switch c.JSON.Bytes {
	case BytesText, BytesBase64:
	default:
		return fmt.Errorf("json.bytes must be %q or %q, got %q", BytesText, BytesBase64, c.JSON.Bytes)
	}

	return nil
}

func (c *Config) DecodeOptions() []deserialize.Option {
	options := []deserialize.Option{deserialize.WithMaxDepth(c.MaxDepth)}
	if c.StrictKeys {
		options = append(options, deserialize.WithStrictKeys())
	}

	return options
}

func (c *Config) JSONOptions() []json_bridge.Option {
	options := []json_bridge.Option{json_bridge.WithIndent(c.JSON.Indent)}
	if c.JSON.Bytes == BytesBase64 {
		options = append(options, json_bridge.WithBase64())
	}

	return options
}
