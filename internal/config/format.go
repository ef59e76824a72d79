package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a structured-text encoding of a site or sidebar document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", &ConfigError{Kind: ErrUnsupportedFormat, Field: path, Detail: "expected .yaml, .yml, .toml or .json"}
	}
}

// Decode unmarshals data in the given format into v. It is shared with the
// sidebar package so both documents accept the same encodings.
func Decode(data []byte, format Format, v any) error {
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), v); err != nil {
			return fmt.Errorf("failed to unmarshal toml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("failed to unmarshal json: %w", err)
		}
	default:
		return &ConfigError{Kind: ErrUnsupportedFormat, Detail: string(format)}
	}
	return nil
}

// Encode marshals v in the given format.
func Encode(v any, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			_ = enc.Close()
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	default:
		return nil, &ConfigError{Kind: ErrUnsupportedFormat, Detail: string(format)}
	}
}
