package collection

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names an interchange encoding for exported collections.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Encode writes poems to w. JSON output is indented for hand editing.
func Encode(w io.Writer, poems []Poem, f Format) error {
	if poems == nil {
		poems = []Poem{}
	}
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(poems); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(poems); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// Decode reads an exported collection from r.
func Decode(r io.Reader, f Format) ([]Poem, error) {
	var poems []Poem
	switch f {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&poems); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&poems); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	return poems, nil
}
