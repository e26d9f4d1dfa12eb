// Package loader reads and writes cursorkeep configuration documents.
//
// Configuration files are TOML or YAML, chosen by file extension, and decode
// into generic maps so that unrelated sections of a shared file survive a
// read-modify-write cycle. Environment variables are read separately by
// EnvLoader.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a configuration file syntax.
type Format int

const (
	// FormatTOML is TOML (.toml, and the default for unknown extensions).
	FormatTOML Format = iota
	// FormatYAML is YAML (.yaml, .yml).
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// ParseError describes a configuration file that could not be decoded.
type ParseError struct {
	Path   string
	Format Format
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s (%s): %v", e.Path, e.Format, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// codec converts between bytes and generic documents.
type codec interface {
	decode(data []byte) (map[string]any, error)
	encode(doc map[string]any) ([]byte, error)
}

func codecFor(f Format) codec {
	if f == FormatYAML {
		return yamlCodec{}
	}
	return tomlCodec{}
}

// ReadFile decodes the document at path. A missing file returns nil, nil.
func ReadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes data using the format implied by path.
func Parse(path string, data []byte) (map[string]any, error) {
	format := DetectFormat(path)
	doc, err := codecFor(format).decode(data)
	if err != nil {
		return nil, &ParseError{Path: path, Format: format, Err: err}
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// WriteFile encodes doc using the format implied by path and writes it,
// creating the parent directory if needed.
func WriteFile(path string, doc map[string]any) error {
	data, err := codecFor(DetectFormat(path)).encode(doc)
	if err != nil {
		return fmt.Errorf("encoding config file %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Section returns the named top-level table of doc, or nil.
func Section(doc map[string]any, name string) map[string]any {
	if doc == nil {
		return nil
	}
	switch v := doc[name].(type) {
	case map[string]any:
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = val
		}
		return out
	default:
		return nil
	}
}
