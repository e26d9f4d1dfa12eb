package term

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is an immutable file snapshot.
type Document struct {
	path  string
	lines []string
}

// LoadDocument reads path. The stored path is absolute.
func LoadDocument(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return NewDocument(abs, string(data)), nil
}

// NewDocument creates a document from text. An empty text has one empty line.
func NewDocument(path, text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return &Document{path: path, lines: strings.Split(text, "\n")}
}

// Path returns the absolute file path, or "" for scratch text.
func (d *Document) Path() string { return d.path }

// LineCount returns the number of lines.
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns line n, or "" when out of range.
func (d *Document) Line(n int) string {
	if n < 0 || n >= len(d.lines) {
		return ""
	}
	return d.lines[n]
}

// LineLen returns the number of runes on line n.
func (d *Document) LineLen(n int) int {
	return len([]rune(d.Line(n)))
}
