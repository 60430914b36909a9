// Package source holds script text handed to a parser together with the
// name it is reported under.
package source

import (
	"path/filepath"
	"strings"
)

// Script is one unit of source text.
type Script struct {
	Name    string // display name, "<eval>" for inline text
	Path    string // file path, empty unless loaded from a file
	Content string
	lines   []string
}

// Inline wraps text that does not come from a file.
func Inline(content string) *Script {
	return &Script{Name: "<eval>", Content: content}
}

// FromFile wraps the content of the file at path.
func FromFile(path, content string) *Script {
	return &Script{Name: filepath.Base(path), Path: path, Content: content}
}

// Line returns the 1-based line n, or "" if there is none.
func (s *Script) Line(n int) string {
	if s.lines == nil {
		s.lines = strings.Split(s.Content, "\n")
	}
	if n < 1 || n > len(s.lines) {
		return ""
	}
	return strings.TrimRight(s.lines[n-1], "\r")
}

// DisplayPath prefers the file path over the name.
func (s *Script) DisplayPath() string {
	if s.Path != "" {
		return s.Path
	}
	return s.Name
}
