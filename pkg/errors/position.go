package errors

// Position represents a specific location in the source code.
// It includes line and column numbers (1-based) for human-readability,
// and byte offsets (0-based) for tooling.
type Position struct {
	Line     int    // 1-based line number
	Column   int    // 1-based column number (rune index within the line)
	StartPos int    // 0-based byte offset of the start of the span
	EndPos   int    // 0-based byte offset of the end of the span (exclusive)
	File     string // name of the source the position belongs to, if known
}

// IsZero reports whether no position information is available.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0 && p.StartPos == 0 && p.EndPos == 0
}
