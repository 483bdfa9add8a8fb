package mdast

// SourceRange represents a byte range in the source content.
type SourceRange struct {
	// StartOffset is the byte index where the range begins (inclusive).
	StartOffset int `json:"start" yaml:"start"`

	// EndOffset is the byte index where the range ends (exclusive).
	EndOffset int `json:"end" yaml:"end"`
}

// Range builds a SourceRange from start and end offsets.
func Range(start, end int) SourceRange {
	return SourceRange{StartOffset: start, EndOffset: end}
}

// IsEmpty returns true if the range has zero length.
func (r SourceRange) IsEmpty() bool {
	return r.StartOffset == r.EndOffset
}

// Position represents a 1-based line and column in a document.
type Position struct {
	Line   int
	Column int
}

// IsValid returns true if this position has valid (positive) values.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}
