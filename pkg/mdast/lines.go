package mdast

import "sort"

// Lines indexes the line starts of a source text so byte offsets such as
// Origin bounds can be reported as line and column.
type Lines struct {
	starts []int
	size   int
}

// BuildLines indexes content. A CR before LF belongs to the line it ends.
func BuildLines(content string) Lines {
	starts := []int{0}
	for i := range len(content) {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return Lines{starts: starts, size: len(content)}
}

// Position converts a byte offset into a 1-based line and byte column. An
// offset equal to the text length is the position just past the last byte.
// Out-of-range offsets give the zero Position.
func (l Lines) Position(offset int) Position {
	if offset < 0 || offset > l.size || len(l.starts) == 0 {
		return Position{}
	}
	line := sort.Search(len(l.starts), func(i int) bool {
		return l.starts[i] > offset
	}) - 1
	return Position{Line: line + 1, Column: offset - l.starts[line] + 1}
}
