// Package chunk finds line boundaries at which a document may be cut for
// progressive parsing without bisecting a fenced code block.
package chunk

import "strings"

// MinFenceLength is the shortest run of backticks or tildes that opens a fence.
const MinFenceLength = 3

// Fence describes an opening code fence marker.
type Fence struct {
	// Char is '`' or '~'.
	Char byte

	// Length is the number of marker characters in the run.
	Length int

	// Indent is the number of leading spaces and tabs before the marker.
	Indent int

	// Info is the trimmed text following the marker.
	Info string
}

// DetectFence reports whether line opens a fenced code block.
// Leading whitespace is ignored; indentation is recorded but not checked.
func DetectFence(line string) (Fence, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return Fence{}, false
	}

	first := trimmed[0]
	if first != '`' && first != '~' {
		return Fence{}, false
	}

	count := countRun(trimmed, first)
	if count < MinFenceLength {
		return Fence{}, false
	}

	info := strings.TrimSpace(trimmed[count:])
	if first == '`' && strings.IndexByte(info, '`') >= 0 {
		return Fence{}, false
	}

	return Fence{
		Char:   first,
		Length: count,
		Indent: len(line) - len(trimmed),
		Info:   info,
	}, true
}

// Closes reports whether line closes a block opened by f: a run of the same
// marker character at least as long as the opener, followed only by
// whitespace.
func (f Fence) Closes(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	count := countRun(trimmed, f.Char)
	if count < f.Length {
		return false
	}
	return strings.TrimSpace(trimmed[count:]) == ""
}

// Marker returns the literal fence run, e.g. "```".
func (f Fence) Marker() string {
	return strings.Repeat(string(f.Char), f.Length)
}

func countRun(s string, char byte) int {
	n := 0
	for n < len(s) && s[n] == char {
		n++
	}
	return n
}
