package grammar

import (
	"strings"

	"github.com/yaklabco/mdview/pkg/mdast"
)

const tabWidth = 4

// line is one source line without its terminator. start is the offset of
// text within the shadow document, so nested containers that strip prefixes
// keep absolute positions.
type line struct {
	text  string
	start int
}

func (l line) end() int {
	return l.start + len(l.text)
}

func (l line) blank() bool {
	return strings.TrimSpace(l.text) == ""
}

// trimmed returns the text with leading whitespace removed.
func (l line) trimmed() string {
	return strings.TrimLeft(l.text, " \t")
}

// indent returns the leading whitespace width with tabs expanded.
func (l line) indent() int {
	width := 0
	for i := range len(l.text) {
		switch l.text[i] {
		case ' ':
			width++
		case '\t':
			width += tabWidth - width%tabWidth
		default:
			return width
		}
	}
	return width
}

// strip removes up to n columns of leading whitespace.
func (l line) strip(n int) line {
	width, i := 0, 0
	for i < len(l.text) && width < n {
		switch l.text[i] {
		case ' ':
			width++
		case '\t':
			width += tabWidth - width%tabWidth
		default:
			return line{text: l.text[i:], start: l.start + i}
		}
		i++
	}
	return line{text: l.text[i:], start: l.start + i}
}

// from returns the line starting at byte offset i of its text.
func (l line) from(i int) line {
	i = min(max(i, 0), len(l.text))
	return line{text: l.text[i:], start: l.start + i}
}

func splitLines(text string) []line {
	if text == "" {
		return nil
	}
	var lines []line
	start := 0
	for start <= len(text) {
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			if start < len(text) {
				lines = append(lines, line{text: strings.TrimSuffix(text[start:], "\r"), start: start})
			}
			break
		}
		lines = append(lines, line{text: strings.TrimSuffix(text[start:start+end], "\r"), start: start})
		start += end + 1
	}
	return lines
}

func joinText(lines []line) string {
	parts := make([]string, len(lines))
	for i, ln := range lines {
		parts[i] = ln.text
	}
	return strings.Join(parts, "\n")
}

// trimBlank drops leading and trailing blank lines.
func trimBlank(lines []line) []line {
	for len(lines) > 0 && lines[0].blank() {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1].blank() {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// origin maps a line range in the shadow document to the source.
func (p *parser) origin(lines []line) mdast.SourceRange {
	if len(lines) == 0 {
		return mdast.SourceRange{}
	}
	return mdast.Range(
		p.shadow.SourceOffset(lines[0].start),
		p.shadow.SourceOffset(lines[len(lines)-1].end()),
	)
}

func isThematicBreak(trimmed string) bool {
	var marker byte
	count := 0
	for i := range len(trimmed) {
		c := trimmed[i]
		switch {
		case c == ' ' || c == '\t':
			continue
		case marker == 0 && (c == '-' || c == '*' || c == '_'):
			marker = c
		case c != marker:
			return false
		}
		count++
	}
	return count >= 3
}

func allByte(s string, c byte) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if s[i] != c {
			return false
		}
	}
	return true
}
