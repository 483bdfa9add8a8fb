// Package markup isolates embedded tag markup from the surrounding markdown
// so that characters inside tags are never read as markdown delimiters.
package markup

import (
	"sort"
	"strings"

	"github.com/yaklabco/mdview/pkg/chunk"
)

// SpanKind classifies an isolated span.
type SpanKind uint8

const (
	// SpanMarkdown is plain markdown text between markup spans.
	SpanMarkdown SpanKind = iota

	// SpanElement is a paired open and close tag with everything between.
	SpanElement

	// SpanVoid is a single self-closing tag.
	SpanVoid

	// SpanComment is a <!-- --> comment.
	SpanComment

	// SpanLiteral is an unmatched open tag or a stray close tag. It is kept
	// as opaque text.
	SpanLiteral
)

// String returns the name of the kind.
func (k SpanKind) String() string {
	switch k {
	case SpanMarkdown:
		return "markdown"
	case SpanElement:
		return "element"
	case SpanVoid:
		return "void"
	case SpanComment:
		return "comment"
	case SpanLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Span is one contiguous region of the input.
type Span struct {
	Kind SpanKind

	// Start and End are byte offsets into the isolated text.
	Start int
	End   int

	// Tag is the opening tag for element, void and literal spans.
	Tag Tag

	// InnerStart and InnerEnd delimit the content between the open and close
	// tags of an element span.
	InnerStart int
	InnerEnd   int
}

// IsMarkup reports whether the span is anything other than markdown.
func (s Span) IsMarkup() bool {
	return s.Kind != SpanMarkdown
}

// Text returns the raw text of the span.
func (s Span) Text(src string) string {
	return src[s.Start:s.End]
}

// Inner returns the content of an element span.
func (s Span) Inner(src string) string {
	if s.Kind != SpanElement {
		return ""
	}
	return src[s.InnerStart:s.InnerEnd]
}

type token struct {
	tag     Tag
	start   int
	end     int
	comment bool
	para    int
	match   int
}

// Isolate splits text into an ordered, non-overlapping sequence of spans
// that covers every byte exactly once. Tags inside fenced code blocks and
// code spans are not recognized. Malformed markup never fails: an open tag
// without a close becomes a literal span, and anything that does not scan
// as a tag stays markdown.
func Isolate(text string) []Span {
	if text == "" {
		return nil
	}

	tokens := scanTokens(text)
	pairTokens(tokens)

	var spans []Span
	cursor := 0
	emit := func(span Span) {
		if span.Start > cursor {
			spans = append(spans, Span{Kind: SpanMarkdown, Start: cursor, End: span.Start})
		}
		spans = append(spans, span)
		cursor = span.End
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok.comment:
			emit(Span{Kind: SpanComment, Start: tok.start, End: tok.end})
		case tok.tag.SelfClosing:
			emit(Span{Kind: SpanVoid, Start: tok.start, End: tok.end, Tag: tok.tag})
		case !tok.tag.Closing && tok.match > i:
			closer := tokens[tok.match]
			emit(Span{
				Kind:       SpanElement,
				Start:      tok.start,
				End:        closer.end,
				Tag:        tok.tag,
				InnerStart: tok.end,
				InnerEnd:   closer.start,
			})
			i = tok.match
		default:
			emit(Span{Kind: SpanLiteral, Start: tok.start, End: tok.end, Tag: tok.tag})
		}
	}

	if cursor < len(text) {
		spans = append(spans, Span{Kind: SpanMarkdown, Start: cursor, End: len(text)})
	}

	return spans
}

// scanTokens finds every tag and comment outside code regions.
func scanTokens(text string) []token {
	skips := codeRegions(text)
	breaks := paragraphBreaks(text)

	var tokens []token
	skipIdx := 0

	for pos := 0; pos < len(text); {
		for skipIdx < len(skips) && skips[skipIdx][1] <= pos {
			skipIdx++
		}
		if skipIdx < len(skips) && pos >= skips[skipIdx][0] {
			pos = skips[skipIdx][1]
			continue
		}

		switch text[pos] {
		case '\\':
			pos += 2
			continue
		case '<':
		default:
			pos++
			continue
		}

		if strings.HasPrefix(text[pos:], "<!--") {
			if end := strings.Index(text[pos+4:], "-->"); end >= 0 {
				stop := pos + 4 + end + 3
				tokens = append(tokens, token{start: pos, end: stop, comment: true, match: -1, para: paraIndex(breaks, pos)})
				pos = stop
				continue
			}
		}

		if tag, end, ok := ScanTag(text, pos); ok {
			tokens = append(tokens, token{tag: tag, start: pos, end: end, match: -1, para: paraIndex(breaks, pos)})
			pos = end
			continue
		}
		pos++
	}

	return tokens
}

// pairTokens links each close tag to its open tag using a stack. When a
// close tag matches an entry below the top, the entries above it are left
// unmatched. Inline elements do not pair across a blank line.
func pairTokens(tokens []token) {
	var stack []int

	for i := range tokens {
		tok := &tokens[i]
		if tok.comment || tok.tag.SelfClosing {
			continue
		}

		for len(stack) > 0 {
			top := tokens[stack[len(stack)-1]]
			if top.para == tok.para || IsBlockLevel(top.tag.Name) {
				break
			}
			stack = stack[:len(stack)-1]
		}

		if !tok.tag.Closing {
			stack = append(stack, i)
			continue
		}

		for depth := len(stack) - 1; depth >= 0; depth-- {
			open := stack[depth]
			if tokens[open].tag.Name == tok.tag.Name {
				tokens[open].match = i
				tok.match = open
				stack = stack[:depth]
				break
			}
		}
	}
}

// codeRegions returns sorted byte ranges of fenced code blocks and code spans.
func codeRegions(text string) [][2]int {
	lines := strings.SplitAfter(text, "\n")
	starts := make([]int, len(lines)+1)
	for i, line := range lines {
		starts[i+1] = starts[i] + len(line)
	}

	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, "\r\n")
	}

	var regions [][2]int
	cursor := 0
	for _, span := range chunk.FenceSpans(trimmed) {
		regions = append(regions, codeSpanRegions(text, starts[cursor], starts[span[0]])...)
		regions = append(regions, [2]int{starts[span[0]], starts[span[1]]})
		cursor = span[1]
	}
	regions = append(regions, codeSpanRegions(text, starts[cursor], len(text))...)

	return regions
}

// codeSpanRegions finds backtick code spans in text[from:to].
func codeSpanRegions(text string, from, to int) [][2]int {
	var regions [][2]int
	for pos := from; pos < to; {
		switch text[pos] {
		case '\\':
			pos += 2
			continue
		case '`':
		default:
			pos++
			continue
		}

		run := backtickRun(text, pos, to)
		closeAt := findBacktickRun(text, pos+run, to, run)
		if closeAt < 0 {
			pos += run
			continue
		}
		regions = append(regions, [2]int{pos, closeAt + run})
		pos = closeAt + run
	}
	return regions
}

func backtickRun(text string, pos, limit int) int {
	n := 0
	for pos+n < limit && text[pos+n] == '`' {
		n++
	}
	return n
}

// findBacktickRun returns the offset of the next run of exactly n backticks.
func findBacktickRun(text string, from, limit, n int) int {
	for pos := from; pos < limit; {
		if text[pos] != '`' {
			pos++
			continue
		}
		run := backtickRun(text, pos, limit)
		if run == n {
			return pos
		}
		pos += run
	}
	return -1
}

// paragraphBreaks returns the offsets of blank lines, sorted.
func paragraphBreaks(text string) []int {
	var breaks []int
	lineStart := 0
	for lineStart <= len(text) {
		end := strings.IndexByte(text[lineStart:], '\n')
		line := text[lineStart:]
		if end >= 0 {
			line = text[lineStart : lineStart+end]
		}
		if strings.TrimSpace(line) == "" && lineStart > 0 {
			breaks = append(breaks, lineStart)
		}
		if end < 0 {
			break
		}
		lineStart += end + 1
	}
	return breaks
}

func paraIndex(breaks []int, pos int) int {
	return sort.SearchInts(breaks, pos+1)
}
