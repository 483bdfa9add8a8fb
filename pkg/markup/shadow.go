package markup

import (
	"sort"
	"strconv"
	"strings"
)

// Sentinel runes bracket placeholder indexes in rewritten text. They sit in
// the private-use area and are stripped from input by Sanitize, so any
// occurrence in a shadow text is a placeholder.
const (
	MarkupOpen  = '\uE000'
	MarkupClose = '\uE001'
	AtomOpen    = '\uE002'
	AtomClose   = '\uE003'
)

// Sanitize replaces sentinel runes in user input with U+FFFD. Both encode to
// three bytes in UTF-8, so offsets are unchanged.
func Sanitize(text string) string {
	if !strings.ContainsFunc(text, isSentinel) {
		return text
	}
	return strings.Map(func(r rune) rune {
		if isSentinel(r) {
			return '\uFFFD'
		}
		return r
	}, text)
}

func isSentinel(r rune) bool {
	return r >= MarkupOpen && r <= AtomClose
}

// Placeholder formats the placeholder for index idx.
func Placeholder(open, closing rune, idx int) string {
	return string(open) + strconv.Itoa(idx) + string(closing)
}

// ParsePlaceholder reads a placeholder starting at text[pos]. It returns the
// index and the offset just past the closing sentinel.
func ParsePlaceholder(text string, pos int, open, closing rune) (int, int, bool) {
	openStr := string(open)
	if !strings.HasPrefix(text[pos:], openStr) {
		return 0, pos, false
	}
	start := pos + len(openStr)
	end := start
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	closeStr := string(closing)
	if end == start || !strings.HasPrefix(text[end:], closeStr) {
		return 0, pos, false
	}
	idx, err := strconv.Atoi(text[start:end])
	if err != nil {
		return 0, pos, false
	}
	return idx, end + len(closeStr), true
}

// Replacement substitutes text[Start:End] with With.
type Replacement struct {
	Start int
	End   int
	With  string
}

type segment struct {
	shadowStart int
	sourceStart int
	shadowLen   int
	sourceLen   int
}

// OffsetMap translates offsets in rewritten text back to the original.
type OffsetMap struct {
	segments []segment
	shadow   int
	source   int
}

// Rewrite applies sorted, non-overlapping replacements to text.
func Rewrite(text string, repl []Replacement) (string, *OffsetMap) {
	var (
		sb     strings.Builder
		offMap = &OffsetMap{source: len(text)}
		cursor int
	)
	sb.Grow(len(text))

	plain := func(to int) {
		if to <= cursor {
			return
		}
		offMap.segments = append(offMap.segments, segment{
			shadowStart: sb.Len(), sourceStart: cursor,
			shadowLen: to - cursor, sourceLen: to - cursor,
		})
		sb.WriteString(text[cursor:to])
	}

	for _, r := range repl {
		plain(r.Start)
		offMap.segments = append(offMap.segments, segment{
			shadowStart: sb.Len(), sourceStart: r.Start,
			shadowLen: len(r.With), sourceLen: r.End - r.Start,
		})
		sb.WriteString(r.With)
		cursor = r.End
	}
	plain(len(text))

	offMap.shadow = sb.Len()
	return sb.String(), offMap
}

// Source maps a rewritten offset to the original text. Offsets inside a
// replacement map to the start of the replaced range; its end maps to the
// end of the replaced range.
func (m *OffsetMap) Source(offset int) int {
	if m == nil {
		return offset
	}
	if offset >= m.shadow {
		return m.source + offset - m.shadow
	}
	idx := sort.Search(len(m.segments), func(i int) bool {
		return m.segments[i].shadowStart > offset
	}) - 1
	if idx < 0 {
		return offset
	}
	seg := m.segments[idx]
	if seg.shadowLen == seg.sourceLen {
		return seg.sourceStart + offset - seg.shadowStart
	}
	return seg.sourceStart
}

// Shadow is a source text with every markup span replaced by a placeholder.
type Shadow struct {
	// Source is the sanitized input.
	Source string

	// Text is the rewritten text fed to the block grammar.
	Text string

	// Spans holds the markup spans, indexed by placeholder number.
	Spans []Span

	offsets *OffsetMap
}

// NewShadow isolates markup in source and replaces each markup span with a
// placeholder. Source should already be sanitized.
func NewShadow(source string) *Shadow {
	var (
		spans []Span
		repl  []Replacement
	)
	for _, span := range Isolate(source) {
		if !span.IsMarkup() {
			continue
		}
		repl = append(repl, Replacement{
			Start: span.Start,
			End:   span.End,
			With:  Placeholder(MarkupOpen, MarkupClose, len(spans)),
		})
		spans = append(spans, span)
	}

	text, offsets := Rewrite(source, repl)
	return &Shadow{Source: source, Text: text, Spans: spans, offsets: offsets}
}

// SourceOffset maps an offset in Text to an offset in Source.
func (s *Shadow) SourceOffset(offset int) int {
	return s.offsets.Source(offset)
}

// Restore returns the source text covered by Text[start:end], with
// placeholders expanded back to their original markup.
func (s *Shadow) Restore(start, end int) string {
	from := s.offsets.Source(start)
	to := s.offsets.Source(end)
	if to < from {
		return ""
	}
	if strings.ContainsRune(s.Text[start:end], MarkupOpen) {
		return expandPlaceholders(s.Text[start:end], s.Spans, s.Source)
	}
	return s.Source[from:to]
}

// Expand replaces every markup placeholder in fragment with the original markup.
func (s *Shadow) Expand(fragment string) string {
	if !strings.ContainsRune(fragment, MarkupOpen) {
		return fragment
	}
	return expandPlaceholders(fragment, s.Spans, s.Source)
}

// Span returns the markup span for a placeholder index.
func (s *Shadow) Span(idx int) (Span, bool) {
	if idx < 0 || idx >= len(s.Spans) {
		return Span{}, false
	}
	return s.Spans[idx], true
}

// SoleSpan reports whether line consists of exactly one markup placeholder,
// ignoring surrounding whitespace.
func (s *Shadow) SoleSpan(line string) (Span, bool) {
	trimmed := strings.TrimSpace(line)
	idx, end, ok := ParsePlaceholder(trimmed, 0, MarkupOpen, MarkupClose)
	if !ok || end != len(trimmed) {
		return Span{}, false
	}
	return s.Span(idx)
}

func expandPlaceholders(fragment string, spans []Span, source string) string {
	var sb strings.Builder
	for pos := 0; pos < len(fragment); {
		if idx, end, ok := ParsePlaceholder(fragment, pos, MarkupOpen, MarkupClose); ok && idx < len(spans) {
			sb.WriteString(spans[idx].Text(source))
			pos = end
			continue
		}
		sb.WriteByte(fragment[pos])
		pos++
	}
	return sb.String()
}
