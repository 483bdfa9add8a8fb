package termrender

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/mdview/pkg/mdast"
)

// line is one rendered row and its display width.
type line struct {
	text  string
	width int
}

// span is a run of text sharing a style. brk marks an explicit line break.
type span struct {
	text  string
	style lipgloss.Style
	brk   bool
}

// spans flattens inline nodes into styled runs.
func (r *Renderer) spans(nodes []*mdast.Node, style lipgloss.Style, out []span) []span {
	for _, node := range nodes {
		switch node.Kind {
		case mdast.NodeText:
			out = append(out, span{text: node.Text(), style: style})
		case mdast.NodeCode:
			out = append(out, span{text: node.Text(), style: r.theme.Code.Inherit(style)})
		case mdast.NodeBold:
			out = r.spans(node.Children, style.Bold(true), out)
		case mdast.NodeItalic:
			out = r.spans(node.Children, style.Italic(true), out)
		case mdast.NodeUnderline:
			out = r.spans(node.Children, style.Underline(true), out)
		case mdast.NodeStrikethrough:
			out = r.spans(node.Children, style.Strikethrough(true), out)
		case mdast.NodeLink:
			out = r.spans(node.Children, r.theme.Link.Inherit(style), out)
		case mdast.NodeImage:
			alt := ""
			if node.Inline != nil && node.Inline.Link != nil {
				alt = node.Inline.Link.Alt
			}
			out = append(out, span{text: "[image: " + alt + "]", style: r.theme.Image.Inherit(style)})
		case mdast.NodeColoredSpan:
			colored := style
			if node.Inline != nil && node.Inline.Color != nil {
				if fg, ok := markupColor(node.Inline.Color.Foreground); ok {
					colored = colored.Foreground(fg)
				}
				if bg, ok := markupColor(node.Inline.Color.Background); ok {
					colored = colored.Background(bg)
				}
			}
			out = r.spans(node.Children, colored, out)
		case mdast.NodeLineBreak:
			out = append(out, span{brk: true})
		default:
			out = r.spans(node.Children, style, out)
		}
	}
	return out
}

// piece is the part of a word that carries one style.
type piece struct {
	text  string
	style lipgloss.Style
}

// word is a whitespace-free unit of wrapping.
type word struct {
	pieces []piece
	width  int
	brk    bool
}

func (w *word) add(text string, style lipgloss.Style) {
	w.pieces = append(w.pieces, piece{text: text, style: style})
	w.width += runewidth.StringWidth(text)
}

// words splits runs at whitespace. Adjacent runs without whitespace between
// them form one word.
func words(spans []span) []word {
	var (
		out []word
		cur word
	)
	flush := func() {
		if len(cur.pieces) > 0 {
			out = append(out, cur)
		}
		cur = word{}
	}

	for _, s := range spans {
		if s.brk {
			flush()
			out = append(out, word{brk: true})
			continue
		}

		start := -1
		for i, r := range s.text {
			if unicode.IsSpace(r) {
				if start >= 0 {
					cur.add(s.text[start:i], s.style)
					start = -1
				}
				flush()
				continue
			}
			if start < 0 {
				start = i
			}
		}
		if start >= 0 {
			cur.add(s.text[start:], s.style)
		}
	}
	flush()

	return out
}

// wrap lays words out greedily into lines no wider than width. Words wider
// than width are broken between runes.
func (r *Renderer) wrap(spans []span, width int) []line {
	width = max(width, 1)

	var (
		lines []line
		b     strings.Builder
		cur   int
	)
	emit := func() {
		lines = append(lines, line{text: b.String(), width: cur})
		b.Reset()
		cur = 0
	}

	for _, w := range words(spans) {
		if w.brk {
			emit()
			continue
		}

		if w.width > width {
			if cur > 0 {
				emit()
			}
			for _, p := range w.pieces {
				var chunk strings.Builder
				for _, ch := range p.text {
					rw := runewidth.RuneWidth(ch)
					if cur > 0 && cur+rw > width {
						b.WriteString(r.theme.render(p.style, chunk.String()))
						chunk.Reset()
						emit()
					}
					chunk.WriteRune(ch)
					cur += rw
				}
				b.WriteString(r.theme.render(p.style, chunk.String()))
			}
			continue
		}

		gap := 0
		if cur > 0 {
			gap = 1
		}
		if cur+gap+w.width > width {
			emit()
			gap = 0
		}
		if gap > 0 {
			b.WriteByte(' ')
		}
		for _, p := range w.pieces {
			b.WriteString(r.theme.render(p.style, p.text))
		}
		cur += gap + w.width
	}
	if b.Len() > 0 {
		emit()
	}

	return lines
}

// align pads lines for centered or right-aligned paragraphs.
func align(lines []line, width int, alignment mdast.Alignment) []line {
	for i, l := range lines {
		pad := width - l.width
		if pad <= 0 {
			continue
		}
		switch alignment {
		case mdast.AlignCenter:
			pad /= 2
		case mdast.AlignRight:
		default:
			continue
		}
		lines[i] = line{text: strings.Repeat(" ", pad) + l.text, width: l.width + pad}
	}
	return lines
}

// truncate cuts plain text to width display cells, marking the cut.
func truncate(text string, width int) string {
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 1 {
		return runewidth.Truncate(text, width, "")
	}
	return runewidth.Truncate(text, width, "…")
}

// expandTabs replaces tabs with spaces up to the next multiple of four.
func expandTabs(s string, col int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\t' {
			n := 4 - col%4
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}
