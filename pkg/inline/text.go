package inline

import (
	"strings"

	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/mdview/pkg/markup"
	"github.com/yaklabco/mdview/pkg/mdast"
)

// residual turns text that holds no delimiter pair into Text and LineBreak
// nodes. Whitespace runs collapse to one space, a single newline is a soft
// break, and two trailing spaces or a backslash before a newline give a
// LineBreak. With literal set, placeholders expand back to their source
// text instead of nodes.
func (f *fragment) residual(s string, depth int, literal bool) []*mdast.Node {
	var (
		out     []*mdast.Node
		buf     strings.Builder
		pending int
	)

	flush := func() {
		if buf.Len() > 0 {
			out = append(out, mdast.NewText(buf.String()))
			buf.Reset()
		}
	}
	lineBreak := func() {
		flush()
		out = append(out, mdast.NewLineBreak())
	}

	for i := 0; i < len(s); {
		c := s[i]

		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == '\n':
			lineBreak()
			i = skipBlanks(s, i+2)
			continue
		case c == '\\' && i+1 < len(s) && util.IsPunct(s[i+1]):
			buf.WriteByte(s[i+1])
			i += 2
			continue
		case c == ' ' || c == '\t':
			end := skipBlanks(s, i)
			if end < len(s) && s[end] == '\n' {
				pending = end - i
			} else {
				buf.WriteByte(' ')
			}
			i = end
			continue
		case c == '\n':
			if pending >= 2 {
				lineBreak()
			} else {
				buf.WriteByte(' ')
			}
			pending = 0
			i = skipBlanks(s, i+1)
			continue
		case c == '&':
			if decoded, end, ok := scanEntity(s, i); ok {
				buf.WriteString(decoded)
				i = end
				continue
			}
		}

		if idx, end, ok := markup.ParsePlaceholder(s, i, markup.MarkupOpen, markup.MarkupClose); ok {
			span, found := f.p.shadow.Span(idx)
			switch {
			case !found:
			case literal:
				buf.WriteString(span.Text(f.p.shadow.Source))
			default:
				flush()
				out = append(out, f.p.markupNodes(f.p.shadow.Source, span, depth)...)
			}
			i = end
			continue
		}

		if idx, end, ok := markup.ParsePlaceholder(s, i, markup.AtomOpen, markup.AtomClose); ok {
			if literal {
				if idx < len(f.atoms) {
					buf.WriteString(f.p.shadow.Expand(f.atoms[idx].raw))
				}
			} else {
				flush()
				out = append(out, f.expandAtom(idx, depth)...)
			}
			i = end
			continue
		}

		buf.WriteByte(c)
		i++
	}

	flush()
	return out
}

func skipBlanks(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	return pos
}

// scanEntity decodes a named or numeric character reference at s[pos].
func scanEntity(s string, pos int) (string, int, bool) {
	end := pos + 1
	for end < len(s) && end-pos <= 32 && (isASCIILetter(s[end]) || isDigit(s[end]) || s[end] == '#') {
		end++
	}
	if end >= len(s) || s[end] != ';' || end == pos+1 {
		return "", pos, false
	}
	ref := s[pos : end+1]
	decoded := decodeText(ref)
	if decoded == ref {
		return "", pos, false
	}
	return decoded, end + 1, true
}

// decodeText resolves character references in s.
func decodeText(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return string(util.ResolveNumericReferences(util.ResolveEntityNames([]byte(s))))
}

// literalText collapses whitespace in raw markup content and resolves
// character references.
func literalText(s string) []*mdast.Node {
	text := decodeText(strings.Join(strings.Fields(s), " "))
	if strings.TrimSpace(s) != s && text != "" {
		if strings.TrimLeft(s, " \t\r\n") != s {
			text = " " + text
		}
		if strings.TrimRight(s, " \t\r\n") != s {
			text += " "
		}
	}
	if text == "" {
		if s != "" {
			return []*mdast.Node{mdast.NewText(" ")}
		}
		return nil
	}
	return []*mdast.Node{mdast.NewText(text)}
}
