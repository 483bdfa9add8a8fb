package inline

import (
	"strings"

	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/mdview/pkg/markup"
	"github.com/yaklabco/mdview/pkg/mdast"
)

type atomKind uint8

const (
	atomCode atomKind = iota
	atomLink
	atomImage
	atomAutolink
)

// atom is a span cut out of the text before delimiter resolution.
type atom struct {
	kind atomKind

	// raw is the shadow text the atom replaced.
	raw string

	// label is the link text or image alt (shadow text), or the code content.
	label string

	dest  string
	title string
}

// fragment is the text of one parse call with atoms replaced by placeholders.
type fragment struct {
	p     *Parser
	text  string
	atoms []atom
}

func (p *Parser) extractAtoms(text string, depth int) *fragment {
	frag := &fragment{p: p}
	if !strings.ContainsAny(text, "`[<") {
		frag.text = text
		return frag
	}

	var repl []markup.Replacement
	add := func(a atom, start, end int) {
		repl = append(repl, markup.Replacement{
			Start: start,
			End:   end,
			With:  markup.Placeholder(markup.AtomOpen, markup.AtomClose, len(frag.atoms)),
		})
		frag.atoms = append(frag.atoms, a)
	}

	for pos := 0; pos < len(text); {
		switch c := text[pos]; {
		case c == '\\' && pos+1 < len(text) && util.IsPunct(text[pos+1]):
			pos += 2
		case c == '`':
			a, end, ok := scanCodeSpan(text, pos)
			if !ok {
				pos = end
				continue
			}
			a.content(p.shadow)
			add(a, pos, end)
			pos = end
		case c == '!' && pos+1 < len(text) && text[pos+1] == '[':
			a, end, ok := scanLink(text, pos+1)
			if !ok {
				pos++
				continue
			}
			a.kind = atomImage
			a.raw = text[pos:end]
			add(a, pos, end)
			pos = end
		case c == '[':
			a, end, ok := scanLink(text, pos)
			if !ok {
				pos++
				continue
			}
			add(a, pos, end)
			pos = end
		case c == '<':
			a, end, ok := scanAutolink(text, pos)
			if !ok {
				pos++
				continue
			}
			add(a, pos, end)
			pos = end
		default:
			pos++
		}
	}

	frag.text, _ = markup.Rewrite(text, repl)
	return frag
}

// content normalizes code span content: line endings become spaces and one
// space is stripped from each side when both are present.
func (a *atom) content(shadow *markup.Shadow) {
	code := strings.ReplaceAll(shadow.Expand(a.label), "\n", " ")
	if len(code) >= 2 && code[0] == ' ' && code[len(code)-1] == ' ' && strings.TrimSpace(code) != "" {
		code = code[1 : len(code)-1]
	}
	a.label = code
}

// scanCodeSpan reads a backtick code span at text[pos]. When no closing run
// exists it returns the offset past the opening run.
func scanCodeSpan(text string, pos int) (atom, int, bool) {
	run := countRun(text, pos, '`')
	for i := pos + run; i < len(text); {
		if text[i] != '`' {
			i++
			continue
		}
		closing := countRun(text, i, '`')
		if closing == run {
			return atom{kind: atomCode, raw: text[pos : i+closing], label: text[pos+run : i]}, i + closing, true
		}
		i += closing
	}
	return atom{}, pos + run, false
}

// scanLink reads "[label](dest "title")" starting at the '[' at text[pos].
func scanLink(text string, pos int) (atom, int, bool) {
	labelEnd, ok := matchBracket(text, pos)
	if !ok || labelEnd+1 >= len(text) || text[labelEnd+1] != '(' {
		return atom{}, pos, false
	}

	i := skipLinkSpace(text, labelEnd+2)
	dest, i, ok := scanDestination(text, i)
	if !ok {
		return atom{}, pos, false
	}

	var title string
	if j := skipLinkSpace(text, i); j > i && j < len(text) {
		if t, next, found := scanTitle(text, j); found {
			title, i = t, next
		}
	}

	i = skipLinkSpace(text, i)
	if i >= len(text) || text[i] != ')' {
		return atom{}, pos, false
	}

	return atom{
		kind:  atomLink,
		raw:   text[pos : i+1],
		label: text[pos+1 : labelEnd],
		dest:  dest,
		title: title,
	}, i + 1, true
}

// matchBracket finds the ']' closing the '[' at text[pos], allowing nested
// brackets and skipping escapes.
func matchBracket(text string, pos int) (int, bool) {
	depth := 0
	for i := pos; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		case '\n':
			if i+1 < len(text) && text[i+1] == '\n' {
				return 0, false
			}
		}
	}
	return 0, false
}

func scanDestination(text string, pos int) (string, int, bool) {
	if pos >= len(text) {
		return "", pos, false
	}

	if text[pos] == '<' {
		end := strings.IndexAny(text[pos+1:], ">\n")
		if end < 0 || text[pos+1+end] != '>' {
			return "", pos, false
		}
		return normalizeDestination(text[pos+1 : pos+1+end]), pos + end + 2, true
	}

	parens := 0
	i := pos
loop:
	for i < len(text) {
		switch c := text[i]; {
		case c == '\\' && i+1 < len(text):
			i += 2
			continue
		case c == '(':
			parens++
		case c == ')':
			if parens == 0 {
				break loop
			}
			parens--
		case c == ' ' || c == '\t' || c == '\n' || c < 0x20:
			break loop
		}
		i++
	}
	if parens != 0 {
		return "", pos, false
	}
	return normalizeDestination(text[pos:i]), i, true
}

func scanTitle(text string, pos int) (string, int, bool) {
	closing := text[pos]
	switch closing {
	case '"', '\'':
	case '(':
		closing = ')'
	default:
		return "", pos, false
	}

	for i := pos + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case closing:
			return decodeText(string(util.UnescapePunctuations([]byte(text[pos+1 : i])))), i + 1, true
		}
	}
	return "", pos, false
}

func skipLinkSpace(text string, pos int) int {
	newline := false
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t':
		case '\n':
			if newline {
				return pos
			}
			newline = true
		default:
			return pos
		}
		pos++
	}
	return pos
}

func normalizeDestination(dest string) string {
	unescaped := util.UnescapePunctuations([]byte(dest))
	return string(util.URLEscape([]byte(decodeText(string(unescaped))), false))
}

// scanAutolink reads "<scheme:target>" or "<user@host>" at text[pos].
func scanAutolink(text string, pos int) (atom, int, bool) {
	end := strings.IndexAny(text[pos+1:], "<> \t\n")
	if end <= 0 || text[pos+1+end] != '>' {
		return atom{}, pos, false
	}
	body := text[pos+1 : pos+1+end]
	stop := pos + end + 2

	if isURIAutolink(body) {
		return atom{kind: atomAutolink, raw: text[pos:stop], label: body, dest: normalizeDestination(body)}, stop, true
	}
	if isEmailAutolink(body) {
		return atom{kind: atomAutolink, raw: text[pos:stop], label: body, dest: "mailto:" + body}, stop, true
	}
	return atom{}, pos, false
}

func isURIAutolink(body string) bool {
	colon := strings.IndexByte(body, ':')
	if colon < 2 || colon > 32 || !isASCIILetter(body[0]) {
		return false
	}
	for i := 1; i < colon; i++ {
		c := body[i]
		if !isASCIILetter(c) && !isDigit(c) && c != '+' && c != '.' && c != '-' {
			return false
		}
	}
	return true
}

func isEmailAutolink(body string) bool {
	at := strings.IndexByte(body, '@')
	if at <= 0 || at == len(body)-1 || strings.Count(body, "@") != 1 {
		return false
	}
	host := body[at+1:]
	if strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") || strings.HasPrefix(host, "-") {
		return false
	}
	for i := range len(host) {
		c := host[i]
		if !isASCIILetter(c) && !isDigit(c) && c != '-' && c != '.' {
			return false
		}
	}
	for i := range at {
		c := body[i]
		if !isASCIILetter(c) && !isDigit(c) && !strings.ContainsRune(".!#$%&'*+/=?^_`{|}~-", rune(c)) {
			return false
		}
	}
	return true
}

// expandAtom builds the nodes for an atom found at the given depth.
func (f *fragment) expandAtom(idx, depth int) []*mdast.Node {
	if idx < 0 || idx >= len(f.atoms) {
		return nil
	}
	a := f.atoms[idx]
	p := f.p

	switch a.kind {
	case atomCode:
		return []*mdast.Node{mdast.NewCode(a.label)}
	case atomImage:
		alt := mdast.PlainText(mdast.NewInline(mdast.NodeParagraph, p.parse(a.label, depth)...))
		img := mdast.NewImage(a.dest, a.title, alt)
		img.Inline.Link.ResolvedURI = p.resolveURI(a.dest)
		return []*mdast.Node{img}
	}

	if !p.canNest(depth) {
		return []*mdast.Node{mdast.NewText(p.shadow.Expand(a.raw))}
	}

	var children []*mdast.Node
	if a.kind == atomAutolink {
		children = []*mdast.Node{mdast.NewText(a.label)}
	} else {
		children = p.parse(a.label, depth+1)
	}
	link := mdast.NewLink(a.dest, a.title, children...)
	link.Inline.Link.ResolvedURI = p.resolveURI(a.dest)
	return []*mdast.Node{link}
}

func countRun(text string, pos int, c byte) int {
	n := 0
	for pos+n < len(text) && text[pos+n] == c {
		n++
	}
	return n
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
