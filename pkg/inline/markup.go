package inline

import (
	"strings"

	"github.com/yaklabco/mdview/pkg/markup"
	"github.com/yaklabco/mdview/pkg/mdast"
)

//nolint:gochecknoglobals // Read-only lookup table.
var elementKinds = map[string]mdast.NodeKind{
	"b":      mdast.NodeBold,
	"strong": mdast.NodeBold,
	"i":      mdast.NodeItalic,
	"em":     mdast.NodeItalic,
	"cite":   mdast.NodeItalic,
	"dfn":    mdast.NodeItalic,
	"var":    mdast.NodeItalic,
	"u":      mdast.NodeUnderline,
	"ins":    mdast.NodeUnderline,
	"s":      mdast.NodeStrikethrough,
	"del":    mdast.NodeStrikethrough,
	"strike": mdast.NodeStrikethrough,
}

//nolint:gochecknoglobals // Read-only lookup table.
var codeElements = map[string]bool{"code": true, "kbd": true, "samp": true, "tt": true}

//nolint:gochecknoglobals // Read-only lookup table.
var droppedElements = map[string]bool{"script": true, "style": true, "template": true, "head": true}

// markupNodes interprets one isolated span of src. Markup content is opaque
// to markdown: nested tags are interpreted, everything else is literal text.
// Each element level counts toward the nesting bound.
func (p *Parser) markupNodes(src string, span markup.Span, depth int) []*mdast.Node {
	switch span.Kind {
	case markup.SpanComment:
		return nil
	case markup.SpanMarkdown, markup.SpanLiteral:
		return literalText(span.Text(src))
	case markup.SpanVoid:
		return p.voidElement(span.Tag)
	case markup.SpanElement:
		return p.element(src, span, depth)
	default:
		return nil
	}
}

func (p *Parser) voidElement(tag markup.Tag) []*mdast.Node {
	switch tag.Name {
	case "br":
		return []*mdast.Node{mdast.NewLineBreak()}
	case "img":
		src, _ := tag.Attr("src")
		title, _ := tag.Attr("title")
		alt, _ := tag.Attr("alt")
		src = normalizeDestination(src)
		img := mdast.NewImage(src, decodeText(title), decodeText(alt))
		img.Inline.Link.ResolvedURI = p.resolveURI(src)
		return []*mdast.Node{img}
	default:
		return nil
	}
}

func (p *Parser) element(src string, span markup.Span, depth int) []*mdast.Node {
	tag := span.Tag
	inner := span.Inner(src)

	switch {
	case droppedElements[tag.Name]:
		return nil
	case codeElements[tag.Name]:
		return []*mdast.Node{mdast.NewCode(decodeText(stripTags(inner)))}
	case !p.canNest(depth):
		return literalText(span.Text(src))
	}

	node := p.containerFor(tag)
	children := mdast.MergeText(p.markupContent(inner, depth+1))
	if node == nil {
		return children
	}
	node.Children = children
	return []*mdast.Node{node}
}

// containerFor returns the empty container node a tag maps to, or nil when
// the tag only groups its content.
func (p *Parser) containerFor(tag markup.Tag) *mdast.Node {
	if kind, ok := elementKinds[tag.Name]; ok {
		return mdast.NewNode(kind)
	}

	switch tag.Name {
	case "a":
		href, ok := tag.Attr("href")
		if !ok {
			return nil
		}
		title, _ := tag.Attr("title")
		href = normalizeDestination(href)
		link := mdast.NewLink(href, decodeText(title))
		link.Inline.Link.ResolvedURI = p.resolveURI(href)
		return link
	case "font":
		color, _ := tag.Attr("color")
		if color == "" {
			return nil
		}
		return mdast.NewColoredSpan(color, "")
	case "mark":
		fg, bg := styleColors(tag)
		if bg == "" {
			bg = "yellow"
		}
		return mdast.NewColoredSpan(fg, bg)
	case "span":
		fg, bg := styleColors(tag)
		if fg == "" && bg == "" {
			return nil
		}
		return mdast.NewColoredSpan(fg, bg)
	}
	return nil
}

// styleColors extracts foreground and background from a style attribute.
func styleColors(tag markup.Tag) (string, string) {
	style, ok := tag.Attr("style")
	if !ok {
		return "", ""
	}

	var fg, bg string
	for _, decl := range strings.Split(decodeText(style), ";") {
		name, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "color":
			fg = value
		case "background", "background-color":
			bg = value
		}
	}
	return fg, bg
}

func (p *Parser) markupContent(text string, depth int) []*mdast.Node {
	var out []*mdast.Node
	for _, span := range markup.Isolate(text) {
		out = append(out, p.markupNodes(text, span, depth)...)
	}
	return out
}

// stripTags removes anything that scans as a tag, keeping the text between.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var sb strings.Builder
	for pos := 0; pos < len(s); {
		if s[pos] == '<' {
			if _, end, ok := markup.ScanTag(s, pos); ok {
				pos = end
				continue
			}
		}
		sb.WriteByte(s[pos])
		pos++
	}
	return sb.String()
}
