package grammar

import (
	"strings"

	"github.com/yaklabco/mdview/pkg/mdast"
)

// paragraphs turns unclaimed lines into paragraphs separated by blank lines.
func (p *parser) paragraphs(lines []line) []*mdast.Node {
	var (
		out   []*mdast.Node
		group []line
	)
	flush := func() {
		if len(group) > 0 {
			out = append(out, p.paragraph(group))
		}
		group = nil
	}

	for _, ln := range lines {
		if ln.blank() {
			flush()
			continue
		}
		group = append(group, ln.strip(ln.indent()))
	}
	flush()
	return out
}

func (p *parser) paragraph(group []line) *mdast.Node {
	text := joinText(group)
	text = strings.TrimRight(text, " \t")

	node := mdast.NewNode(mdast.NodeParagraph)
	node.Origin = p.origin(group)

	if p.status.AlignmentDirectives {
		var align mdast.Alignment
		text, align = alignment(text)
		if align != mdast.AlignDefault {
			node.Block = &mdast.BlockAttrs{Align: align}
		}
	}

	node.Children = p.inlines(text)
	return node
}

// alignment strips an alignment directive: "->text<-" centers and
// "->text->" aligns right.
func alignment(text string) (string, mdast.Alignment) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < len("-><-") || !strings.HasPrefix(trimmed, "->") {
		return text, mdast.AlignDefault
	}
	inner := strings.TrimSpace(trimmed[2 : len(trimmed)-2])
	switch {
	case strings.HasSuffix(trimmed, "<-"):
		return inner, mdast.AlignCenter
	case strings.HasSuffix(trimmed, "->"):
		return inner, mdast.AlignRight
	default:
		return text, mdast.AlignDefault
	}
}
