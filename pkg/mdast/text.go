package mdast

import "strings"

// PlainText returns the visible text of a subtree with formatting removed.
// Block children are separated by newlines; line breaks become "\n".
func PlainText(n *Node) string {
	var sb strings.Builder
	writePlain(&sb, n)
	return sb.String()
}

func writePlain(sb *strings.Builder, n *Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case NodeText, NodeCode:
		sb.WriteString(n.Text())
		return
	case NodeLineBreak:
		sb.WriteByte('\n')
		return
	case NodeImage:
		if n.Inline != nil && n.Inline.Link != nil {
			sb.WriteString(n.Inline.Link.Alt)
		}
		return
	case NodeCodeBlock:
		if n.Block != nil && n.Block.CodeBlock != nil {
			sb.WriteString(n.Block.CodeBlock.Content)
		}
		return
	case NodeRawBlock:
		if n.Block != nil && n.Block.Raw != nil {
			sb.WriteString(n.Block.Raw.Payload)
		}
		return
	case NodeError:
		if n.Block != nil {
			sb.WriteString(n.Block.Message)
		}
		return
	case NodeTableRow:
		for i, cell := range n.Children {
			if i > 0 {
				sb.WriteByte('\t')
			}
			writePlain(sb, cell)
		}
		return
	}

	for i, child := range n.Children {
		if i > 0 && child.IsBlock() {
			sb.WriteByte('\n')
		}
		writePlain(sb, child)
	}
}

// InlineDepth returns the deepest chain of nested inline containers under n.
func InlineDepth(n *Node) int {
	return nestingDepth(n, NodeKind.IsInlineContainer)
}

// BlockDepth returns the deepest chain of nested block nodes under n,
// counting n itself when it is a block.
func BlockDepth(n *Node) int {
	return nestingDepth(n, NodeKind.IsBlock)
}

// nestingDepth returns the longest root-to-leaf count of nodes whose kind
// satisfies counts.
func nestingDepth(n *Node, counts func(NodeKind) bool) int {
	deepest, current := 0, 0
	//nolint:errcheck // the callbacks never fail
	WalkWithContext(n,
		func(c *Node) error {
			if counts(c.Kind) {
				current++
				deepest = max(deepest, current)
			}
			return nil
		},
		func(c *Node) error {
			if counts(c.Kind) {
				current--
			}
			return nil
		})
	return deepest
}
