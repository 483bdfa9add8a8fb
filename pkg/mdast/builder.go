package mdast

// NewNode creates a new node of the specified kind with no children.
func NewNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// NewDocument creates a new document root node.
func NewDocument() *Node {
	return NewNode(NodeDocument)
}

// NewText creates a Text leaf.
func NewText(text string) *Node {
	return &Node{Kind: NodeText, Inline: &InlineAttrs{Text: text}}
}

// NewCode creates an inline Code leaf.
func NewCode(code string) *Node {
	return &Node{Kind: NodeCode, Inline: &InlineAttrs{Text: code}}
}

// NewLineBreak creates an explicit line break.
func NewLineBreak() *Node {
	return NewNode(NodeLineBreak)
}

// NewInline creates an inline container of the given kind around children.
func NewInline(kind NodeKind, children ...*Node) *Node {
	n := NewNode(kind)
	n.Children = children
	return n
}

// NewLink creates a Link with the given target, title and children.
func NewLink(destination, title string, children ...*Node) *Node {
	n := NewInline(NodeLink, children...)
	n.Inline = &InlineAttrs{Link: &LinkAttrs{Destination: destination, Title: title}}
	return n
}

// NewImage creates an Image leaf.
func NewImage(uri, title, alt string) *Node {
	return &Node{
		Kind:   NodeImage,
		Inline: &InlineAttrs{Link: &LinkAttrs{Destination: uri, Title: title, Alt: alt}},
	}
}

// NewColoredSpan creates a ColoredSpan around children.
func NewColoredSpan(foreground, background string, children ...*Node) *Node {
	n := NewInline(NodeColoredSpan, children...)
	n.Inline = &InlineAttrs{Color: &ColorAttrs{Foreground: foreground, Background: background}}
	return n
}

// NewErrorNode creates the placeholder that replaces a document whose parse failed.
func NewErrorNode(message string) *Node {
	return &Node{Kind: NodeError, Block: &BlockAttrs{Message: message}}
}

// AppendChild appends child to parent. Nil arguments are ignored.
func AppendChild(parent, child *Node) {
	if parent == nil || child == nil {
		return
	}
	parent.Children = append(parent.Children, child)
}

// AppendChildren appends every non-nil child to parent.
func AppendChildren(parent *Node, children ...*Node) {
	if parent == nil {
		return
	}
	for _, child := range children {
		AppendChild(parent, child)
	}
}

// MergeText joins adjacent Text leaves in a slice of inline nodes and drops
// empty ones. The input slice is reused.
func MergeText(nodes []*Node) []*Node {
	out := nodes[:0]
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if node.Kind == NodeText {
			if node.Text() == "" {
				continue
			}
			if len(out) > 0 && out[len(out)-1].Kind == NodeText {
				prev := out[len(out)-1]
				out[len(out)-1] = &Node{
					Kind:   NodeText,
					Origin: joinRanges(prev.Origin, node.Origin),
					Inline: &InlineAttrs{Text: prev.Text() + node.Text()},
				}
				continue
			}
		}
		out = append(out, node)
	}
	return out
}

func joinRanges(a, b SourceRange) SourceRange {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	return SourceRange{StartOffset: min(a.StartOffset, b.StartOffset), EndOffset: max(a.EndOffset, b.EndOffset)}
}
