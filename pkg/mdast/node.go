package mdast

// NodeKind classifies the type of a document tree node.
type NodeKind uint16

// Node kinds for block-level and inline-level elements.
const (
	NodeDocument NodeKind = iota

	// Block-level nodes.
	NodeParagraph
	NodeHeading
	NodeList
	NodeListItem
	NodeTable
	NodeTableRow
	NodeTableCell
	NodeCodeBlock
	NodeBlockquote
	NodeRawBlock
	NodeContainer
	NodeThematicBreak
	NodeError

	// Inline-level nodes.
	NodeText
	NodeBold
	NodeItalic
	NodeStrikethrough
	NodeUnderline
	NodeCode
	NodeLink
	NodeImage
	NodeColoredSpan
	NodeLineBreak
)

//nolint:gochecknoglobals // Read-only lookup table.
var nodeKindNames = [...]string{
	NodeDocument:      "Document",
	NodeParagraph:     "Paragraph",
	NodeHeading:       "Heading",
	NodeList:          "List",
	NodeListItem:      "ListItem",
	NodeTable:         "Table",
	NodeTableRow:      "TableRow",
	NodeTableCell:     "TableCell",
	NodeCodeBlock:     "CodeBlock",
	NodeBlockquote:    "Blockquote",
	NodeRawBlock:      "RawBlock",
	NodeContainer:     "Container",
	NodeThematicBreak: "ThematicBreak",
	NodeError:         "Error",
	NodeText:          "Text",
	NodeBold:          "Bold",
	NodeItalic:        "Italic",
	NodeStrikethrough: "Strikethrough",
	NodeUnderline:     "Underline",
	NodeCode:          "Code",
	NodeLink:          "Link",
	NodeImage:         "Image",
	NodeColoredSpan:   "ColoredSpan",
	NodeLineBreak:     "LineBreak",
}

// String returns the name of the kind.
func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) && nodeKindNames[k] != "" {
		return nodeKindNames[k]
	}
	return "Unknown"
}

// MarshalText encodes the kind by name so dumps stay readable.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Node is a single element of the document tree.
//
// A node owns its children exclusively. There are no parent or sibling
// pointers; the only link back to the source is Origin, which is used for
// incremental diffing and never for navigation. Trees returned by the
// grammar engine are immutable once built and may be shared across
// goroutines.
type Node struct {
	// Kind identifies the variant.
	Kind NodeKind `json:"kind" yaml:"kind"`

	// Children are owned child nodes in document order.
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`

	// Origin is the byte range in the source this node was produced from.
	// Zero for synthetic nodes.
	Origin SourceRange `json:"origin" yaml:"origin"`

	// Block holds attributes for block-level nodes.
	Block *BlockAttrs `json:"block,omitempty" yaml:"block,omitempty"`

	// Inline holds attributes for inline-level nodes.
	Inline *InlineAttrs `json:"inline,omitempty" yaml:"inline,omitempty"`
}

// IsBlock returns true if this is a block-level node.
func (n *Node) IsBlock() bool {
	return n.Kind.IsBlock()
}

// IsInline returns true if this is an inline-level node.
func (n *Node) IsInline() bool {
	return n.Kind.IsInline()
}

// IsBlock reports whether the kind is a block-level variant.
func (k NodeKind) IsBlock() bool {
	return k <= NodeError
}

// IsInline reports whether the kind is an inline-level variant.
func (k NodeKind) IsInline() bool {
	return k >= NodeText && k <= NodeLineBreak
}

// IsInlineContainer reports whether an inline kind wraps other inline nodes.
func (k NodeKind) IsInlineContainer() bool {
	switch k {
	case NodeBold, NodeItalic, NodeStrikethrough, NodeUnderline, NodeLink, NodeColoredSpan:
		return true
	default:
		return false
	}
}

// HasChildren returns true if this node has any children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.Children)
}

// Text returns the literal text of a Text or Code node, or "" otherwise.
func (n *Node) Text() string {
	if n == nil || n.Inline == nil {
		return ""
	}
	return n.Inline.Text
}
