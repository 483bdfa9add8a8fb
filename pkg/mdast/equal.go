package mdast

import "slices"

// Equal reports whether two trees are structurally identical, including
// attributes and source ranges.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind || a.Origin != b.Origin || len(a.Children) != len(b.Children) {
		return false
	}
	if !blockAttrsEqual(a.Block, b.Block) || !inlineAttrsEqual(a.Inline, b.Inline) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func blockAttrsEqual(a, b *BlockAttrs) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.HeadingLevel != b.HeadingLevel || a.Align != b.Align || a.Message != b.Message {
		return false
	}
	if !ptrEqual(a.List, b.List) || !ptrEqual(a.ListItem, b.ListItem) ||
		!ptrEqual(a.CodeBlock, b.CodeBlock) || !ptrEqual(a.Raw, b.Raw) ||
		!ptrEqual(a.Container, b.Container) {
		return false
	}
	if a.Table == nil || b.Table == nil {
		return a.Table == b.Table
	}
	return slices.Equal(a.Table.Align, b.Table.Align)
}

func inlineAttrsEqual(a, b *InlineAttrs) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Text == b.Text && ptrEqual(a.Link, b.Link) && ptrEqual(a.Color, b.Color)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
