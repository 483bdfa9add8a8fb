package mdast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes an indented outline of the tree to w, one node per line.
func Dump(w io.Writer, root *Node) error {
	return WalkDepth(root, func(n *Node, depth int) error {
		_, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(n))
		return err
	})
}

// DumpSource writes the outline of Dump and appends the line:column range
// of every node with a source origin. source must be the text the tree was
// parsed from.
func DumpSource(w io.Writer, root *Node, source string) error {
	lines := BuildLines(source)
	return WalkDepth(root, func(n *Node, depth int) error {
		line := strings.Repeat("  ", depth) + describe(n)
		start, end := lines.Position(n.Origin.StartOffset), lines.Position(n.Origin.EndOffset)
		if !n.Origin.IsEmpty() && start.IsValid() && end.IsValid() {
			line += fmt.Sprintf(" @%d:%d-%d:%d", start.Line, start.Column, end.Line, end.Column)
		}
		_, err := fmt.Fprintln(w, line)
		return err
	})
}

// DumpString returns the outline produced by Dump.
func DumpString(root *Node) string {
	var sb strings.Builder
	//nolint:errcheck // strings.Builder never fails
	Dump(&sb, root)
	return sb.String()
}

func describe(n *Node) string {
	name := n.Kind.String()

	switch {
	case n.Kind == NodeText || n.Kind == NodeCode:
		return name + " " + strconv.Quote(n.Text())
	case n.Kind == NodeLink && n.Inline != nil && n.Inline.Link != nil:
		return name + " " + strconv.Quote(n.Inline.Link.Destination)
	case n.Kind == NodeImage && n.Inline != nil && n.Inline.Link != nil:
		return fmt.Sprintf("%s %q alt=%q", name, n.Inline.Link.Destination, n.Inline.Link.Alt)
	case n.Kind == NodeColoredSpan && n.Inline != nil && n.Inline.Color != nil:
		return fmt.Sprintf("%s fg=%q bg=%q", name, n.Inline.Color.Foreground, n.Inline.Color.Background)
	case n.Block == nil:
		return name
	}

	attrs := n.Block
	switch n.Kind {
	case NodeHeading:
		return fmt.Sprintf("%s level=%d", name, attrs.HeadingLevel)
	case NodeCodeBlock:
		if attrs.CodeBlock != nil {
			return fmt.Sprintf("%s lang=%q %q", name, attrs.CodeBlock.Language, attrs.CodeBlock.Content)
		}
	case NodeList:
		if attrs.List != nil {
			return fmt.Sprintf("%s ordered=%t start=%d", name, attrs.List.Ordered, attrs.List.StartNumber)
		}
	case NodeListItem:
		if attrs.ListItem != nil && attrs.ListItem.Task {
			return fmt.Sprintf("%s checked=%t", name, attrs.ListItem.Checked)
		}
	case NodeRawBlock:
		if attrs.Raw != nil {
			return fmt.Sprintf("%s <%s> %q", name, attrs.Raw.TagName, attrs.Raw.Payload)
		}
	case NodeContainer:
		if attrs.Container != nil {
			return fmt.Sprintf("%s %s %q", name, attrs.Container.Name, attrs.Container.Title)
		}
	case NodeError:
		return name + " " + strconv.Quote(attrs.Message)
	}
	if attrs.Align != AlignDefault {
		return name + " align=" + attrs.Align.String()
	}
	return name
}
