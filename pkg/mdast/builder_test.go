package mdast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdview/pkg/mdast"
)

func TestNewNode(t *testing.T) {
	t.Parallel()

	node := mdast.NewNode(mdast.NodeParagraph)

	assert.Equal(t, mdast.NodeParagraph, node.Kind)
	assert.Empty(t, node.Children)
	assert.Nil(t, node.Block)
	assert.Nil(t, node.Inline)
}

func TestNewDocument(t *testing.T) {
	t.Parallel()

	assert.Equal(t, mdast.NodeDocument, mdast.NewDocument().Kind)
}

func TestAppendChild(t *testing.T) {
	t.Parallel()

	parent := mdast.NewNode(mdast.NodeParagraph)
	child1 := mdast.NewText("one")
	child2 := mdast.NewText("two")

	mdast.AppendChild(parent, child1)
	mdast.AppendChild(parent, child2)
	mdast.AppendChild(parent, nil)
	mdast.AppendChild(nil, child1)

	require.Len(t, parent.Children, 2)
	assert.Same(t, child1, parent.Children[0])
	assert.Same(t, child2, parent.Children[1])
}

func TestAppendChildren(t *testing.T) {
	t.Parallel()

	parent := mdast.NewNode(mdast.NodeList)
	mdast.AppendChildren(parent, mdast.NewNode(mdast.NodeListItem), nil, mdast.NewNode(mdast.NodeListItem))

	assert.Len(t, parent.Children, 2)
}

func TestInlineConstructors(t *testing.T) {
	t.Parallel()

	link := mdast.NewLink("https://example.com", "Example", mdast.NewText("site"))
	require.NotNil(t, link.Inline)
	require.NotNil(t, link.Inline.Link)
	assert.Equal(t, mdast.NodeLink, link.Kind)
	assert.Equal(t, "https://example.com", link.Inline.Link.Destination)
	assert.Equal(t, "Example", link.Inline.Link.Title)
	assert.Len(t, link.Children, 1)

	img := mdast.NewImage("a.png", "", "logo")
	assert.Equal(t, "logo", img.Inline.Link.Alt)
	assert.Empty(t, img.Children)

	span := mdast.NewColoredSpan("red", "", mdast.NewText("warn"))
	assert.Equal(t, "red", span.Inline.Color.Foreground)

	errNode := mdast.NewErrorNode("boom")
	assert.True(t, errNode.IsBlock())
	assert.Equal(t, "boom", errNode.Block.Message)
}

func TestMergeText(t *testing.T) {
	t.Parallel()

	a := mdast.NewText("foo")
	a.Origin = mdast.Range(0, 3)
	b := mdast.NewText("bar")
	b.Origin = mdast.Range(3, 6)
	bold := mdast.NewInline(mdast.NodeBold, mdast.NewText("x"))

	merged := mdast.MergeText([]*mdast.Node{a, mdast.NewText(""), b, bold, mdast.NewText("!")})

	require.Len(t, merged, 3)
	assert.Equal(t, "foobar", merged[0].Text())
	assert.Equal(t, mdast.Range(0, 6), merged[0].Origin)
	assert.Same(t, bold, merged[1])
	assert.Equal(t, "!", merged[2].Text())

	// Inputs are not mutated.
	assert.Equal(t, "foo", a.Text())
}
