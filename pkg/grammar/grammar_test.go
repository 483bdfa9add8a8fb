package grammar_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdview/pkg/grammar"
	"github.com/yaklabco/mdview/pkg/mdast"
)

func outline(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestParse_Blocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "heading and paragraph",
			src:  "# Title\n\nHello *world*",
			want: outline(
				"Document",
				"  Heading level=1",
				`    Text "Title"`,
				"  Paragraph",
				`    Text "Hello "`,
				"    Italic",
				`      Text "world"`,
			),
		},
		{
			name: "atx closing hashes",
			src:  "## Section ##",
			want: outline("Document", "  Heading level=2", `    Text "Section"`),
		},
		{
			name: "setext headings",
			src:  "Title\n=====\n\nSub\n---",
			want: outline(
				"Document",
				"  Heading level=1",
				`    Text "Title"`,
				"  Heading level=2",
				`    Text "Sub"`,
			),
		},
		{
			name: "separate lists",
			src:  "- a\n- b\n\n1. x\n2. y",
			want: outline(
				"Document",
				"  List ordered=false start=0",
				"    ListItem",
				"      Paragraph",
				`        Text "a"`,
				"    ListItem",
				"      Paragraph",
				`        Text "b"`,
				"  List ordered=true start=1",
				"    ListItem",
				"      Paragraph",
				`        Text "x"`,
				"    ListItem",
				"      Paragraph",
				`        Text "y"`,
			),
		},
		{
			name: "nested list",
			src:  "- a\n  - b\n- c",
			want: outline(
				"Document",
				"  List ordered=false start=0",
				"    ListItem",
				"      Paragraph",
				`        Text "a"`,
				"      List ordered=false start=0",
				"        ListItem",
				"          Paragraph",
				`            Text "b"`,
				"    ListItem",
				"      Paragraph",
				`        Text "c"`,
			),
		},
		{
			name: "task items",
			src:  "- [ ] todo\n- [x] done",
			want: outline(
				"Document",
				"  List ordered=false start=0",
				"    ListItem checked=false",
				"      Paragraph",
				`        Text "todo"`,
				"    ListItem checked=true",
				"      Paragraph",
				`        Text "done"`,
			),
		},
		{
			name: "fenced code",
			src:  "```go\nfmt.Println(1)\n```\nafter",
			want: outline(
				"Document",
				`  CodeBlock lang="go" "fmt.Println(1)"`,
				"  Paragraph",
				`    Text "after"`,
			),
		},
		{
			name: "unclosed fence runs to end",
			src:  "~~~\nx\n\ny",
			want: outline("Document", `  CodeBlock lang="" "x\n\ny"`),
		},
		{
			name: "fence hides headings",
			src:  "```\n# not heading\n```",
			want: outline("Document", `  CodeBlock lang="" "# not heading"`),
		},
		{
			name: "blockquote with lazy line",
			src:  "> quote *x*\nmore",
			want: outline(
				"Document",
				"  Blockquote",
				"    Paragraph",
				`      Text "quote "`,
				"      Italic",
				`        Text "x"`,
				`      Text " more"`,
			),
		},
		{
			name: "list steals from blockquote",
			src:  "> quote\n- item",
			want: outline(
				"Document",
				"  Blockquote",
				"    Paragraph",
				`      Text "quote"`,
				"  List ordered=false start=0",
				"    ListItem",
				"      Paragraph",
				`        Text "item"`,
			),
		},
		{
			name: "table with alignment",
			src:  "| a | b |\n|:--|--:|\n| 1 | 2 |",
			want: outline(
				"Document",
				"  Table",
				"    TableRow",
				"      TableCell align=left",
				`        Text "a"`,
				"      TableCell align=right",
				`        Text "b"`,
				"    TableRow",
				"      TableCell align=left",
				`        Text "1"`,
				"      TableCell align=right",
				`        Text "2"`,
			),
		},
		{
			name: "table separator mismatch falls back to text",
			src:  "| a | b |\n|---|\nx",
			want: outline("Document", "  Paragraph", `    Text "| a | b | |---| x"`),
		},
		{
			name: "custom container",
			src:  ":::warning Be careful\ntext\n:::",
			want: outline(
				"Document",
				`  Container warning "Be careful"`,
				"    Paragraph",
				`      Text "text"`,
			),
		},
		{
			name: "unclosed container is text",
			src:  ":::note\ntext",
			want: outline("Document", "  Paragraph", `    Text ":::note text"`),
		},
		{
			name: "aside",
			src:  "!!! note \"Heads up\"\n    body",
			want: outline(
				"Document",
				`  Container note "Heads up"`,
				"    Paragraph",
				`      Text "body"`,
			),
		},
		{
			name: "raw markup block",
			src:  "<div class=\"x\">\n*hi*\n</div>\nafter",
			want: outline(
				"Document",
				`  RawBlock <div> "<div class=\"x\">\n*hi*\n</div>"`,
				"  Paragraph",
				`    Text "after"`,
			),
		},
		{
			name: "comment line is dropped",
			src:  "<!-- hidden -->\ntext",
			want: outline("Document", "  Paragraph", `    Text "text"`),
		},
		{
			name: "indented code after blank line",
			src:  "para\n\n    code\n    more",
			want: outline(
				"Document",
				"  Paragraph",
				`    Text "para"`,
				`  CodeBlock lang="" "code\nmore"`,
			),
		},
		{
			name: "indented continuation stays text",
			src:  "para\n    cont",
			want: outline("Document", "  Paragraph", `    Text "para cont"`),
		},
		{
			name: "thematic break",
			src:  "a\n\n***\n\nb",
			want: outline(
				"Document",
				"  Paragraph",
				`    Text "a"`,
				"  ThematicBreak",
				"  Paragraph",
				`    Text "b"`,
			),
		},
		{
			name: "alignment directives disabled",
			src:  "->x<-",
			want: outline("Document", "  Paragraph", `    Text "->x<-"`),
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			doc := grammar.Parse(testCase.src, grammar.Status{})
			assert.Equal(t, testCase.want, mdast.DumpString(doc))
		})
	}
}

func TestParse_AlignmentDirectives(t *testing.T) {
	t.Parallel()

	doc := grammar.Parse("->centered<-\n\n->right->", grammar.Status{AlignmentDirectives: true})

	assert.Equal(t, outline(
		"Document",
		"  Paragraph align=center",
		`    Text "centered"`,
		"  Paragraph align=right",
		`    Text "right"`,
	), mdast.DumpString(doc))
}

func TestParse_Idempotent(t *testing.T) {
	t.Parallel()

	src := "# Doc\n\n- one **bold**\n- two\n\n```sh\necho hi\n```\n\n> <b>x</b> and [link](a.md)\n"
	first := grammar.Parse(src, grammar.DefaultStatus())
	second := grammar.Parse(src, grammar.DefaultStatus())

	assert.True(t, mdast.Equal(first, second))
	assert.NotSame(t, first, second)
}

func TestParse_Origins(t *testing.T) {
	t.Parallel()

	t.Run("plain text", func(t *testing.T) {
		t.Parallel()

		doc := grammar.Parse("# A\n\npara", grammar.Status{})
		require.Len(t, doc.Children, 2)
		assert.Equal(t, mdast.Range(0, 9), doc.Origin)
		assert.Equal(t, mdast.Range(0, 3), doc.Children[0].Origin)
		assert.Equal(t, mdast.Range(5, 9), doc.Children[1].Origin)
	})

	t.Run("through markup placeholders", func(t *testing.T) {
		t.Parallel()

		src := "<b>x</b> y\n\nz"
		doc := grammar.Parse(src, grammar.Status{})
		require.Len(t, doc.Children, 2)
		assert.Equal(t, mdast.Range(0, 10), doc.Children[0].Origin)
		assert.Equal(t, mdast.Range(12, 13), doc.Children[1].Origin)
		origin := doc.Children[1].Origin
		assert.Equal(t, "z", src[origin.StartOffset:origin.EndOffset])
	})
}

func TestParse_DetectsFenceLanguage(t *testing.T) {
	t.Parallel()

	src := "```\npackage main\n\nfunc main() {}\n```"

	doc := grammar.Parse(src, grammar.DefaultStatus())
	blocks := mdast.FindByKind(doc, mdast.NodeCodeBlock)
	require.Len(t, blocks, 1)
	block := blocks[0]
	assert.Equal(t, "go", block.Block.CodeBlock.Language)
	assert.True(t, block.Block.CodeBlock.Detected)

	doc = grammar.Parse(src, grammar.Status{})
	blocks = mdast.FindByKind(doc, mdast.NodeCodeBlock)
	require.Len(t, blocks, 1)
	assert.Empty(t, blocks[0].Block.CodeBlock.Language)
}

func TestParse_ResolvesRelativeImages(t *testing.T) {
	t.Parallel()

	doc := grammar.Parse("![logo](img/logo.png) ![web](https://x.test/a.png)", grammar.Status{ResourceRoot: "/docs"})

	images := mdast.FindByKind(doc, mdast.NodeImage)
	require.Len(t, images, 2)
	assert.Equal(t, "/docs/img/logo.png", images[0].Inline.Link.ResolvedURI)
	assert.Empty(t, images[1].Inline.Link.ResolvedURI)
}

func TestParse_BlockDepthBounded(t *testing.T) {
	t.Parallel()

	src := strings.Repeat(">", 200) + " deep"
	doc := grammar.Parse(src, grammar.Status{})

	assert.LessOrEqual(t, mdast.BlockDepth(doc), grammar.MaxBlockDepth+2)
	assert.Contains(t, mdast.PlainText(doc), "deep")
}

func TestParse_NeverFailsOnOddInput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"\n\n\n",
		"<",
		"<div>",
		"</div>",
		"|",
		"|\n|",
		"-",
		"1.",
		"```",
		":::",
		"!!!",
		"    ",
		"",
		"*_~`[]()<>!#",
	}

	for _, input := range inputs {
		assert.NotPanics(t, func() {
			doc := grammar.Parse(input, grammar.DefaultStatus())
			assert.Equal(t, mdast.NodeDocument, doc.Kind)
		}, "input %q", input)
	}
}

func TestResolveRelative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		root string
		uri  string
		want string
		ok   bool
	}{
		{name: "relative path", root: "/docs", uri: "img/a.png", want: "/docs/img/a.png", ok: true},
		{name: "query stripped", root: "/docs", uri: "a.png?v=2", want: "/docs/a.png", ok: true},
		{name: "escaped path", root: "/docs", uri: "my%20file.png", want: "/docs/my file.png", ok: true},
		{name: "url root", root: "https://x.test/base", uri: "a.png", want: "https://x.test/base/a.png", ok: true},
		{name: "absolute url", root: "/docs", uri: "https://x.test/a.png"},
		{name: "absolute path", root: "/docs", uri: "/a.png"},
		{name: "fragment", root: "/docs", uri: "#top"},
		{name: "mailto", root: "/docs", uri: "mailto:a@b.test"},
		{name: "no root", root: "", uri: "a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := grammar.ResolveRelative(tt.root, tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
