package grammar_test

import (
	"testing"

	"github.com/yaklabco/mdview/pkg/grammar"
	"github.com/yaklabco/mdview/pkg/mdast"
)

func FuzzParse(f *testing.F) {
	f.Add("# Title\n\nSome *text* with `code`.\n")
	f.Add("- a\n  - b\n    > c\n")
	f.Add("```go\nfunc main() {}\n```\n")
	f.Add("| a | b |\n|---|:-:|\n| 1 | 2 |\n")
	f.Add(":::note Title\nbody\n:::\n")
	f.Add("<details><summary>x</summary>\n\nhidden\n</details>\n")
	f.Add("->centered<-\n")
	f.Add("<b><i><u>deep</u></i></b> **bold _and italic_**\n")

	status := grammar.DefaultStatus()
	status.AlignmentDirectives = true

	f.Fuzz(func(t *testing.T, text string) {
		doc := grammar.Parse(text, status)
		if doc == nil || doc.Kind != mdast.NodeDocument {
			t.Fatalf("Parse(%q) did not return a document", text)
		}
		if depth := mdast.BlockDepth(doc); depth > grammar.MaxBlockDepth+2 {
			t.Fatalf("block depth %d exceeds bound", depth)
		}
		if again := grammar.Parse(text, status); !mdast.Equal(doc, again) {
			t.Fatalf("Parse(%q) is not deterministic", text)
		}
	})
}
