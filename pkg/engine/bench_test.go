package engine_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/yaklabco/mdview/pkg/engine"
	"github.com/yaklabco/mdview/pkg/fpcache"
	"github.com/yaklabco/mdview/pkg/grammar"
)

func benchmarkDocument(sections int) string {
	var sb strings.Builder
	for i := range sections {
		fmt.Fprintf(&sb, "## Section %d\n\n", i)
		sb.WriteString("Some **bold** and <font color=\"red\">red</font> text with `code`.\n\n")
		sb.WriteString("- one\n- two\n  - nested [link](https://example.com)\n\n")
		sb.WriteString("```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```\n\n")
		sb.WriteString("| a | b |\n|---|---|\n| 1 | 2 |\n\n")
	}
	return sb.String()
}

func BenchmarkParse(b *testing.B) {
	text := benchmarkDocument(200)
	eng := engine.New(engine.Options{Status: grammar.DefaultStatus()})
	defer eng.Close()

	ctx := context.Background()
	b.SetBytes(int64(len(text)))
	for b.Loop() {
		if _, err := eng.Parse(ctx, text); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseCached(b *testing.B) {
	text := benchmarkDocument(200)
	eng := engine.New(engine.Options{
		Status: grammar.DefaultStatus(),
		Cache:  fpcache.New(fpcache.Options{}),
	})
	defer eng.Close()

	ctx := context.Background()
	if _, err := eng.ParseCached(ctx, text); err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(text)))
	for b.Loop() {
		if _, err := eng.ParseCached(ctx, text); err != nil {
			b.Fatal(err)
		}
	}
}
