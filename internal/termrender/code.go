package termrender

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/mdview/pkg/langdetect"
	"github.com/yaklabco/mdview/pkg/mdast"
)

//nolint:gochecknoglobals // Lexers are immutable once built and shared by every renderer.
var lexerCache sync.Map

// lexerFor returns a coalescing lexer for a code block language.
func lexerFor(lang string) chroma.Lexer {
	lang = langdetect.Canonical(lang)
	if lang == "" {
		return nil
	}
	if cached, ok := lexerCache.Load(lang); ok {
		return cached.(chroma.Lexer)
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Match("file." + lang)
	}
	if lexer == nil {
		return nil
	}

	lexer = chroma.Coalesce(lexer)
	lexerCache.Store(lang, lexer)
	return lexer
}

// codeBlock renders code line by line. Lines are cut at width, not wrapped.
func (r *Renderer) codeBlock(node *mdast.Node, width int) []line {
	var content, lang string
	if node.Block != nil && node.Block.CodeBlock != nil {
		content = node.Block.CodeBlock.Content
		lang = node.Block.CodeBlock.Language
	}

	rows := r.highlight(content, lang)
	indentWidth := len(codeIndent)
	avail := max(width-indentWidth, 1)

	out := make([]line, 0, len(rows))
	for _, pieces := range rows {
		var (
			b   strings.Builder
			col int
		)
		b.WriteString(codeIndent)
		for _, p := range pieces {
			text := expandTabs(p.text, col)
			if w := runewidth.StringWidth(text); col+w > avail {
				text = truncate(text, avail-col)
				b.WriteString(r.theme.render(p.style, text))
				col += runewidth.StringWidth(text)
				break
			}
			b.WriteString(r.theme.render(p.style, text))
			col += runewidth.StringWidth(text)
		}
		out = append(out, line{text: b.String(), width: indentWidth + col})
	}
	return out
}

// highlight splits content into lines of styled pieces. Without color or
// without a lexer for lang the pieces are unstyled.
func (r *Renderer) highlight(content, lang string) [][]piece {
	plain := func() [][]piece {
		var rows [][]piece
		for _, text := range strings.Split(content, "\n") {
			rows = append(rows, []piece{{text: text, style: lipgloss.NewStyle()}})
		}
		return rows
	}

	if !r.theme.Color {
		return plain()
	}
	lexer := lexerFor(lang)
	if lexer == nil {
		return plain()
	}
	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return plain()
	}

	rows := [][]piece{nil}
	for _, tok := range iterator.Tokens() {
		style := r.theme.tokenStyle(tok.Type)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				rows = append(rows, nil)
			}
			if part != "" {
				rows[len(rows)-1] = append(rows[len(rows)-1], piece{text: part, style: style})
			}
		}
	}

	// Lexers terminate the last line with a newline of their own.
	if len(rows) > 1 && len(rows[len(rows)-1]) == 0 && !strings.HasSuffix(content, "\n") {
		rows = rows[:len(rows)-1]
	}
	return rows
}
