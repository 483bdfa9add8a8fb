package grammar

import (
	"strings"

	"github.com/yaklabco/mdview/pkg/markup"
	"github.com/yaklabco/mdview/pkg/mdast"
)

const maxHeadingLevel = 6

func findRawBlock(p *parser, lines []line, from, depth int) (blockMatch, bool) {
	return scanFrom(p, lines, from, depth, tryRawBlock)
}

// tryRawBlock claims a line holding nothing but one block-level markup
// element. A line holding only a comment is claimed and produces no node.
func tryRawBlock(p *parser, lines []line, at, _ int) (blockMatch, bool) {
	span, ok := p.shadow.SoleSpan(lines[at].text)
	if !ok {
		return blockMatch{}, false
	}

	switch span.Kind {
	case markup.SpanComment:
		return blockMatch{start: at, end: at + 1}, true
	case markup.SpanElement, markup.SpanVoid:
		if !markup.IsBlockLevel(span.Tag.Name) {
			return blockMatch{}, false
		}
	default:
		return blockMatch{}, false
	}

	node := mdast.NewNode(mdast.NodeRawBlock)
	node.Block = &mdast.BlockAttrs{Raw: &mdast.RawAttrs{
		TagName: span.Tag.Name,
		Payload: span.Text(p.shadow.Source),
	}}
	node.Origin = p.origin(lines[at : at+1])
	return blockMatch{start: at, end: at + 1, nodes: []*mdast.Node{node}}, true
}

func findBlockquote(p *parser, lines []line, from, depth int) (blockMatch, bool) {
	return scanFrom(p, lines, from, depth, tryBlockquote)
}

func quoteContent(ln line) (line, bool) {
	if ln.indent() > maxIndent {
		return line{}, false
	}
	stripped := ln.strip(maxIndent)
	if !strings.HasPrefix(stripped.text, ">") {
		return line{}, false
	}
	stripped = stripped.from(1)
	if strings.HasPrefix(stripped.text, " ") || strings.HasPrefix(stripped.text, "\t") {
		stripped = stripped.from(1)
	}
	return stripped, true
}

// tryBlockquote collects consecutive quoted lines. An unquoted line directly
// after quoted paragraph text continues the quote lazily.
func tryBlockquote(p *parser, lines []line, at, depth int) (blockMatch, bool) {
	first, ok := quoteContent(lines[at])
	if !ok {
		return blockMatch{}, false
	}

	body := []line{first}
	end := at + 1
	for end < len(lines) {
		if content, quoted := quoteContent(lines[end]); quoted {
			body = append(body, content)
			end++
			continue
		}
		ln := lines[end]
		if ln.blank() || body[len(body)-1].blank() || interrupts(ln) {
			break
		}
		if _, isMarker := parseListMarker(ln); isMarker {
			break
		}
		body = append(body, ln)
		end++
	}

	node := mdast.NewNode(mdast.NodeBlockquote)
	node.Children = p.parseBlocks(body, depth+1)
	node.Origin = p.origin(lines[at:end])
	return blockMatch{start: at, end: end, nodes: []*mdast.Node{node}}, true
}

func isATXHeading(trimmed string) bool {
	level, _ := atxHeading(trimmed)
	return level > 0
}

// atxHeading returns the level and content of an ATX heading, or zero.
func atxHeading(trimmed string) (int, string) {
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > maxHeadingLevel {
		return 0, ""
	}
	rest := trimmed[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, ""
	}

	content := strings.TrimSpace(rest)
	closing := strings.TrimRight(content, "#")
	switch {
	case closing == "":
		content = ""
	case len(closing) < len(content) && (strings.HasSuffix(closing, " ") || strings.HasSuffix(closing, "\t")):
		content = strings.TrimSpace(closing)
	}
	return level, content
}

func findATXHeading(p *parser, lines []line, from, depth int) (blockMatch, bool) {
	return scanFrom(p, lines, from, depth, tryATXHeading)
}

func tryATXHeading(p *parser, lines []line, at, _ int) (blockMatch, bool) {
	if lines[at].indent() > maxIndent {
		return blockMatch{}, false
	}
	level, content := atxHeading(lines[at].trimmed())
	if level == 0 {
		return blockMatch{}, false
	}
	return blockMatch{start: at, end: at + 1, nodes: []*mdast.Node{
		p.heading(level, content, lines[at:at+1]),
	}}, true
}

func (p *parser) heading(level int, content string, lines []line) *mdast.Node {
	node := mdast.NewNode(mdast.NodeHeading)
	node.Block = &mdast.BlockAttrs{HeadingLevel: level}
	node.Children = p.inlines(content)
	node.Origin = p.origin(lines)
	return node
}

func setextLevel(ln line) int {
	if ln.indent() > maxIndent {
		return 0
	}
	trimmed := strings.TrimSpace(ln.text)
	switch {
	case allByte(trimmed, '='):
		return 1
	case allByte(trimmed, '-'):
		return 2 //nolint:mnd // Level two heading.
	default:
		return 0
	}
}

// findSetextHeading scans once for a run of text lines followed by an
// underline of '=' or '-'.
func findSetextHeading(p *parser, lines []line, from, _ int) (blockMatch, bool) {
	runStart := -1
	for i := from; i < len(lines); i++ {
		ln := lines[i]
		if ln.blank() {
			runStart = -1
			continue
		}
		if runStart >= 0 {
			if level := setextLevel(ln); level > 0 {
				parts := make([]string, 0, i-runStart)
				for _, text := range lines[runStart:i] {
					parts = append(parts, strings.TrimSpace(text.text))
				}
				node := p.heading(level, strings.Join(parts, "\n"), lines[runStart:i+1])
				return blockMatch{start: runStart, end: i + 1, nodes: []*mdast.Node{node}}, true
			}
		}
		if startsBlock(ln) {
			runStart = -1
			continue
		}
		if runStart < 0 {
			runStart = i
		}
	}
	return blockMatch{}, false
}

// startsBlock reports whether ln begins a construct that cannot be the text
// of a setext heading.
func startsBlock(ln line) bool {
	if interrupts(ln) || ln.indent() > maxIndent {
		return true
	}
	_, raw := parseListMarker(ln)
	return raw
}

func findThematicBreak(p *parser, lines []line, from, depth int) (blockMatch, bool) {
	return scanFrom(p, lines, from, depth, tryThematicBreak)
}

func tryThematicBreak(p *parser, lines []line, at, _ int) (blockMatch, bool) {
	if lines[at].indent() > maxIndent || !isThematicBreak(lines[at].trimmed()) {
		return blockMatch{}, false
	}
	node := mdast.NewNode(mdast.NodeThematicBreak)
	node.Origin = p.origin(lines[at : at+1])
	return blockMatch{start: at, end: at + 1, nodes: []*mdast.Node{node}}, true
}

func findTable(p *parser, lines []line, from, depth int) (blockMatch, bool) {
	return scanFrom(p, lines, from, depth, tryTable)
}

// tryTable recognizes a header row, an alignment row and any body rows. The
// header and alignment rows must have the same number of cells.
func tryTable(p *parser, lines []line, at, _ int) (blockMatch, bool) {
	if at+1 >= len(lines) || !strings.Contains(lines[at].text, "|") || lines[at].indent() > maxIndent {
		return blockMatch{}, false
	}

	align, ok := parseAlignRow(lines[at+1].text)
	if !ok {
		return blockMatch{}, false
	}
	header := splitRow(lines[at].text)
	if len(header) != len(align) {
		return blockMatch{}, false
	}

	table := mdast.NewNode(mdast.NodeTable)
	table.Block = &mdast.BlockAttrs{Table: &mdast.TableAttrs{Align: align}}
	table.Children = append(table.Children, p.tableRow(header, align, lines[at:at+1]))

	end := at + 2
	for end < len(lines) {
		ln := lines[end]
		if ln.blank() || !strings.Contains(ln.text, "|") || interrupts(ln) {
			break
		}
		table.Children = append(table.Children, p.tableRow(splitRow(ln.text), align, lines[end:end+1]))
		end++
	}

	table.Origin = p.origin(lines[at:end])
	return blockMatch{start: at, end: end, nodes: []*mdast.Node{table}}, true
}

func (p *parser) tableRow(cells []string, align []mdast.Alignment, lines []line) *mdast.Node {
	row := mdast.NewNode(mdast.NodeTableRow)
	row.Origin = p.origin(lines)
	for i := range align {
		cell := mdast.NewNode(mdast.NodeTableCell)
		if align[i] != mdast.AlignDefault {
			cell.Block = &mdast.BlockAttrs{Align: align[i]}
		}
		if i < len(cells) {
			cell.Children = p.inlines(cells[i])
		}
		row.Children = append(row.Children, cell)
	}
	return row
}

// splitRow splits a table row on unescaped pipes. Leading and trailing
// pipes are optional.
func splitRow(text string) []string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "|")
	if strings.HasSuffix(text, "|") && !strings.HasSuffix(text, `\|`) {
		text = text[:len(text)-1]
	}

	var cells []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '|':
			cells = append(cells, strings.TrimSpace(text[start:i]))
			start = i + 1
		}
	}
	return append(cells, strings.TrimSpace(text[start:]))
}

func parseAlignRow(text string) ([]mdast.Alignment, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	cells := splitRow(text)
	align := make([]mdast.Alignment, 0, len(cells))
	for _, cell := range cells {
		left := strings.HasPrefix(cell, ":")
		right := strings.HasSuffix(cell, ":")
		dashes := strings.Trim(cell, ":")
		if !allByte(dashes, '-') {
			return nil, false
		}
		switch {
		case left && right:
			align = append(align, mdast.AlignCenter)
		case left:
			align = append(align, mdast.AlignLeft)
		case right:
			align = append(align, mdast.AlignRight)
		default:
			align = append(align, mdast.AlignDefault)
		}
	}
	return align, true
}

func findAside(p *parser, lines []line, from, depth int) (blockMatch, bool) {
	return scanFrom(p, lines, from, depth, tryAside)
}

// tryAside recognizes `!!! kind "title"` followed by a body indented by at
// least four columns.
func tryAside(p *parser, lines []line, at, depth int) (blockMatch, bool) {
	if lines[at].indent() > maxIndent {
		return blockMatch{}, false
	}
	trimmed := lines[at].trimmed()
	if !strings.HasPrefix(trimmed, "!!!") {
		return blockMatch{}, false
	}
	rest := strings.TrimSpace(trimmed[3:])
	kind, title, _ := strings.Cut(rest, " ")
	if kind == "" {
		return blockMatch{}, false
	}
	title = strings.TrimSpace(title)
	if len(title) >= 2 && title[0] == '"' && title[len(title)-1] == '"' {
		title = title[1 : len(title)-1]
	}

	end := at + 1
	for end < len(lines) && (lines[end].blank() || lines[end].indent() >= tabWidth) {
		end++
	}
	for end > at+1 && lines[end-1].blank() {
		end--
	}

	body := make([]line, 0, end-at-1)
	for _, ln := range lines[at+1 : end] {
		body = append(body, ln.strip(tabWidth))
	}

	node := mdast.NewNode(mdast.NodeContainer)
	node.Block = &mdast.BlockAttrs{Container: &mdast.ContainerAttrs{
		Name:  strings.ToLower(kind),
		Title: title,
		Aside: true,
	}}
	node.Children = p.parseBlocks(body, depth+1)
	node.Origin = p.origin(lines[at:end])
	return blockMatch{start: at, end: end, nodes: []*mdast.Node{node}}, true
}

func findIndentedCode(p *parser, lines []line, from, depth int) (blockMatch, bool) {
	return scanFrom(p, lines, from, depth, tryIndentedCode)
}

// tryIndentedCode needs a blank line (or the start of the run) before the
// block so indented paragraph continuations stay text.
func tryIndentedCode(p *parser, lines []line, at, _ int) (blockMatch, bool) {
	ln := lines[at]
	if ln.blank() || ln.indent() < tabWidth || (at > 0 && !lines[at-1].blank()) {
		return blockMatch{}, false
	}

	end := at + 1
	for end < len(lines) && (lines[end].blank() || lines[end].indent() >= tabWidth) {
		end++
	}
	for lines[end-1].blank() {
		end--
	}

	body := make([]line, 0, end-at)
	for _, code := range lines[at:end] {
		body = append(body, code.strip(tabWidth))
	}

	node := mdast.NewNode(mdast.NodeCodeBlock)
	node.Block = &mdast.BlockAttrs{CodeBlock: &mdast.CodeBlockAttrs{
		Indented: true,
		Content:  p.shadow.Expand(joinText(body)),
	}}
	node.Origin = p.origin(lines[at:end])
	return blockMatch{start: at, end: end, nodes: []*mdast.Node{node}}, true
}
