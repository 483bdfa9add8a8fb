package grammar

import (
	"strconv"
	"strings"

	"github.com/yaklabco/mdview/pkg/chunk"
	"github.com/yaklabco/mdview/pkg/langdetect"
	"github.com/yaklabco/mdview/pkg/mdast"
)

// maxIndent is the deepest indentation at which a block marker is recognized.
const maxIndent = 3

type listMarker struct {
	ordered bool
	bullet  byte
	number  int
	delim   byte

	// indent is the marker's column; width is the content column.
	indent int
	width  int

	// contentAt is the byte offset of the item text within the line.
	contentAt int
}

func (m listMarker) sameList(other listMarker) bool {
	if m.ordered != other.ordered {
		return false
	}
	if m.ordered {
		return m.delim == other.delim
	}
	return m.bullet == other.bullet
}

func parseListMarker(ln line) (listMarker, bool) {
	indent := ln.indent()
	trimmed := ln.trimmed()
	if indent > maxIndent || trimmed == "" || isThematicBreak(trimmed) {
		return listMarker{}, false
	}

	marker := listMarker{indent: indent}
	var markerLen int

	switch c := trimmed[0]; {
	case c == '-' || c == '+' || c == '*':
		marker.bullet = c
		markerLen = 1
	case c >= '0' && c <= '9':
		digits := 0
		for digits < len(trimmed) && digits < 9 && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
			digits++
		}
		if digits >= len(trimmed) || (trimmed[digits] != '.' && trimmed[digits] != ')') {
			return listMarker{}, false
		}
		marker.ordered = true
		marker.number, _ = strconv.Atoi(trimmed[:digits])
		marker.delim = trimmed[digits]
		markerLen = digits + 1
	default:
		return listMarker{}, false
	}

	offset := len(ln.text) - len(trimmed)
	rest := trimmed[markerLen:]
	if strings.TrimSpace(rest) == "" {
		marker.width = indent + markerLen + 1
		marker.contentAt = len(ln.text)
		return marker, true
	}
	if rest[0] != ' ' && rest[0] != '\t' {
		return listMarker{}, false
	}

	spaces := 0
	for spaces < len(rest) && (rest[spaces] == ' ' || rest[spaces] == '\t') {
		spaces++
	}
	if spaces > 4 {
		spaces = 1
	}
	marker.width = indent + markerLen + spaces
	marker.contentAt = offset + markerLen + spaces
	return marker, true
}

// interrupts reports whether ln starts a block that ends a lazy paragraph
// continuation.
func interrupts(ln line) bool {
	if ln.indent() > maxIndent {
		return false
	}
	trimmed := ln.trimmed()
	switch {
	case strings.HasPrefix(trimmed, ">"), strings.HasPrefix(trimmed, ":::"), strings.HasPrefix(trimmed, "!!!"):
		return true
	case isATXHeading(trimmed), isThematicBreak(trimmed):
		return true
	}
	_, fence := chunk.DetectFence(trimmed)
	return fence
}

type listItem struct {
	start  int
	end    int
	marker listMarker
	body   []line
}

func findList(p *parser, lines []line, from, depth int) (blockMatch, bool) {
	return scanFrom(p, lines, from, depth, tryList)
}

func tryList(p *parser, lines []line, at, depth int) (blockMatch, bool) {
	first, ok := parseListMarker(lines[at])
	if !ok {
		return blockMatch{}, false
	}

	var (
		items []listItem
		loose bool
	)

	for i := at; i < len(lines); {
		marker, ok := parseListMarker(lines[i])
		if !ok || !first.sameList(marker) {
			break
		}
		if len(items) > 0 && marker.indent >= items[len(items)-1].marker.width {
			break
		}

		item, next := collectItem(lines, i, marker)
		if len(items) > 0 && lines[item.start-1].blank() {
			loose = true
		}
		for _, ln := range trimBlank(item.body) {
			if ln.blank() {
				loose = true
				break
			}
		}
		items = append(items, item)
		i = next
	}

	list := mdast.NewNode(mdast.NodeList)
	list.Block = &mdast.BlockAttrs{List: &mdast.ListAttrs{
		Ordered:     first.ordered,
		StartNumber: first.number,
		Tight:       !loose,
	}}
	if first.ordered {
		list.Block.List.Delimiter = string(first.delim)
	} else {
		list.Block.List.BulletMarker = string(first.bullet)
	}

	for _, item := range items {
		list.Children = append(list.Children, p.listItem(lines, item, depth))
	}

	end := items[len(items)-1].end
	list.Origin = p.origin(lines[at:end])
	return blockMatch{start: at, end: end, nodes: []*mdast.Node{list}}, true
}

// collectItem gathers the lines of the item whose marker is on line at. It
// returns the item and the index of the first line after it, including any
// trailing blank lines.
func collectItem(lines []line, at int, marker listMarker) (listItem, int) {
	body := []line{lines[at].from(marker.contentAt)}

	next := at + 1
	for next < len(lines) {
		ln := lines[next]
		switch {
		case ln.blank():
			body = append(body, line{start: ln.start})
		case ln.indent() >= marker.width:
			body = append(body, ln.strip(marker.width))
		case lines[next-1].blank():
			return finishItem(lines, at, next, marker, body)
		default:
			if _, isMarker := parseListMarker(ln); isMarker || interrupts(ln) {
				return finishItem(lines, at, next, marker, body)
			}
			body = append(body, ln.strip(ln.indent()))
		}
		next++
	}
	return finishItem(lines, at, next, marker, body)
}

func finishItem(lines []line, at, next int, marker listMarker, body []line) (listItem, int) {
	end := next
	for end > at+1 && lines[end-1].blank() {
		end--
	}
	return listItem{start: at, end: end, marker: marker, body: body[:end-at]}, next
}

func (p *parser) listItem(lines []line, item listItem, depth int) *mdast.Node {
	node := mdast.NewNode(mdast.NodeListItem)
	node.Origin = p.origin(lines[item.start:item.end])

	body := item.body
	if task, checked, rest, ok := taskMarker(body[0]); ok {
		node.Block = &mdast.BlockAttrs{ListItem: &mdast.ListItemAttrs{Task: task, Checked: checked}}
		body = append([]line{rest}, body[1:]...)
	}

	node.Children = p.parseBlocks(body, depth+1)
	return node
}

func taskMarker(first line) (bool, bool, line, bool) {
	text := first.text
	if len(text) < 3 || text[0] != '[' || text[2] != ']' {
		return false, false, first, false
	}
	if len(text) > 3 && text[3] != ' ' && text[3] != '\t' {
		return false, false, first, false
	}

	switch text[1] {
	case ' ':
		return true, false, first.from(4), true
	case 'x', 'X':
		return true, true, first.from(4), true
	default:
		return false, false, first, false
	}
}

func findFencedCode(p *parser, lines []line, from, depth int) (blockMatch, bool) {
	return scanFrom(p, lines, from, depth, tryFencedCode)
}

// tryFencedCode recognizes a fence using the same marker rules as the chunk
// splitter, so progressive parsing and the grammar agree on fence extents.
// An unclosed fence runs to the end of the lines.
func tryFencedCode(p *parser, lines []line, at, _ int) (blockMatch, bool) {
	fence, ok := chunk.DetectFence(lines[at].text)
	if !ok {
		return blockMatch{}, false
	}

	end := len(lines)
	closing := len(lines)
	for i := at + 1; i < len(lines); i++ {
		if fence.Closes(lines[i].text) {
			closing, end = i, i+1
			break
		}
	}

	body := make([]line, 0, closing-at-1)
	for _, ln := range lines[at+1 : closing] {
		body = append(body, ln.strip(fence.Indent))
	}
	content := p.shadow.Expand(joinText(body))

	attrs := &mdast.CodeBlockAttrs{
		FenceChar:   fence.Char,
		FenceLength: fence.Length,
		Info:        fence.Info,
		Content:     content,
	}
	if fields := strings.Fields(fence.Info); len(fields) > 0 {
		attrs.Language = strings.ToLower(fields[0])
	} else if p.status.DetectLanguage && strings.TrimSpace(content) != "" {
		if lang, detected := langdetect.DetectBlock(content); detected {
			attrs.Language, attrs.Detected = lang, true
		}
	}

	node := mdast.NewNode(mdast.NodeCodeBlock)
	node.Block = &mdast.BlockAttrs{CodeBlock: attrs}
	node.Origin = p.origin(lines[at:end])
	return blockMatch{start: at, end: end, nodes: []*mdast.Node{node}}, true
}

func findContainer(p *parser, lines []line, from, depth int) (blockMatch, bool) {
	return scanFrom(p, lines, from, depth, tryContainer)
}

// tryContainer recognizes ":::name [title]" ... ":::". Nested containers are
// balanced; an opener without a close is not a container.
func tryContainer(p *parser, lines []line, at, depth int) (blockMatch, bool) {
	name, title, ok := containerOpener(lines[at])
	if !ok {
		return blockMatch{}, false
	}

	open := 1
	for i := at + 1; i < len(lines); i++ {
		if _, _, nested := containerOpener(lines[i]); nested {
			open++
			continue
		}
		if !isContainerCloser(lines[i]) {
			continue
		}
		open--
		if open > 0 {
			continue
		}

		node := mdast.NewNode(mdast.NodeContainer)
		node.Block = &mdast.BlockAttrs{Container: &mdast.ContainerAttrs{Name: name, Title: title}}
		node.Children = p.parseBlocks(lines[at+1:i], depth+1)
		node.Origin = p.origin(lines[at : i+1])
		return blockMatch{start: at, end: i + 1, nodes: []*mdast.Node{node}}, true
	}

	return blockMatch{}, false
}

func containerOpener(ln line) (string, string, bool) {
	if ln.indent() > maxIndent {
		return "", "", false
	}
	trimmed := ln.trimmed()
	colons := 0
	for colons < len(trimmed) && trimmed[colons] == ':' {
		colons++
	}
	if colons < 3 {
		return "", "", false
	}
	rest := strings.TrimSpace(trimmed[colons:])
	if rest == "" {
		return "", "", false
	}
	name, title, _ := strings.Cut(rest, " ")
	return strings.ToLower(name), strings.TrimSpace(title), true
}

func isContainerCloser(ln line) bool {
	trimmed := strings.TrimSpace(ln.text)
	return len(trimmed) >= 3 && allByte(trimmed, ':')
}
