package termrender

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/mdview/pkg/mdast"
)

const (
	quotePrefix = "│ "
	bullet      = "•"
	codeIndent  = "  "
	minCellWide = 3
)

// block renders one block node at width.
func (r *Renderer) block(node *mdast.Node, width int) []line {
	width = max(width, 1)

	switch node.Kind {
	case mdast.NodeParagraph:
		lines := r.wrap(r.spans(node.Children, lipgloss.NewStyle(), nil), width)
		if node.Block != nil {
			lines = align(lines, width, node.Block.Align)
		}
		return lines
	case mdast.NodeHeading:
		return r.heading(node, width)
	case mdast.NodeCodeBlock:
		return r.codeBlock(node, width)
	case mdast.NodeList:
		return r.list(node, width)
	case mdast.NodeBlockquote:
		return r.prefixed(r.stack(node.Children, width-runewidth.StringWidth(quotePrefix), true), quotePrefix, r.theme.QuoteBar)
	case mdast.NodeContainer:
		return r.container(node, width)
	case mdast.NodeTable:
		return r.table(node, width)
	case mdast.NodeThematicBreak:
		return []line{{text: r.theme.render(r.theme.Rule, strings.Repeat("─", width)), width: width}}
	case mdast.NodeRawBlock:
		return r.raw(node, width)
	case mdast.NodeError:
		message := ""
		if node.Block != nil {
			message = node.Block.Message
		}
		return r.wrap([]span{{text: "✖ " + message, style: r.theme.Error}}, width)
	default:
		return r.stack(node.Children, width, true)
	}
}

// stack renders blocks one after another, separated by a blank line when
// gap is set.
func (r *Renderer) stack(nodes []*mdast.Node, width int, gap bool) []line {
	var out []line
	for i, node := range nodes {
		if gap && i > 0 {
			out = append(out, line{})
		}
		out = append(out, r.block(node, width)...)
	}
	return out
}

// prefixed puts prefix in front of every line.
func (r *Renderer) prefixed(lines []line, prefix string, style lipgloss.Style) []line {
	rendered := r.theme.render(style, prefix)
	prefixWidth := runewidth.StringWidth(prefix)
	if len(lines) == 0 {
		lines = []line{{}}
	}

	out := make([]line, len(lines))
	for i, l := range lines {
		out[i] = line{text: rendered + l.text, width: prefixWidth + l.width}
	}
	return out
}

func (r *Renderer) heading(node *mdast.Node, width int) []line {
	level := 1
	if node.Block != nil {
		level = node.Block.HeadingLevel
	}
	style := r.theme.heading(level)

	marker := span{text: strings.Repeat("#", max(level, 1)), style: r.theme.HeadingMarker}
	spans := r.spans(node.Children, style, []span{marker, {text: " ", style: style}})
	lines := r.wrap(spans, width)
	if node.Block != nil {
		lines = align(lines, width, node.Block.Align)
	}
	return lines
}

func (r *Renderer) list(node *mdast.Node, width int) []line {
	attrs := &mdast.ListAttrs{Tight: true}
	if node.Block != nil && node.Block.List != nil {
		attrs = node.Block.List
	}

	delimiter := attrs.Delimiter
	if delimiter == "" {
		delimiter = "."
	}

	var out []line
	for i, item := range node.Children {
		marker := bullet
		if attrs.Ordered {
			marker = strconv.Itoa(attrs.StartNumber+i) + delimiter
		}
		marker += " "
		if item.Block != nil && item.Block.ListItem != nil && item.Block.ListItem.Task {
			if item.Block.ListItem.Checked {
				marker += "[x] "
			} else {
				marker += "[ ] "
			}
		}

		indent := runewidth.StringWidth(marker)
		body := r.stack(item.Children, width-indent, !attrs.Tight)
		if len(body) == 0 {
			body = []line{{}}
		}

		if !attrs.Tight && i > 0 {
			out = append(out, line{})
		}
		for j, l := range body {
			prefix := strings.Repeat(" ", indent)
			if j == 0 {
				prefix = r.theme.render(r.theme.ListMarker, marker)
			}
			out = append(out, line{text: prefix + l.text, width: indent + l.width})
		}
	}
	return out
}

func (r *Renderer) container(node *mdast.Node, width int) []line {
	title := "NOTE"
	if c := node.Block; c != nil && c.Container != nil {
		title = strings.ToUpper(c.Container.Name)
		if c.Container.Title != "" {
			title += ": " + c.Container.Title
		}
	}

	out := []line{{
		text:  r.theme.render(r.theme.ContainerTitle, truncate(title, width)),
		width: min(runewidth.StringWidth(title), width),
	}}
	body := r.stack(node.Children, width-runewidth.StringWidth(quotePrefix), true)
	return append(out, r.prefixed(body, quotePrefix, r.theme.ContainerTitle)...)
}

func (r *Renderer) raw(node *mdast.Node, width int) []line {
	if node.Block == nil || node.Block.Raw == nil {
		return nil
	}

	var out []line
	for _, text := range strings.Split(node.Block.Raw.Payload, "\n") {
		text = truncate(expandTabs(text, 0), width)
		out = append(out, line{text: r.theme.render(r.theme.Raw, text), width: runewidth.StringWidth(text)})
	}
	return out
}

// cell is a rendered table cell. Cells never wrap.
type cell struct {
	plain string
	spans []span
	align mdast.Alignment
}

func (r *Renderer) table(node *mdast.Node, width int) []line {
	var (
		rows   [][]cell
		widths []int
	)
	for i, row := range node.Children {
		cells := make([]cell, len(row.Children))
		for j, c := range row.Children {
			style := lipgloss.NewStyle()
			if i == 0 {
				style = r.theme.TableHeader
			}
			cells[j] = cell{plain: mdast.PlainText(c), spans: r.spans(c.Children, style, nil)}
			if c.Block != nil {
				cells[j].align = c.Block.Align
			}
			if j >= len(widths) {
				widths = append(widths, minCellWide)
			}
			widths[j] = max(widths[j], runewidth.StringWidth(cells[j].plain))
		}
		rows = append(rows, cells)
	}
	if len(widths) == 0 {
		return nil
	}

	separator := " │ "
	budget := width - (len(widths)-1)*runewidth.StringWidth(separator)
	fitColumns(widths, budget)

	var out []line
	for i, cells := range rows {
		var (
			b     strings.Builder
			total int
		)
		for j, w := range widths {
			if j > 0 {
				b.WriteString(r.theme.render(r.theme.TableBorder, separator))
				total += runewidth.StringWidth(separator)
			}
			var c cell
			if j < len(cells) {
				c = cells[j]
			}
			b.WriteString(r.cellText(c, w))
			total += w
		}
		out = append(out, line{text: b.String(), width: total})

		if i == 0 {
			parts := make([]string, len(widths))
			for j, w := range widths {
				parts[j] = strings.Repeat("─", w)
			}
			rule := strings.Join(parts, "─┼─")
			out = append(out, line{text: r.theme.render(r.theme.TableBorder, rule), width: runewidth.StringWidth(rule)})
		}
	}
	return out
}

// cellText renders a cell padded to width. Truncated cells lose their styling.
func (r *Renderer) cellText(c cell, width int) string {
	plainWidth := runewidth.StringWidth(c.plain)

	var text string
	if plainWidth > width {
		text = truncate(c.plain, width)
		plainWidth = runewidth.StringWidth(text)
	} else {
		var b strings.Builder
		for _, s := range c.spans {
			if s.brk {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(r.theme.render(s.style, s.text))
		}
		text = b.String()
	}

	pad := width - plainWidth
	switch c.align {
	case mdast.AlignRight:
		return strings.Repeat(" ", pad) + text
	case mdast.AlignCenter:
		return strings.Repeat(" ", pad/2) + text + strings.Repeat(" ", pad-pad/2)
	default:
		return text + strings.Repeat(" ", pad)
	}
}

// fitColumns shrinks the widest columns until the sum fits budget or every
// column is at the minimum width.
func fitColumns(widths []int, budget int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	for total > budget {
		widest := 0
		for j, w := range widths {
			if w > widths[widest] {
				widest = j
			}
		}
		if widths[widest] <= minCellWide {
			return
		}
		widths[widest]--
		total--
	}
}
