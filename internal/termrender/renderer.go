// Package termrender draws document blocks as lines of ANSI text. Its
// Renderer is the terminal implementation of layout.Renderer: one layout
// unit is one terminal cell, so block heights are line counts.
package termrender

import (
	"math"
	"strings"

	"github.com/yaklabco/mdview/pkg/layout"
	"github.com/yaklabco/mdview/pkg/mdast"
)

// GutterWidth is the number of columns Compose reserves left of each line
// for the selection marker.
const GutterWidth = 2

// BlockGap is the number of blank lines after every block.
const BlockGap = 1

// block is the handle of a realized block.
type block struct {
	node     *mdast.Node
	width    int
	lines    []line
	rect     layout.Rect
	disposed bool
}

// Renderer renders blocks for a layout.Window. It is not safe for
// concurrent use.
type Renderer struct {
	theme *Theme
	live  int
}

// New creates a Renderer. A nil theme selects a plain theme.
func New(theme *Theme) *Renderer {
	if theme == nil {
		theme = NewTheme(false, "")
	}
	return &Renderer{theme: theme}
}

// Realize implements layout.Renderer.
func (r *Renderer) Realize(node *mdast.Node) layout.Handle {
	r.live++
	return &block{node: node, width: -1}
}

// Measure implements layout.Renderer. Lines are rendered once per width.
func (r *Renderer) Measure(h layout.Handle, width float64) layout.Size {
	b := h.(*block)
	w := max(int(width), 1)
	if b.width != w {
		b.lines = r.block(b.node, w)
		b.width = w
	}

	widest := 0
	for _, l := range b.lines {
		widest = max(widest, l.width)
	}
	return layout.Size{Width: float64(widest), Height: float64(len(b.lines) + BlockGap)}
}

// Arrange implements layout.Renderer.
func (r *Renderer) Arrange(h layout.Handle, rect layout.Rect) {
	h.(*block).rect = rect
}

// Dispose implements layout.Renderer.
func (r *Renderer) Dispose(h layout.Handle) {
	b := h.(*block)
	if b.disposed {
		return
	}
	b.disposed = true
	b.lines = nil
	r.live--
}

// Live returns the number of realized blocks not yet disposed.
func (r *Renderer) Live() int {
	return r.live
}

// Compose returns rows lines showing the arranged blocks of win. Every
// line starts with the gutter, which marks selected blocks.
func (r *Renderer) Compose(win *layout.Window, rows int) []string {
	out := make([]string, rows)
	gutter := strings.Repeat(" ", GutterWidth)
	for i := range out {
		out[i] = gutter
	}

	first, last, selected := win.Selection()
	marker := r.theme.render(r.theme.Selected, "▌") + strings.Repeat(" ", GutterWidth-1)
	if !r.theme.Color {
		marker = ">" + strings.Repeat(" ", GutterWidth-1)
	}

	for _, idx := range win.Realized() {
		h, ok := win.Handle(idx)
		if !ok {
			continue
		}
		b := h.(*block)

		prefix := gutter
		if selected && idx >= first && idx <= last {
			prefix = marker
		}

		top := int(math.Round(b.rect.Y))
		for j, l := range b.lines {
			row := top + j
			if row < 0 || row >= rows {
				continue
			}
			out[row] = prefix + l.text
		}
	}
	return out
}

// Render renders a whole document at width, without virtualization.
func (r *Renderer) Render(doc *mdast.Node, width int) []string {
	if doc == nil {
		return nil
	}

	var out []string
	for i, child := range doc.Children {
		if i > 0 {
			for range BlockGap {
				out = append(out, "")
			}
		}
		for _, l := range r.block(child, width) {
			out = append(out, l.text)
		}
	}
	return out
}
