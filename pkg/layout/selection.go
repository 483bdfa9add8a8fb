package layout

import (
	"strings"

	"github.com/yaklabco/mdview/pkg/mdast"
)

// Key is a navigation key understood by HandleKey.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
)

// Selection returns the selected block range, first <= last. ok is false
// when nothing is selected.
func (w *Window) Selection() (first, last int, ok bool) {
	if w.anchor < 0 || w.active < 0 {
		return 0, 0, false
	}
	return min(w.anchor, w.active), max(w.anchor, w.active), true
}

// Active returns the block the selection moves from, or -1.
func (w *Window) Active() int {
	return w.active
}

// Select makes block i active. With extend the anchor stays where it is,
// otherwise the selection collapses to i.
func (w *Window) Select(i int, extend bool) {
	if len(w.items) == 0 {
		return
	}
	i = min(max(i, 0), len(w.items)-1)

	w.active = i
	if !extend || w.anchor < 0 {
		w.anchor = i
	}
}

// SelectAll selects every block.
func (w *Window) SelectAll() {
	if len(w.items) == 0 {
		return
	}
	w.anchor = 0
	w.active = len(w.items) - 1
}

// ClearSelection removes the selection.
func (w *Window) ClearSelection() {
	w.anchor = -1
	w.active = -1
}

// SelectedText returns the plain text of the selected blocks separated by
// blank lines. It is computed from the tree, so realization does not
// affect it.
func (w *Window) SelectedText() string {
	first, last, ok := w.Selection()
	if !ok {
		return ""
	}

	parts := make([]string, 0, last-first+1)
	for _, it := range w.items[first : last+1] {
		parts = append(parts, mdast.PlainText(it.node))
	}
	return strings.Join(parts, "\n\n")
}

// HandleKey moves the active block, extending the selection when extend
// is set, and scrolls it into view. It reports whether the key was used.
func (w *Window) HandleKey(key Key, extend bool) bool {
	n := len(w.items)
	if n == 0 {
		return false
	}

	current := w.active
	if current < 0 {
		current, _, _ = w.VisibleRange()
	}

	var target int
	switch key {
	case KeyUp:
		target = current - 1
	case KeyDown:
		target = current + 1
	case KeyPageUp:
		target = w.IndexAt(w.offsets[current] - w.viewport.Height)
	case KeyPageDown:
		target = w.IndexAt(w.offsets[current] + w.viewport.Height)
	case KeyHome:
		target = 0
	case KeyEnd:
		target = n - 1
	default:
		return false
	}
	if w.active < 0 && (key == KeyUp || key == KeyDown) {
		target = current
	}

	w.Select(target, extend)
	w.BringIntoView(w.active)
	return true
}

func (w *Window) clampSelection() {
	n := len(w.items)
	if n == 0 {
		w.ClearSelection()
		return
	}
	if w.anchor >= n {
		w.anchor = n - 1
	}
	if w.active >= n {
		w.active = n - 1
	}
}
