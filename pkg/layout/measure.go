package layout

import (
	"math"
	"slices"
	"sort"
)

// maxMeasurePasses bounds how often Measure recomputes the visible range
// after heights change.
const maxMeasurePasses = 8

// Measure lays out the blocks around a viewport. It realizes the blocks
// that intersect [viewportTop, viewportTop+viewportHeight], widened by the
// over-scan count on each side, disposes every other realized block, and
// measures the realized ones. It returns the size of the whole document.
func (w *Window) Measure(availableWidth, viewportTop, viewportHeight float64) Size {
	if availableWidth != w.availableWidth {
		w.availableWidth = availableWidth
		w.forgetMeasurements()
	}
	w.viewport = Size{Width: availableWidth, Height: max(viewportHeight, 0)}
	w.scroll = w.clampScroll(Point{X: w.scroll.X, Y: viewportTop})

	for pass := 0; pass < maxMeasurePasses; pass++ {
		first, last := w.realizeRange()
		w.realizeOnly(first, last)
		if !w.measureRealized() {
			break
		}
		w.recomputeOffsets()
		w.scroll = w.clampScroll(w.scroll)
	}

	return Size{Width: w.ExtentWidth(), Height: w.Extent()}
}

// Arrange positions every realized block relative to the viewport top and
// returns finalSize.
func (w *Window) Arrange(finalSize Size) Size {
	for _, idx := range w.Realized() {
		it := w.items[idx]
		w.renderer.Arrange(w.realized[idx], Rect{
			X:      -w.scroll.X,
			Y:      w.offsets[idx] - w.scroll.Y,
			Width:  max(finalSize.Width, it.width),
			Height: it.height,
		})
	}
	return finalSize
}

// Realized returns the indices of the realized blocks in ascending order.
func (w *Window) Realized() []int {
	indices := make([]int, 0, len(w.realized))
	for idx := range w.realized {
		indices = append(indices, idx)
	}
	slices.Sort(indices)
	return indices
}

// IsRealized reports whether block i currently has a renderer handle.
func (w *Window) IsRealized(i int) bool {
	_, ok := w.realized[i]
	return ok
}

// Handle returns the renderer handle of block i, if it is realized.
func (w *Window) Handle(i int) (Handle, bool) {
	h, ok := w.realized[i]
	return h, ok
}

// VisibleRange returns the first and last block intersecting the viewport,
// without over-scan. ok is false when no block is visible.
func (w *Window) VisibleRange() (first, last int, ok bool) {
	return w.visibleRange(w.scroll.Y, w.viewport.Height)
}

// IndexAt returns the block containing document offset y.
func (w *Window) IndexAt(y float64) int {
	if len(w.items) == 0 {
		return -1
	}
	// First block whose bottom lies below y.
	idx := sort.Search(len(w.items), func(i int) bool { return w.offsets[i+1] > y })
	return min(idx, len(w.items)-1)
}

func (w *Window) visibleRange(top, height float64) (int, int, bool) {
	n := len(w.items)
	if n == 0 {
		return 0, -1, false
	}

	bottom := top + height
	first := sort.Search(n, func(i int) bool { return w.offsets[i+1] > top })
	if first >= n {
		return 0, -1, false
	}
	// Last block whose top lies above the viewport bottom.
	last := sort.Search(n, func(i int) bool { return w.offsets[i] >= bottom }) - 1
	if height <= 0 || last < first {
		last = first
	}
	return first, last, true
}

// realizeRange returns the blocks that should be realized.
func (w *Window) realizeRange() (int, int) {
	n := len(w.items)
	if n == 0 {
		return 0, -1
	}
	if w.opts.DisableVirtualization {
		return 0, n - 1
	}

	first, last, ok := w.visibleRange(w.scroll.Y, w.viewport.Height)
	if !ok {
		return 0, -1
	}
	return max(first-w.opts.OverScan, 0), min(last+w.opts.OverScan, n-1)
}

// realizeOnly disposes blocks outside [first, last] and realizes the ones
// inside it.
func (w *Window) realizeOnly(first, last int) {
	for idx, h := range w.realized {
		if idx < first || idx > last {
			w.renderer.Dispose(h)
			delete(w.realized, idx)
		}
	}
	for idx := first; idx <= last; idx++ {
		if _, ok := w.realized[idx]; !ok {
			w.realized[idx] = w.renderer.Realize(w.items[idx].node)
		}
	}
}

// measureRealized measures every realized block and reports whether any
// recorded height changed.
func (w *Window) measureRealized() bool {
	changed := false
	for _, idx := range w.Realized() {
		size := w.renderer.Measure(w.realized[idx], w.availableWidth)
		it := &w.items[idx]
		it.width = size.Width

		differs := math.Abs(size.Height-it.height) > heightTolerance
		switch {
		case !it.measured:
			it.measured = true
			w.measuredCount++
			if differs {
				w.measuredSum += size.Height
			} else {
				w.measuredSum += it.height
			}
		case differs:
			w.measuredSum += size.Height - it.height
		}
		if differs {
			it.height = size.Height
			changed = true
		}
	}

	if changed {
		w.refreshEstimates()
	}
	return changed
}

// refreshEstimates moves every unmeasured block to the current estimate.
func (w *Window) refreshEstimates() {
	estimate := w.Estimate()
	for i := range w.items {
		if !w.items[i].measured {
			w.items[i].height = estimate
		}
	}
}

// forgetMeasurements turns every measured height back into an estimate.
// Heights are kept as the starting estimate after a width change.
func (w *Window) forgetMeasurements() {
	for i := range w.items {
		w.items[i].measured = false
	}
	w.measuredSum = 0
	w.measuredCount = 0
}
