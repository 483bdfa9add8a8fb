package layout

// ScrollOffset returns the current scroll position.
func (w *Window) ScrollOffset() Point {
	return w.scroll
}

// Viewport returns the viewport size of the last Measure.
func (w *Window) Viewport() Size {
	return w.viewport
}

// ScrollTo moves the viewport to target, clamped on both axes to
// [0, extent-viewport]. It returns the resulting position.
func (w *Window) ScrollTo(target Point) Point {
	w.scroll = w.clampScroll(target)
	return w.scroll
}

// ScrollBy moves the viewport by a delta.
func (w *Window) ScrollBy(dx, dy float64) Point {
	return w.ScrollTo(Point{X: w.scroll.X + dx, Y: w.scroll.Y + dy})
}

// BringIntoView scrolls the least distance that makes block i fully
// visible. A block taller than the viewport is aligned to its top. It
// reports whether the scroll position changed.
func (w *Window) BringIntoView(i int) bool {
	if i < 0 || i >= len(w.items) {
		return false
	}

	top := w.offsets[i]
	bottom := w.offsets[i+1]
	target := w.scroll.Y

	switch {
	case top < w.scroll.Y:
		target = top
	case bottom > w.scroll.Y+w.viewport.Height:
		target = bottom - w.viewport.Height
		if target > top {
			target = top
		}
	}

	before := w.scroll
	w.scroll = w.clampScroll(Point{X: w.scroll.X, Y: target})
	return w.scroll != before
}

func (w *Window) clampScroll(p Point) Point {
	maxY := max(w.Extent()-w.viewport.Height, 0)
	maxX := max(w.ExtentWidth()-w.viewport.Width, 0)
	return Point{
		X: min(max(p.X, 0), maxX),
		Y: min(max(p.Y, 0), maxY),
	}
}
