package layout_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdview/pkg/grammar"
	"github.com/yaklabco/mdview/pkg/layout"
	"github.com/yaklabco/mdview/pkg/mdast"
)

type handle struct {
	idx  int
	rect layout.Rect
}

// fakeRenderer measures block i as heights(i) and records every call.
type fakeRenderer struct {
	heights  func(text string) float64
	live     map[string]*handle
	realizes int
	disposes int
}

func newRenderer(heights func(text string) float64) *fakeRenderer {
	return &fakeRenderer{heights: heights, live: make(map[string]*handle)}
}

func (r *fakeRenderer) Realize(node *mdast.Node) layout.Handle {
	r.realizes++
	h := &handle{}
	r.live[mdast.PlainText(node)] = h
	return mdast.PlainText(node)
}

func (r *fakeRenderer) Measure(h layout.Handle, width float64) layout.Size {
	return layout.Size{Width: width, Height: r.heights(h.(string))}
}

func (r *fakeRenderer) Arrange(h layout.Handle, rect layout.Rect) {
	r.live[h.(string)].rect = rect
}

func (r *fakeRenderer) Dispose(h layout.Handle) {
	r.disposes++
	delete(r.live, h.(string))
}

func document(n int) *mdast.Node {
	doc := mdast.NewDocument()
	for i := range n {
		mdast.AppendChild(doc, mdast.NewInline(mdast.NodeParagraph, mdast.NewText(fmt.Sprintf("p%d", i))))
	}
	return doc
}

func blockIndex(text string) int {
	var i int
	_, _ = fmt.Sscanf(text, "p%d", &i)
	return i
}

func uniform(h float64) func(string) float64 {
	return func(string) float64 { return h }
}

func indexRange(first, last int) []int {
	out := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, i)
	}
	return out
}

func TestMeasure_RealizesViewportWithOverScan(t *testing.T) {
	t.Parallel()

	renderer := newRenderer(uniform(10))
	win := layout.New(renderer, layout.Options{OverScan: 2, InitialEstimate: 10})
	win.SetDocument(document(100))

	size := win.Measure(80, 200, 50)

	assert.InDelta(t, 1000.0, size.Height, 0.001)
	first, last, ok := win.VisibleRange()
	require.True(t, ok)
	assert.Equal(t, 20, first)
	assert.Equal(t, 24, last)
	assert.Equal(t, indexRange(18, 26), win.Realized())
	assert.Len(t, renderer.live, 9)
}

func TestMeasure_DisposesBlocksLeavingWindow(t *testing.T) {
	t.Parallel()

	renderer := newRenderer(uniform(10))
	win := layout.New(renderer, layout.Options{OverScan: 1, InitialEstimate: 10})
	win.SetDocument(document(50))

	win.Measure(80, 0, 30)
	assert.Equal(t, indexRange(0, 3), win.Realized())

	win.Measure(80, 300, 30)
	assert.Equal(t, indexRange(29, 33), win.Realized())
	assert.Equal(t, 4, renderer.disposes)
	assert.False(t, win.IsRealized(0))

	win.Close()
	assert.Empty(t, renderer.live)
}

func TestMeasure_NonUniformHeights(t *testing.T) {
	t.Parallel()

	heights := func(text string) float64 {
		if blockIndex(text)%2 == 0 {
			return 5
		}
		return 30
	}
	renderer := newRenderer(heights)
	win := layout.New(renderer, layout.Options{OverScan: 1})
	win.SetDocument(document(200))

	win.Measure(100, 400, 120)
	win.Measure(100, 400, 120)

	// Offsets are cumulative recorded heights.
	var offset float64
	for i := range win.Len() {
		require.InDelta(t, offset, win.Offset(i), 0.001, "block %d", i)
		offset += win.Height(i)
	}
	assert.InDelta(t, offset, win.Extent(), 0.001)

	first, last, ok := win.VisibleRange()
	require.True(t, ok)
	assert.Equal(t, indexRange(max(first-1, 0), min(last+1, win.Len()-1)), win.Realized())

	for _, idx := range win.Realized() {
		assert.InDelta(t, heights(fmt.Sprintf("p%d", idx)), win.Height(idx), 0.001)
	}

	// Each visible block intersects the viewport.
	top := win.ScrollOffset().Y
	for idx := first; idx <= last; idx++ {
		assert.Less(t, win.Offset(idx), top+120)
		assert.Greater(t, win.Offset(idx)+win.Height(idx), top)
	}
}

func TestMeasure_RunningAverageEstimate(t *testing.T) {
	t.Parallel()

	heights := map[int]float64{0: 10, 1: 20, 2: 30, 3: 40}
	renderer := newRenderer(func(text string) float64 {
		if h, ok := heights[blockIndex(text)]; ok {
			return h
		}
		return 99
	})
	win := layout.New(renderer, layout.Options{OverScan: 0, InitialEstimate: 25})
	win.SetDocument(document(10))

	assert.InDelta(t, 25.0, win.Estimate(), 0.001)

	win.Measure(50, 0, 100)

	require.Equal(t, indexRange(0, 3), win.Realized())
	assert.InDelta(t, 25.0, win.Estimate(), 0.001)
	assert.InDelta(t, 25.0, win.Height(7), 0.001)
	assert.InDelta(t, 100.0+6*25.0, win.Extent(), 0.001)
}

func TestMeasure_SmallDifferencesKeepEstimate(t *testing.T) {
	t.Parallel()

	renderer := newRenderer(uniform(10.3))
	win := layout.New(renderer, layout.Options{OverScan: 0, InitialEstimate: 10})
	win.SetDocument(document(5))

	win.Measure(50, 0, 25)

	assert.InDelta(t, 10.0, win.Height(0), 0.001)
	assert.InDelta(t, 50.0, win.Extent(), 0.001)
}

func TestArrange_PositionsRelativeToViewport(t *testing.T) {
	t.Parallel()

	renderer := newRenderer(uniform(10))
	win := layout.New(renderer, layout.Options{OverScan: 0, InitialEstimate: 10})
	win.SetDocument(document(20))

	win.Measure(80, 35, 20)
	win.Arrange(layout.Size{Width: 80, Height: 20})

	require.Equal(t, indexRange(3, 5), win.Realized())
	assert.Equal(t, layout.Rect{X: 0, Y: -5, Width: 80, Height: 10}, renderer.live["p3"].rect)
	assert.Equal(t, layout.Rect{X: 0, Y: 5, Width: 80, Height: 10}, renderer.live["p4"].rect)
	assert.Equal(t, layout.Rect{X: 0, Y: 15, Width: 80, Height: 10}, renderer.live["p5"].rect)
}

func TestMeasure_DisableVirtualization(t *testing.T) {
	t.Parallel()

	renderer := newRenderer(uniform(10))
	win := layout.New(renderer, layout.Options{DisableVirtualization: true})
	win.SetDocument(document(30))

	win.Measure(80, 100, 20)
	assert.Equal(t, indexRange(0, 29), win.Realized())
}

func TestScrollTo_Clamps(t *testing.T) {
	t.Parallel()

	win := layout.New(newRenderer(uniform(10)), layout.Options{InitialEstimate: 10})
	win.SetDocument(document(10))
	win.Measure(80, 0, 30)

	tests := []struct {
		name   string
		target layout.Point
		want   layout.Point
	}{
		{"inside", layout.Point{Y: 40}, layout.Point{Y: 40}},
		{"negative", layout.Point{X: -5, Y: -5}, layout.Point{}},
		{"past end", layout.Point{Y: 500}, layout.Point{Y: 70}},
		{"no horizontal overflow", layout.Point{X: 30, Y: 10}, layout.Point{Y: 10}},
	}

	for _, testCase := range tests {
		assert.Equal(t, testCase.want, win.ScrollTo(testCase.target), testCase.name)
	}

	assert.Equal(t, layout.Point{Y: 20}, win.ScrollBy(0, 10))
}

func TestBringIntoView(t *testing.T) {
	t.Parallel()

	win := layout.New(newRenderer(uniform(10)), layout.Options{InitialEstimate: 10})
	win.SetDocument(document(20))
	win.Measure(80, 50, 30)

	assert.False(t, win.BringIntoView(6), "already visible")

	assert.True(t, win.BringIntoView(2))
	assert.InDelta(t, 20.0, win.ScrollOffset().Y, 0.001)

	assert.True(t, win.BringIntoView(10))
	assert.InDelta(t, 80.0, win.ScrollOffset().Y, 0.001)

	assert.False(t, win.BringIntoView(99))
}

func TestSelectedText_IndependentOfVirtualization(t *testing.T) {
	t.Parallel()

	src := "# Title\n\nFirst *para*.\n\n- a\n- b\n\n```go\nx := 1\n```\n\n" +
		strings.Repeat("More text here.\n\n", 40)
	doc := grammar.Parse(src, grammar.DefaultStatus())

	selected := func(opts layout.Options) string {
		win := layout.New(newRenderer(uniform(12)), opts)
		win.SetDocument(doc)
		win.Measure(80, 0, 40)
		win.SelectAll()
		return win.SelectedText()
	}

	virtual := selected(layout.Options{OverScan: 1})
	full := selected(layout.Options{DisableVirtualization: true})

	assert.Equal(t, full, virtual)
	assert.True(t, strings.HasPrefix(virtual, "Title\n\nFirst para.\n\na\nb\n\nx := 1"))
}

func TestSelection(t *testing.T) {
	t.Parallel()

	win := layout.New(newRenderer(uniform(10)), layout.Options{InitialEstimate: 10})
	win.SetDocument(document(5))

	_, _, ok := win.Selection()
	assert.False(t, ok)
	assert.Empty(t, win.SelectedText())

	win.Select(3, false)
	win.Select(1, true)
	first, last, ok := win.Selection()
	require.True(t, ok)
	assert.Equal(t, 1, first)
	assert.Equal(t, 3, last)
	assert.Equal(t, "p1\n\np2\n\np3", win.SelectedText())

	win.Select(10, false)
	assert.Equal(t, "p4", win.SelectedText())

	win.ClearSelection()
	assert.Equal(t, -1, win.Active())
}

func TestHandleKey(t *testing.T) {
	t.Parallel()

	win := layout.New(newRenderer(uniform(10)), layout.Options{InitialEstimate: 10})
	win.SetDocument(document(50))
	win.Measure(80, 0, 30)

	tests := []struct {
		key    layout.Key
		extend bool
		active int
	}{
		{layout.KeyDown, false, 0},
		{layout.KeyDown, false, 1},
		{layout.KeyPageDown, false, 4},
		{layout.KeyUp, true, 3},
		{layout.KeyEnd, false, 49},
		{layout.KeyPageUp, false, 46},
		{layout.KeyHome, false, 0},
	}

	for i, testCase := range tests {
		require.True(t, win.HandleKey(testCase.key, testCase.extend), "step %d", i)
		assert.Equal(t, testCase.active, win.Active(), "step %d", i)

		top := win.ScrollOffset().Y
		assert.GreaterOrEqual(t, win.Offset(win.Active()), top, "step %d", i)
		assert.LessOrEqual(t, win.Offset(win.Active())+win.Height(win.Active()), top+30, "step %d", i)
	}

	assert.False(t, win.HandleKey(layout.Key(99), false))
}

func TestHandleKey_ExtendsSelection(t *testing.T) {
	t.Parallel()

	win := layout.New(newRenderer(uniform(10)), layout.Options{InitialEstimate: 10})
	win.SetDocument(document(10))
	win.Measure(80, 0, 30)

	win.Select(2, false)
	win.HandleKey(layout.KeyDown, true)
	win.HandleKey(layout.KeyDown, true)

	first, last, _ := win.Selection()
	assert.Equal(t, 2, first)
	assert.Equal(t, 4, last)
}

func TestSetDocument_KeepsMeasuredPrefix(t *testing.T) {
	t.Parallel()

	renderer := newRenderer(uniform(40))
	win := layout.New(renderer, layout.Options{OverScan: 0, InitialEstimate: 10})
	win.SetDocument(document(3))
	win.Measure(80, 0, 200)
	require.InDelta(t, 40.0, win.Height(0), 0.001)

	win.SetDocument(document(6))

	assert.Empty(t, win.Realized())
	assert.Equal(t, 3, renderer.disposes)
	for i := range 3 {
		assert.InDelta(t, 40.0, win.Height(i), 0.001, "block %d", i)
	}
	assert.InDelta(t, win.Estimate(), win.Height(5), 0.001)
}

func TestSetDocument_RebuildsEstimate(t *testing.T) {
	t.Parallel()

	other := mdast.NewDocument()
	for i := range 4 {
		mdast.AppendChild(other, mdast.NewInline(mdast.NodeParagraph, mdast.NewText(fmt.Sprintf("q%d", i))))
	}

	tests := []struct {
		name     string
		next     *mdast.Node
		estimate float64
	}{
		{"grown document keeps every measurement", document(6), 30},
		{"shrunk document drops removed measurements", document(2), 15},
		{"unrelated document falls back to the initial estimate", other, 5},
		{"empty document", nil, 5},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			heights := map[int]float64{0: 10, 1: 20, 2: 60}
			renderer := newRenderer(func(text string) float64 { return heights[blockIndex(text)] })
			win := layout.New(renderer, layout.Options{OverScan: 0, InitialEstimate: 5})
			win.SetDocument(document(3))
			win.Measure(80, 0, 200)
			require.InDelta(t, 30.0, win.Estimate(), 0.001)

			win.SetDocument(testCase.next)

			assert.InDelta(t, testCase.estimate, win.Estimate(), 0.001)
			if n := win.Len(); n > 3 {
				assert.InDelta(t, testCase.estimate, win.Height(n-1), 0.001)
			}
		})
	}
}

func TestEmptyDocument(t *testing.T) {
	t.Parallel()

	win := layout.New(newRenderer(uniform(10)), layout.Options{})
	win.SetDocument(nil)

	size := win.Measure(80, 10, 30)
	assert.Zero(t, size.Height)
	assert.Empty(t, win.Realized())
	assert.False(t, win.HandleKey(layout.KeyDown, false))
	assert.Equal(t, -1, win.IndexAt(0))
}
