// Package layout implements a virtualized window over the top-level blocks
// of a document tree.
//
// Block heights start as an estimate (the running average of every height
// measured so far) and are replaced by real measurements as blocks are
// realized. Only blocks near the viewport are handed to the Renderer; the
// rest exist only as an estimated height and a cumulative offset.
//
// A Window is owned by one rendering surface and is not safe for concurrent
// use.
package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/pkg/mdast"
)

// Defaults for Options.
const (
	DefaultOverScan        = 5
	DefaultInitialEstimate = 20.0
)

// heightTolerance is the difference between a measured height and its
// estimate that counts as a change.
const heightTolerance = 0.5

// Size is a width and height in renderer units.
type Size struct {
	Width  float64
	Height float64
}

// Point is a position in renderer units.
type Point struct {
	X float64
	Y float64
}

// Rect is a positioned Size.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Handle is a renderer's materialized form of one block.
type Handle any

// Renderer materializes blocks. It is implemented outside this package; the
// window never draws anything itself.
type Renderer interface {
	// Realize creates the visual for a block.
	Realize(node *mdast.Node) Handle

	// Measure returns the size of a realized block laid out at width.
	Measure(h Handle, width float64) Size

	// Arrange places a realized block. Y is relative to the viewport top.
	Arrange(h Handle, rect Rect)

	// Dispose releases a block that left the realized window.
	Dispose(h Handle)
}

// Options configures a Window.
type Options struct {
	// OverScan is the number of blocks realized beyond each edge of the
	// viewport. Negative selects zero.
	OverScan int

	// InitialEstimate is the height assumed for blocks before anything has
	// been measured.
	InitialEstimate float64

	// DisableVirtualization realizes every block on each Measure.
	DisableVirtualization bool

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger
}

// item is one top-level block.
type item struct {
	node     *mdast.Node
	height   float64
	width    float64
	measured bool
}

// Window is the virtualized layout of a document.
type Window struct {
	renderer Renderer
	opts     Options
	logger   *log.Logger

	doc     *mdast.Node
	items   []item
	offsets []float64 // offsets[i] is the top of item i; offsets[len(items)] is the extent

	realized map[int]Handle

	measuredSum   float64
	measuredCount int

	availableWidth float64
	viewport       Size
	scroll         Point

	anchor int
	active int
}

// New creates an empty window.
func New(renderer Renderer, opts Options) *Window {
	if opts.OverScan < 0 {
		opts.OverScan = 0
	}
	if opts.InitialEstimate <= 0 {
		opts.InitialEstimate = DefaultInitialEstimate
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Window{
		renderer: renderer,
		opts:     opts,
		logger:   opts.Logger,
		realized: make(map[int]Handle),
		offsets:  []float64{0},
		anchor:   -1,
		active:   -1,
	}
}

// SetDocument replaces the displayed tree. Realized blocks are disposed.
// A block structurally equal to the block previously at the same index
// keeps its measured height, so a document that grows at the end keeps its
// layout above the growth. The estimate is rebuilt from the kept
// measurements only.
func (w *Window) SetDocument(doc *mdast.Node) {
	w.disposeAll()

	var blocks []*mdast.Node
	if doc != nil {
		blocks = doc.Children
	}

	w.measuredSum, w.measuredCount = 0, 0
	items := make([]item, len(blocks))
	for i, node := range blocks {
		items[i] = item{node: node}
		if i < len(w.items) && w.items[i].measured && mdast.Equal(w.items[i].node, node) {
			items[i] = w.items[i]
			items[i].node = node
			w.measuredSum += items[i].height
			w.measuredCount++
		}
	}

	estimate := w.Estimate()
	for i := range items {
		if !items[i].measured {
			items[i].height = estimate
		}
	}

	w.doc = doc
	w.items = items
	w.recomputeOffsets()
	w.clampSelection()
	w.scroll = w.clampScroll(w.scroll)

	w.logger.Debug("layout document set", logging.FieldBlocks, len(items), logging.FieldExtent, w.Extent())
}

// Document returns the displayed tree.
func (w *Window) Document() *mdast.Node {
	return w.doc
}

// Len returns the number of top-level blocks.
func (w *Window) Len() int {
	return len(w.items)
}

// Estimate returns the height assumed for blocks not yet measured: the
// average of every measurement so far, or the initial estimate.
func (w *Window) Estimate() float64 {
	if w.measuredCount == 0 {
		return w.opts.InitialEstimate
	}
	return w.measuredSum / float64(w.measuredCount)
}

// Height returns the recorded (measured or estimated) height of block i.
func (w *Window) Height(i int) float64 {
	if i < 0 || i >= len(w.items) {
		return 0
	}
	return w.items[i].height
}

// Offset returns the top of block i in document coordinates.
func (w *Window) Offset(i int) float64 {
	if i < 0 || i >= len(w.items) {
		return 0
	}
	return w.offsets[i]
}

// Extent returns the total document height.
func (w *Window) Extent() float64 {
	return w.offsets[len(w.items)]
}

// ExtentWidth returns the widest measured block, at least the available
// width of the last Measure.
func (w *Window) ExtentWidth() float64 {
	widest := w.availableWidth
	for _, it := range w.items {
		widest = max(widest, it.width)
	}
	return widest
}

// Close disposes every realized block.
func (w *Window) Close() {
	w.disposeAll()
}

func (w *Window) disposeAll() {
	for idx, h := range w.realized {
		w.renderer.Dispose(h)
		delete(w.realized, idx)
	}
}

// recomputeOffsets rebuilds the cumulative offsets of every block.
func (w *Window) recomputeOffsets() {
	if cap(w.offsets) < len(w.items)+1 {
		w.offsets = make([]float64, len(w.items)+1)
	}
	w.offsets = w.offsets[:len(w.items)+1]

	w.offsets[0] = 0
	for i, it := range w.items {
		w.offsets[i+1] = w.offsets[i] + it.height
	}
}
