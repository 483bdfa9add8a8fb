// Package progressive displays large documents in growing chunk-safe
// prefixes.
//
// A load moves Idle -> InitialRender -> Growing* -> Complete, or to
// Cancelled from InitialRender or Growing. Each batch re-parses the whole
// prefix, since appending lines can change earlier block boundaries.
// Cancellation is checked between batches and never interrupts a parse.
package progressive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/pkg/chunk"
	"github.com/yaklabco/mdview/pkg/mdast"
)

var (
	// ErrCancelled is returned by a load stopped with Cancel.
	ErrCancelled = errors.New("progressive load cancelled")

	// ErrSuperseded is returned by a load replaced by a load of other content.
	ErrSuperseded = errors.New("progressive load superseded")
)

// Defaults for Options.
const (
	DefaultInitialLines = 300
	DefaultBatchLines   = 200
	DefaultBatchDelay   = 10 * time.Millisecond
	DefaultThreshold    = 200
)

// Parser builds trees. Prefixes are parsed with Parse; the complete
// document goes through ParseCached.
type Parser interface {
	Parse(ctx context.Context, text string) (*mdast.Node, error)
	ParseCached(ctx context.Context, text string) (*mdast.Node, error)
}

// Update is handed to the display callback after each batch.
type Update struct {
	Tree  *mdast.Node
	State State
	Lines int
	Total int
}

// Final reports whether the update shows the whole document.
func (u Update) Final() bool {
	return u.Lines >= u.Total
}

// Options configures a Loader. Zero fields select the defaults.
type Options struct {
	// Disabled parses every document in one step.
	Disabled bool

	// InitialLines is the prefix target of the first render.
	InitialLines int

	// BatchLines is how many lines each growth step adds.
	BatchLines int

	// BatchDelay is the pause between batches. Negative means no pause.
	BatchDelay time.Duration

	// Threshold is the line count above which a document loads
	// progressively.
	Threshold int

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.InitialLines <= 0 {
		o.InitialLines = DefaultInitialLines
	}
	if o.BatchLines <= 0 {
		o.BatchLines = DefaultBatchLines
	}
	if o.BatchDelay == 0 {
		o.BatchDelay = DefaultBatchDelay
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Loader runs progressive loads, at most one at a time. It is safe for
// concurrent use.
type Loader struct {
	parser Parser
	opts   Options

	mu         sync.Mutex
	state      State
	generation uint64
	text       string
	running    bool
	cancel     context.CancelCauseFunc

	displayMu sync.Mutex
}

// New creates an idle Loader.
func New(parser Parser, opts Options) *Loader {
	return &Loader{parser: parser, opts: opts.withDefaults()}
}

// State returns the state of the latest load.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Cancel stops the running load before its next batch.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel(ErrCancelled)
	}
}

// Load parses text and hands each displayable tree to display, blocking
// until the load completes or stops. A running load of different content
// is superseded. A load of the content already being loaded returns nil
// at once and leaves the running load alone.
//
// display is never called for a load once a newer load has started.
func (l *Loader) Load(ctx context.Context, text string, display func(Update)) error {
	runCtx, gen, ok := l.begin(ctx, text)
	if !ok {
		return nil
	}

	lines := chunk.SplitLines(text)
	total := len(lines)

	if l.opts.Disabled || total <= l.opts.Threshold {
		return l.single(runCtx, gen, text, total, display)
	}

	l.setState(gen, StateInitialRender)
	count := chunk.SafeSplit(lines, l.opts.InitialLines)

	for batch := 0; ; batch++ {
		if err := l.checkpoint(runCtx, gen); err != nil {
			return err
		}

		final := count >= total
		tree, err := l.parse(runCtx, text, lines, count, final)
		if err != nil {
			l.finish(gen, StateCancelled)
			return err
		}

		state := StateGrowing
		if final {
			state = StateComplete
		}
		l.setState(gen, state)
		if !l.show(runCtx, gen, display, Update{Tree: tree, State: state, Lines: count, Total: total}) {
			return l.stopped(runCtx, gen)
		}

		l.opts.Logger.Debug("progressive batch",
			logging.FieldBatch, batch,
			logging.FieldLines, count,
			logging.FieldTotal, total)

		if final {
			l.finish(gen, StateComplete)
			return nil
		}

		if err := l.pause(runCtx); err != nil {
			return l.stopped(runCtx, gen)
		}
		count = chunk.SafeSplit(lines, count+l.opts.BatchLines)
	}
}

func (l *Loader) single(ctx context.Context, gen uint64, text string, total int, display func(Update)) error {
	l.setState(gen, StateInitialRender)

	tree, err := l.parser.ParseCached(ctx, text)
	if tree == nil && err != nil {
		l.finish(gen, StateCancelled)
		return fmt.Errorf("parse document: %w", err)
	}
	if !l.show(ctx, gen, display, Update{Tree: tree, State: StateComplete, Lines: total, Total: total}) {
		return l.stopped(ctx, gen)
	}

	l.finish(gen, StateComplete)
	return nil
}

// parse builds the tree of the first count lines. A tree is returned even
// when the parse failed inside it; only a parse that produced nothing is
// an error.
func (l *Loader) parse(ctx context.Context, text string, lines []string, count int, final bool) (*mdast.Node, error) {
	var (
		tree *mdast.Node
		err  error
	)
	if final {
		tree, err = l.parser.ParseCached(ctx, text)
	} else {
		tree, err = l.parser.Parse(ctx, joinLines(lines[:count]))
	}

	if tree == nil && err != nil {
		return nil, fmt.Errorf("parse %d lines: %w", count, err)
	}
	if err != nil {
		l.opts.Logger.Warn("progressive parse failed", logging.FieldLines, count, logging.FieldError, err)
	}
	return tree, nil
}

func (l *Loader) begin(parent context.Context, text string) (context.Context, uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running && l.text == text {
		return nil, 0, false
	}
	if l.cancel != nil {
		l.cancel(ErrSuperseded)
	}

	ctx, cancel := context.WithCancelCause(parent)
	l.generation++
	l.cancel = cancel
	l.text = text
	l.running = true
	l.state = StateIdle
	return ctx, l.generation, true
}

func (l *Loader) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen == l.generation
}

func (l *Loader) setState(gen uint64, state State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen == l.generation {
		l.state = state
	}
}

func (l *Loader) finish(gen uint64, state State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		return
	}
	l.state = state
	l.running = false
	if l.cancel != nil {
		l.cancel(nil)
		l.cancel = nil
	}
}

// checkpoint returns the stop error if the load was cancelled.
func (l *Loader) checkpoint(ctx context.Context, gen uint64) error {
	if ctx.Err() == nil {
		return nil
	}
	return l.stopped(ctx, gen)
}

// stopped records cancellation and returns its cause.
func (l *Loader) stopped(ctx context.Context, gen uint64) error {
	l.finish(gen, StateCancelled)

	cause := context.Cause(ctx)
	switch {
	case cause == nil:
		return ErrCancelled
	case errors.Is(cause, ErrCancelled), errors.Is(cause, ErrSuperseded):
		return cause
	default:
		return fmt.Errorf("progressive load: %w", cause)
	}
}

// show calls display unless the load was cancelled or superseded.
func (l *Loader) show(ctx context.Context, gen uint64, display func(Update), update Update) bool {
	l.displayMu.Lock()
	defer l.displayMu.Unlock()

	if ctx.Err() != nil || !l.current(gen) {
		return false
	}
	if display != nil {
		display(update)
	}
	return true
}

func (l *Loader) pause(ctx context.Context) error {
	if l.opts.BatchDelay < 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(l.opts.BatchDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func joinLines(lines []string) string {
	n := 0
	for _, line := range lines {
		n += len(line) + 1
	}

	buf := make([]byte, 0, n)
	for _, line := range lines {
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	return string(buf)
}
