package progressive_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdview/pkg/chunk"
	"github.com/yaklabco/mdview/pkg/grammar"
	"github.com/yaklabco/mdview/pkg/mdast"
	"github.com/yaklabco/mdview/pkg/progressive"
)

type fakeParser struct {
	prefixes atomic.Int32
	full     atomic.Int32
}

func (p *fakeParser) Parse(_ context.Context, text string) (*mdast.Node, error) {
	p.prefixes.Add(1)
	return grammar.Parse(text, grammar.DefaultStatus()), nil
}

func (p *fakeParser) ParseCached(_ context.Context, text string) (*mdast.Node, error) {
	p.full.Add(1)
	return grammar.Parse(text, grammar.DefaultStatus()), nil
}

func paragraphs(n int) string {
	var sb strings.Builder
	for i := range n {
		fmt.Fprintf(&sb, "line %d\n", i)
		if i%3 == 2 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

type recorder struct {
	mu      sync.Mutex
	updates []progressive.Update
}

func (r *recorder) display(u progressive.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) all() []progressive.Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]progressive.Update(nil), r.updates...)
}

func fastOptions() progressive.Options {
	return progressive.Options{InitialLines: 30, BatchLines: 20, Threshold: 50, BatchDelay: -1}
}

func TestLoad_SmallDocumentInOneStep(t *testing.T) {
	t.Parallel()

	parser := &fakeParser{}
	loader := progressive.New(parser, fastOptions())
	rec := &recorder{}

	require.NoError(t, loader.Load(context.Background(), paragraphs(10), rec.display))

	updates := rec.all()
	require.Len(t, updates, 1)
	assert.True(t, updates[0].Final())
	assert.Equal(t, progressive.StateComplete, updates[0].State)
	assert.Equal(t, progressive.StateComplete, loader.State())
	assert.EqualValues(t, 0, parser.prefixes.Load())
	assert.EqualValues(t, 1, parser.full.Load())
}

func TestLoad_GrowsToCompleteDocument(t *testing.T) {
	t.Parallel()

	text := paragraphs(120)
	lines := chunk.SplitLines(text)
	parser := &fakeParser{}
	loader := progressive.New(parser, fastOptions())
	rec := &recorder{}

	require.NoError(t, loader.Load(context.Background(), text, rec.display))

	updates := rec.all()
	require.Greater(t, len(updates), 2)

	prev := 0
	for i, u := range updates {
		assert.Greater(t, u.Lines, prev, "update %d", i)
		assert.Equal(t, len(lines), u.Total)
		prev = u.Lines

		want := grammar.Parse(strings.Join(lines[:u.Lines], "\n")+"\n", grammar.DefaultStatus())
		assert.True(t, mdast.Equal(want, u.Tree), "update %d is the parse of its prefix", i)
	}

	assert.Equal(t, 30, updates[0].Lines)
	assert.Equal(t, progressive.StateGrowing, updates[0].State)
	last := updates[len(updates)-1]
	assert.True(t, last.Final())
	assert.Equal(t, progressive.StateComplete, last.State)
	assert.Equal(t, progressive.StateComplete, loader.State())
	assert.EqualValues(t, 1, parser.full.Load())
}

func TestLoad_NeverSplitsFence(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	sb.WriteString(paragraphs(25))
	sb.WriteString("```go\n")
	for i := range 40 {
		fmt.Fprintf(&sb, "x%d := %d\n", i, i)
	}
	sb.WriteString("```\n")
	sb.WriteString(paragraphs(60))
	text := sb.String()

	spans := chunk.FenceSpans(chunk.SplitLines(text))
	require.Len(t, spans, 1)

	rec := &recorder{}
	loader := progressive.New(&fakeParser{}, fastOptions())
	require.NoError(t, loader.Load(context.Background(), text, rec.display))

	for _, u := range rec.all() {
		inside := u.Lines > spans[0][0] && u.Lines < spans[0][1]
		assert.False(t, inside, "split at %d falls inside fence %v", u.Lines, spans[0])
	}
}

func TestLoad_Cancel(t *testing.T) {
	t.Parallel()

	loader := progressive.New(&fakeParser{}, fastOptions())
	rec := &recorder{}

	err := loader.Load(context.Background(), paragraphs(200), func(u progressive.Update) {
		rec.display(u)
		loader.Cancel()
	})

	require.ErrorIs(t, err, progressive.ErrCancelled)
	assert.Len(t, rec.all(), 1)
	assert.Equal(t, progressive.StateCancelled, loader.State())
}

func TestLoad_ParentContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := progressive.New(&fakeParser{}, fastOptions())
	err := loader.Load(ctx, paragraphs(200), func(progressive.Update) { cancel() })

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, progressive.StateCancelled, loader.State())
}

func TestLoad_SupersededByOtherContent(t *testing.T) {
	t.Parallel()

	opts := fastOptions()
	opts.BatchDelay = time.Hour
	loader := progressive.New(&fakeParser{}, opts)

	first := &recorder{}
	shown := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- loader.Load(context.Background(), paragraphs(200), func(u progressive.Update) {
			first.display(u)
			shown <- struct{}{}
		})
	}()

	<-shown

	second := &recorder{}
	require.NoError(t, loader.Load(context.Background(), paragraphs(5), second.display))

	select {
	case err := <-done:
		require.ErrorIs(t, err, progressive.ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded load did not stop")
	}

	assert.Len(t, first.all(), 1)
	assert.Len(t, second.all(), 1)
	assert.Equal(t, progressive.StateComplete, loader.State())
}

func TestLoad_SameContentIgnored(t *testing.T) {
	t.Parallel()

	opts := fastOptions()
	opts.BatchDelay = time.Hour
	loader := progressive.New(&fakeParser{}, opts)
	text := paragraphs(200)

	shown := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- loader.Load(context.Background(), text, func(progressive.Update) { shown <- struct{}{} })
	}()
	<-shown

	calls := 0
	require.NoError(t, loader.Load(context.Background(), text, func(progressive.Update) { calls++ }))
	assert.Zero(t, calls)
	assert.Equal(t, progressive.StateGrowing, loader.State())

	loader.Cancel()
	require.ErrorIs(t, <-done, progressive.ErrCancelled)
}

func TestLoad_Disabled(t *testing.T) {
	t.Parallel()

	opts := fastOptions()
	opts.Disabled = true
	rec := &recorder{}

	loader := progressive.New(&fakeParser{}, opts)
	require.NoError(t, loader.Load(context.Background(), paragraphs(500), rec.display))

	require.Len(t, rec.all(), 1)
	assert.True(t, rec.all()[0].Final())
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state    progressive.State
		want     string
		terminal bool
	}{
		{progressive.StateIdle, "idle", false},
		{progressive.StateInitialRender, "initial-render", false},
		{progressive.StateGrowing, "growing", false},
		{progressive.StateComplete, "complete", true},
		{progressive.StateCancelled, "cancelled", true},
		{progressive.State(42), "unknown", false},
	}

	for _, testCase := range tests {
		assert.Equal(t, testCase.want, testCase.state.String())
		assert.Equal(t, testCase.terminal, testCase.state.Terminal())
	}
}
