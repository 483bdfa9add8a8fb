package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdview/internal/termrender"
	"github.com/yaklabco/mdview/pkg/grammar"
	"github.com/yaklabco/mdview/pkg/layout"
	"github.com/yaklabco/mdview/pkg/progressive"
)

func newTestPager(t *testing.T, blocks int) *pager {
	t.Helper()

	var src strings.Builder
	for i := range blocks {
		fmt.Fprintf(&src, "block %d\n\n", i)
	}

	renderer := termrender.New(nil)
	win := layout.New(renderer, layout.Options{OverScan: 1})
	t.Cleanup(win.Close)

	p := newPager(win, renderer, "doc.md", false)
	p.resize(60, 7)
	p.update(progressive.Update{
		Tree:  grammar.Parse(src.String(), grammar.DefaultStatus()),
		State: progressive.StateComplete,
		Lines: blocks * 2,
		Total: blocks * 2,
	})
	return p
}

func TestPager_Frame(t *testing.T) {
	t.Parallel()

	p := newTestPager(t, 20)
	frame := p.frame()

	require.Len(t, frame, 7)
	assert.Equal(t, "  block 0", frame[0])
	assert.Equal(t, "  block 2", frame[4])
	assert.Contains(t, frame[6], "doc.md")
	assert.Contains(t, frame[6], "block 1/20")
	assert.True(t, strings.HasPrefix(frame[6], " doc.md"))
}

func TestPager_MoveAndYank(t *testing.T) {
	t.Parallel()

	p := newTestPager(t, 20)
	p.frame()

	for range 5 {
		p.apply(keyEvent{action: actionMove, key: layout.KeyDown})
	}
	p.apply(keyEvent{action: actionMove, key: layout.KeyDown, extend: true})

	frame := p.frame()
	assert.Contains(t, frame[6], "block 6/20")
	assert.Contains(t, strings.Join(frame[:6], "\n"), "> block 5")

	p.apply(keyEvent{action: actionYank})
	assert.Equal(t, "block 4\n\nblock 5", p.yanked)
	assert.Contains(t, p.statusLine(), "copied")

	p.apply(keyEvent{action: actionClear})
	p.apply(keyEvent{action: actionYank})
	assert.Empty(t, p.yanked)
	assert.Contains(t, p.statusLine(), "nothing selected")
}

func TestPager_LoadingStatus(t *testing.T) {
	t.Parallel()

	p := newTestPager(t, 3)
	p.update(progressive.Update{
		Tree:  grammar.Parse("a\n", grammar.DefaultStatus()),
		State: progressive.StateGrowing,
		Lines: 300,
		Total: 900,
	})
	assert.Contains(t, p.statusLine(), "loading 300/900 lines")
}

func TestLoadFailed(t *testing.T) {
	t.Parallel()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want bool
	}{
		{"no error", context.Background(), nil, false},
		{"superseded by a reload", context.Background(), progressive.ErrSuperseded, false},
		{"cancelled load", context.Background(), fmt.Errorf("wrapped: %w", progressive.ErrCancelled), false},
		{"pager quitting", cancelled, errors.New("parse document: boom"), false},
		{"parse failure", context.Background(), errors.New("parse document: boom"), true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, loadFailed(testCase.ctx, testCase.err))
		})
	}
}
