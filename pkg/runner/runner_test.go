package runner_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/pkg/engine"
	"github.com/yaklabco/mdview/pkg/fpcache"
	"github.com/yaklabco/mdview/pkg/grammar"
	"github.com/yaklabco/mdview/pkg/mdast"
	"github.com/yaklabco/mdview/pkg/runner"
)

func newRunner(t *testing.T, opts engine.Options) *runner.Runner {
	t.Helper()

	if opts.Cache == nil {
		opts.Cache = fpcache.New(fpcache.Options{})
	}
	eng := engine.New(opts)
	t.Cleanup(func() { _ = eng.Close() })
	return runner.New(eng, nil)
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	result, err := newRunner(t, engine.Options{}).Run(context.Background(), runner.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Zero(t, result.Stats.FilesDiscovered)
	assert.False(t, result.HasFailures())
}

func TestRunner_Run_ParsesFiles(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{
		"a.md":      "# A\n\ntext\n",
		"docs/b.md": "- one\n- two\n\n```go\nx\n```\n",
		"docs/c.md": "plain\n",
	})

	result, err := newRunner(t, engine.Options{Status: grammar.DefaultStatus()}).Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Jobs:       2,
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 3)
	assert.Equal(t, []string{"a.md", "docs/b.md", "docs/c.md"}, rel(t, dir, paths(result.Files)))

	a := result.Files[0]
	assert.NoError(t, a.Error)
	assert.Equal(t, fpcache.Fingerprint("# A\n\ntext\n"), a.Key)
	assert.EqualValues(t, len("# A\n\ntext\n"), a.Bytes)
	assert.Equal(t, 3, a.Lines)
	assert.Equal(t, 2, a.Blocks)

	stats := result.Stats
	assert.Equal(t, 3, stats.FilesDiscovered)
	assert.Equal(t, 3, stats.FilesProcessed)
	assert.Equal(t, 5, stats.Blocks)
	assert.Equal(t, 3, stats.Cache.Entries)
	assert.EqualValues(t, 3, stats.Cache.Misses)
}

func TestRunner_Run_PassesHitCache(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"a.md": "a", "b.md": "b", "c.md": "c"})

	result, err := newRunner(t, engine.Options{}).Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Passes:     3,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 6, result.Stats.Cache.Hits)
	assert.EqualValues(t, 3, result.Stats.Cache.Misses)
}

func TestRunner_Run_IdenticalContentSharesEntry(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"a.md": "same", "b.md": "same"})

	result, err := newRunner(t, engine.Options{}).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 1})
	require.NoError(t, err)

	assert.Equal(t, result.Files[0].Key, result.Files[1].Key)
	assert.Equal(t, 1, result.Stats.Cache.Entries)
}

func TestRunner_Run_ParseFailure(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"ok.md": "fine", "bad.md": "explode"})

	r := newRunner(t, engine.Options{
		Parser: func(text string, status grammar.Status) *mdast.Node {
			if strings.Contains(text, "explode") {
				panic("boom")
			}
			return grammar.Parse(text, status)
		},
	})

	result, err := r.Run(context.Background(), runner.Options{WorkingDir: dir})
	require.NoError(t, err)

	assert.True(t, result.HasFailures())
	assert.Equal(t, 1, result.Stats.ParseFailures)
	assert.Equal(t, 1, result.Stats.FilesProcessed)

	bad := result.Files[0]
	assert.Equal(t, "bad.md", filepath.Base(bad.Path))
	assert.True(t, bad.ParseFailed())
	assert.Equal(t, 1, bad.Blocks)
}

func TestRunner_Run_Cancelled(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"a.md": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(t, engine.Options{}).Run(ctx, runner.Options{WorkingDir: dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func paths(outcomes []runner.FileOutcome) []string {
	out := make([]string, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Path
	}
	return out
}

func TestRunner_Run_LogsToContextLogger(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"a.md": "# A\n", "b.md": "b\n"})

	var out bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWithWriter(&out, "debug"))

	_, err := newRunner(t, engine.Options{}).Run(ctx, runner.Options{WorkingDir: dir})
	require.NoError(t, err)

	logged := out.String()
	assert.Contains(t, logged, "discovered files")
	assert.Contains(t, logged, "files=2")
	assert.Equal(t, 2, strings.Count(logged, "parsed file"))
	assert.Contains(t, logged, "cached document", "engine logs through the same context")
}
