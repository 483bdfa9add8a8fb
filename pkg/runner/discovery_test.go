package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdview/pkg/runner"
)

// tree creates files (with parents) under a fresh temp dir and returns it.
func tree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func rel(t *testing.T, dir string, files []string) []string {
	t.Helper()

	out := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	layout := map[string]string{
		"readme.md":            "# Readme",
		"docs/guide.md":        "guide",
		"docs/api.markdown":    "api",
		"docs/draft/wip.md":    "wip",
		"vendor/lib/README.md": "vendored",
		"src/main.go":          "package main",
		"notes.txt":            "notes",
		".github/issue.md":     "hidden dir",
		".hidden.md":           "hidden file",
	}

	tests := []struct {
		name string
		opts runner.Options
		want []string
	}{
		{
			name: "defaults to working directory",
			want: []string{"docs/api.markdown", "docs/draft/wip.md", "docs/guide.md", "readme.md", "vendor/lib/README.md"},
		},
		{
			name: "single file",
			opts: runner.Options{Paths: []string{"readme.md"}},
			want: []string{"readme.md"},
		},
		{
			name: "non markdown file is skipped",
			opts: runner.Options{Paths: []string{"notes.txt"}},
			want: []string{},
		},
		{
			name: "custom extensions",
			opts: runner.Options{Extensions: []string{".txt"}},
			want: []string{"notes.txt"},
		},
		{
			name: "exclude directory glob",
			opts: runner.Options{ExcludeGlobs: []string{"vendor/**", "**/draft"}},
			want: []string{"docs/api.markdown", "docs/guide.md", "readme.md"},
		},
		{
			name: "exclude by file name",
			opts: runner.Options{ExcludeGlobs: []string{"README.md"}},
			want: []string{"docs/api.markdown", "docs/draft/wip.md", "docs/guide.md", "readme.md"},
		},
		{
			name: "include globs",
			opts: runner.Options{IncludeGlobs: []string{"docs/**"}},
			want: []string{"docs/api.markdown", "docs/draft/wip.md", "docs/guide.md"},
		},
		{
			name: "multiple paths are deduplicated",
			opts: runner.Options{Paths: []string{"docs", "docs/guide.md", "readme.md", "docs"}},
			want: []string{"docs/api.markdown", "docs/draft/wip.md", "docs/guide.md", "readme.md"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			dir := tree(t, layout)
			opts := testCase.opts
			opts.WorkingDir = dir

			files, err := runner.Discover(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, append([]string{}, rel(t, dir, files)...))
		})
	}
}

func TestDiscover_NonExistentPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"missing.md"},
		WorkingDir: t.TempDir(),
	})
	assert.Error(t, err)
}

func TestDiscover_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"a.md": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{WorkingDir: dir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_DirectorySymlinks(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"real/doc.md": "doc", "site/index.md": "index"})
	if err := os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "site", "linked")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	opts := runner.Options{Paths: []string{"site"}, WorkingDir: dir}
	files, err := runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"site/index.md"}, rel(t, dir, files))

	opts.FollowSymlinks = true
	files, err = runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"real/doc.md", "site/index.md"}, rel(t, dir, files))
}

func TestDefaultExtensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{".md", ".markdown"}, runner.DefaultExtensions())
}
