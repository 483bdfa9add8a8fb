package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Discover finds Markdown files matching opts under the given working directory.
// It returns a deterministically sorted list of absolute file paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	d := &discoverer{
		opts:    opts,
		workDir: workDir,
		exts:    opts.effectiveExtensions(),
		seen:    make(map[string]struct{}),
	}

	for _, input := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}
		if !info.IsDir() {
			d.offer(abs)
			continue
		}
		if err := d.walk(ctx, abs); err != nil {
			return nil, err
		}
	}

	slices.Sort(d.files)
	return d.files, nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// discoverer accumulates the files of one Discover call.
type discoverer struct {
	opts    Options
	workDir string
	exts    []string
	seen    map[string]struct{}
	files   []string
}

// offer adds file if it passes the extension and glob filters and has not
// been seen.
func (d *discoverer) offer(file string) {
	if _, ok := d.seen[file]; ok || !d.matches(file) {
		return
	}
	d.seen[file] = struct{}{}
	d.files = append(d.files, file)
}

func (d *discoverer) rel(file string) string {
	r, err := filepath.Rel(d.workDir, file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(r)
}

func (d *discoverer) matches(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))
	if !slices.ContainsFunc(d.exts, func(e string) bool { return strings.ToLower(e) == ext }) {
		return false
	}
	r := d.rel(file)
	if matchesAny(r, d.opts.ExcludeGlobs) {
		return false
	}
	return len(d.opts.IncludeGlobs) == 0 || matchesAny(r, d.opts.IncludeGlobs)
}

// walk visits root recursively. Hidden entries below root are skipped,
// unreadable directories are ignored, and directory symlinks are followed
// only with FollowSymlinks.
func (d *discoverer) walk(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		hidden := p != root && strings.HasPrefix(entry.Name(), ".")
		if entry.IsDir() {
			if hidden || matchesAny(d.rel(p), d.opts.ExcludeGlobs) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(p)
			if err != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			info, err := os.Stat(target)
			if err != nil {
				return nil //nolint:nilerr // unreadable targets are skipped
			}
			if info.IsDir() {
				if !d.opts.FollowSymlinks {
					return nil
				}
				// WalkDir does not descend into symlinks; walk the target.
				return d.walk(ctx, target)
			}
		}

		d.offer(p)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

func matchesAny(relPath string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(pattern string) bool {
		return matchGlob(relPath, pattern)
	})
}

// matchGlob matches a slash-separated relative path against pattern.
// Patterns without "**" match the whole path or its base name. A "**"
// pattern matches when the part before it is a path prefix and the part
// after it matches a trailing run of components or any single component.
func matchGlob(relPath, pattern string) bool {
	pattern = filepath.ToSlash(pattern)

	if !strings.Contains(pattern, "**") {
		return globMatch(pattern, relPath) || globMatch(pattern, path.Base(relPath))
	}

	prefix, suffix, _ := strings.Cut(pattern, "**")
	prefix = strings.TrimSuffix(prefix, "/")
	suffix = strings.TrimPrefix(suffix, "/")

	if prefix != "" && relPath != prefix && !strings.HasPrefix(relPath, prefix+"/") {
		return false
	}
	if suffix == "" {
		return true
	}

	parts := strings.Split(relPath, "/")
	for i := range parts {
		if globMatch(suffix, strings.Join(parts[i:], "/")) || globMatch(suffix, parts[i]) {
			return true
		}
	}
	return false
}

func globMatch(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
