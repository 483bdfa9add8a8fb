package runner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/pkg/chunk"
	"github.com/yaklabco/mdview/pkg/engine"
	"github.com/yaklabco/mdview/pkg/fpcache"
	"github.com/yaklabco/mdview/pkg/fsutil"
)

// Runner parses files through an engine.
type Runner struct {
	// Engine parses and caches documents.
	Engine *engine.Engine

	// Logger receives per-file debug output. When nil, Run logs to the
	// logger carried by its context.
	Logger *log.Logger
}

// New creates a Runner over eng.
func New(eng *engine.Engine, logger *log.Logger) *Runner {
	return &Runner{Engine: eng, Logger: logger}
}

// Run discovers files under opts.Paths and parses them concurrently.
// It returns outcomes in path order and aggregate stats, including the
// cache statistics after the run.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	logger := logging.Resolve(ctx, r.Logger)

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		result.Stats.Cache = r.Engine.Stats()
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	logger.Debug("discovered files", logging.FieldFiles, len(files), logging.FieldJobs, jobs)

	outcomes := make([]FileOutcome, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for idx, path := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outcomes[idx] = r.process(groupCtx, path, opts.effectivePasses())
			logger.Debug("parsed file",
				logging.FieldPath, path,
				logging.FieldKey, outcomes[idx].Key.Short(),
				logging.FieldBlocks, outcomes[idx].Blocks,
				logging.FieldElapsed, outcomes[idx].Elapsed)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}

	for _, outcome := range outcomes {
		result.accumulate(outcome)
	}
	result.Stats.Elapsed = time.Since(start)
	result.Stats.Cache = r.Engine.Stats()

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

// process reads one file and parses it passes times.
func (r *Runner) process(ctx context.Context, path string, passes int) FileOutcome {
	outcome := FileOutcome{Path: path}

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	text := string(content)
	outcome.Key = fpcache.Key(info.Hash)
	outcome.Bytes = info.Size
	outcome.Lines = len(chunk.SplitLines(text))

	begin := time.Now()
	for range passes {
		tree, err := r.Engine.ParseCached(ctx, text)
		if tree != nil {
			outcome.Blocks = tree.ChildCount()
		}
		if err != nil {
			outcome.Error = fmt.Errorf("parse %s: %w", path, err)
			break
		}
	}
	outcome.Elapsed = time.Since(begin)

	return outcome
}
