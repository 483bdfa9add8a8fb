package runner

import (
	"errors"
	"time"

	"github.com/yaklabco/mdview/pkg/engine"
	"github.com/yaklabco/mdview/pkg/fpcache"
)

// FileOutcome is the result of parsing one file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Key is the fingerprint of the file content.
	Key fpcache.Key

	// Bytes is the file size.
	Bytes int64

	// Lines is the number of source lines.
	Lines int

	// Blocks is the number of top-level blocks in the tree.
	Blocks int

	// Elapsed is the time spent parsing across all passes.
	Elapsed time.Duration

	// Error is set if the file could not be read or parsed. A parse
	// contained in an error node is reported here as an *engine.ParseFailure.
	Error error
}

// ParseFailed reports whether the tree of the file is an error placeholder.
func (o FileOutcome) ParseFailed() bool {
	var failure *engine.ParseFailure
	return errors.As(o.Error, &failure)
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files parsed into a usable tree.
	FilesProcessed int

	// FilesErrored is the number of files that could not be read or parsed.
	FilesErrored int

	// ParseFailures is the number of files whose tree is an error placeholder.
	ParseFailures int

	// Bytes, Lines and Blocks are summed over processed files.
	Bytes  int64
	Lines  int
	Blocks int

	// Elapsed is the wall time of the run.
	Elapsed time.Duration

	// Cache is the engine cache state after the run.
	Cache fpcache.Stats
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file.
	// Files are ordered deterministically (by path).
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasFailures reports whether any file could not be read or parsed.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	switch {
	case outcome.ParseFailed():
		r.Stats.FilesErrored++
		r.Stats.ParseFailures++
		return
	case outcome.Error != nil:
		r.Stats.FilesErrored++
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.Bytes += outcome.Bytes
	r.Stats.Lines += outcome.Lines
	r.Stats.Blocks += outcome.Blocks
}
