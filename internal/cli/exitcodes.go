package cli

import (
	"errors"

	"github.com/yaklabco/mdview/pkg/runner"
)

// ErrParseFailures is returned when at least one document could not be
// read or parsed. It only selects the exit code.
var ErrParseFailures = errors.New("some documents could not be parsed")

// Exit codes for mdview.
const (
	// ExitSuccess indicates every document was parsed.
	ExitSuccess = 0

	// ExitParseFailures indicates the run completed but some documents failed.
	ExitParseFailures = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrConfig wraps configuration failures so main can pick ExitConfigError.
var ErrConfig = errors.New("failed to load configuration")

// ErrUsage marks invalid flag values.
var ErrUsage = errors.New("invalid usage")

// ExitCodeFromResult determines the exit code of a stats run.
func ExitCodeFromResult(result *runner.Result) int {
	if result == nil {
		return ExitSuccess
	}
	if result.HasFailures() {
		return ExitParseFailures
	}
	return ExitSuccess
}

// ExitCodeFromError maps a command error to an exit code.
func ExitCodeFromError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrParseFailures):
		return ExitParseFailures
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, ErrIO):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
