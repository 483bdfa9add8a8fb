package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdview/pkg/runner"
)

// FormatFailure formats a file that could not be read or parsed.
func (s *Styles) FormatFailure(outcome runner.FileOutcome) string {
	if outcome.Error == nil {
		return ""
	}

	label := s.Error.Render("error")
	if outcome.ParseFailed() {
		label = s.Failure.Render("parse failure")
	}
	return fmt.Sprintf("  %s  %s  %s\n", s.FilePath.Render(outcome.Path), label, s.Message.Render(outcome.Error.Error()))
}

// FormatFailures formats every failed outcome of result, in path order.
func (s *Styles) FormatFailures(result *runner.Result) string {
	if result == nil {
		return ""
	}

	var builder strings.Builder
	for _, outcome := range result.Files {
		builder.WriteString(s.FormatFailure(outcome))
	}
	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, blocks int) string {
	header := s.FilePath.Render(path)
	if blocks > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d blocks)", blocks))
	}
	return header
}
