package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/mdview/pkg/fpcache"
	"github.com/yaklabco/mdview/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files parsed (12 KiB, 240 blocks) in 4ms, 1 failed".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.FilesDiscovered == 0 {
		return s.Dim.Render("No Markdown files found") + "\n"
	}

	line := fmt.Sprintf("%d %s parsed", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles))
	line = s.Success.Render(line) + s.Dim.Render(fmt.Sprintf(" (%s, %d blocks) in %s",
		humanize.IBytes(uint64(max(stats.Bytes, 0))), stats.Blocks, roundDuration(stats.Elapsed)))

	if stats.FilesErrored > 0 {
		line += ", " + s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesErrored))
	}
	return line + "\n"
}

// FormatSummary formats run statistics, including the cache, as a block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	s.row(&builder, "Files parsed:", strconv.Itoa(stats.FilesProcessed))
	if stats.FilesErrored > 0 {
		s.rowStyled(&builder, "Files failed:", s.Failure.Render(strconv.Itoa(stats.FilesErrored)))
	}
	if stats.ParseFailures > 0 {
		s.rowStyled(&builder, "  Parse failures:", s.Failure.Render(strconv.Itoa(stats.ParseFailures)))
	}
	s.row(&builder, "Source size:", humanize.IBytes(uint64(max(stats.Bytes, 0))))
	s.row(&builder, "Lines:", humanize.Comma(int64(stats.Lines)))
	s.row(&builder, "Blocks:", humanize.Comma(int64(stats.Blocks)))
	s.row(&builder, "Elapsed:", roundDuration(stats.Elapsed).String())

	builder.WriteString("\n")
	builder.WriteString(s.FormatCacheStats(stats.Cache))
	builder.WriteString("\n")

	if stats.FilesErrored > 0 {
		builder.WriteString(s.Failure.Render("Some documents could not be parsed"))
	} else {
		builder.WriteString(s.Success.Render("All documents parsed"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// FormatCacheStats formats the fingerprint cache counters.
func (s *Styles) FormatCacheStats(stats fpcache.Stats) string {
	var builder strings.Builder

	builder.WriteString(s.SummaryTitle.Render("Cache"))
	builder.WriteString("\n")
	s.row(&builder, "Entries:", fmt.Sprintf("%d (%s)", stats.Entries, humanize.IBytes(uint64(max(stats.Bytes, 0)))))
	s.row(&builder, "Hit rate:", fmt.Sprintf("%.1f%% (%d hits, %d misses)", stats.HitRate()*100, stats.Hits, stats.Misses))
	if stats.Evictions > 0 || stats.Expirations > 0 {
		s.rowStyled(&builder, "Evicted:", s.Warning.Render(fmt.Sprintf("%d evicted, %d expired", stats.Evictions, stats.Expirations)))
	}
	if stats.Inconsistencies > 0 {
		s.rowStyled(&builder, "Mismatches:", s.Error.Render(strconv.FormatUint(stats.Inconsistencies, 10)))
	}

	return builder.String()
}

func (s *Styles) row(builder *strings.Builder, label, value string) {
	s.rowStyled(builder, label, s.SummaryValue.Render(value))
}

func (s *Styles) rowStyled(builder *strings.Builder, label, value string) {
	fmt.Fprintf(builder, "  %s %s\n", s.SummaryLabel.Render(fmt.Sprintf("%-18s", label)), value)
}

func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond)
	default:
		return d
	}
}
