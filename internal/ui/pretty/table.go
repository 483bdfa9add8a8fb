package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/mdview/pkg/runner"
)

// Table formatting constants.
const (
	tablePadding     = 2
	minFileWidth     = 20
	numberWidth      = 8
	sizeWidth        = 10
	timeWidth        = 10
	numberColumns    = 4 // LINES, BLOCKS, SIZE, TIME
	heavySeparator   = "="
	defaultTermWidth = 100
	ellipsis         = "..."
)

// TableRow is one file in the stats table.
type TableRow struct {
	File    string
	Lines   string
	Blocks  string
	Size    string
	Time    string
	Failed  bool
	Message string
}

// TableFormatter formats per-file parse statistics as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{styles: styles, termWidth: termWidth}
}

// OutcomeToTableRow converts a file outcome to a table row.
func OutcomeToTableRow(outcome runner.FileOutcome) TableRow {
	row := TableRow{
		File:   outcome.Path,
		Lines:  humanize.Comma(int64(outcome.Lines)),
		Blocks: strconv.Itoa(outcome.Blocks),
		Size:   humanize.IBytes(uint64(max(outcome.Bytes, 0))),
		Time:   roundDuration(outcome.Elapsed).String(),
	}
	if outcome.Error != nil {
		row.Failed = true
		row.Message = outcome.Error.Error()
	}
	return row
}

// FormatTable formats runner results as a styled table.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil || len(result.Files) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(result.Files))
	for _, outcome := range result.Files {
		rows = append(rows, OutcomeToTableRow(outcome))
	}

	fileWidth := t.fileWidth(rows)
	total := fileWidth + numberWidth*2 + sizeWidth + timeWidth + tablePadding*(numberColumns+1)

	var builder strings.Builder

	header := fmt.Sprintf(" %s  %*s  %*s  %*s  %*s",
		padRight("FILE", fileWidth),
		numberWidth, "LINES",
		numberWidth, "BLOCKS",
		sizeWidth, "SIZE",
		timeWidth, "TIME")
	builder.WriteString(t.styles.TableHeader.Render(header))
	builder.WriteString("\n")
	builder.WriteString(t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, total)))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, fileWidth))
		builder.WriteString("\n")
	}

	builder.WriteString(t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, total)))
	builder.WriteString("\n")

	return builder.String()
}

func (t *TableFormatter) formatRow(row TableRow, fileWidth int) string {
	file := padRight(truncateFilePath(row.File, fileWidth), fileWidth)

	if row.Failed {
		rest := t.termWidth - fileWidth - tablePadding*2
		content := fmt.Sprintf(" %s  %s", file, truncateString(row.Message, max(rest, len(ellipsis)+1)))
		return t.styles.TableErrorRow.Render(content)
	}

	return fmt.Sprintf(" %s  %s  %s  %s  %s",
		file,
		t.styles.TableNumber.Render(fmt.Sprintf("%*s", numberWidth, row.Lines)),
		t.styles.TableNumber.Render(fmt.Sprintf("%*s", numberWidth, row.Blocks)),
		fmt.Sprintf("%*s", sizeWidth, row.Size),
		t.styles.Dim.Render(fmt.Sprintf("%*s", timeWidth, row.Time)))
}

// fileWidth sizes the FILE column to the widest path that fits the terminal.
func (t *TableFormatter) fileWidth(rows []TableRow) int {
	width := minFileWidth
	for _, row := range rows {
		width = max(width, runewidth.StringWidth(row.File))
	}

	fixed := numberWidth*2 + sizeWidth + timeWidth + tablePadding*(numberColumns+1)
	if width+fixed > t.termWidth {
		width = max(minFileWidth, t.termWidth-fixed)
	}
	return width
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats) string {
	parts := []string{
		fmt.Sprintf("%d %s parsed", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles)),
		fmt.Sprintf("%.0f%% cache hits", stats.Cache.HitRate()*100),
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, t.styles.Error.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	parts = append(parts, t.styles.Dim.Render(roundDuration(stats.Elapsed).String()))

	return " " + strings.Join(parts, " | ")
}

func padRight(str string, width int) string {
	return runewidth.FillRight(str, width)
}

// truncateString truncates a string to maxWidth cells, adding "..." if truncated.
func truncateString(str string, maxWidth int) string {
	if runewidth.StringWidth(str) <= maxWidth {
		return str
	}
	if maxWidth <= len(ellipsis) {
		return runewidth.Truncate(str, maxWidth, "")
	}
	return runewidth.Truncate(str, maxWidth, ellipsis)
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxWidth int) string {
	if runewidth.StringWidth(path) <= maxWidth {
		return path
	}
	runes := []rune(path)
	budget := maxWidth - len(ellipsis)
	if budget <= 0 {
		budget = maxWidth
	}

	width := 0
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if width+w > budget {
			break
		}
		width += w
		start--
	}

	if maxWidth <= len(ellipsis) {
		return string(runes[start:])
	}
	return ellipsis + string(runes[start:])
}
