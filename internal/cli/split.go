package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdview/pkg/chunk"
	"github.com/yaklabco/mdview/pkg/config"
)

type splitFlags struct {
	lines   int
	batch   int
	batches bool
	format  string
}

// splitReport describes where a document may be cut for partial parsing.
type splitReport struct {
	Path    string   `json:"path"`
	Lines   int      `json:"lines"`
	Target  int      `json:"target"`
	Split   int      `json:"split"`
	Fences  [][2]int `json:"fences"`
	Batches []int    `json:"batches,omitempty"`
}

func newSplitCommand() *cobra.Command {
	flags := &splitFlags{}

	cmd := &cobra.Command{
		Use:   "split [file]",
		Short: "Show where a document may be cut for partial parsing",
		Long: `Report the chunk-safe split point of a document.

A prefix may be parsed on its own only if it does not end inside a fenced
code block. For a target line count the split point is the target itself, or
the line just past the closing fence when the target falls inside one.

With --batches the command lists every prefix a progressive load would parse.

Examples:
  mdview split --lines 300 big.md
  mdview split --batches --batch 100 big.md
  mdview split --format json big.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, args, flags)
		},
	}

	cmd.Flags().IntVar(&flags.lines, "lines", 0, "target line count (0 = configured initial render lines)")
	cmd.Flags().IntVar(&flags.batch, "batch", 0, "lines added per batch (0 = configured batch size)")
	cmd.Flags().BoolVar(&flags.batches, "batches", false, "list the prefixes of a progressive load")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")

	return cmd
}

func runSplit(cmd *cobra.Command, args []string, flags *splitFlags) error {
	if flags.format != string(config.FormatText) && flags.format != string(config.FormatJSON) {
		return fmt.Errorf("%w: unknown format %q (want text or json)", ErrUsage, flags.format)
	}
	if flags.lines < 0 || flags.batch < 0 {
		return fmt.Errorf("%w: --lines and --batch must not be negative", ErrUsage)
	}

	cfg, _, err := loadConfig(cmd, &config.Config{})
	if err != nil {
		return err
	}

	doc, err := readDocument(cmd, singleInput(args))
	if err != nil {
		return err
	}

	target := flags.lines
	if target == 0 {
		target = cfg.InitialRenderLines
	}
	batch := flags.batch
	if batch == 0 {
		batch = cfg.ProgressiveBatchLines
	}

	lines := chunk.SplitLines(doc.Text)
	report := splitReport{
		Path:   doc.Name(),
		Lines:  len(lines),
		Target: target,
		Split:  chunk.SafeSplit(lines, target),
		Fences: chunk.FenceSpans(lines),
	}
	if report.Fences == nil {
		report.Fences = [][2]int{}
	}
	if flags.batches {
		report.Batches = batchBoundaries(lines, target, batch)
	}

	out := cmd.OutOrStdout()
	if flags.format == string(config.FormatJSON) {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return errors.Join(ErrIO, err)
		}
		return nil
	}

	if err := writeSplitReport(out, report); err != nil {
		return errors.Join(ErrIO, err)
	}
	return nil
}

// batchBoundaries returns the prefix line counts of a progressive load that
// starts at initial and grows by batch.
func batchBoundaries(lines []string, initial, batch int) []int {
	total := len(lines)
	if total == 0 {
		return []int{0}
	}

	count := chunk.SafeSplit(lines, max(initial, 1))
	bounds := []int{count}
	for count < total {
		count = chunk.SafeSplit(lines, count+max(batch, 1))
		bounds = append(bounds, count)
	}
	return bounds
}

func writeSplitReport(w io.Writer, report splitReport) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: %d lines, %d %s\n",
		report.Path, report.Lines, len(report.Fences), plural(len(report.Fences), "fence", "fences"))

	switch {
	case report.Split == report.Target:
		fmt.Fprintf(&sb, "split at line %d\n", report.Split)
	case report.Split >= report.Lines && report.Target >= report.Lines:
		fmt.Fprintf(&sb, "target %d covers the whole document\n", report.Target)
	default:
		fmt.Fprintf(&sb, "split at line %d (target %d falls inside a fence)\n", report.Split, report.Target)
	}

	for _, span := range report.Fences {
		fmt.Fprintf(&sb, "  fence lines %d-%d\n", span[0]+1, span[1])
	}

	if len(report.Batches) > 0 {
		counts := make([]string, len(report.Batches))
		for i, n := range report.Batches {
			counts[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(&sb, "batches: %s\n", strings.Join(counts, " "))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
