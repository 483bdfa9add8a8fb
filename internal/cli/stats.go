package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/internal/ui/pretty"
	"github.com/yaklabco/mdview/pkg/config"
	"github.com/yaklabco/mdview/pkg/engine"
	"github.com/yaklabco/mdview/pkg/fpcache"
	"github.com/yaklabco/mdview/pkg/runner"
)

type statsFlags struct {
	format         string
	ignore         []string
	include        []string
	passes         int
	perFile        bool
	followSymlinks bool
}

func newStatsCommand() *cobra.Command {
	var cfg config.Config
	flags := &statsFlags{}

	cmd := &cobra.Command{
		Use:   "stats [paths...]",
		Short: "Parse Markdown files concurrently and report cache statistics",
		Long:  statsLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args, &cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().IntVar(&flags.passes, "passes", 1, "parse every file this many times through the cache")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "glob patterns a file must match")
	cmd.Flags().BoolVar(&flags.perFile, "per-file", false, "list every parsed file (text format)")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "follow symlinked directories")

	return cmd
}

const statsLongDescription = `Parse every Markdown file under the given paths through one engine and
report sizes, timings and the state of the fingerprint cache.

By default, parses all .md and .markdown files in the current directory and
subdirectories. Files with identical content share one cache entry; repeated
passes are served from the cache.

Examples:
  mdview stats                      # Current directory
  mdview stats docs/ README.md      # Specific paths
  mdview stats --passes 3           # Measure cache hits
  mdview stats --format table       # One row per file
  mdview stats --format json        # Machine-readable output`

// statsReport is the JSON form of a run.
type statsReport struct {
	Files []fileReport  `json:"files"`
	Stats runSummary    `json:"stats"`
	Cache fpcache.Stats `json:"cache"`
}

type fileReport struct {
	Path      string  `json:"path"`
	Key       string  `json:"key,omitempty"`
	Bytes     int64   `json:"bytes"`
	Lines     int     `json:"lines"`
	Blocks    int     `json:"blocks"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
}

type runSummary struct {
	FilesDiscovered int     `json:"files_discovered"`
	FilesProcessed  int     `json:"files_processed"`
	FilesErrored    int     `json:"files_errored"`
	ParseFailures   int     `json:"parse_failures"`
	Bytes           int64   `json:"bytes"`
	Lines           int     `json:"lines"`
	Blocks          int     `json:"blocks"`
	ElapsedMS       float64 `json:"elapsed_ms"`
}

func runStats(cmd *cobra.Command, args []string, cli *config.Config, flags *statsFlags) error {
	switch flags.format {
	case "text", "table", "json":
	default:
		return fmt.Errorf("%w: unknown format %q (want text, table or json)", ErrUsage, flags.format)
	}
	if flags.passes < 1 {
		return fmt.Errorf("%w: --passes must be at least 1", ErrUsage)
	}
	if flags.ignore != nil {
		cli.Ignore = flags.ignore
	}

	cfg, logger, err := loadConfig(cmd, cli)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	eng := engine.New(engine.OptionsFromConfig(cfg, logger))
	defer eng.Close()

	runOpts := runner.Options{
		Paths:          args,
		WorkingDir:     workDir,
		Extensions:     runner.DefaultExtensions(),
		IncludeGlobs:   flags.include,
		ExcludeGlobs:   cfg.Ignore,
		FollowSymlinks: flags.followSymlinks,
		Jobs:           cfg.Jobs,
		Passes:         flags.passes,
	}

	logger.Debug("starting stats run",
		logging.FieldFiles, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
		logging.FieldPasses, runOpts.Passes,
	)

	result, err := runner.New(eng, nil).Run(commandContext(cmd), runOpts)
	if err != nil {
		return errors.Join(errors.New("stats run failed"), err)
	}

	logger.Debug("cache statistics",
		logging.FieldEntries, result.Stats.Cache.Entries,
		logging.FieldHits, result.Stats.Cache.Hits,
		logging.FieldMisses, result.Stats.Cache.Misses,
		logging.FieldEvictions, result.Stats.Cache.Evictions,
	)

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(string(cfg.Color), out))

	switch flags.format {
	case "json":
		err = writeStatsJSON(out, result)
	case "table":
		formatter := pretty.NewTableFormatter(styles, outputWidth(out))
		_, err = io.WriteString(out, formatter.FormatTable(result)+formatter.FormatTableSummary(result.Stats))
	default:
		err = writeStatsText(out, styles, result, flags.perFile)
	}
	if err != nil {
		return errors.Join(ErrIO, err)
	}

	if ExitCodeFromResult(result) != ExitSuccess {
		return ErrParseFailures
	}
	return nil
}

func writeStatsText(w io.Writer, styles *pretty.Styles, result *runner.Result, perFile bool) error {
	var text string
	if perFile {
		for _, outcome := range result.Files {
			if outcome.Error == nil {
				text += styles.FormatFileHeader(outcome.Path, outcome.Blocks) + "\n"
			}
		}
	}
	text += styles.FormatFailures(result)
	text += styles.FormatSummary(result.Stats)

	_, err := io.WriteString(w, text)
	return err
}

func writeStatsJSON(w io.Writer, result *runner.Result) error {
	report := statsReport{
		Files: make([]fileReport, 0, len(result.Files)),
		Stats: runSummary{
			FilesDiscovered: result.Stats.FilesDiscovered,
			FilesProcessed:  result.Stats.FilesProcessed,
			FilesErrored:    result.Stats.FilesErrored,
			ParseFailures:   result.Stats.ParseFailures,
			Bytes:           result.Stats.Bytes,
			Lines:           result.Stats.Lines,
			Blocks:          result.Stats.Blocks,
			ElapsedMS:       milliseconds(result.Stats.Elapsed),
		},
		Cache: result.Stats.Cache,
	}

	for _, outcome := range result.Files {
		file := fileReport{
			Path:      outcome.Path,
			Bytes:     outcome.Bytes,
			Lines:     outcome.Lines,
			Blocks:    outcome.Blocks,
			ElapsedMS: milliseconds(outcome.Elapsed),
		}
		if outcome.Key != (fpcache.Key{}) {
			file.Key = outcome.Key.String()
		}
		if outcome.Error != nil {
			file.Error = outcome.Error.Error()
		}
		report.Files = append(report.Files, file)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
