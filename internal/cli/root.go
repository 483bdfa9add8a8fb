// Package cli provides the Cobra command structure for mdview.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdview/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root mdview command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "mdview",
		Short: "Parse, cache and page through Markdown with embedded markup",
		Long: `mdview parses Markdown documents that mix in HTML-style markup, caches
the resulting trees by content fingerprint, and renders them in the terminal
through a virtualized block layout.

Large documents are loaded progressively: the first screen appears after a
bounded prefix is parsed, and the rest grows in batches that never split a
fenced code block.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newViewCommand())
	rootCmd.AddCommand(newSplitCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
