package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdview/internal/configloader"
	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/pkg/config"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new mdview configuration file",
		Long: `Create a new .mdview.yml configuration file in the current directory.
Every option is written with its default value and a comment describing it.

JSON files are not discovered automatically; pass them with --config.

Examples:
  mdview init                        Create .mdview.yml
  mdview init --format json          Create .mdview.json instead
  mdview init --output custom.yml    Write to a custom file path`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .mdview.yml or .mdview.json)")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()

	if flags.format != "yaml" && flags.format != "json" {
		return fmt.Errorf("%w: invalid format %q: must be yaml or json", ErrUsage, flags.format)
	}

	outputPath := flags.output
	if outputPath == "" {
		if flags.format == "json" {
			outputPath = ".mdview.json"
		} else {
			outputPath = ".mdview.yml"
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil && flags.force {
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	opts := config.TemplateOptions{Format: flags.format}
	if err := configloader.WriteConfig(commandContext(cmd), absPath, opts, flags.force); err != nil {
		return errors.Join(ErrIO, err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	logger.Info("customize your configuration by editing the file")

	return nil
}
