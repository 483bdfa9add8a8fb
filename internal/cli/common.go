package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdview/internal/configloader"
	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/pkg/config"
	"github.com/yaklabco/mdview/pkg/fsutil"
)

// ErrIO marks failures reading inputs or writing outputs.
var ErrIO = errors.New("i/o failure")

// stdinPath is the argument that selects standard input.
const stdinPath = "-"

// maxStdinBytes bounds documents read from standard input.
const maxStdinBytes = 256 << 20

// commandContext returns the command context, or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig resolves the configuration for a command, with cli layered on
// top of every discovered source. The returned logger is also attached to
// the command context.
func loadConfig(cmd *cobra.Command, cli *config.Config) (*config.Config, *log.Logger, error) {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cli,
	})
	if err != nil {
		return nil, nil, errors.Join(ErrConfig, err)
	}

	cfg := loadResult.Config

	if debug, _ := cmd.Flags().GetBool("debug"); !debug && cfg.LogLevel != "" {
		logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldConfig, loadResult.LoadedFrom)
	}

	if cmd.Flags().Changed("color") || cfg.Color == "" {
		name, _ := cmd.Flags().GetString("color")
		mode, err := config.ParseColorMode(name)
		if err != nil {
			return nil, nil, errors.Join(ErrUsage, err)
		}
		cfg.Color = mode
	}

	cmd.SetContext(logging.WithLogger(commandContext(cmd), logger))

	return cfg, logger, nil
}

// document is a Markdown source read by a command.
type document struct {
	// Path is empty for standard input.
	Path string
	Text string
	Info *fsutil.FileInfo
}

// Name returns a label for messages.
func (d document) Name() string {
	if d.Path == "" {
		return "<stdin>"
	}
	return d.Path
}

// readDocument reads path, or standard input when path is "-" or empty.
func readDocument(cmd *cobra.Command, path string) (document, error) {
	if path == "" || path == stdinPath {
		content, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxStdinBytes+1))
		if err != nil {
			return document{}, errors.Join(ErrIO, fmt.Errorf("read stdin: %w", err))
		}
		if len(content) > maxStdinBytes {
			return document{}, errors.Join(ErrIO, fsutil.ErrTooLarge)
		}
		return document{Text: string(content)}, nil
	}

	content, info, err := fsutil.ReadFile(commandContext(cmd), path)
	if err != nil {
		return document{}, errors.Join(ErrIO, err)
	}
	return document{Path: path, Text: string(content), Info: info}, nil
}

// singleInput returns the input argument of a one-document command.
func singleInput(args []string) string {
	if len(args) == 0 {
		return stdinPath
	}
	return args[0]
}
