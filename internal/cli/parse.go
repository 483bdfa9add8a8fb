package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/pkg/config"
	"github.com/yaklabco/mdview/pkg/engine"
	"github.com/yaklabco/mdview/pkg/fsutil"
	"github.com/yaklabco/mdview/pkg/mdast"
)

type parseFlags struct {
	format    string
	output    string
	alignment bool
	noDetect  bool
	maxDepth  int
	resources string
	positions bool
	assets    bool
}

func newParseCommand() *cobra.Command {
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the document tree of a Markdown file",
		Long: `Parse one Markdown document and print its tree.

The text format is an indented outline with one node per line; --positions
adds the line:column range of every block. The json and yaml formats carry
every attribute, including source byte ranges of blocks. With --assets the
images of the document are listed instead, each opened through the resource
root. Reads standard input when no file or "-" is given.

Examples:
  mdview parse README.md
  mdview parse --positions README.md
  mdview parse --assets --resource-root docs docs/guide.md
  mdview parse --format json README.md
  cat notes.md | mdview parse --alignment
  mdview parse -o tree.yaml --format yaml docs/guide.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, yaml")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the tree to a file instead of stdout")
	cmd.Flags().BoolVar(&flags.alignment, "alignment", false, `enable "->text<-" alignment directives`)
	cmd.Flags().BoolVar(&flags.noDetect, "no-detect", false, "do not guess the language of unlabeled fences")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "maximum inline nesting depth (0 = configured)")
	cmd.Flags().StringVar(&flags.resources, "resource-root", "", "directory relative image targets resolve against")
	cmd.Flags().BoolVar(&flags.positions, "positions", false, "print line:column ranges in the text format")
	cmd.Flags().BoolVar(&flags.assets, "assets", false, "list the images of the document and check they resolve")

	return cmd
}

// grammarOverrides turns the grammar flags shared by parse and view into a
// CLI config layer. Only flags that were set override lower layers.
func grammarOverrides(cmd *cobra.Command, alignment, noDetect bool, maxDepth int, resources string) *config.Config {
	cli := &config.Config{}
	if cmd.Flags().Changed("alignment") {
		cli.AlignmentDirectives = config.Bool(alignment)
	}
	if cmd.Flags().Changed("no-detect") {
		cli.DetectLanguage = config.Bool(!noDetect)
	}
	if maxDepth > 0 {
		cli.MaxNestDepth = maxDepth
	}
	cli.ResourceRoot = resources
	return cli
}

func runParse(cmd *cobra.Command, args []string, flags *parseFlags) error {
	format, err := config.ParseOutputFormat(flags.format)
	if err != nil {
		return errors.Join(ErrUsage, err)
	}

	if flags.positions && format != config.FormatText {
		return fmt.Errorf("%w: --positions needs the text format", ErrUsage)
	}

	cli := grammarOverrides(cmd, flags.alignment, flags.noDetect, flags.maxDepth, flags.resources)
	cli.Format = format

	cfg, logger, err := loadConfig(cmd, cli)
	if err != nil {
		return err
	}

	doc, err := readDocument(cmd, singleInput(args))
	if err != nil {
		return err
	}

	eng := engine.New(engine.OptionsFromConfig(cfg, logger))
	defer eng.Close()

	ctx := commandContext(cmd)
	tree, parseErr := eng.ParseCached(ctx, doc.Text)
	if parseErr != nil {
		var failure *engine.ParseFailure
		if !errors.As(parseErr, &failure) {
			return fmt.Errorf("parse %s: %w", doc.Name(), parseErr)
		}
		logger.Error("document could not be parsed", logging.FieldPath, doc.Name(), logging.FieldError, failure.Cause)
		logger.Debug("parse failure stack", logging.FieldStack, string(failure.Stack))
	}

	logger.Debug("parsed document",
		logging.FieldPath, doc.Name(),
		logging.FieldBlocks, tree.ChildCount(),
		logging.FieldFormat, cfg.Format,
	)

	var content []byte
	switch {
	case flags.assets:
		content = assetReport(ctx, eng, tree)
	case flags.positions:
		var buf bytes.Buffer
		if err := mdast.DumpSource(&buf, tree, doc.Text); err != nil {
			return fmt.Errorf("encode text: %w", err)
		}
		content = buf.Bytes()
	default:
		content, err = encodeTree(tree, cfg.Format)
		if err != nil {
			return err
		}
	}

	if flags.output != "" {
		written, err := fsutil.WriteIfChanged(ctx, flags.output, content, fsutil.DefaultFileMode)
		if err != nil {
			return errors.Join(ErrIO, err)
		}
		logger.Debug("wrote tree", logging.FieldOutput, flags.output, logging.FieldChanged, written)
	} else if _, err := cmd.OutOrStdout().Write(content); err != nil {
		return errors.Join(ErrIO, err)
	}

	if parseErr != nil {
		return ErrParseFailures
	}
	return nil
}

// assetReport lists every image of tree with its size, or with the reason
// it could not be opened.
func assetReport(ctx context.Context, eng *engine.Engine, tree *mdast.Node) []byte {
	var buf bytes.Buffer
	for _, img := range mdast.FindByKind(tree, mdast.NodeImage) {
		if img.Inline == nil || img.Inline.Link == nil {
			continue
		}
		uri := img.Inline.Link.Destination
		size, err := assetSize(ctx, eng, uri)
		if err != nil {
			fmt.Fprintf(&buf, "missing %s: %v\n", uri, err)
			continue
		}
		fmt.Fprintf(&buf, "ok      %s (%s)\n", uri, humanize.IBytes(uint64(size)))
	}
	return buf.Bytes()
}

func assetSize(ctx context.Context, eng *engine.Engine, uri string) (int64, error) {
	rc, err := eng.OpenAsset(ctx, uri)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	size, err := io.Copy(io.Discard, rc)
	if err != nil {
		return 0, fmt.Errorf("read %q: %w", uri, err)
	}
	return size, nil
}

// encodeTree renders tree in the requested format.
func encodeTree(tree *mdast.Node, format config.OutputFormat) ([]byte, error) {
	switch format {
	case config.FormatJSON:
		content, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(content, '\n'), nil
	case config.FormatYAML:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(config.YAMLIndent())
		if err := encoder.Encode(tree); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return []byte(mdast.DumpString(tree)), nil
	}
}
