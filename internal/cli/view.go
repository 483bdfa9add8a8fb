package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/internal/termrender"
	"github.com/yaklabco/mdview/internal/ui/pretty"
	"github.com/yaklabco/mdview/pkg/config"
	"github.com/yaklabco/mdview/pkg/engine"
	"github.com/yaklabco/mdview/pkg/layout"
	"github.com/yaklabco/mdview/pkg/mdast"
	"github.com/yaklabco/mdview/pkg/progressive"
)

// defaultWidth is used when the output is not a terminal.
const defaultWidth = 80

type viewFlags struct {
	width       int
	height      int
	top         int
	selectBlock int
	interactive bool
	style       string
	overScan    int
	alignment   bool
	noDetect    bool
	maxDepth    int
	resources   string
}

func newViewCommand() *cobra.Command {
	flags := &viewFlags{}

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Render a Markdown file in the terminal",
		Long: `Render a Markdown document in the terminal.

Without --height the whole document is printed. With --height only the rows
of that viewport are printed, starting at row --top, and only the blocks
near the viewport are rendered. With --interactive the document opens in a
pager that follows edits to the file.

Pager keys:
  j/k, arrows        move the active block (J/K extend the selection)
  space/b, PgDn/PgUp page down/up
  g/G, Home/End      first/last block
  a, esc             select all, clear the selection
  y                  print the selection on exit
  r                  reload the file
  q, ctrl-c          quit

Examples:
  mdview view README.md
  mdview view --height 20 --top 40 docs/guide.md
  mdview view -i CHANGELOG.md
  cat notes.md | mdview view --width 60`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args, flags)
		},
	}

	cmd.Flags().IntVar(&flags.width, "width", 0, "render width in columns (0 = terminal width)")
	cmd.Flags().IntVar(&flags.height, "height", 0, "viewport height in rows (0 = whole document)")
	cmd.Flags().IntVar(&flags.top, "top", 0, "first viewport row, in document rows")
	cmd.Flags().IntVar(&flags.selectBlock, "select", -1, "mark block N as selected")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "open the document in a pager")
	cmd.Flags().StringVar(&flags.style, "style", termrender.DefaultCodeStyle, "chroma style for code blocks")
	cmd.Flags().IntVar(&flags.overScan, "over-scan", 0, "blocks realized beyond the viewport (0 = configured)")
	cmd.Flags().BoolVar(&flags.alignment, "alignment", false, `enable "->text<-" alignment directives`)
	cmd.Flags().BoolVar(&flags.noDetect, "no-detect", false, "do not guess the language of unlabeled fences")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "maximum inline nesting depth (0 = configured)")
	cmd.Flags().StringVar(&flags.resources, "resource-root", "", "directory relative image targets resolve against")

	return cmd
}

func runView(cmd *cobra.Command, args []string, flags *viewFlags) error {
	cli := grammarOverrides(cmd, flags.alignment, flags.noDetect, flags.maxDepth, flags.resources)
	if flags.overScan > 0 {
		cli.OverScanCount = flags.overScan
	}

	cfg, logger, err := loadConfig(cmd, cli)
	if err != nil {
		return err
	}

	input := singleInput(args)
	if flags.interactive && input == stdinPath {
		return fmt.Errorf("%w: the pager reads keys from stdin and needs a file argument", ErrUsage)
	}
	if flags.height < 0 || flags.top < 0 || flags.width < 0 {
		return fmt.Errorf("%w: --width, --height and --top must not be negative", ErrUsage)
	}

	doc, err := readDocument(cmd, input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	theme := termrender.NewTheme(pretty.IsColorEnabled(string(cfg.Color), out), flags.style)
	renderer := termrender.New(theme)

	engineLogger := logger
	if flags.interactive {
		engineLogger = logging.Discard()
	}
	eng := engine.New(engine.OptionsFromConfig(cfg, engineLogger))
	defer eng.Close()

	if flags.interactive {
		yanked, err := runPager(cmd, doc, eng, renderer, cfg, logger)
		if err != nil || yanked == "" {
			return err
		}
		if _, err := io.WriteString(out, yanked+"\n"); err != nil {
			return errors.Join(ErrIO, err)
		}
		return nil
	}

	tree, err := loadTree(cmd, eng, cfg, logger, doc)
	if err != nil {
		return err
	}

	width := flags.width
	if width == 0 {
		width = outputWidth(out)
	}

	var lines []string
	if flags.height == 0 {
		lines = renderer.Render(tree, width)
	} else {
		win := layout.New(renderer, layout.Options{OverScan: cfg.OverScanCount, Logger: logger})
		defer win.Close()
		win.SetDocument(tree)
		lines = viewport(win, renderer, width, float64(flags.top), flags.height, flags.selectBlock)
	}

	if err := writeLines(out, lines); err != nil {
		return errors.Join(ErrIO, err)
	}
	if failedTree(tree) {
		return ErrParseFailures
	}
	return nil
}

// failedTree reports whether tree is the placeholder of a failed parse.
func failedTree(tree *mdast.Node) bool {
	return len(tree.Children) == 1 && tree.Children[0].Kind == mdast.NodeError
}

// loadTree runs a progressive load to completion and returns the final tree.
func loadTree(
	cmd *cobra.Command,
	eng *engine.Engine,
	cfg *config.Config,
	logger *log.Logger,
	doc document,
) (*mdast.Node, error) {
	loader := progressive.New(eng, progressiveOptions(cfg, logger))

	var tree *mdast.Node
	err := loader.Load(commandContext(cmd), doc.Text, func(update progressive.Update) {
		logger.Debug("progressive update",
			logging.FieldPath, doc.Name(),
			logging.FieldState, update.State,
			logging.FieldLines, update.Lines,
			logging.FieldTotal, update.Total,
		)
		tree = update.Tree
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", doc.Name(), err)
	}
	if tree == nil {
		tree = mdast.NewDocument()
	}
	return tree, nil
}

func progressiveOptions(cfg *config.Config, logger *log.Logger) progressive.Options {
	return progressive.Options{
		Disabled:     !cfg.Progressive(),
		InitialLines: cfg.InitialRenderLines,
		BatchLines:   cfg.ProgressiveBatchLines,
		BatchDelay:   cfg.ProgressiveBatchDelay,
		Threshold:    cfg.LargeDocumentThresholdLines,
		Logger:       logger,
	}
}

// viewport lays out win for a width-column, rows-tall viewport at top and
// returns the composed rows.
func viewport(win *layout.Window, renderer *termrender.Renderer, width int, top float64, rows, selected int) []string {
	contentWidth := float64(max(width-termrender.GutterWidth, 1))
	win.Measure(contentWidth, top, float64(rows))
	if selected >= 0 && selected < win.Len() {
		win.Select(selected, false)
	}
	win.Arrange(layout.Size{Width: contentWidth, Height: float64(rows)})
	return renderer.Compose(win, rows)
}

// outputWidth returns the terminal width of w, or defaultWidth.
func outputWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWidth
}

func writeLines(w io.Writer, lines []string) error {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
