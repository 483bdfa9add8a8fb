package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/mdview/internal/logging"
	"github.com/yaklabco/mdview/internal/termrender"
	"github.com/yaklabco/mdview/internal/ui/pretty"
	"github.com/yaklabco/mdview/pkg/config"
	"github.com/yaklabco/mdview/pkg/engine"
	"github.com/yaklabco/mdview/pkg/fsutil"
	"github.com/yaklabco/mdview/pkg/layout"
	"github.com/yaklabco/mdview/pkg/progressive"
)

// pollInterval is how often the pager checks the terminal size and the file.
const pollInterval = 500 * time.Millisecond

const (
	enterAltScreen = "\x1b[?1049h\x1b[?25l"
	leaveAltScreen = "\x1b[?25h\x1b[?1049l"
	cursorHome     = "\x1b[H"
	clearLine      = "\x1b[K"
)

// pager holds the screen state of an interactive view. It is driven from a
// single goroutine.
type pager struct {
	win      *layout.Window
	renderer *termrender.Renderer
	name     string
	status   lipgloss.Style

	width  int
	height int

	state   progressive.State
	lines   int
	total   int
	message string
	yanked  string
}

func newPager(win *layout.Window, renderer *termrender.Renderer, name string, color bool) *pager {
	status := lipgloss.NewStyle()
	if color {
		status = status.Reverse(true)
	}
	return &pager{win: win, renderer: renderer, name: name, status: status}
}

// resize sets the terminal size. The last row holds the status line.
func (p *pager) resize(width, height int) {
	p.width = max(width, termrender.GutterWidth+1)
	p.height = max(height, 2)
}

// update shows a tree produced by the progressive loader.
func (p *pager) update(u progressive.Update) {
	p.win.SetDocument(u.Tree)
	p.state = u.State
	p.lines = u.Lines
	p.total = u.Total
}

// apply handles a key event other than quit and reload.
func (p *pager) apply(ev keyEvent) {
	switch ev.action {
	case actionMove:
		p.win.HandleKey(ev.key, ev.extend)
	case actionSelectAll:
		p.win.SelectAll()
	case actionClear:
		p.win.ClearSelection()
	case actionYank:
		p.yanked = p.win.SelectedText()
		if p.yanked == "" {
			p.message = "nothing selected"
		} else {
			p.message = fmt.Sprintf("copied %d bytes", len(p.yanked))
		}
	}
}

// frame lays out the window and returns the screen rows.
func (p *pager) frame() []string {
	rows := p.height - 1
	out := viewport(p.win, p.renderer, p.width, p.win.ScrollOffset().Y, rows, -1)
	return append(out, p.statusLine())
}

func (p *pager) statusLine() string {
	parts := []string{p.name}

	if p.state != progressive.StateComplete && p.total > 0 {
		parts = append(parts, fmt.Sprintf("loading %d/%d lines", p.lines, p.total))
	}
	if n := p.win.Len(); n > 0 {
		active := p.win.Active()
		if active < 0 {
			active, _, _ = p.win.VisibleRange()
		}
		parts = append(parts, fmt.Sprintf("block %d/%d", active+1, n))
	}
	if extent := p.win.Extent(); extent > 0 {
		seen := min((p.win.ScrollOffset().Y+p.win.Viewport().Height)/extent, 1)
		parts = append(parts, fmt.Sprintf("%d%%", int(seen*100)))
	}
	if p.message != "" {
		parts = append(parts, p.message)
	}

	line := " " + strings.Join(parts, "  ")
	if runewidth.StringWidth(line) > p.width {
		line = runewidth.Truncate(line, p.width, "…")
	}
	return p.status.Render(runewidth.FillRight(line, p.width))
}

// runPager shows doc full screen until the user quits. It returns the
// text yanked from the selection.
func runPager(
	cmd *cobra.Command,
	doc document,
	eng *engine.Engine,
	renderer *termrender.Renderer,
	cfg *config.Config,
	logger *log.Logger,
) (string, error) {
	in, out := os.Stdin, os.Stdout
	inFd, outFd := int(in.Fd()), int(out.Fd())
	if !term.IsTerminal(inFd) || !term.IsTerminal(outFd) {
		return "", fmt.Errorf("%w: the pager needs a terminal", ErrUsage)
	}

	width, height, err := term.GetSize(outFd)
	if err != nil {
		return "", errors.Join(ErrIO, fmt.Errorf("get terminal size: %w", err))
	}

	saved, err := term.MakeRaw(inFd)
	if err != nil {
		return "", errors.Join(ErrIO, fmt.Errorf("enter raw mode: %w", err))
	}
	defer func() {
		if err := term.Restore(inFd, saved); err != nil {
			logger.Warn("restore terminal", logging.FieldError, err)
		}
	}()

	// Log lines would tear the full-screen display.
	quiet := logging.Discard()

	ctx, cancel := context.WithCancel(logging.WithLogger(commandContext(cmd), quiet))
	defer cancel()

	win := layout.New(renderer, layout.Options{OverScan: cfg.OverScanCount, Logger: quiet})
	defer win.Close()

	p := newPager(win, renderer, doc.Name(), pretty.IsColorEnabled(string(cfg.Color), out))
	p.resize(width, height)

	loader := progressive.New(eng, progressiveOptions(cfg, quiet))
	updates := make(chan progressive.Update)
	failures := make(chan error)
	load := func(text string) {
		go func() {
			err := loader.Load(ctx, text, func(u progressive.Update) {
				select {
				case updates <- u:
				case <-ctx.Done():
				}
			})
			if !loadFailed(ctx, err) {
				return
			}
			select {
			case failures <- err:
			case <-ctx.Done():
			}
		}()
	}
	load(doc.Text)

	keys := make(chan []byte)
	go readKeys(ctx, in, keys)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	if _, err := io.WriteString(out, enterAltScreen); err != nil {
		return "", errors.Join(ErrIO, err)
	}
	defer io.WriteString(out, leaveAltScreen) //nolint:errcheck // best effort on exit

	info := doc.Info
	reload := func() {
		content, fresh, err := fsutil.ReadFile(ctx, doc.Path)
		if err != nil {
			p.message = err.Error()
			return
		}
		info = fresh
		p.message = ""
		load(string(content))
	}

	for {
		if err := draw(out, p.frame()); err != nil {
			return "", errors.Join(ErrIO, err)
		}

		select {
		case <-ctx.Done():
			return p.yanked, nil

		case u := <-updates:
			p.update(u)

		case err := <-failures:
			p.message = err.Error()

		case buf, ok := <-keys:
			if !ok {
				return p.yanked, nil
			}
			for _, ev := range decodeKeys(buf) {
				switch ev.action {
				case actionQuit:
					return p.yanked, nil
				case actionReload:
					reload()
				default:
					p.message = ""
					p.apply(ev)
				}
			}

		case <-ticker.C:
			if w, h, err := term.GetSize(outFd); err == nil && (w != p.width || h != p.height) {
				p.resize(w, h)
			}
			if info == nil {
				continue
			}
			if changed, err := fsutil.Changed(ctx, info, fsutil.CheckContent); err == nil && changed {
				reload()
			}
		}
	}
}

// loadFailed reports whether err ends a load in a way the user should see.
// Loads stopped by a newer load or by quitting are not failures.
func loadFailed(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, progressive.ErrSuperseded) && !errors.Is(err, progressive.ErrCancelled)
}

func draw(w io.Writer, rows []string) error {
	var sb strings.Builder
	sb.WriteString(cursorHome)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString("\r\n")
		}
		sb.WriteString(row)
		sb.WriteString(clearLine)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func readKeys(ctx context.Context, in io.Reader, keys chan<- []byte) {
	defer close(keys)
	buf := make([]byte, 64)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case keys <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}
