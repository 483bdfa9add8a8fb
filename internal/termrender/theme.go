package termrender

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// DefaultCodeStyle is the chroma style used for code blocks.
const DefaultCodeStyle = "catppuccin-mocha"

// Theme holds the styles of rendered blocks. With Color false every style
// is ignored and output is plain text.
type Theme struct {
	Color bool

	Headings [6]lipgloss.Style

	HeadingMarker  lipgloss.Style
	Link           lipgloss.Style
	Code           lipgloss.Style
	Image          lipgloss.Style
	ListMarker     lipgloss.Style
	QuoteBar       lipgloss.Style
	ContainerTitle lipgloss.Style
	Rule           lipgloss.Style
	Raw            lipgloss.Style
	TableBorder    lipgloss.Style
	TableHeader    lipgloss.Style
	Error          lipgloss.Style
	Selected       lipgloss.Style

	chroma *chroma.Style

	mu         sync.Mutex
	tokenCache map[chroma.TokenType]lipgloss.Style
}

// NewTheme creates the default theme. codeStyle names a chroma style; an
// unknown or empty name selects DefaultCodeStyle.
func NewTheme(color bool, codeStyle string) *Theme {
	if codeStyle == "" {
		codeStyle = DefaultCodeStyle
	}

	return &Theme{
		Color: color,
		Headings: [6]lipgloss.Style{
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
			lipgloss.NewStyle().Bold(true),
			lipgloss.NewStyle().Bold(true).Italic(true),
			lipgloss.NewStyle().Italic(true),
		},
		HeadingMarker:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Link:           lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true),
		Code:           lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Image:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Italic(true),
		ListMarker:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		QuoteBar:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		ContainerTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		Rule:           lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Raw:            lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		TableBorder:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		TableHeader:    lipgloss.NewStyle().Bold(true),
		Error:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Selected:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		chroma:         styles.Get(codeStyle),
		tokenCache:     make(map[chroma.TokenType]lipgloss.Style),
	}
}

// render applies style to text unless color is off.
func (t *Theme) render(style lipgloss.Style, text string) string {
	if !t.Color || text == "" {
		return text
	}
	return style.Render(text)
}

// heading returns the style of a heading level, clamped to 1..6.
func (t *Theme) heading(level int) lipgloss.Style {
	return t.Headings[min(max(level, 1), len(t.Headings))-1]
}

// tokenStyle converts a chroma token type to a lipgloss style.
func (t *Theme) tokenStyle(tokenType chroma.TokenType) lipgloss.Style {
	t.mu.Lock()
	defer t.mu.Unlock()

	if style, ok := t.tokenCache[tokenType]; ok {
		return style
	}

	entry := t.chroma.Get(tokenType)
	style := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		style = style.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		style = style.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		style = style.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		style = style.Underline(true)
	}

	t.tokenCache[tokenType] = style
	return style
}

//nolint:gochecknoglobals // Read-only lookup table.
var namedColors = map[string]string{
	"black":   "0",
	"maroon":  "1",
	"red":     "9",
	"green":   "2",
	"lime":    "10",
	"olive":   "3",
	"yellow":  "11",
	"navy":    "4",
	"blue":    "12",
	"purple":  "5",
	"magenta": "13",
	"fuchsia": "13",
	"teal":    "6",
	"cyan":    "14",
	"aqua":    "14",
	"silver":  "7",
	"white":   "15",
	"gray":    "8",
	"grey":    "8",
	"orange":  "208",
	"pink":    "218",
}

// markupColor maps a markup color value (a CSS name or a #rgb/#rrggbb hex
// value) to a terminal color.
func markupColor(value string) (lipgloss.Color, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", false
	}
	if code, ok := namedColors[value]; ok {
		return lipgloss.Color(code), true
	}
	if strings.HasPrefix(value, "#") && (len(value) == 4 || len(value) == 7) {
		for _, r := range value[1:] {
			if !strings.ContainsRune("0123456789abcdef", r) {
				return "", false
			}
		}
		return lipgloss.Color(value), true
	}
	return "", false
}
