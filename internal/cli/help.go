package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdview/internal/configloader"
	"github.com/yaklabco/mdview/internal/ui/pretty"
)

// helpStyles holds the lipgloss styles of the help screen.
type helpStyles struct {
	command     lipgloss.Style
	heading     lipgloss.Style
	subcommand  lipgloss.Style
	flag        lipgloss.Style
	description lipgloss.Style
	dim         lipgloss.Style
}

func newHelpStyles(colorEnabled bool) helpStyles {
	plain := lipgloss.NewStyle()
	if !colorEnabled {
		return helpStyles{plain, plain, plain, plain, plain, plain}
	}
	return helpStyles{
		command:     plain.Foreground(lipgloss.Color("14")).Bold(true),
		heading:     plain.Foreground(lipgloss.Color("11")).Bold(true),
		subcommand:  plain.Foreground(lipgloss.Color("10")),
		flag:        plain.Foreground(lipgloss.Color("12")),
		description: plain,
		dim:         plain.Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter renders styled help and usage for a command tree.
type HelpFormatter struct {
	styles helpStyles
}

// NewHelpFormatter creates a formatter for the given color mode.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	return &HelpFormatter{styles: newHelpStyles(pretty.IsColorEnabled(colorMode, writer))}
}

const usageTemplate = `{{ heading "Usage:" }}
  {{if .Runnable}}{{ command .UseLine }}{{end}}
  {{if .HasAvailableSubCommands}}{{ command .CommandPath }} [command]{{end}}

{{- if gt (len .Aliases) 0}}

{{ heading "Aliases:" }}
  {{ dim (join .Aliases ", ") }}
{{- end}}

{{- if .HasExample}}

{{ heading "Examples:" }}
{{ dim .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ heading "Available Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (pad .Name .NamePadding) }} {{ description .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags.FlagUsages }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags.FlagUsages }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{if or .Runnable .HasSubCommands}}{{ command .CommandPath }}{{if .Version}} {{ dim .Version }}{{end}}

{{end}}{{with (or .Long .Short)}}{{ trim . }}

{{end}}` + usageTemplate + `{{if not .HasParent}}
{{ heading "Environment:" }}
{{ envVars }}
{{end}}`

func (h *HelpFormatter) funcs() template.FuncMap {
	return template.FuncMap{
		"command":     h.styles.command.Render,
		"heading":     h.styles.heading.Render,
		"subcommand":  h.styles.subcommand.Render,
		"description": h.styles.description.Render,
		"dim":         h.styles.dim.Render,
		"flags":       h.flagUsages,
		"envVars":     h.envVars,
		"pad":         pad,
		"trim":        trimLines,
		"join":        strings.Join,
	}
}

// ApplyToCommand installs the styled templates on cmd. Subcommands inherit
// them.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	usage := template.Must(template.New("usage").Funcs(h.funcs()).Parse(usageTemplate))
	help := template.Must(template.New("help").Funcs(h.funcs()).Parse(helpTemplate))

	cmd.SetUsageFunc(func(c *cobra.Command) error {
		if err := usage.Execute(c.OutOrStdout(), c); err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
		return nil
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := help.Execute(c.OutOrStdout(), c); err != nil {
			c.PrintErrln(err)
		}
	})
}

// flagUsages styles pflag's usage block: flag names, then dimmed value
// types, then the description.
func (h *HelpFormatter) flagUsages(usages string) string {
	lines := strings.Split(strings.TrimSuffix(usages, "\n"), "\n")
	for i, line := range lines {
		lines[i] = h.flagLine(line)
	}
	return strings.Join(lines, "\n")
}

func (h *HelpFormatter) flagLine(line string) string {
	body := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(body)]

	// pflag separates the flag column from the description with 2+ spaces.
	cut := strings.Index(body, "  ")
	if cut < 0 {
		return line
	}
	names, desc := body[:cut], strings.TrimLeft(body[cut:], " ")

	tokens := strings.Fields(names)
	for i, tok := range tokens {
		if !strings.HasPrefix(tok, "-") {
			tokens[i] = h.styles.dim.Render(tok)
			continue
		}
		name, comma := strings.CutSuffix(tok, ",")
		tokens[i] = h.styles.flag.Render(name)
		if comma {
			tokens[i] += ","
		}
	}
	return indent + strings.Join(tokens, " ") + "   " + h.styles.description.Render(desc)
}

// envVars lists the configuration environment variables, one per line.
func (h *HelpFormatter) envVars() string {
	vars := configloader.ListEnvVars()

	width := 0
	for _, v := range vars {
		width = max(width, runewidth.StringWidth(v[0]))
	}

	lines := make([]string, 0, len(vars))
	for _, v := range vars {
		lines = append(lines, "  "+h.styles.flag.Render(pad(v[0], width))+"   "+h.styles.description.Render(v[1]))
	}
	return strings.Join(lines, "\n")
}

func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
