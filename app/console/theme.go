package console

import (
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Theme holds the styles used for console output. Styles are bound to the
// output writer so plain writers get plain text.
type Theme struct {
	renderer *lipgloss.Renderer

	Banner  lipgloss.Style
	Heading lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Bold    lipgloss.Style
	Header  lipgloss.Style
}

func NewTheme(out io.Writer) Theme {
	r := lipgloss.NewRenderer(out)
	return Theme{
		renderer: r,
		Banner: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14")).
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("14")).
			Padding(0, 10),
		Heading: r.NewStyle().Bold(true),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
		Bold:    r.NewStyle().Bold(true),
		Header:  r.NewStyle().Bold(true).Padding(0, 1),
	}
}

// Table renders rows under headers with a rounded border.
func (t Theme) Table(headers []string, rows [][]string) string {
	cell := t.renderer.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return t.Header
			}
			return cell
		}).
		String()
}

// Markdown renders post bodies. Rendering failures fall back to the raw text.
type Markdown func(string) string

// NewMarkdown builds a glamour renderer. Without a terminal the notty style
// keeps output free of escape codes.
func NewMarkdown(terminal bool, width int) Markdown {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if terminal {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return PlainMarkdown
	}
	return func(s string) string {
		out, err := renderer.Render(s)
		if err != nil {
			return s
		}
		return strings.TrimRight(out, "\n")
	}
}

// PlainMarkdown returns the body unchanged.
func PlainMarkdown(s string) string { return s }

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
