package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the text styles used in text mode.
type Styles struct {
	Header   lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Value    lipgloss.Style
	Trace    lipgloss.Style
	Operator lipgloss.Style
}

// NewStyles returns styles for w. Without a terminal, or with NO_COLOR
// set, every style renders plain text.
func NewStyles(w io.Writer, isTTY bool) *Styles {
	if !isTTY || termenv.EnvNoColor() {
		plain := lipgloss.NewStyle()
		return &Styles{
			Header: plain, Success: plain, Warning: plain, Error: plain,
			Muted: plain, Bold: plain, Value: plain, Trace: plain, Operator: plain,
		}
	}

	lr := lipgloss.NewRenderer(w)
	return &Styles{
		Header:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success:  lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:  lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    lr.NewStyle().Foreground(lipgloss.Color("9")),
		Muted:    lr.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:     lr.NewStyle().Bold(true),
		Value:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Trace:    lr.NewStyle().Italic(true).Foreground(lipgloss.Color("7")),
		Operator: lr.NewStyle().Foreground(lipgloss.Color("13")),
	}
}
