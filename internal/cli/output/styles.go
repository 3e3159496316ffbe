package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used by commands.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles builds styles bound to w. Without a terminal every style renders
// plain text.
func NewStyles(w io.Writer, isTTY bool) *Styles {
	renderer := lipgloss.NewRenderer(w)
	if isTTY {
		renderer.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		Header1: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: renderer.NewStyle().Bold(true),
		Success: renderer.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: renderer.NewStyle().Foreground(lipgloss.Color("11")),
		Muted:   renderer.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
