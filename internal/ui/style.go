// Package ui formats tables and labels for the kernc CLI.
package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"kernc/internal/diag"
)

// Styles are bound to one output writer.
type Styles struct {
	Plain    lipgloss.Style
	Title    lipgloss.Style
	Key      lipgloss.Style
	Selected lipgloss.Style
	Dim      lipgloss.Style
	Error    lipgloss.Style
}

// NewStyles detects w's color support unless mode forces it.
func NewStyles(w io.Writer, mode diag.ColorMode) Styles {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case diag.ColorOn:
		r.SetColorProfile(termenv.ANSI256)
	case diag.ColorOff:
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Plain:    r.NewStyle(),
		Title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		Key:      r.NewStyle().Foreground(lipgloss.Color("6")),
		Selected: r.NewStyle().Foreground(lipgloss.Color("2")),
		Dim:      r.NewStyle().Foreground(lipgloss.Color("8")),
		Error:    r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}
