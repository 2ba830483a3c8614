package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Table is a left-aligned text table. Cell styles apply after padding so
// escape codes never affect alignment.
type Table struct {
	Header []string
	Rows   [][]string
	// Style, when set, picks a style for a cell. Row -1 is the header.
	Style func(row, col int) lipgloss.Style
	// MaxWidth truncates cells wider than it. Zero disables truncation.
	MaxWidth int
}

// String renders the table with two spaces between columns.
func (t *Table) String() string {
	cols := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, c := range row {
			if w := runewidth.StringWidth(t.cell(c)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.Header)
	for _, r := range t.Rows {
		measure(r)
	}

	var sb strings.Builder
	line := func(idx int, row []string) {
		var parts []string
		for i := 0; i < cols; i++ {
			c := ""
			if i < len(row) {
				c = t.cell(row[i])
			}
			if i < cols-1 {
				c = runewidth.FillRight(c, widths[i])
			}
			if t.Style != nil {
				c = t.Style(idx, i).Render(c)
			}
			parts = append(parts, c)
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		sb.WriteString("\n")
	}
	if len(t.Header) > 0 {
		line(-1, t.Header)
	}
	for i, r := range t.Rows {
		line(i, r)
	}
	return sb.String()
}

func (t *Table) cell(s string) string {
	return Truncate(s, t.MaxWidth)
}

// Truncate shortens value to width display columns, marking the cut with
// "...".
func Truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
