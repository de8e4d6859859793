package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	labelStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// NewTable creates an unfocused Bubbles table sized to its rows.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is selected in printed output.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string for command
// output. Returns "" when there are no rows.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// RenderKeyValues renders aligned "label  value" lines under a bold title.
// An empty title is omitted.
func RenderKeyValues(title string, pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if w := lipgloss.Width(p[0]); w > width {
			width = w
		}
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(headerStyle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		sb.WriteString("  ")
		sb.WriteString(labelStyle.Render(PadRight(p[0], width)))
		sb.WriteString("  ")
		sb.WriteString(p[1])
		sb.WriteString("\n")
	}
	return sb.String()
}

// PadRight pads s with spaces to width visible cells, ignoring ANSI codes.
func PadRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
