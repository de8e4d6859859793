package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Help overlay styles
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DefaultAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(DefaultAccent).
			Bold(true).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(12)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	filterSyntax = [][2]string{
		{"text", "name contains text"},
		{"pid:42", "process ID"},
		{"user:root", "owner"},
		{"cpu>50", "CPU above 50%"},
		{"mem<100", "resident memory below 100 MB"},
		{"threads>8", "more than 8 threads"},
	}
)

// renderHelpOverlay renders a centered box listing every key binding and the
// filter syntax.
func (m Model) renderHelpOverlay() string {
	var lines []string
	lines = append(lines, helpTitleStyle.Render("Keyboard Shortcuts"))

	for _, group := range keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, helpKeyStyle.Render(h.Key)+helpDescStyle.Render(h.Desc))
		}
		lines = append(lines, "")
	}

	lines = append(lines, helpTitleStyle.Render("Filter Syntax"))
	for _, s := range filterSyntax {
		lines = append(lines, helpKeyStyle.Render(s[0])+helpDescStyle.Render(s[1]))
	}
	lines = append(lines, "", LabelStyle.Render("Terms are space separated and must all match. Press ? to close"))

	box := helpBoxStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}
