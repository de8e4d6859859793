package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Severity colors for gauges, bars and chart columns
	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	DefaultAccent  = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")

	ColorGraph = lipgloss.Color("#00FFFF")
)

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// ColorAccent is the highlight color for titles, the active tab and the
// selected row. SetAccent replaces it.
var ColorAccent = DefaultAccent

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)

	tabStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Padding(0, 1)

	// Accent-dependent styles, rebuilt by SetAccent.
	activeTabStyle lipgloss.Style
	titleStyle     lipgloss.Style
	promptStyle    lipgloss.Style
)

func init() {
	applyAccent()
}

// SetAccent overrides the accent color. An empty string restores the
// default.
func SetAccent(color string) {
	if color == "" {
		ColorAccent = DefaultAccent
	} else {
		ColorAccent = lipgloss.Color(color)
	}
	applyAccent()
}

func applyAccent() {
	activeTabStyle = lipgloss.NewStyle().
		Foreground(ColorDarkBg).
		Background(ColorAccent).
		Bold(true).
		Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	promptStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	helpBoxStyle = helpBoxStyle.BorderForeground(ColorAccent)
	helpTitleStyle = helpTitleStyle.Foreground(ColorAccent)
}

// MetricColor returns the severity color for a percentage:
// green below 70%, amber from 70% and red from 90%.
func MetricColor(percent float64) lipgloss.Color {
	return MetricColorWithThresholds(percent, WarningThreshold, CriticalThreshold)
}

// MetricColorWithThresholds is MetricColor with custom thresholds.
func MetricColorWithThresholds(percent, warning, critical float64) lipgloss.Color {
	switch {
	case percent >= critical:
		return ColorCritical
	case percent >= warning:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// styleColor maps a series style tag to a color. Tags are either a color
// literal or empty, in which case the severity color is used.
func styleColor(tag string, percent float64) lipgloss.Color {
	if tag == "" {
		return MetricColor(percent)
	}
	return lipgloss.Color(tag)
}

func clampPercent(percent float64) float64 {
	if percent < 0 || percent != percent {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// barCells returns the filled and empty segments for a bar of width cells.
func barCells(width int, percent float64, full, empty string) string {
	if width < 1 {
		width = 1
	}
	filled := int(clampPercent(percent) / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat(full, filled) + strings.Repeat(empty, width-filled)
}

// ProgressBar renders a gauge bar colored by severity.
func ProgressBar(width int, percent float64) string {
	return lipgloss.NewStyle().
		Foreground(MetricColor(percent)).
		Render(barCells(width, percent, "▰", "▱"))
}

// UsageBar renders a thin drive usage bar. Usage above critical renders in
// the critical color and everything else in the healthy color.
func UsageBar(width int, percent, critical float64) string {
	color := ColorHealthy
	if percent > critical {
		color = ColorCritical
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Render(barCells(width, percent, "━", "─"))
}

// SectionHeader renders the top border of a panel with the title on the left
// and value on the right.
// Format: ╭─ Title ─────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2
	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+strings.Repeat("─", fillWidth)+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a panel.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().
		Foreground(ColorBorder).
		Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders one panel row, padded to width.
// Format: │ content          │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	border := lipgloss.NewStyle().Foreground(ColorBorder).Render("│")
	padding := width - 4 - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}
	return border + " " + content + strings.Repeat(" ", padding) + " " + border
}
