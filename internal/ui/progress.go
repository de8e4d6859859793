package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Bar block characters.
const (
	barFilled = '█'
	barEmpty  = '░'
)

// ClampPercent clamps a percentage to the 0-100 range.
func ClampPercent(percent float64) float64 {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// BarCounts returns the filled and empty cell counts for a bar of width cells.
func BarCounts(percent float64, width int) (filled, empty int) {
	filled = int(ClampPercent(percent) / 100.0 * float64(width))
	return filled, width - filled
}

// RenderUsageBar renders "[████░░░░]  50%" colored by UsageColor.
// Returns "" for a non-positive width.
func RenderUsageBar(percent float64, width int, critical float64) string {
	if width <= 0 {
		return ""
	}
	filled, empty := BarCounts(percent, width)

	var sb strings.Builder
	sb.Grow(width + 2)
	sb.WriteRune('[')
	sb.WriteString(strings.Repeat(string(barFilled), filled))
	sb.WriteString(strings.Repeat(string(barEmpty), empty))
	sb.WriteRune(']')

	style := lipgloss.NewStyle().Foreground(UsageColor(percent, critical))
	return style.Render(sb.String()) + fmt.Sprintf(" %3.0f%%", ClampPercent(percent))
}
