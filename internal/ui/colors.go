package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors use ANSI codes so plain terminals and pipes degrade cleanly.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// spinnerColors cycles while a one-shot command waits on a sample.
var spinnerColors = []lipgloss.Color{ColorInfo, ColorSecondary, ColorSuccess, ColorSecondary}

// Usage thresholds shared by bars in command output.
const (
	WarningPercent  = 70.0
	CriticalPercent = 90.0
)

// UsageColor maps a percentage to the healthy/warning/critical palette.
// A critical value <= 0 falls back to CriticalPercent.
func UsageColor(percent, critical float64) lipgloss.Color {
	if critical <= 0 {
		critical = CriticalPercent
	}
	switch {
	case percent > critical:
		return ColorError
	case percent >= WarningPercent:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// DisableColors switches lipgloss to monochrome output (--no-color, NO_COLOR).
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
