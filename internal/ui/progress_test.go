package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRenderUsageBar_ZeroWidth(t *testing.T) {
	assert.Empty(t, RenderUsageBar(50, 0, 90))
	assert.Empty(t, RenderUsageBar(50, -5, 90))
}

func TestRenderUsageBar(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		filled  int
		label   string
	}{
		{"empty", 0, 0, "  0%"},
		{"half", 50, 5, " 50%"},
		{"full", 100, 10, "100%"},
		{"clamped high", 140, 10, "100%"},
		{"clamped low", -3, 0, "  0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := RenderUsageBar(tt.percent, 10, 90)
			assert.Equal(t, tt.filled, strings.Count(bar, "█"))
			assert.Equal(t, 10-tt.filled, strings.Count(bar, "░"))
			assert.True(t, strings.HasPrefix(bar, "["))
			assert.True(t, strings.HasSuffix(bar, tt.label))
		})
	}
}

func TestBarCounts(t *testing.T) {
	filled, empty := BarCounts(33, 10)
	assert.Equal(t, 3, filled)
	assert.Equal(t, 7, empty)
}

func TestUsageColor(t *testing.T) {
	assert.Equal(t, ColorSuccess, UsageColor(10, 90))
	assert.Equal(t, ColorWarning, UsageColor(70, 90))
	assert.Equal(t, ColorWarning, UsageColor(90, 90), "critical is strictly greater")
	assert.Equal(t, ColorError, UsageColor(90.1, 90))
	assert.Equal(t, ColorError, UsageColor(95, 0), "zero falls back to the default")
}
