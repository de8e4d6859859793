package monitor

import (
	"math/bits"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/resmon/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Plain output so rendered text can be compared directly.
	lipgloss.SetColorProfile(termenv.Ascii)
}

func filled(n int, v float64) *series.Buffer {
	b := series.New(n, 0, 100, "test", "")
	for i := 0; i < n; i++ {
		b.Push(v)
	}
	return b
}

func TestRenderChart_Full(t *testing.T) {
	out := RenderChart(filled(5, 100), 3, 2)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, "⣿⣿⣿", line)
	}
}

func TestRenderChart_Empty(t *testing.T) {
	out := RenderChart(series.New(5, 0, 100, "test", ""), 4, 1)
	assert.Equal(t, strings.Repeat(string(brailleBase), 4), out)
}

func TestRenderChart_HalfFillsBottomDots(t *testing.T) {
	// One row of 4 dots, half full: the bottom two dot rows of both
	// sub-columns are set.
	out := RenderChart(filled(3, 50), 2, 1)
	assert.Equal(t, "⣤⣤", out)
}

func TestRenderChart_RisingSeries(t *testing.T) {
	b := series.New(2, 0, 100, "test", "")
	b.Push(0)
	b.Push(100)

	out := []rune(RenderChart(b, 4, 1))
	require.Len(t, out, 4)

	dots := func(r rune) int { return bits.OnesCount(uint(r - brailleBase)) }
	for i := 1; i < len(out); i++ {
		assert.Greater(t, dots(out[i]), dots(out[i-1]), "column %d", i)
	}
}

func TestRenderChart_InvalidSize(t *testing.T) {
	b := filled(5, 50)
	assert.Empty(t, RenderChart(b, 0, 2))
	assert.Empty(t, RenderChart(b, 2, 0))
	assert.Empty(t, RenderChart(nil, 2, 2))
}

func TestRenderChart_StyleTagColorsColumns(t *testing.T) {
	lipgloss.SetColorProfile(termenv.TrueColor)
	defer lipgloss.SetColorProfile(termenv.Ascii)

	b := series.New(3, 0, 100, "mem", "#00FFFF")
	b.Push(10)
	out := RenderChart(b, 2, 1)
	assert.Contains(t, out, "38;2;0;255;255")
}

func TestLineAt(t *testing.T) {
	points := []series.Point{{X: 0, Y: 10}, {X: 2, Y: 0}, {X: 4, Y: 10}}

	assert.Equal(t, 10.0, lineAt(points, -1))
	assert.Equal(t, 5.0, lineAt(points, 1))
	assert.Equal(t, 0.0, lineAt(points, 2))
	assert.Equal(t, 5.0, lineAt(points, 3))
	assert.Equal(t, 10.0, lineAt(points, 9))
	assert.Equal(t, 0.0, lineAt(nil, 1))
}

func TestOptimalGrid(t *testing.T) {
	tests := []struct {
		n          int
		rows, cols int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 1, 2},
		{4, 2, 2},
		{6, 2, 3},
		{8, 2, 4},
		{12, 2, 6},
		{16, 2, 8},
	}

	for _, tt := range tests {
		rows, cols := OptimalGrid(tt.n)
		assert.Equal(t, tt.rows, rows, "rows for n=%d", tt.n)
		assert.Equal(t, tt.cols, cols, "cols for n=%d", tt.n)
		assert.GreaterOrEqual(t, rows*cols, tt.n)
	}
}

func TestRenderMiniSparkline(t *testing.T) {
	assert.Equal(t, "▁█", RenderMiniSparkline([]float64{0, 100}, 2))
	assert.Equal(t, "▁▁▁", RenderMiniSparkline([]float64{-5}, 3))
	assert.Empty(t, RenderMiniSparkline(nil, 3))
	assert.Empty(t, RenderMiniSparkline([]float64{1}, 0))
}

func TestResampleData(t *testing.T) {
	t.Run("downsampling keeps peaks", func(t *testing.T) {
		out := resampleData([]float64{1, 90, 2, 3, 4, 5}, 2)
		assert.Equal(t, []float64{90, 5}, out)
	})

	t.Run("upsampling interpolates", func(t *testing.T) {
		out := resampleData([]float64{0, 10}, 3)
		assert.Equal(t, []float64{0, 5, 10}, out)
	})

	t.Run("same size is returned as is", func(t *testing.T) {
		in := []float64{1, 2, 3}
		assert.Equal(t, in, resampleData(in, 3))
	})

	t.Run("single value fills", func(t *testing.T) {
		assert.Equal(t, []float64{7, 7}, resampleData([]float64{7}, 2))
	})
}
