package monitor

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/resmon/internal/series"
)

// Braille character rendering for high-resolution terminal charts.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '\u2800'

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps [row][col] inside one character cell to its bit offset.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// RenderChart draws a buffer as a filled braille area chart of width x height
// terminal cells.
//
// The buffer's geometry is computed on the dot grid (2 dots per column,
// 4 per row) and every dot column is filled from the interpolated series line
// down to the baseline. Each character column is colored from the buffer's
// style tag, or by severity of the highest value it shows when the tag is
// empty.
func RenderChart(b *series.Buffer, width, height int) string {
	if b == nil || width <= 0 || height <= 0 {
		return ""
	}

	dotsX := width * 2
	dotsY := height * 4
	geo, ok := b.RenderGeometry(float64(dotsX-1), float64(dotsY))
	if !ok {
		return ""
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	// topDot tracks the highest filled dot per character column (smaller is
	// higher) so the column color reflects its peak.
	topDot := make([]int, width)
	for i := range topDot {
		topDot[i] = dotsY
	}

	for x := 0; x < dotsX; x++ {
		y := int(math.Round(lineAt(geo.Points, float64(x))))
		if y < 0 {
			y = 0
		}
		col := x / 2
		sub := x % 2
		for dot := y; dot < dotsY; dot++ {
			grid[dot/4][col] |= rune(1) << brailleDots[dot%4][sub]
		}
		if y < topDot[col] {
			topDot[col] = y
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var sb strings.Builder
		for c, ch := range row {
			percent := float64(dotsY-topDot[c]) / float64(dotsY) * 100
			style := lipgloss.NewStyle().Foreground(styleColor(b.Style(), percent))
			sb.WriteString(style.Render(string(ch)))
		}
		lines[r] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// lineAt linearly interpolates the series line at horizontal position x.
// Points are ordered by X.
func lineAt(points []series.Point, x float64) float64 {
	n := len(points)
	if n == 0 {
		return 0
	}
	if n == 1 || x <= points[0].X {
		return points[0].Y
	}
	if x >= points[n-1].X {
		return points[n-1].Y
	}

	step := points[1].X - points[0].X
	i := int(x / step)
	if i >= n-1 {
		i = n - 2
	}
	a, b := points[i], points[i+1]
	if b.X == a.X {
		return a.Y
	}
	frac := (x - a.X) / (b.X - a.X)
	return a.Y + (b.Y-a.Y)*frac
}

// RenderMiniSparkline renders a single-row sparkline of percentage values
// using block characters.
func RenderMiniSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	var result strings.Builder
	top := len(sparklineBlocks) - 1
	for _, val := range resampleData(data, width) {
		idx := int(clampPercent(val) / 100 * float64(top))
		result.WriteRune(sparklineBlocks[idx])
	}
	return result.String()
}

// RenderColoredMiniSparkline colors a sparkline by its most recent value.
func RenderColoredMiniSparkline(data []float64, width int) string {
	sparkline := RenderMiniSparkline(data, width)
	if sparkline == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(MetricColor(data[len(data)-1])).Render(sparkline)
}

// resampleData resamples data to the target size.
// Downsampling keeps the max of each bucket so spikes stay visible.
// Upsampling interpolates linearly.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)
	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			maxVal := data[start]
			for _, v := range data[start+1 : end] {
				if v > maxVal {
					maxVal = v
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)
		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}
	return result
}

// OptimalGrid picks the rows x cols layout for n charts: the pair with
// rows*cols >= n whose cols/rows ratio is closest to sqrt(n). Ties keep the
// fewest rows. n < 1 yields 0x0.
func OptimalGrid(n int) (rows, cols int) {
	if n < 1 {
		return 0, 0
	}

	target := math.Sqrt(float64(n))
	bestDiff := math.Inf(1)
	for r := 1; r <= n; r++ {
		c := (n + r - 1) / r
		diff := math.Abs(float64(c)/float64(r) - target)
		if diff < bestDiff {
			rows, cols = r, c
			bestDiff = diff
		}
	}
	return rows, cols
}
