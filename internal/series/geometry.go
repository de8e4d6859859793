package series

import "math"

// Point is a position in the target drawing area. The origin is the top-left
// corner and y grows downwards.
type Point struct {
	X float64
	Y float64
}

// Geometry is the drawable form of a buffer at a given size.
type Geometry struct {
	Width  float64
	Height float64

	// Points holds one position per sample, oldest on the left.
	Points []Point

	// Polygon is the series line closed down to the baseline, suitable for
	// fill shading. Its first and last vertices coincide.
	Polygon []Point
}

// RenderGeometry maps the window onto a width x height area.
//
// Samples are spaced evenly so the first sits at x=0 and the last at
// x=width. Values are mapped linearly from [min, max] to [height, 0] and
// clamped at the edges: anything above max lands on y=0 and anything below
// min lands on y=height.
//
// A non-positive or NaN size returns false and an empty Geometry.
func (b *Buffer) RenderGeometry(width, height float64) (Geometry, bool) {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return Geometry{}, false
	}

	values := b.Values()
	n := len(values)

	step := 0.0
	if n > 1 {
		step = width / float64(n-1)
	}
	span := b.max - b.min

	points := make([]Point, n)
	for i, v := range values {
		norm := (clamp(v, b.min, b.max) - b.min) / span
		points[i] = Point{
			X: float64(i) * step,
			Y: height - norm*height,
		}
	}

	polygon := make([]Point, 0, n+3)
	polygon = append(polygon, Point{X: points[0].X, Y: height})
	polygon = append(polygon, points...)
	polygon = append(polygon, Point{X: points[n-1].X, Y: height})
	polygon = append(polygon, Point{X: points[0].X, Y: height})

	return Geometry{
		Width:   width,
		Height:  height,
		Points:  points,
		Polygon: polygon,
	}, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
