// Package series implements the fixed-length rolling window behind each
// dashboard chart.
//
// A Buffer always holds exactly n samples: it starts filled with the range
// minimum and every Push evicts the oldest value. RenderGeometry turns the
// window into coordinates for any drawing surface without drawing anything
// itself.
//
// Buffers are not synchronized. Each chart owns one buffer and touches it
// only from the goroutine that renders it.
package series

import "math"

// DefaultWindow is the number of samples kept when none is configured.
const DefaultWindow = 61

// Buffer is a fixed-capacity FIFO of float64 samples with a display range.
type Buffer struct {
	data  []float64
	head  int // next write position; also the oldest sample
	min   float64
	max   float64
	label string
	style string
}

// New creates a buffer of n samples over [min, max].
// n < 1 falls back to DefaultWindow. An inverted or zero-width range is
// widened by moving min to max-1.
func New(n int, min, max float64, label, style string) *Buffer {
	if n < 1 {
		n = DefaultWindow
	}
	if min >= max {
		min = max - 1
	}

	data := make([]float64, n)
	for i := range data {
		data[i] = min
	}

	return &Buffer{
		data:  data,
		min:   min,
		max:   max,
		label: label,
		style: style,
	}
}

// Push appends v and evicts the oldest sample. NaN and ±Inf are treated as
// unavailable readings and stored as the range minimum.
func (b *Buffer) Push(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = b.min
	}
	b.data[b.head] = v
	b.head = (b.head + 1) % len(b.data)
}

// Values returns a copy of the samples, oldest first.
func (b *Buffer) Values() []float64 {
	n := len(b.data)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = b.data[(b.head+i)%n]
	}
	return out
}

// Last returns the most recently pushed sample.
func (b *Buffer) Last() float64 {
	n := len(b.data)
	return b.data[(b.head-1+n)%n]
}

// Len returns the window length. It never changes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Range returns the display range after any coercion done by New.
func (b *Buffer) Range() (min, max float64) {
	return b.min, b.max
}

// Label returns the chart label.
func (b *Buffer) Label() string {
	return b.label
}

// SetLabel replaces the chart label, e.g. once total memory is known.
func (b *Buffer) SetLabel(label string) {
	b.label = label
}

// Style returns the opaque style tag given at construction.
func (b *Buffer) Style() string {
	return b.style
}
