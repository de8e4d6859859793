package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name     string
		bytes    uint64
		expected string
	}{
		{"zero", 0, "0.00 B"},
		{"bytes", 512, "512.00 B"},
		{"just under a KB", 1023, "1023.00 B"},
		{"one KB", 1024, "1.00 KB"},
		{"megabytes", 5 * 1024 * 1024, "5.00 MB"},
		{"fractional gigabytes", 1536 * 1024 * 1024, "1.50 GB"},
		{"terabytes", 2 * 1024 * 1024 * 1024 * 1024, "2.00 TB"},
		{"exabytes", 1 << 60, "1.00 EB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSize(tt.bytes))
		})
	}
}

func TestVolumeUsagePercent(t *testing.T) {
	assert.Equal(t, 0.0, VolumeUsage{}.Percent())
	assert.InDelta(t, 25.0, VolumeUsage{Total: 400, Used: 100}.Percent(), 1e-9)
}

func TestFormatUsage(t *testing.T) {
	u := VolumeUsage{Total: 4 * 1024 * 1024 * 1024, Used: 1024 * 1024 * 1024}
	assert.Equal(t, "1.00 GB/4.00 GB (25.0%)", FormatUsage(u))
}

func TestMeanPercent(t *testing.T) {
	assert.Equal(t, 0.0, MeanPercent(nil))
	assert.InDelta(t, 50.0, MeanPercent([]float64{20, 80}), 1e-9)
	assert.InDelta(t, 30.0, MeanPercent([]float64{10, 20, 60}), 1e-9)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain ascii", "bash", "bash"},
		{"combining accent composed", "cafe\u0301", "caf\u00e9"},
		{"precomposed accent kept", "caf\u00e9", "caf\u00e9"},
		{"control characters replaced", "evil\x1b[2J", "evil?[2J"},
		{"wide characters kept", "日本", "日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}
