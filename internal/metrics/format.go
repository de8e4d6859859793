package metrics

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatSize formats a byte count with two decimals in 1024 steps, from B up to YB.
func FormatSize(bytes uint64) string {
	size := float64(bytes)
	for _, unit := range sizeUnits {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f YB", size)
}

// FormatUsage renders "used/total (pct%)" for a volume.
func FormatUsage(u VolumeUsage) string {
	return fmt.Sprintf("%s/%s (%.1f%%)", FormatSize(u.Used), FormatSize(u.Total), u.Percent())
}

// MeanPercent averages per-core figures into one aggregate. An empty slice
// averages to 0.
func MeanPercent(perCore []float64) float64 {
	if len(perCore) == 0 {
		return 0
	}
	var sum float64
	for _, v := range perCore {
		sum += v
	}
	return sum / float64(len(perCore))
}
