package sampler

import (
	"time"

	"github.com/rileyhilliard/resmon/internal/metrics"
)

// Snapshot is every metric read during one cycle. The same pointer is handed
// to every consumer, so consumers must not modify it.
type Snapshot struct {
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`

	Processes []metrics.ProcessRecord `json:"processes"`

	AggregateCPUPercent float64   `json:"cpu_percent"`
	PerCoreCPU          []float64 `json:"per_core_cpu"`

	MemoryPercent    float64 `json:"memory_percent"`
	MemoryTotalBytes uint64  `json:"memory_total"`

	// DiskUsage is keyed by mountpoint. Volumes that could not be read are
	// absent.
	DiskUsage     map[string]metrics.VolumeUsage `json:"disk_usage"`
	Volumes       []metrics.Volume               `json:"volumes"`
	PrimaryVolume string                         `json:"primary_volume,omitempty"`
	DiskPercent   float64                        `json:"disk_percent"`

	// Failures lists categories that could not be read this cycle. Their
	// fields hold zero values.
	Failures []metrics.Category `json:"failures,omitempty"`
}

// Failed reports whether cat could not be read this cycle.
func (s *Snapshot) Failed(cat metrics.Category) bool {
	for _, c := range s.Failures {
		if c == cat {
			return true
		}
	}
	return false
}

// Process returns the record for pid, if present.
func (s *Snapshot) Process(pid int32) (metrics.ProcessRecord, bool) {
	for _, p := range s.Processes {
		if p.PID == pid {
			return p, true
		}
	}
	return metrics.ProcessRecord{}, false
}
