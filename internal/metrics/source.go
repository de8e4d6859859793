// Package metrics defines the data the dashboard consumes and the Source
// that supplies it.
//
// HostSource is the production Source, backed by gopsutil. Every call may
// fail per entry (a process exits mid-read, a volume denies access); those
// entries are skipped and the call still succeeds with the rest. An error is
// only returned when a whole category cannot be read.
package metrics

import (
	"context"
	"time"
)

// Source supplies one-shot reads of the host's metrics.
type Source interface {
	// ListProcesses returns every readable process.
	ListProcesses(ctx context.Context) ([]ProcessRecord, error)

	// CPUPercent returns per-core load. A zero window reports the load
	// since the previous call; a positive window blocks for that long.
	CPUPercent(ctx context.Context, window time.Duration) ([]float64, error)

	// MemoryUsage returns system-wide memory use.
	MemoryUsage(ctx context.Context) (MemoryUsage, error)

	// ListVolumes returns mounted partitions in the order the OS reports them.
	ListVolumes(ctx context.Context) ([]Volume, error)

	// VolumeUsage returns the capacity of one volume.
	VolumeUsage(ctx context.Context, v Volume) (VolumeUsage, error)

	// HostInfo returns descriptive information about the machine.
	HostInfo(ctx context.Context) (HostInfo, error)
}
