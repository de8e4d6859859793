package metrics

import "time"

// ProcessRecord is one row of the process table for a single sampling cycle.
// Records are rebuilt every cycle; PID is the only field that correlates
// across cycles.
type ProcessRecord struct {
	PID              int32   `json:"pid"`
	Name             string  `json:"name"`
	Threads          int32   `json:"threads"`
	User             string  `json:"user"`
	ResidentMemoryMB float64 `json:"rss_mb"`
	CPUPercent       float64 `json:"cpu_percent"`
}

// Volume identifies a mounted partition. It is comparable so volume lists
// can be diffed by value.
type Volume struct {
	Device     string `json:"device"`
	Mountpoint string `json:"mountpoint"`
	Fstype     string `json:"fstype"`
}

// VolumeUsage is the capacity of a single volume in bytes.
type VolumeUsage struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
}

// Percent returns used/total as a percentage, or 0 for an empty volume.
func (u VolumeUsage) Percent() float64 {
	if u.Total == 0 {
		return 0
	}
	return float64(u.Used) / float64(u.Total) * 100
}

// MemoryUsage is the system-wide virtual memory figure.
type MemoryUsage struct {
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Percent float64 `json:"percent"`
}

// HostInfo is static-ish information about the machine.
type HostInfo struct {
	Hostname        string        `json:"hostname"`
	OS              string        `json:"os"`
	Platform        string        `json:"platform"`
	PlatformVersion string        `json:"platform_version"`
	KernelVersion   string        `json:"kernel_version"`
	KernelArch      string        `json:"kernel_arch"`
	Uptime          time.Duration `json:"uptime"`
	BootTime        time.Time     `json:"boot_time"`
	CPUModel        string        `json:"cpu_model"`
	LogicalCores    int           `json:"logical_cores"`
	MemoryTotal     uint64        `json:"memory_total"`
	Procs           uint64        `json:"procs"`
}

// Category names one group of metrics that can fail independently.
type Category string

const (
	CategoryProcesses Category = "processes"
	CategoryCPU       Category = "cpu"
	CategoryMemory    Category = "memory"
	CategoryDisk      Category = "disk"
)

// AllCategories lists every category in acquisition order.
var AllCategories = []Category{CategoryProcesses, CategoryCPU, CategoryMemory, CategoryDisk}
