package metrics

import (
	"context"
	"strconv"
	"sync"
	"time"
	"unicode"

	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const bytesPerMB = 1024 * 1024

// trackedProcess keeps a gopsutil handle alive between cycles so
// Percent(0) can diff CPU time against the previous cycle.
type trackedProcess struct {
	proc       *process.Process
	createTime int64
	seen       bool
}

// HostSource reads metrics from the local machine via gopsutil.
// It is meant to be driven by a single sampler goroutine.
type HostSource struct {
	mu        sync.Mutex
	processes map[int32]*trackedProcess
}

// NewHostSource creates a Source for the local machine.
func NewHostSource() *HostSource {
	return &HostSource{
		processes: make(map[int32]*trackedProcess),
	}
}

// ListProcesses enumerates processes. CPU percent is the delta since this
// source last saw the process, so the first cycle reports 0 for every
// process. A process is omitted when any of its required fields is
// unreadable.
func (s *HostSource) ListProcesses(ctx context.Context) ([]ProcessRecord, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Couldn't enumerate processes",
			"Check that the process table is readable by this user.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.processes {
		t.seen = false
	}

	records := make([]ProcessRecord, 0, len(procs))
	for _, p := range procs {
		tracked := s.track(ctx, p)
		rec, ok := readProcess(ctx, tracked.proc)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	// Forget processes that exited so PIDs can be reused cleanly.
	for pid, t := range s.processes {
		if !t.seen {
			delete(s.processes, pid)
		}
	}

	return records, nil
}

// track returns the cached handle for p, replacing it when the PID was reused.
func (s *HostSource) track(ctx context.Context, p *process.Process) *trackedProcess {
	created, _ := p.CreateTimeWithContext(ctx)

	t, ok := s.processes[p.Pid]
	if !ok || t.createTime != created {
		t = &trackedProcess{proc: p, createTime: created}
		s.processes[p.Pid] = t
	}
	t.seen = true
	return t
}

// readProcess assembles a record only if every field can be read.
func readProcess(ctx context.Context, p *process.Process) (ProcessRecord, bool) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return ProcessRecord{}, false
	}
	threads, err := p.NumThreadsWithContext(ctx)
	if err != nil {
		return ProcessRecord{}, false
	}
	user, ok := processUser(ctx, p)
	if !ok {
		return ProcessRecord{}, false
	}
	memInfo, err := p.MemoryInfoWithContext(ctx)
	if err != nil || memInfo == nil {
		return ProcessRecord{}, false
	}
	cpuPct, err := p.PercentWithContext(ctx, 0)
	if err != nil {
		return ProcessRecord{}, false
	}

	return ProcessRecord{
		PID:              p.Pid,
		Name:             SanitizeName(name),
		Threads:          threads,
		User:             user,
		ResidentMemoryMB: float64(memInfo.RSS) / bytesPerMB,
		CPUPercent:       cpuPct,
	}, true
}

// processUser resolves the owner, falling back to the numeric UID when the
// account has no passwd entry (common inside containers).
func processUser(ctx context.Context, p *process.Process) (string, bool) {
	if user, err := p.UsernameWithContext(ctx); err == nil {
		return user, true
	}
	uids, err := p.UidsWithContext(ctx)
	if err != nil || len(uids) == 0 {
		return "", false
	}
	return strconv.FormatInt(int64(uids[0]), 10), true
}

// CPUPercent returns per-core load percentages.
func (s *HostSource) CPUPercent(ctx context.Context, window time.Duration) ([]float64, error) {
	perCore, err := cpu.PercentWithContext(ctx, window, true)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Couldn't read CPU load",
			"Check that CPU statistics are available on this platform.")
	}
	return perCore, nil
}

// MemoryUsage returns virtual memory use.
func (s *HostSource) MemoryUsage(ctx context.Context) (MemoryUsage, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryUsage{}, errors.WrapWithCode(err, errors.ErrSource,
			"Couldn't read memory usage",
			"Check that memory statistics are available on this platform.")
	}
	return MemoryUsage{Total: vm.Total, Used: vm.Used, Percent: vm.UsedPercent}, nil
}

// ListVolumes returns physical partitions.
func (s *HostSource) ListVolumes(ctx context.Context) ([]Volume, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil && len(parts) == 0 {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Couldn't list volumes",
			"Check that the mount table is readable.")
	}

	volumes := make([]Volume, 0, len(parts))
	for _, p := range parts {
		volumes = append(volumes, Volume{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
		})
	}
	return volumes, nil
}

// VolumeUsage returns capacity for the volume's mountpoint.
func (s *HostSource) VolumeUsage(ctx context.Context, v Volume) (VolumeUsage, error) {
	u, err := disk.UsageWithContext(ctx, v.Mountpoint)
	if err != nil {
		return VolumeUsage{}, errors.WrapWithCode(err, errors.ErrSource,
			"Couldn't read usage for "+v.Mountpoint,
			"The volume may be unmounted or access may be denied.")
	}
	return VolumeUsage{Total: u.Total, Used: u.Used}, nil
}

// HostInfo gathers host, CPU, and memory descriptions. Missing pieces are
// left empty rather than failing the whole call.
func (s *HostSource) HostInfo(ctx context.Context) (HostInfo, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostInfo{}, errors.WrapWithCode(err, errors.ErrSource,
			"Couldn't read host information",
			"Check that host statistics are available on this platform.")
	}

	info := HostInfo{
		Hostname:        hi.Hostname,
		OS:              hi.OS,
		Platform:        hi.Platform,
		PlatformVersion: hi.PlatformVersion,
		KernelVersion:   hi.KernelVersion,
		KernelArch:      hi.KernelArch,
		Uptime:          time.Duration(hi.Uptime) * time.Second,
		BootTime:        time.Unix(int64(hi.BootTime), 0),
		Procs:           hi.Procs,
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.LogicalCores = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryTotal = vm.Total
	}

	return info, nil
}

// nameCleaner composes combining marks onto their base letters and masks
// control characters, so names measure the width they render at and still
// match what a user types. Chains carry state, so each call gets its own.
func nameCleaner() transform.Transformer {
	return transform.Chain(
		norm.NFC,
		runes.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return '?'
			}
			return r
		}),
	)
}

// SanitizeName makes a process name safe to lay out in a terminal cell grid.
func SanitizeName(name string) string {
	out, _, err := transform.String(nameCleaner(), name)
	if err != nil {
		return name
	}
	return out
}
