// Package testing provides test doubles for the metrics package.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/resmon/internal/metrics"
)

// FakeSource is a scriptable metrics.Source. Every setter is safe to call
// while a sampler is reading from it.
type FakeSource struct {
	mu sync.Mutex

	processes []metrics.ProcessRecord
	perCore   []float64
	memory    metrics.MemoryUsage
	volumes   []metrics.Volume
	usage     map[string]metrics.VolumeUsage
	info      metrics.HostInfo

	failures     map[metrics.Category]error
	volumeErrors map[string]error
	delay        time.Duration
	block        chan struct{}

	// Tracking for assertions
	ProcessCalls int
	CPUCalls     int
	CPUWindows   []time.Duration
}

// NewFakeSource creates a source with one core at 0% and no processes.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		perCore:      []float64{0},
		usage:        make(map[string]metrics.VolumeUsage),
		failures:     make(map[metrics.Category]error),
		volumeErrors: make(map[string]error),
	}
}

// SetProcesses replaces the process list returned by ListProcesses.
func (f *FakeSource) SetProcesses(procs ...metrics.ProcessRecord) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processes = append([]metrics.ProcessRecord(nil), procs...)
	return f
}

// SetCPU sets the per-core load returned by CPUPercent.
func (f *FakeSource) SetCPU(perCore ...float64) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.perCore = append([]float64(nil), perCore...)
	return f
}

// SetMemory sets the memory figure.
func (f *FakeSource) SetMemory(m metrics.MemoryUsage) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memory = m
	return f
}

// SetVolumes replaces the volume list.
func (f *FakeSource) SetVolumes(vols ...metrics.Volume) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = append([]metrics.Volume(nil), vols...)
	return f
}

// SetVolumeUsage sets the usage reported for a mountpoint.
func (f *FakeSource) SetVolumeUsage(mountpoint string, u metrics.VolumeUsage) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage[mountpoint] = u
	return f
}

// FailVolume makes VolumeUsage fail for one mountpoint.
func (f *FakeSource) FailVolume(mountpoint string, err error) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumeErrors[mountpoint] = err
	return f
}

// SetHostInfo sets the value returned by HostInfo.
func (f *FakeSource) SetHostInfo(info metrics.HostInfo) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.info = info
	return f
}

// Fail makes every call in a category return err. A nil err clears it.
func (f *FakeSource) Fail(cat metrics.Category, err error) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, cat)
	} else {
		f.failures[cat] = err
	}
	return f
}

// SetDelay makes ListProcesses take at least d, simulating an expensive read.
func (f *FakeSource) SetDelay(d time.Duration) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
	return f
}

// Block makes ListProcesses wait until the returned func is called.
func (f *FakeSource) Block() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.block = ch
	var once sync.Once
	return func() {
		once.Do(func() { close(ch) })
	}
}

func (f *FakeSource) failure(cat metrics.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[cat]
}

// ListProcesses implements metrics.Source.
func (f *FakeSource) ListProcesses(ctx context.Context) ([]metrics.ProcessRecord, error) {
	f.mu.Lock()
	f.ProcessCalls++
	delay := f.delay
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err := f.failure(metrics.CategoryProcesses); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]metrics.ProcessRecord(nil), f.processes...), nil
}

// CPUPercent implements metrics.Source.
func (f *FakeSource) CPUPercent(ctx context.Context, window time.Duration) ([]float64, error) {
	f.mu.Lock()
	f.CPUCalls++
	f.CPUWindows = append(f.CPUWindows, window)
	f.mu.Unlock()

	if err := f.failure(metrics.CategoryCPU); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.perCore...), nil
}

// MemoryUsage implements metrics.Source.
func (f *FakeSource) MemoryUsage(ctx context.Context) (metrics.MemoryUsage, error) {
	if err := f.failure(metrics.CategoryMemory); err != nil {
		return metrics.MemoryUsage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.memory, nil
}

// ListVolumes implements metrics.Source.
func (f *FakeSource) ListVolumes(ctx context.Context) ([]metrics.Volume, error) {
	if err := f.failure(metrics.CategoryDisk); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]metrics.Volume(nil), f.volumes...), nil
}

// VolumeUsage implements metrics.Source.
func (f *FakeSource) VolumeUsage(ctx context.Context, v metrics.Volume) (metrics.VolumeUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.volumeErrors[v.Mountpoint]; err != nil {
		return metrics.VolumeUsage{}, err
	}
	return f.usage[v.Mountpoint], nil
}

// HostInfo implements metrics.Source.
func (f *FakeSource) HostInfo(ctx context.Context) (metrics.HostInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info, nil
}

// Calls returns how many times ListProcesses has been called.
func (f *FakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ProcessCalls
}

var _ metrics.Source = (*FakeSource)(nil)
