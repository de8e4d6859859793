package sampler

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/logger"
	"github.com/rileyhilliard/resmon/internal/metrics"
	metricstesting "github.com/rileyhilliard/resmon/internal/metrics/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Consumer that keeps everything it receives.
type recorder struct {
	mu        sync.Mutex
	snapshots []*Snapshot
	drives    [][]metrics.Volume
}

func (r *recorder) OnSnapshot(snap *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snap)
}

func (r *recorder) OnDriveListChanged(v []metrics.Volume) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drives = append(r.drives, v)
}

func (r *recorder) snapshotCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *recorder) driveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drives)
}

var (
	rootVol = metrics.Volume{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4"}
	homeVol = metrics.Volume{Device: "/dev/sda2", Mountpoint: "/home", Fstype: "ext4"}
	usbVol  = metrics.Volume{Device: "/dev/sdb1", Mountpoint: "/media/usb", Fstype: "vfat"}
)

func newFake() *metricstesting.FakeSource {
	return metricstesting.NewFakeSource().
		SetProcesses(
			metrics.ProcessRecord{PID: 1, Name: "init", User: "root", Threads: 1},
			metrics.ProcessRecord{PID: 42, Name: "bash", User: "alice", Threads: 1, CPUPercent: 3},
		).
		SetCPU(20, 40).
		SetMemory(metrics.MemoryUsage{Total: 16 << 30, Used: 8 << 30, Percent: 50}).
		SetVolumes(rootVol, homeVol).
		SetVolumeUsage("/", metrics.VolumeUsage{Total: 100, Used: 25}).
		SetVolumeUsage("/home", metrics.VolumeUsage{Total: 200, Used: 150})
}

func TestOnce_FansOutSameSnapshot(t *testing.T) {
	s := New(newFake(), Options{})
	a, b := &recorder{}, &recorder{}
	s.Subscribe(a)
	s.Subscribe(b)

	snap, err := s.Once(context.Background())
	require.NoError(t, err)

	require.Len(t, a.snapshots, 1)
	require.Len(t, b.snapshots, 1)
	assert.Same(t, snap, a.snapshots[0])
	assert.Same(t, a.snapshots[0], b.snapshots[0])
	assert.Equal(t, a.snapshots[0].Timestamp, b.snapshots[0].Timestamp)
	assert.Len(t, b.snapshots[0].Processes, 2)
}

func TestOnce_PopulatesSnapshot(t *testing.T) {
	s := New(newFake(), Options{})

	snap, err := s.Once(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(1), snap.Seq)
	assert.Equal(t, []float64{20, 40}, snap.PerCoreCPU)
	assert.InDelta(t, 30.0, snap.AggregateCPUPercent, 1e-9)
	assert.Equal(t, 50.0, snap.MemoryPercent)
	assert.Equal(t, uint64(16<<30), snap.MemoryTotalBytes)
	assert.Equal(t, "/", snap.PrimaryVolume)
	assert.Equal(t, 25.0, snap.DiskPercent)
	assert.Equal(t, metrics.VolumeUsage{Total: 200, Used: 150}, snap.DiskUsage["/home"])
	assert.Empty(t, snap.Failures)

	p, ok := snap.Process(42)
	require.True(t, ok)
	assert.Equal(t, "bash", p.Name)
}

func TestOnce_DropsIdleProcesses(t *testing.T) {
	tests := []struct {
		name     string
		pidZero  bool
		expected []int32
	}{
		{"pid 0 is idle", true, []int32{7}},
		{"pid 0 is a real process", false, []int32{0, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := idleAtPIDZero
			idleAtPIDZero = tt.pidZero
			t.Cleanup(func() { idleAtPIDZero = orig })

			src := newFake().SetProcesses(
				metrics.ProcessRecord{PID: 0, Name: "kernel_task"},
				metrics.ProcessRecord{PID: 4, Name: "System Idle Process"},
				metrics.ProcessRecord{PID: 7, Name: "sshd"},
			)
			snap, err := New(src, Options{}).Once(context.Background())
			require.NoError(t, err)

			var got []int32
			for _, p := range snap.Processes {
				got = append(got, p.PID)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDriveListChangedOnlyOnDifference(t *testing.T) {
	src := newFake()
	s := New(src, Options{})
	r := &recorder{}
	s.Subscribe(r)
	ctx := context.Background()

	_, err := s.Once(ctx)
	require.NoError(t, err)
	_, err = s.Once(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, r.driveCount(), "same list twice fires once")
	assert.Equal(t, 2, r.snapshotCount(), "disk usage still published every cycle")

	src.SetVolumes(rootVol, homeVol, usbVol)
	_, err = s.Once(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, r.driveCount())
	assert.Equal(t, []metrics.Volume{rootVol, homeVol, usbVol}, r.drives[1])

	// Reordering counts as a change.
	src.SetVolumes(homeVol, rootVol, usbVol)
	_, err = s.Once(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, r.driveCount())
}

func TestDriveListEventIsACopy(t *testing.T) {
	s := New(newFake(), Options{})
	r := &recorder{}
	s.Subscribe(r)

	_, err := s.Once(context.Background())
	require.NoError(t, err)
	r.drives[0][0].Mountpoint = "/mutated"

	_, err = s.Once(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.driveCount(), "consumer edits must not leak into the comparison")
}

func TestCategoryFailureDegradesCycle(t *testing.T) {
	src := newFake().Fail(metrics.CategoryCPU, stderrors.New("cpu stats unavailable"))
	log := logger.NewBufferLogger()
	s := New(src, Options{Logger: log})
	r := &recorder{}
	s.Subscribe(r)

	snap, err := s.Once(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Failed(metrics.CategoryCPU))
	assert.False(t, snap.Failed(metrics.CategoryMemory))
	assert.Nil(t, snap.PerCoreCPU)
	assert.Len(t, snap.Processes, 2)
	assert.Equal(t, 50.0, snap.MemoryPercent)
	assert.Equal(t, 1, r.snapshotCount())
	assert.True(t, log.HasLevel("warn"))
	assert.Equal(t, uint64(1), s.Stats().Degraded)
}

func TestUnreadableVolumeIsSkipped(t *testing.T) {
	src := newFake().FailVolume("/", stderrors.New("permission denied"))
	s := New(src, Options{})

	snap, err := s.Once(context.Background())
	require.NoError(t, err)

	assert.Empty(t, snap.Failures)
	assert.NotContains(t, snap.DiskUsage, "/")
	assert.Equal(t, "/home", snap.PrimaryVolume)
	assert.Equal(t, 75.0, snap.DiskPercent)
}

func TestUnreachableSourcePublishesNothing(t *testing.T) {
	src := newFake()
	boom := stderrors.New("no /proc")
	for _, cat := range metrics.AllCategories {
		src.Fail(cat, boom)
	}
	s := New(src, Options{})
	r := &recorder{}
	s.Subscribe(r)

	snap, err := s.Once(context.Background())
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errors.IsCode(err, errors.ErrSource))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, r.snapshotCount())
	assert.Equal(t, 0, r.driveCount())
	assert.Equal(t, uint64(1), s.Stats().Skipped)
	assert.Equal(t, uint64(0), s.Stats().Cycles)
}

func TestUnreachableSourceLogsEachFailureOnce(t *testing.T) {
	src := newFake()
	for _, cat := range metrics.AllCategories {
		src.Fail(cat, stderrors.New("no /proc"))
	}
	log := logger.NewBufferLogger()
	s := New(src, Options{Logger: log})

	_, err := s.Once(context.Background())
	require.Error(t, err)
	assert.Equal(t, len(metrics.AllCategories), log.Count("read failed"))
	assert.Equal(t, 0, log.Count("source read failed"))
}

func TestSlowReaderStillSeesDriveChange(t *testing.T) {
	src := newFake()
	s := New(src, Options{})
	feed := NewChannelConsumer(2)
	s.Subscribe(feed)
	ctx := context.Background()

	_, err := s.Once(ctx)
	require.NoError(t, err)

	src.SetVolumes(rootVol, homeVol, usbVol)
	for i := 0; i < 4; i++ {
		_, err = s.Once(ctx)
		require.NoError(t, err)
	}
	require.Positive(t, feed.Dropped())

	var latest []metrics.Volume
	for len(feed.Events()) > 0 {
		if ev := <-feed.Events(); ev.DriveChanged {
			latest = ev.Volumes
		}
	}
	assert.Equal(t, []metrics.Volume{rootVol, homeVol, usbVol}, latest)
}

func TestRepeatedErrorsAreLoggedOnce(t *testing.T) {
	src := newFake().Fail(metrics.CategoryDisk, stderrors.New("mount table busy"))
	log := logger.NewBufferLogger()
	s := New(src, Options{Logger: log})

	for i := 0; i < 5; i++ {
		_, err := s.Once(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, log.Count("disk read failed"))

	src.Fail(metrics.CategoryDisk, nil)
	_, err := s.Once(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, log.Count("repeated 4 times"))
	assert.Equal(t, 1, log.Count("disk readings recovered"))
}

func TestCPUWindowOnlyOnFirstCycle(t *testing.T) {
	src := newFake()
	s := New(src, Options{CPUWindow: 200 * time.Millisecond})

	for i := 0; i < 3; i++ {
		_, err := s.Once(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 0, 0}, src.CPUWindows)
}

func TestNew_CoercesOptions(t *testing.T) {
	assert.Equal(t, DefaultCadence, New(newFake(), Options{}).Cadence())
	assert.Equal(t, MinCadence, New(newFake(), Options{Cadence: time.Millisecond}).Cadence())
	assert.Equal(t, 2*time.Second, New(newFake(), Options{Cadence: 2 * time.Second}).Cadence())
}

func TestStart_RunsUntilStopped(t *testing.T) {
	src := newFake()
	s := New(src, Options{Cadence: MinCadence})
	r := &recorder{}
	s.Subscribe(r)

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return r.snapshotCount() >= 3 }, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	select {
	case <-s.Done():
	default:
		t.Fatal("loop still running after Stop")
	}

	n := r.snapshotCount()
	time.Sleep(3 * MinCadence)
	assert.Equal(t, n, r.snapshotCount(), "no cycles after Stop")

	s.Stop() // idempotent
}

func TestStart_Twice(t *testing.T) {
	s := New(newFake(), Options{Cadence: time.Hour})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSource))
}

func TestStart_ContextCancelStopsLoop(t *testing.T) {
	s := New(newFake(), Options{Cadence: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after context cancel")
	}
}

func TestStop_FinishesCycleInProgress(t *testing.T) {
	src := newFake()
	release := src.Block()
	s := New(src, Options{Cadence: time.Hour})
	r := &recorder{}
	s.Subscribe(r)

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return src.Calls() == 1 }, time.Second, 5*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	// Stop must wait for the blocked cycle rather than abandon it.
	select {
	case <-stopped:
		t.Fatal("Stop returned while a cycle was still running")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the cycle finished")
	}

	require.Equal(t, 1, r.snapshotCount(), "the in-flight cycle is published")
	assert.Len(t, r.snapshots[0].Processes, 2)
	assert.Equal(t, 1, src.Calls(), "no new cycle starts after Stop")
}

func TestSlowSourceRunsBackToBack(t *testing.T) {
	src := newFake().SetDelay(30 * time.Millisecond)
	s := New(src, Options{Cadence: MinCadence})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return s.Stats().Cycles >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, s.Stats().LastDuration, 30*time.Millisecond)
}

func TestSubscribeWhileRunning(t *testing.T) {
	s := New(newFake(), Options{Cadence: MinCadence})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	late := &recorder{}
	s.Subscribe(late)
	assert.Eventually(t, func() bool { return late.snapshotCount() > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, late.driveCount(), "late subscribers miss the initial drive event until the list changes")
}
