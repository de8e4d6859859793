// Package sampler runs the background loop that reads a metrics.Source once
// per cycle and hands the resulting Snapshot to every subscriber.
//
// All consumers of a cycle see the same *Snapshot, so the process table,
// gauges, charts and drive list never disagree about which cycle they show.
// Stopping the sampler lets the cycle in progress finish and publish; a
// partial snapshot is never delivered.
package sampler

import (
	"context"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/rileyhilliard/resmon/internal/errors"
	"github.com/rileyhilliard/resmon/internal/logger"
	"github.com/rileyhilliard/resmon/internal/metrics"
)

const (
	// DefaultCadence is the cycle period when none is configured.
	DefaultCadence = time.Second

	// MinCadence keeps a misconfigured sampler from spinning.
	MinCadence = 50 * time.Millisecond

	// DefaultStopTimeout is the maximum time Stop will wait for the loop to
	// finish its current cycle.
	DefaultStopTimeout = 5 * time.Second

	// idleProcessName is the placeholder Windows reports for idle time.
	idleProcessName = "System Idle Process"
)

// idleAtPIDZero is true where PID 0 is the idle placeholder. On macOS PID 0
// is kernel_task, which does real work and stays in the table.
var idleAtPIDZero = runtime.GOOS == "windows"

// Options configures a Sampler.
type Options struct {
	// Cadence is the target time between cycle starts. A cycle that takes
	// longer than Cadence is followed immediately by the next one.
	Cadence time.Duration

	// CPUWindow is how long the first cycle blocks to measure CPU load.
	// Later cycles measure the load since the previous cycle instead, which
	// is the same interval the per-process figures cover.
	CPUWindow time.Duration

	Logger logger.Logger
}

// Stats summarizes the loop for status displays.
type Stats struct {
	Cycles       uint64        // cycles that published a snapshot
	Skipped      uint64        // cycles where the source was unreachable
	Degraded     uint64        // published cycles with at least one failed category
	LastDuration time.Duration // acquisition time of the most recent cycle
	LastCycle    time.Time
}

// subscription tracks whether a consumer has seen the drive list yet, so a
// late subscriber gets the current list on its first cycle.
type subscription struct {
	consumer Consumer
	primed   bool
}

// errTracker deduplicates repeated identical errors per category.
type errTracker struct {
	lastMsg    string
	lastTime   time.Time
	suppressed int64
}

// Sampler produces one Snapshot per cycle and fans it out to subscribers.
type Sampler struct {
	source metrics.Source
	opts   Options
	log    logger.Logger

	mu        sync.Mutex
	consumers []*subscription
	stats     Stats
	started   bool

	// cycleMu serializes cycles so Once and the loop never interleave, and
	// guards every field below it.
	cycleMu     sync.Mutex
	seq         uint64
	prevVolumes []metrics.Volume
	hasPrev     bool
	errTrackers map[string]*errTracker

	cancel   context.CancelFunc
	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a sampler reading from source. It does nothing until Start or
// Once is called.
func New(source metrics.Source, opts Options) *Sampler {
	if opts.Cadence <= 0 {
		opts.Cadence = DefaultCadence
	}
	if opts.Cadence < MinCadence {
		opts.Cadence = MinCadence
	}
	if opts.CPUWindow < 0 {
		opts.CPUWindow = 0
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	return &Sampler{
		source:      source,
		opts:        opts,
		log:         log,
		stopped:     make(chan struct{}),
		errTrackers: make(map[string]*errTracker),
	}
}

// Cadence returns the effective cycle period.
func (s *Sampler) Cadence() time.Duration {
	return s.opts.Cadence
}

// Subscribe registers c for every following cycle. It is safe to call while
// the loop is running; c first hears from the next cycle that publishes,
// which also delivers the current drive list.
func (s *Sampler) Subscribe(c Consumer) {
	if c == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumers = append(s.consumers, &subscription{consumer: c})
}

// Start launches the sampling loop. The first cycle runs immediately.
// The loop exits when ctx is cancelled or Stop is called.
func (s *Sampler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New(errors.ErrSource,
			"Sampler already started",
			"Create a new sampler for each dashboard session.")
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

// Stop cancels the loop and waits for the current cycle to finish, with a
// timeout so a hung source cannot block shutdown forever.
func (s *Sampler) Stop() {
	s.mu.Lock()
	started := s.started
	cancel := s.cancel
	s.mu.Unlock()

	if !started {
		return
	}

	s.stopOnce.Do(func() {
		if cancel != nil {
			cancel()
		}
	})

	select {
	case <-s.stopped:
	case <-time.After(DefaultStopTimeout):
		s.log.Warn("sampler stop timed out after %s", DefaultStopTimeout)
	}
}

// Done is closed once the loop has exited.
func (s *Sampler) Done() <-chan struct{} {
	return s.stopped
}

// Once runs a single cycle synchronously and publishes it to subscribers.
// It returns an error only when no category could be read.
func (s *Sampler) Once(ctx context.Context) (*Snapshot, error) {
	return s.cycle(ctx)
}

// Stats returns a copy of the loop counters.
func (s *Sampler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Sampler) run(ctx context.Context) {
	defer close(s.stopped)

	// Acquisition ignores cancellation so a cycle always completes.
	acquireCtx := context.WithoutCancel(ctx)

	for {
		start := time.Now()
		_, _ = s.cycle(acquireCtx)

		if ctx.Err() != nil {
			return
		}

		wait := s.opts.Cadence - time.Since(start)
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// cycle acquires, records and publishes one snapshot.
func (s *Sampler) cycle(ctx context.Context) (*Snapshot, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	start := time.Now()
	snap, err := s.acquire(ctx)
	elapsed := time.Since(start)

	s.mu.Lock()
	s.stats.LastDuration = elapsed
	s.stats.LastCycle = start
	if err != nil {
		s.stats.Skipped++
	} else {
		s.stats.Cycles++
		if len(snap.Failures) > 0 {
			s.stats.Degraded++
		}
	}
	consumers := slices.Clone(s.consumers)
	s.mu.Unlock()

	// Each category failure was already logged by acquire.
	if err != nil {
		return nil, err
	}

	volumesChanged := !s.hasPrev || !slices.Equal(s.prevVolumes, snap.Volumes)
	if volumesChanged {
		s.prevVolumes = slices.Clone(snap.Volumes)
		s.hasPrev = true
	}

	for _, sub := range consumers {
		if volumesChanged || !sub.primed {
			sub.consumer.OnDriveListChanged(slices.Clone(snap.Volumes))
			sub.primed = true
		}
		sub.consumer.OnSnapshot(snap)
	}

	s.log.Debug("cycle %d: %d processes, cpu %.1f%%, mem %.1f%% in %s",
		snap.Seq, len(snap.Processes), snap.AggregateCPUPercent, snap.MemoryPercent, elapsed)
	return snap, nil
}

// acquire reads every category. A failed category is recorded and skipped;
// only a cycle where all of them fail is an error.
func (s *Sampler) acquire(ctx context.Context) (*Snapshot, error) {
	s.seq++
	snap := &Snapshot{
		Seq:       s.seq,
		Timestamp: time.Now(),
		DiskUsage: make(map[string]metrics.VolumeUsage),
	}
	var lastErr error

	fail := func(cat metrics.Category, err error) {
		snap.Failures = append(snap.Failures, cat)
		s.logError(string(cat), err)
		lastErr = err
	}

	if procs, err := s.source.ListProcesses(ctx); err != nil {
		fail(metrics.CategoryProcesses, err)
	} else {
		snap.Processes = dropIdle(procs)
		s.clearError(string(metrics.CategoryProcesses))
	}

	window := time.Duration(0)
	if s.seq == 1 {
		window = s.opts.CPUWindow
	}
	if perCore, err := s.source.CPUPercent(ctx, window); err != nil {
		fail(metrics.CategoryCPU, err)
	} else {
		snap.PerCoreCPU = clampAll(perCore)
		snap.AggregateCPUPercent = metrics.MeanPercent(snap.PerCoreCPU)
		s.clearError(string(metrics.CategoryCPU))
	}

	if mem, err := s.source.MemoryUsage(ctx); err != nil {
		fail(metrics.CategoryMemory, err)
	} else {
		snap.MemoryPercent = clampPercent(mem.Percent)
		snap.MemoryTotalBytes = mem.Total
		s.clearError(string(metrics.CategoryMemory))
	}

	if vols, err := s.source.ListVolumes(ctx); err != nil {
		fail(metrics.CategoryDisk, err)
	} else {
		snap.Volumes = vols
		s.readVolumes(ctx, snap)
		s.clearError(string(metrics.CategoryDisk))
	}

	if len(snap.Failures) == len(metrics.AllCategories) {
		return nil, errors.WrapWithCode(lastErr, errors.ErrSource,
			"Metric source unreachable",
			"Check that resmon can read system statistics on this host.")
	}
	return snap, nil
}

// readVolumes fills DiskUsage and picks the primary volume. The root
// filesystem is preferred; otherwise the first readable volume is used.
func (s *Sampler) readVolumes(ctx context.Context, snap *Snapshot) {
	for _, v := range snap.Volumes {
		u, err := s.source.VolumeUsage(ctx, v)
		if err != nil {
			s.log.Debug("skipping volume %s: %v", v.Mountpoint, err)
			continue
		}
		snap.DiskUsage[v.Mountpoint] = u
		if snap.PrimaryVolume == "" || v.Mountpoint == "/" {
			snap.PrimaryVolume = v.Mountpoint
		}
	}
	if u, ok := snap.DiskUsage[snap.PrimaryVolume]; ok {
		snap.DiskPercent = clampPercent(u.Percent())
	}
}

// logError deduplicates repeated identical errors per key. If the same
// error recurs within an hour it is suppressed, with a summary every 100
// repeats.
func (s *Sampler) logError(key string, err error) {
	msg := err.Error()
	tracker := s.errTrackers[key]
	if tracker == nil {
		tracker = &errTracker{}
		s.errTrackers[key] = tracker
	}
	now := time.Now()
	if msg == tracker.lastMsg && now.Sub(tracker.lastTime) < time.Hour {
		tracker.suppressed++
		if tracker.suppressed%100 == 0 {
			s.log.Warn("%s read failed (repeated %d times): %s", key, tracker.suppressed, errors.Summary(err))
		}
		return
	}
	if tracker.suppressed > 0 {
		s.log.Warn("%s previous error repeated %d times", key, tracker.suppressed)
	}
	s.log.Warn("%s read failed: %s", key, errors.Summary(err))
	tracker.lastMsg = msg
	tracker.lastTime = now
	tracker.suppressed = 0
}

// clearError resets dedup state after a category recovers so the next
// failure is logged even if it repeats the old message.
func (s *Sampler) clearError(key string) {
	if t, ok := s.errTrackers[key]; ok && t.lastMsg != "" {
		if t.suppressed > 0 {
			s.log.Warn("%s previous error repeated %d times", key, t.suppressed)
		}
		s.log.Info("%s readings recovered", key)
		delete(s.errTrackers, key)
	}
}

func dropIdle(procs []metrics.ProcessRecord) []metrics.ProcessRecord {
	out := make([]metrics.ProcessRecord, 0, len(procs))
	for _, p := range procs {
		if p.Name == idleProcessName || (p.PID == 0 && idleAtPIDZero) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func clampAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = clampPercent(v)
	}
	return out
}

func clampPercent(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
