package sampler

import (
	"sync"

	"github.com/rileyhilliard/resmon/internal/metrics"
)

// Consumer receives sampler output. Both methods are called on the sampler
// goroutine and must return quickly; anything slow belongs behind a
// ChannelConsumer.
type Consumer interface {
	OnSnapshot(snap *Snapshot)
	OnDriveListChanged(volumes []metrics.Volume)
}

// ConsumerFuncs adapts plain functions to Consumer. Nil fields are ignored.
type ConsumerFuncs struct {
	Snapshot     func(*Snapshot)
	DriveChanged func([]metrics.Volume)
}

// OnSnapshot implements Consumer.
func (f ConsumerFuncs) OnSnapshot(snap *Snapshot) {
	if f.Snapshot != nil {
		f.Snapshot(snap)
	}
}

// OnDriveListChanged implements Consumer.
func (f ConsumerFuncs) OnDriveListChanged(volumes []metrics.Volume) {
	if f.DriveChanged != nil {
		f.DriveChanged(volumes)
	}
}

// DefaultChannelBuffer is the queue depth of a ChannelConsumer.
const DefaultChannelBuffer = 4

// Event is one item delivered through a ChannelConsumer. An event carries a
// Snapshot, a changed drive list (DriveChanged set, Volumes filled), or both
// when a drive-list change was folded into a later snapshot on overflow.
type Event struct {
	Snapshot     *Snapshot
	Volumes      []metrics.Volume
	DriveChanged bool
}

// ChannelConsumer queues events for a reader on another goroutine, such as
// the bubbletea program. When the queue is full the oldest queued event is
// discarded so the sampler never waits on the UI. A discarded drive list is
// carried forward on the incoming event, since the sampler only reports a
// drive list when it changes.
type ChannelConsumer struct {
	mu      sync.Mutex
	ch      chan Event
	dropped int64
	closed  bool
}

// NewChannelConsumer creates a consumer with a queue of size buffer.
// buffer < 1 uses DefaultChannelBuffer.
func NewChannelConsumer(buffer int) *ChannelConsumer {
	if buffer < 1 {
		buffer = DefaultChannelBuffer
	}
	return &ChannelConsumer{ch: make(chan Event, buffer)}
}

// Events returns the receive side of the queue.
func (c *ChannelConsumer) Events() <-chan Event {
	return c.ch
}

// Dropped returns how many events were discarded to make room.
func (c *ChannelConsumer) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// OnSnapshot implements Consumer.
func (c *ChannelConsumer) OnSnapshot(snap *Snapshot) {
	c.offer(Event{Snapshot: snap})
}

// OnDriveListChanged implements Consumer.
func (c *ChannelConsumer) OnDriveListChanged(volumes []metrics.Volume) {
	c.offer(Event{Volumes: volumes, DriveChanged: true})
}

// Close closes the event channel so the reader sees the sampler is gone.
// Events offered after Close are discarded. Close is idempotent.
func (c *ChannelConsumer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

func (c *ChannelConsumer) offer(ev Event) {
	// The lock keeps concurrent producers from interleaving evict and send.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for {
		select {
		case c.ch <- ev:
			return
		default:
		}
		select {
		case old := <-c.ch:
			c.dropped++
			// A newer drive list in ev supersedes the evicted one.
			if old.DriveChanged && !ev.DriveChanged {
				ev.Volumes = old.Volumes
				ev.DriveChanged = true
			}
		default:
		}
	}
}
