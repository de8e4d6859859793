package sampler

import (
	"testing"

	"github.com/rileyhilliard/resmon/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelConsumer_DeliversInOrder(t *testing.T) {
	c := NewChannelConsumer(4)
	vols := []metrics.Volume{{Mountpoint: "/"}}

	c.OnDriveListChanged(vols)
	c.OnSnapshot(&Snapshot{Seq: 1})

	ev := <-c.Events()
	assert.True(t, ev.DriveChanged)
	assert.Equal(t, vols, ev.Volumes)

	ev = <-c.Events()
	assert.False(t, ev.DriveChanged)
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, uint64(1), ev.Snapshot.Seq)
}

func TestChannelConsumer_DropsOldestWhenFull(t *testing.T) {
	c := NewChannelConsumer(2)

	for i := uint64(1); i <= 5; i++ {
		c.OnSnapshot(&Snapshot{Seq: i})
	}

	assert.Equal(t, int64(3), c.Dropped())
	first := <-c.Events()
	second := <-c.Events()
	assert.Equal(t, uint64(4), first.Snapshot.Seq)
	assert.Equal(t, uint64(5), second.Snapshot.Seq)
}

func TestChannelConsumer_DefaultBuffer(t *testing.T) {
	c := NewChannelConsumer(0)
	assert.Equal(t, DefaultChannelBuffer, cap(c.ch))
}

func TestConsumerFuncs_NilFieldsIgnored(t *testing.T) {
	var got *Snapshot
	f := ConsumerFuncs{Snapshot: func(s *Snapshot) { got = s }}

	snap := &Snapshot{Seq: 9}
	f.OnSnapshot(snap)
	f.OnDriveListChanged(nil)
	assert.Same(t, snap, got)

	ConsumerFuncs{}.OnSnapshot(snap)
}

func TestChannelConsumer_OverflowKeepsDriveList(t *testing.T) {
	c := NewChannelConsumer(2)
	vols := []metrics.Volume{{Mountpoint: "/"}, {Mountpoint: "/mnt/usb"}}

	c.OnDriveListChanged(vols)
	for i := uint64(1); i <= 4; i++ {
		c.OnSnapshot(&Snapshot{Seq: i})
	}

	assert.Equal(t, int64(3), c.Dropped())
	first := <-c.Events()
	second := <-c.Events()
	assert.Equal(t, uint64(3), first.Snapshot.Seq)
	assert.False(t, first.DriveChanged)
	assert.Equal(t, uint64(4), second.Snapshot.Seq)
	assert.True(t, second.DriveChanged, "the evicted drive list rides on the newest event")
	assert.Equal(t, vols, second.Volumes)
}

func TestChannelConsumer_NewerDriveListWins(t *testing.T) {
	c := NewChannelConsumer(1)
	old := []metrics.Volume{{Mountpoint: "/"}}
	latest := []metrics.Volume{{Mountpoint: "/"}, {Mountpoint: "/data"}}

	c.OnDriveListChanged(old)
	c.OnDriveListChanged(latest)

	ev := <-c.Events()
	assert.True(t, ev.DriveChanged)
	assert.Equal(t, latest, ev.Volumes)
	assert.Nil(t, ev.Snapshot)
}

func TestChannelConsumer_Close(t *testing.T) {
	c := NewChannelConsumer(2)
	c.OnSnapshot(&Snapshot{Seq: 1})
	c.Close()
	c.Close()

	// Offers after Close are discarded instead of panicking.
	c.OnSnapshot(&Snapshot{Seq: 2})
	c.OnDriveListChanged(nil)

	ev, ok := <-c.Events()
	require.True(t, ok)
	assert.Equal(t, uint64(1), ev.Snapshot.Seq)
	_, ok = <-c.Events()
	assert.False(t, ok)
}
