package dashboard

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bopopescu/openlava-web/internal/cluster"
)

func TestDispatcherCoalescesPerKey(t *testing.T) {
	fetcher := newFakeDetail()
	fetcher.block = make(chan struct{})
	d := NewDispatcher(fetcher, 0, 0)
	defer d.Close()

	var doneCalls atomic.Int64
	key := cluster.JobKey{JobID: 5}
	done := func(cluster.JobTimes) { doneCalls.Add(1) }

	d.Fetch(key, done)
	d.Fetch(key, done)

	require.Eventually(t, func() bool { return fetcher.callCount() == 1 },
		time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, d.pending())

	close(fetcher.block)
	require.Eventually(t, func() bool { return doneCalls.Load() == 1 },
		time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, fetcher.callCount())
	assert.Zero(t, d.pending())

	// The key is free again once its fetch has finished.
	d.Fetch(key, done)
	require.Eventually(t, func() bool { return doneCalls.Load() == 2 },
		time.Second, 10*time.Millisecond)
}

func TestDispatcherCloseAbortsInflight(t *testing.T) {
	fetcher := newFakeDetail()
	fetcher.block = make(chan struct{})
	d := NewDispatcher(fetcher, 0, 0)

	var doneCalls atomic.Int64
	d.Fetch(cluster.JobKey{JobID: 1}, func(cluster.JobTimes) { doneCalls.Add(1) })
	require.Eventually(t, func() bool { return fetcher.callCount() == 1 },
		time.Second, 10*time.Millisecond)

	d.Close()

	require.Eventually(t, func() bool { return fetcher.cancelCount() == 1 },
		time.Second, 10*time.Millisecond)
	assert.Zero(t, doneCalls.Load())

	d.Fetch(cluster.JobKey{JobID: 2}, func(cluster.JobTimes) { doneCalls.Add(1) })
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, fetcher.callCount())
	assert.Zero(t, doneCalls.Load())
}

func TestDispatcherSpacesFetches(t *testing.T) {
	fetcher := newFakeDetail()
	d := NewDispatcher(fetcher, 50, 1)
	defer d.Close()

	var doneCalls atomic.Int64
	start := time.Now()
	for id := int64(1); id <= 3; id++ {
		d.Fetch(cluster.JobKey{JobID: id}, func(cluster.JobTimes) { doneCalls.Add(1) })
	}

	require.Eventually(t, func() bool { return doneCalls.Load() == 3 },
		5*time.Second, 5*time.Millisecond)

	// Burst 1 at 50/s means the second and third fetch each waited for
	// a fresh token.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}
