package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bopopescu/openlava-web/internal/cluster"
)

// newBlockedTable builds a table whose detail fetches never complete, so
// row markup stays exactly as first rendered for the whole test.
func newBlockedTable(t *testing.T, surface *fakeSurface, limit int) (*Table, *fakeDetail) {
	t.Helper()
	fetcher := newFakeDetail()
	fetcher.block = make(chan struct{})
	dispatcher := NewDispatcher(fetcher, 0, 0)
	t.Cleanup(dispatcher.Close)
	return NewTable(surface, dispatcher, limit), fetcher
}

func TestReconcileRendersNewRowsInOrder(t *testing.T) {
	surface := newFakeSurface()
	table, _ := newBlockedTable(t, surface, 0)

	table.Reconcile([]cluster.JobSummary{
		job(9767, 0, cluster.StatRun),
		job(9767, 3, cluster.StatPend),
		job(9768, 0, cluster.StatPend),
	})

	body := surface.bodySnapshot()
	require.Len(t, body, 3)
	assert.Contains(t, body[0], `id="9767"`)
	assert.Contains(t, body[1], `id="9767[3]"`)
	assert.Contains(t, body[2], `id="9768"`)
	assert.Equal(t, 3, table.Size())
}

func TestReconcileIsIdempotent(t *testing.T) {
	surface := newFakeSurface()
	table, _ := newBlockedTable(t, surface, 0)

	jobs := []cluster.JobSummary{
		job(1, 0, cluster.StatRun),
		job(2, 0, cluster.StatPend),
	}
	table.Reconcile(jobs)
	first := surface.bodySnapshot()

	table.Reconcile(jobs)
	second := surface.bodySnapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, 2, table.Size())
	assert.Equal(t, 1, surface.renderCount(cluster.JobKey{JobID: 1}))
	assert.Equal(t, 1, surface.renderCount(cluster.JobKey{JobID: 2}))
}

func TestReconcilePreservesSurvivingRows(t *testing.T) {
	surface := newFakeSurface()
	table, _ := newBlockedTable(t, surface, 0)

	table.Reconcile([]cluster.JobSummary{
		job(1, 0, cluster.StatRun),
		job(2, 0, cluster.StatPend),
	})
	before := surface.bodySnapshot()

	// A changed status on a surviving key must not disturb its markup;
	// only the new arrival is rendered.
	changed := job(1, 0, cluster.StatDone)
	table.Reconcile([]cluster.JobSummary{
		changed,
		job(2, 0, cluster.StatPend),
		job(3, 0, cluster.StatPend),
	})
	after := surface.bodySnapshot()

	require.Len(t, after, 3)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[1], after[1])
	assert.Equal(t, 1, surface.renderCount(cluster.JobKey{JobID: 1}))
	assert.Equal(t, 1, surface.renderCount(cluster.JobKey{JobID: 3}))
}

func TestReconcileDistinguishesArrayElements(t *testing.T) {
	surface := newFakeSurface()
	table, _ := newBlockedTable(t, surface, 0)

	table.Reconcile([]cluster.JobSummary{job(9767, 1, cluster.StatRun)})
	table.Reconcile([]cluster.JobSummary{
		job(9767, 1, cluster.StatRun),
		job(9767, 2, cluster.StatPend),
	})

	assert.Equal(t, 2, table.Size())
	assert.Equal(t, 1, surface.renderCount(cluster.JobKey{JobID: 9767, ArrayIndex: 1}))
	assert.Equal(t, 1, surface.renderCount(cluster.JobKey{JobID: 9767, ArrayIndex: 2}))
}

func TestReconcileDropsVanishedRows(t *testing.T) {
	surface := newFakeSurface()
	table, _ := newBlockedTable(t, surface, 0)

	table.Reconcile([]cluster.JobSummary{
		job(1, 0, cluster.StatRun),
		job(2, 0, cluster.StatRun),
	})
	table.Reconcile([]cluster.JobSummary{job(2, 0, cluster.StatRun)})

	body := surface.bodySnapshot()
	require.Len(t, body, 1)
	assert.Contains(t, body[0], `id="2"`)
	assert.Equal(t, 1, table.Size())

	// A key that vanished and came back is a fresh row.
	table.Reconcile([]cluster.JobSummary{
		job(1, 0, cluster.StatRun),
		job(2, 0, cluster.StatRun),
	})
	assert.Equal(t, 2, surface.renderCount(cluster.JobKey{JobID: 1}))
}

func TestReconcileTruncatesToLimit(t *testing.T) {
	surface := newFakeSurface()
	table, fetcher := newBlockedTable(t, surface, 20)

	jobs := make([]cluster.JobSummary, 0, 25)
	for i := int64(1); i <= 25; i++ {
		jobs = append(jobs, job(i, 0, cluster.StatPend))
	}
	table.Reconcile(jobs)

	body := surface.bodySnapshot()
	require.Len(t, body, 20)
	for i, markup := range body {
		assert.Contains(t, markup, fmt.Sprintf("id=\"%d\"", i+1))
	}
	assert.Equal(t, 20, table.Size())
	assert.Zero(t, surface.renderCount(cluster.JobKey{JobID: 21}))

	// Jobs beyond the cutoff never reach the detail fetcher either.
	assert.Eventually(t, func() bool { return fetcher.callCount() == 20 },
		time.Second, 10*time.Millisecond)
}

func TestReconcileEmptyShowsPlaceholder(t *testing.T) {
	surface := newFakeSurface()
	table, _ := newBlockedTable(t, surface, 0)

	table.Reconcile([]cluster.JobSummary{job(1, 0, cluster.StatRun)})
	table.Reconcile(nil)

	body := surface.bodySnapshot()
	require.Len(t, body, 1)
	assert.Equal(t, surface.NoJobsRow(), body[0])
	assert.Zero(t, table.Size())
}

func TestReconcileIgnoresDuplicateKeys(t *testing.T) {
	surface := newFakeSurface()
	table, _ := newBlockedTable(t, surface, 0)

	table.Reconcile([]cluster.JobSummary{
		job(7, 0, cluster.StatRun),
		job(7, 0, cluster.StatPend),
	})

	assert.Len(t, surface.bodySnapshot(), 1)
	assert.Equal(t, 1, table.Size())
	assert.Equal(t, 1, surface.renderCount(cluster.JobKey{JobID: 7}))
}

func TestDetailFetchFillsTimes(t *testing.T) {
	surface := newFakeSurface()
	fetcher := newFakeDetail()
	key := cluster.JobKey{JobID: 42}
	times := cluster.JobTimes{SubmitTime: 1200, StartTime: 1260}
	fetcher.set(key, times)
	dispatcher := NewDispatcher(fetcher, 0, 0)
	defer dispatcher.Close()
	table := NewTable(surface, dispatcher, 0)

	table.Reconcile([]cluster.JobSummary{job(42, 0, cluster.StatRun)})

	require.Eventually(t, func() bool {
		got, ok := surface.filledTimes(key)
		return ok && got == times
	}, time.Second, 10*time.Millisecond)

	// The cached markup now carries the fetched times, and a later
	// refresh reuses it instead of falling back to the bare form.
	require.Eventually(t, func() bool { return surface.renderCount(key) == 2 },
		time.Second, 10*time.Millisecond)
	table.Reconcile([]cluster.JobSummary{job(42, 0, cluster.StatRun)})
	body := surface.bodySnapshot()
	require.Len(t, body, 1)
	assert.Contains(t, body[0], cluster.FormatTime(1200))
	assert.Equal(t, 2, surface.renderCount(key))
}

func TestDroppedRowCancelsDetailFetch(t *testing.T) {
	surface := newFakeSurface()
	fetcher := newFakeDetail()
	fetcher.block = make(chan struct{})
	dispatcher := NewDispatcher(fetcher, 0, 0)
	defer dispatcher.Close()
	table := NewTable(surface, dispatcher, 0)

	table.Reconcile([]cluster.JobSummary{job(9, 0, cluster.StatRun)})
	require.Eventually(t, func() bool { return fetcher.callCount() == 1 },
		time.Second, 10*time.Millisecond)

	table.Reconcile(nil)

	require.Eventually(t, func() bool { return fetcher.cancelCount() == 1 },
		time.Second, 10*time.Millisecond)
	close(fetcher.block)
	time.Sleep(20 * time.Millisecond)
	_, filled := surface.filledTimes(cluster.JobKey{JobID: 9})
	assert.False(t, filled)
}
