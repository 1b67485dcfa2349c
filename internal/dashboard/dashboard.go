// Package dashboard keeps a single user's console view fresh: a fixed
// set of aggregate counters plus a table of their current jobs,
// refreshed on a fixed interval and patched incrementally so rows that
// are already on screen are never rebuilt. The package knows nothing
// about HTML or terminals; renderers plug in through Surface.
package dashboard

import (
	"context"
	"time"

	"github.com/bopopescu/openlava-web/internal/cluster"
)

const (
	DefaultInterval  = 30 * time.Second
	DefaultBannerTTL = 15 * time.Second
	DefaultTableRows = 20
)

// Slot names one of the fixed counter positions on the dashboard.
type Slot string

const (
	SlotTotalJobs            Slot = "total-jobs"
	SlotTotalSlots           Slot = "total-slots"
	SlotPendingJobs          Slot = "pending-jobs"
	SlotPendingSlots         Slot = "pending-slots"
	SlotRunningJobs          Slot = "running-jobs"
	SlotRunningSlots         Slot = "running-slots"
	SlotSuspendedJobs        Slot = "suspended-jobs"
	SlotSuspendedSlots       Slot = "suspended-slots"
	SlotUserSuspendedJobs    Slot = "user-suspended-jobs"
	SlotUserSuspendedSlots   Slot = "user-suspended-slots"
	SlotSystemSuspendedJobs  Slot = "system-suspended-jobs"
	SlotSystemSuspendedSlots Slot = "system-suspended-slots"
)

// Surface is a rendering target. RenderRow and NoJobsRow build row
// markup in whatever form the renderer consumes; the table decides when
// markup is built and reuses it verbatim for rows that survive a
// reconcile. The remaining methods mutate the live view. A Surface must
// tolerate calls from multiple goroutines.
type Surface interface {
	SetCounter(slot Slot, value int64)
	ShowBanner(message string)
	HideBanner()
	ClearStatus()
	RenderRow(job cluster.JobSummary) string
	NoJobsRow() string
	ReplaceBody(rows []string)
	FillTimes(key cluster.JobKey, times cluster.JobTimes)
}

// StatusFetcher retrieves one user's counters and job listing.
type StatusFetcher interface {
	UserStatus(ctx context.Context, name string) (*cluster.UserSnapshot, error)
}

// DetailFetcher retrieves the timestamps a job listing omits.
type DetailFetcher interface {
	JobTimes(ctx context.Context, key cluster.JobKey) (cluster.JobTimes, error)
}

// Recorder observes poll outcomes. Implementations must not block.
type Recorder interface {
	RecordTransition(user string, key cluster.JobKey, from, to cluster.JobStatus)
	RecordFailure(user, kind, message string)
}
