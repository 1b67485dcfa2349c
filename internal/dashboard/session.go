package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/logger"
)

// Options wires up a Session. Fetcher, Detail and Surface are
// required; zero durations and counts fall back to the defaults.
type Options struct {
	User        string
	Fetcher     StatusFetcher
	Detail      DetailFetcher
	Surface     Surface
	Recorder    Recorder
	Interval    time.Duration
	BannerTTL   time.Duration
	TableRows   int
	DetailRate  float64
	DetailBurst int
}

// Session drives the refresh loop for one viewed user. The first fetch
// fires a full interval after Start, trusting whatever the view was
// first painted with, and the loop reschedules unconditionally on both
// success and failure until Stop.
type Session struct {
	user      string
	fetcher   StatusFetcher
	surface   Surface
	recorder  Recorder
	interval  time.Duration
	bannerTTL time.Duration

	table   *Table
	details *Dispatcher

	seq       atomic.Uint64
	refreshes atomic.Uint64
	failures  atomic.Uint64
	startedAt time.Time

	mu          sync.Mutex
	started     bool
	stopped     bool
	stopCh      chan struct{}
	bannerTimer *time.Timer
	prev        map[cluster.JobKey]int
}

func NewSession(opts Options) *Session {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.BannerTTL <= 0 {
		opts.BannerTTL = DefaultBannerTTL
	}

	details := NewDispatcher(opts.Detail, opts.DetailRate, opts.DetailBurst)

	return &Session{
		user:      opts.User,
		fetcher:   opts.Fetcher,
		surface:   opts.Surface,
		recorder:  opts.Recorder,
		interval:  opts.Interval,
		bannerTTL: opts.BannerTTL,
		table:     NewTable(opts.Surface, details, opts.TableRows),
		details:   details,
		stopCh:    make(chan struct{}),
		prev:      make(map[cluster.JobKey]int),
	}
}

func (s *Session) User() string {
	return s.user
}

// Table exposes the reconciler, for renderers that need to seed the
// first paint through it.
func (s *Session) Table() *Table {
	return s.table
}

// Start launches the refresh loop. Calling it again is a no-op.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.stopped {
		return
	}
	s.started = true
	s.startedAt = time.Now()

	go s.loop(ctx)

	logger.Log.Info("dashboard session started",
		zap.String("user", s.user),
		zap.Duration("interval", s.interval))
}

func (s *Session) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Stop halts the loop and aborts outstanding detail fetches.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
	}
	s.mu.Unlock()

	s.details.Close()

	logger.Log.Info("dashboard session stopped",
		zap.String("user", s.user))
}

// Refresh runs one fetch-and-apply cycle. Each call takes a fresh
// sequence number; a response that is no longer the newest outstanding
// one is dropped so an overlapping slow fetch cannot overwrite newer
// data. Fetch failures surface as a banner and never break the loop.
func (s *Session) Refresh(ctx context.Context) {
	seq := s.seq.Add(1)

	snap, err := s.fetcher.UserStatus(ctx, s.user)

	if s.seq.Load() != seq {
		return
	}

	if err != nil {
		s.failures.Add(1)
		s.fail(err)
		return
	}

	s.refreshes.Add(1)
	s.apply(snap)
}

func (s *Session) fail(err error) {
	message := err.Error()
	if ce, ok := errors.AsType[*cluster.Error](err); ok {
		message = ce.Message
	}

	logger.Log.Warn("user status fetch failed",
		zap.String("user", s.user),
		zap.Error(err))

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}

	s.surface.ShowBanner(message)
	s.surface.ClearStatus()

	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
	}
	s.bannerTimer = time.AfterFunc(s.bannerTTL, func() {
		s.surface.HideBanner()
	})
	s.mu.Unlock()

	if s.recorder != nil {
		s.recorder.RecordFailure(s.user, cluster.FailureKind(err), message)
	}
}

type transition struct {
	key  cluster.JobKey
	from cluster.JobStatus
	to   cluster.JobStatus
}

func (s *Session) apply(snap *cluster.UserSnapshot) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}

	s.surface.SetCounter(SlotTotalJobs, snap.TotalJobs)
	s.surface.SetCounter(SlotTotalSlots, snap.TotalSlots)
	s.surface.SetCounter(SlotPendingJobs, snap.NumPendingJobs)
	s.surface.SetCounter(SlotPendingSlots, snap.NumPendingSlots)
	s.surface.SetCounter(SlotRunningJobs, snap.NumRunningJobs)
	s.surface.SetCounter(SlotRunningSlots, snap.NumRunningSlots)
	s.surface.SetCounter(SlotSuspendedJobs, snap.NumSuspendedJobs)
	s.surface.SetCounter(SlotSuspendedSlots, snap.NumSuspendedSlots)

	if snap.ClusterType == cluster.TypeOpenLava {
		s.surface.SetCounter(SlotUserSuspendedJobs, deref(snap.NumUserSuspendedJobs))
		s.surface.SetCounter(SlotUserSuspendedSlots, deref(snap.NumUserSuspendedSlots))
		s.surface.SetCounter(SlotSystemSuspendedJobs, deref(snap.NumSystemSuspendedJobs))
		s.surface.SetCounter(SlotSystemSuspendedSlots, deref(snap.NumSystemSuspendedSlots))
	}

	transitions := s.observe(snap.Jobs)
	s.mu.Unlock()

	s.table.Reconcile(snap.Jobs)

	if s.recorder != nil {
		for _, tr := range transitions {
			s.recorder.RecordTransition(s.user, tr.key, tr.from, tr.to)
		}
	}
}

// observe tracks per-key status codes across cycles and returns the
// transitions this snapshot revealed. Caller holds s.mu.
func (s *Session) observe(jobs []cluster.JobSummary) []transition {
	var out []transition

	seen := make(map[cluster.JobKey]int, len(jobs))
	for _, job := range jobs {
		key := job.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = job.Status.Status

		if prev, ok := s.prev[key]; ok && prev != job.Status.Status {
			out = append(out, transition{
				key:  key,
				from: cluster.StatusFromCode(prev),
				to:   job.Status,
			})
		}
	}
	s.prev = seen

	return out
}

// Stats is a point-in-time description of a running session.
type Stats struct {
	User      string    `json:"user"`
	StartedAt time.Time `json:"started_at"`
	Refreshes uint64    `json:"refreshes"`
	Failures  uint64    `json:"failures"`
	TableRows int       `json:"table_rows"`
}

func (s *Session) Stats() Stats {
	return Stats{
		User:      s.user,
		StartedAt: s.startedAt,
		Refreshes: s.refreshes.Load(),
		Failures:  s.failures.Load(),
		TableRows: s.table.Size(),
	}
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
