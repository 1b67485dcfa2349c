package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/logger"
)

// Dispatcher runs per-job detail fetches detached from reconciliation.
// At most one fetch is in flight per job key; cancelling a key stops
// its fetch so nothing writes to a row that has left the table. A
// shared limiter keeps a burst of fresh rows from hammering the
// cluster interface.
type Dispatcher struct {
	fetcher DetailFetcher
	limiter *rate.Limiter

	mu       sync.Mutex
	inflight map[cluster.JobKey]context.CancelFunc
	closed   bool
}

func NewDispatcher(fetcher DetailFetcher, perSecond float64, burst int) *Dispatcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	return &Dispatcher{
		fetcher:  fetcher,
		limiter:  rate.NewLimiter(limit, burst),
		inflight: make(map[cluster.JobKey]context.CancelFunc),
	}
}

// Fetch starts a detached fetch for key and hands the result to done.
// A key with a fetch already in flight is left alone; done is not
// called when the fetch fails or is cancelled.
func (d *Dispatcher) Fetch(key cluster.JobKey, done func(cluster.JobTimes)) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if _, exists := d.inflight[key]; exists {
		d.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.inflight[key] = cancel
	d.mu.Unlock()

	go d.run(ctx, key, done)
}

func (d *Dispatcher) run(ctx context.Context, key cluster.JobKey, done func(cluster.JobTimes)) {
	defer d.release(key)

	if err := d.limiter.Wait(ctx); err != nil {
		return
	}

	times, err := d.fetcher.JobTimes(ctx, key)
	if err != nil {
		logger.Log.Debug("job detail fetch failed",
			zap.String("job", key.String()),
			zap.Error(err))
		return
	}

	if ctx.Err() != nil {
		return
	}

	done(times)
}

// Cancel aborts any in-flight fetch for key.
func (d *Dispatcher) Cancel(key cluster.JobKey) {
	d.release(key)
}

func (d *Dispatcher) release(key cluster.JobKey) {
	d.mu.Lock()
	cancel, ok := d.inflight[key]
	if ok {
		delete(d.inflight, key)
	}
	d.mu.Unlock()

	if ok {
		cancel()
	}
}

// Close aborts every in-flight fetch and refuses new ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	cancels := make([]context.CancelFunc, 0, len(d.inflight))
	for _, cancel := range d.inflight {
		cancels = append(cancels, cancel)
	}
	d.inflight = make(map[cluster.JobKey]context.CancelFunc)
	d.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (d *Dispatcher) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}
