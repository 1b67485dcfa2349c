package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/bopopescu/openlava-web/internal/cluster"
)

type fakeSurface struct {
	mu           sync.Mutex
	counters     map[Slot]int64
	banner       string
	bannerUp     bool
	bannerShows  int
	statusClears int
	renders      map[cluster.JobKey]int
	body         []string
	bodyCalls    int
	filled       map[cluster.JobKey]cluster.JobTimes
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		counters: make(map[Slot]int64),
		renders:  make(map[cluster.JobKey]int),
		filled:   make(map[cluster.JobKey]cluster.JobTimes),
	}
}

func (f *fakeSurface) SetCounter(slot Slot, value int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[slot] = value
}

func (f *fakeSurface) ShowBanner(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banner = message
	f.bannerUp = true
	f.bannerShows++
}

func (f *fakeSurface) HideBanner() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bannerUp = false
}

func (f *fakeSurface) ClearStatus() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusClears++
}

func (f *fakeSurface) RenderRow(job cluster.JobSummary) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders[job.Key()]++
	return fmt.Sprintf("<row id=%q status=%q submit=%q start=%q end=%q>",
		job.DisplayID(), job.Status.Friendly,
		cluster.FormatTime(job.SubmitTime),
		cluster.FormatTime(job.StartTime),
		cluster.FormatTime(job.EndTime))
}

func (f *fakeSurface) NoJobsRow() string {
	return `<row span=all "No jobs found">`
}

func (f *fakeSurface) ReplaceBody(rows []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.body = append([]string(nil), rows...)
	f.bodyCalls++
}

func (f *fakeSurface) FillTimes(key cluster.JobKey, times cluster.JobTimes) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filled[key] = times
}

func (f *fakeSurface) bodySnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.body...)
}

func (f *fakeSurface) renderCount(key cluster.JobKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renders[key]
}

func (f *fakeSurface) counter(slot Slot) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.counters[slot]
	return v, ok
}

func (f *fakeSurface) bannerState() (string, bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banner, f.bannerUp, f.bannerShows
}

func (f *fakeSurface) filledTimes(key cluster.JobKey) (cluster.JobTimes, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	times, ok := f.filled[key]
	return times, ok
}

type fakeDetail struct {
	mu        sync.Mutex
	times     map[cluster.JobKey]cluster.JobTimes
	block     chan struct{}
	calls     int
	cancelled int
}

func newFakeDetail() *fakeDetail {
	return &fakeDetail{times: make(map[cluster.JobKey]cluster.JobTimes)}
}

func (f *fakeDetail) set(key cluster.JobKey, times cluster.JobTimes) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.times[key] = times
}

func (f *fakeDetail) JobTimes(ctx context.Context, key cluster.JobKey) (cluster.JobTimes, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	times := f.times[key]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			f.mu.Lock()
			f.cancelled++
			f.mu.Unlock()
			return cluster.JobTimes{}, ctx.Err()
		}
	}

	return times, nil
}

func (f *fakeDetail) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeDetail) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

func job(id, idx int64, status int) cluster.JobSummary {
	return cluster.JobSummary{
		JobID:      id,
		ArrayIndex: idx,
		UserName:   "irvined",
		Queue:      "normal",
		Status:     cluster.StatusFromCode(status),
	}
}
