package dashboard

import (
	"sync"

	"github.com/bopopescu/openlava-web/internal/cluster"
)

type renderedRow struct {
	job    cluster.JobSummary
	markup string
}

// Table keeps the displayed job table consistent with each fresh
// listing. Rows already on screen keep their exact markup so renderer
// state attached to them survives; only jobs seen for the first time
// get a new row and a detail fetch.
type Table struct {
	surface Surface
	details *Dispatcher
	limit   int

	mu   sync.Mutex
	rows map[cluster.JobKey]*renderedRow
}

func NewTable(surface Surface, details *Dispatcher, limit int) *Table {
	if limit <= 0 {
		limit = DefaultTableRows
	}

	return &Table{
		surface: surface,
		details: details,
		limit:   limit,
		rows:    make(map[cluster.JobKey]*renderedRow),
	}
}

// Reconcile diffs the listing against the displayed rows and replaces
// the table body. Only the first limit entries are considered; the
// table is a recent-jobs view, not a complete listing. Keys that have
// dropped out lose their row and any in-flight detail fetch.
func (t *Table) Reconcile(jobs []cluster.JobSummary) {
	if len(jobs) > t.limit {
		jobs = jobs[:t.limit]
	}

	t.mu.Lock()

	body := make([]string, 0, len(jobs))
	keep := make(map[cluster.JobKey]bool, len(jobs))
	var created []cluster.JobKey

	for _, job := range jobs {
		key := job.Key()
		if keep[key] {
			continue
		}
		keep[key] = true

		if row, ok := t.rows[key]; ok {
			body = append(body, row.markup)
			continue
		}

		row := &renderedRow{job: job, markup: t.surface.RenderRow(job)}
		t.rows[key] = row
		body = append(body, row.markup)
		created = append(created, key)
	}

	var dropped []cluster.JobKey
	for key := range t.rows {
		if !keep[key] {
			delete(t.rows, key)
			dropped = append(dropped, key)
		}
	}

	if len(body) == 0 {
		body = append(body, t.surface.NoJobsRow())
	}

	t.surface.ReplaceBody(body)
	t.mu.Unlock()

	if t.details == nil {
		return
	}

	for _, key := range dropped {
		t.details.Cancel(key)
	}
	for _, key := range created {
		t.details.Fetch(key, func(times cluster.JobTimes) {
			t.applyTimes(key, times)
		})
	}
}

// applyTimes lands a finished detail fetch: the live cells are patched
// and the cached markup is rebuilt so later reconciles re-insert the
// populated form.
func (t *Table) applyTimes(key cluster.JobKey, times cluster.JobTimes) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[key]
	if !ok {
		return
	}

	row.job.SubmitTime = times.SubmitTime
	row.job.StartTime = times.StartTime
	row.job.EndTime = times.EndTime
	row.markup = t.surface.RenderRow(row.job)

	t.surface.FillTimes(key, times)
}

// Size reports how many job rows are currently displayed.
func (t *Table) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}
