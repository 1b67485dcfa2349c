package liveview

import (
	"bytes"
	"html/template"

	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/logger"
)

// Shared by the live surface and the server-side first paint so both
// produce byte-identical rows.
var rowTmpl = template.Must(template.New("row").Parse(
	`<tr id="job-{{.Key}}">` +
		`<td><a href="/jobs/{{.JobID}}/{{.ArrayIndex}}">{{.Display}}</a></td>` +
		`<td><a href="/users/{{.User}}">{{.User}}</a></td>` +
		`<td class="job-status">{{.Status}}</td>` +
		`<td><a href="/queues/{{.Queue}}">{{.Queue}}</a></td>` +
		`<td class="submit-time">{{.Submit}}</td>` +
		`<td class="start-time">{{.Start}}</td>` +
		`<td class="end-time">{{.End}}</td>` +
		`</tr>`))

type rowData struct {
	Key        string
	JobID      int64
	ArrayIndex int64
	Display    string
	User       string
	Status     string
	Queue      string
	Submit     string
	Start      string
	End        string
}

func RenderRow(job cluster.JobSummary) string {
	var buf bytes.Buffer
	err := rowTmpl.Execute(&buf, rowData{
		Key:        job.Key().String(),
		JobID:      job.JobID,
		ArrayIndex: job.ArrayIndex,
		Display:    job.DisplayID(),
		User:       job.UserName,
		Status:     job.Status.Friendly,
		Queue:      job.Queue,
		Submit:     cluster.FormatTime(job.SubmitTime),
		Start:      cluster.FormatTime(job.StartTime),
		End:        cluster.FormatTime(job.EndTime),
	})
	if err != nil {
		logger.Log.Error("failed to render job row",
			zap.String("job", job.DisplayID()),
			zap.Error(err))
	}

	return buf.String()
}

func NoJobsRow() string {
	return `<tr class="no-jobs"><td colspan="7">No jobs found</td></tr>`
}

// RenderBody renders the full first-paint table body the same way a
// reconcile pass would.
func RenderBody(jobs []cluster.JobSummary, limit int) []string {
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}

	seen := make(map[cluster.JobKey]struct{}, len(jobs))
	rows := make([]string, 0, len(jobs))
	for _, job := range jobs {
		if _, dup := seen[job.Key()]; dup {
			continue
		}
		seen[job.Key()] = struct{}{}
		rows = append(rows, RenderRow(job))
	}

	if len(rows) == 0 {
		rows = append(rows, NoJobsRow())
	}

	return rows
}
