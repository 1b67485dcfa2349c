package console

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/cluster/upstream"
	"github.com/bopopescu/openlava-web/internal/console/liveview"
	"github.com/bopopescu/openlava-web/internal/logger"
)

const (
	msgJobKilled    = "Job Killed"
	msgJobSuspended = "Job suspended"
	msgJobResumed   = "Job Resumed"
	msgJobRequeued  = "Job Requeued"
	msgJobSubmitted = "Job Submitted"
)

func jobKeyParam(c echo.Context) (cluster.JobKey, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return cluster.JobKey{}, cluster.NewError(cluster.ClassNoSuchJob,
			fmt.Sprintf("Invalid job id: %s", c.Param("id")))
	}

	idx, err := strconv.ParseInt(c.Param("idx"), 10, 64)
	if err != nil || idx < 0 {
		return cluster.JobKey{}, cluster.NewError(cluster.ClassNoSuchJob,
			fmt.Sprintf("Invalid array index: %s", c.Param("idx")))
	}

	return cluster.JobKey{JobID: id, ArrayIndex: idx}, nil
}

func (s *Server) handleJobList(c echo.Context) error {
	filter := upstream.JobFilter{
		User:  c.QueryParam("user_name"),
		Queue: c.QueryParam("queue_name"),
		Host:  c.QueryParam("host_name"),
		State: c.QueryParam("job_state"),
		Name:  c.QueryParam("job_name"),
	}

	jobs, err := s.cluster.JobList(c.Request().Context(), filter)
	if err != nil {
		return s.fail(c, err)
	}

	if wantsJSON(c) {
		return jsonOK(c, jobs, "")
	}

	number, _ := strconv.Atoi(c.QueryParam("page"))
	pageJobs, info := paginate(jobs, number, s.cfg.PageSize)

	rows := make([]template.HTML, 0, len(pageJobs))
	for _, job := range pageJobs {
		rows = append(rows, template.HTML(liveview.RenderRow(job)))
	}
	if len(rows) == 0 {
		rows = append(rows, template.HTML(liveview.NoJobsRow()))
	}

	return c.Render(http.StatusOK, "jobs", map[string]any{
		"Title":   "Jobs",
		"User":    currentUser(c),
		"Message": c.QueryParam("message"),
		"Rows":    rows,
		"Page":    info,
		"State":   filter.State,
		"Query":   c.QueryParams().Encode(),
	})
}

// handleJobArray shows every element of one submitted job. A plain
// job with a single element goes straight to the element view.
func (s *Server) handleJobArray(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return s.fail(c, cluster.NewError(cluster.ClassNoSuchJob,
			fmt.Sprintf("Invalid job id: %s", c.Param("id"))))
	}

	jobs, err := s.cluster.JobList(c.Request().Context(), upstream.JobFilter{ID: id})
	if err != nil {
		return s.fail(c, err)
	}
	if len(jobs) == 0 {
		return s.fail(c, cluster.NewError(cluster.ClassNoSuchJob,
			fmt.Sprintf("Job %d not found", id)))
	}

	if len(jobs) == 1 && jobs[0].ArrayIndex == 0 {
		if wantsJSON(c) {
			return jsonOK(c, jobs[0], "")
		}
		return c.Redirect(http.StatusFound, fmt.Sprintf("/jobs/%d/0", id))
	}

	if wantsJSON(c) {
		return jsonOK(c, jobs, "")
	}

	rows := make([]template.HTML, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, template.HTML(liveview.RenderRow(job)))
	}

	return c.Render(http.StatusOK, "job_array", map[string]any{
		"Title":   fmt.Sprintf("Job %d", id),
		"User":    currentUser(c),
		"Message": c.QueryParam("message"),
		"JobID":   id,
		"Rows":    rows,
	})
}

func (s *Server) handleJobView(c echo.Context) error {
	key, err := jobKeyParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	job, err := s.cluster.JobDetail(c.Request().Context(), key)
	if err != nil {
		return s.fail(c, err)
	}

	if wantsJSON(c) {
		return jsonOK(c, job, "")
	}

	return c.Render(http.StatusOK, "job_detail", map[string]any{
		"Title":   "Job " + job.DisplayID(),
		"User":    currentUser(c),
		"Message": c.QueryParam("message"),
		"Job":     job,
	})
}

// Job output and error files render as plain text the way the
// scheduler wrote them; a missing file reads "Not Available".
func (s *Server) jobFile(c echo.Context, which string) error {
	key, err := jobKeyParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	rc, err := s.cluster.JobFile(c.Request().Context(), key, which)
	if err != nil {
		return c.String(http.StatusOK, "Not Available")
	}
	defer func() {
		_ = rc.Close()
	}()

	return c.Stream(http.StatusOK, "text/plain; charset=utf-8", rc)
}

func (s *Server) handleJobOutput(c echo.Context) error {
	return s.jobFile(c, "output")
}

func (s *Server) handleJobErrorFile(c echo.Context) error {
	return s.jobFile(c, "error")
}

func (s *Server) jobAction(c echo.Context, message string, action func(cluster.JobKey) error) error {
	key, err := jobKeyParam(c)
	if err != nil {
		return s.fail(c, err)
	}

	if err := action(key); err != nil {
		return s.fail(c, err)
	}

	logger.Log.Info("job action",
		zap.String("job", key.String()),
		zap.String("action", message),
		zap.String("by", currentUser(c)))

	return s.actionDone(c, message, fmt.Sprintf("/jobs/%d/%d", key.JobID, key.ArrayIndex))
}

func (s *Server) handleJobKill(c echo.Context) error {
	return s.jobAction(c, msgJobKilled, func(key cluster.JobKey) error {
		return s.cluster.KillJob(c.Request().Context(), key)
	})
}

func (s *Server) handleJobSuspend(c echo.Context) error {
	return s.jobAction(c, msgJobSuspended, func(key cluster.JobKey) error {
		return s.cluster.SuspendJob(c.Request().Context(), key)
	})
}

func (s *Server) handleJobResume(c echo.Context) error {
	return s.jobAction(c, msgJobResumed, func(key cluster.JobKey) error {
		return s.cluster.ResumeJob(c.Request().Context(), key)
	})
}

type requeueRequest struct {
	Hold bool `json:"hold" form:"hold" query:"hold"`
}

func (s *Server) handleJobRequeue(c echo.Context) error {
	req := new(requeueRequest)
	if err := c.Bind(req); err != nil {
		req.Hold = false
	}

	return s.jobAction(c, msgJobRequeued, func(key cluster.JobKey) error {
		return s.cluster.RequeueJob(c.Request().Context(), key, req.Hold)
	})
}

func (s *Server) handleJobSubmitForm(c echo.Context) error {
	queues, err := s.cluster.QueueList(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}

	return c.Render(http.StatusOK, "submit", map[string]any{
		"Title":  "Submit Job",
		"User":   currentUser(c),
		"Queues": queues,
	})
}

type submitForm struct {
	Command        string `json:"command" form:"command"`
	Queue          string `json:"queue" form:"queue"`
	Name           string `json:"name" form:"name"`
	RequestedSlots int64  `json:"requested_slots" form:"requested_slots"`
	OutputFileName string `json:"output_file_name" form:"output_file_name"`
	ErrorFileName  string `json:"error_file_name" form:"error_file_name"`
	Project        string `json:"project" form:"project"`
}

func (s *Server) handleJobSubmit(c echo.Context) error {
	form := new(submitForm)
	if err := c.Bind(form); err != nil || form.Command == "" {
		return s.fail(c, cluster.NewError(cluster.ClassJobSubmit, "Command is required"))
	}

	jobs, err := s.cluster.SubmitJob(c.Request().Context(), cluster.SubmitRequest{
		Command:        form.Command,
		Queue:          form.Queue,
		Name:           form.Name,
		RequestedSlots: form.RequestedSlots,
		OutputFileName: form.OutputFileName,
		ErrorFileName:  form.ErrorFileName,
		Project:        form.Project,
	})
	if err != nil {
		return s.fail(c, err)
	}

	logger.Log.Info("job submitted",
		zap.String("by", currentUser(c)),
		zap.Int("elements", len(jobs)))

	if wantsJSON(c) {
		return jsonOK(c, jobs, msgJobSubmitted)
	}

	target := "/jobs/"
	if len(jobs) > 0 {
		target = fmt.Sprintf("/jobs/%d", jobs[0].JobID)
	}
	return c.Redirect(http.StatusSeeOther, target+"?message="+url.QueryEscape(msgJobSubmitted))
}
