package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bopopescu/openlava-web/internal/cluster"
)

// Client talks to the scheduler master's JSON interface. Every data
// response arrives in the standard envelope; FAIL envelopes are turned
// into typed cluster errors.
type Client struct {
	base string
	http *http.Client
}

func New(base string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type failData struct {
	ExceptionClass string `json:"exception_class"`
	Message        string `json:"message"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &cluster.Error{Class: cluster.ClassInterface, Message: "cannot reach cluster interface", Err: err}
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &cluster.Error{Class: cluster.ClassInterface, Message: "malformed cluster interface response", Err: err}
	}

	if env.Status != "OK" {
		var fd failData
		_ = json.Unmarshal(env.Data, &fd)

		message := env.Message
		if message == "" {
			message = fd.Message
		}
		if message == "" {
			message = "cluster interface request failed"
		}

		return cluster.NewError(cluster.ClassFromName(fd.ExceptionClass), message)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return &cluster.Error{Class: cluster.ClassInterface, Message: "malformed cluster interface response", Err: err}
	}

	return nil
}

func jobPath(key cluster.JobKey) string {
	return fmt.Sprintf("/jobs/%d/%d", key.JobID, key.ArrayIndex)
}

// UserStatus fetches one user's counters together with their current
// job listing.
func (c *Client) UserStatus(ctx context.Context, name string) (*cluster.UserSnapshot, error) {
	var snap cluster.UserSnapshot
	if err := c.get(ctx, "/users/"+url.PathEscape(name), nil, &snap); err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", name, err)
	}

	return &snap, nil
}

func (c *Client) UserList(ctx context.Context) ([]cluster.UserSnapshot, error) {
	var users []cluster.UserSnapshot
	if err := c.get(ctx, "/users/", nil, &users); err != nil {
		return nil, fmt.Errorf("failed to fetch user list: %w", err)
	}

	return users, nil
}

func (c *Client) JobDetail(ctx context.Context, key cluster.JobKey) (*cluster.JobDetail, error) {
	var detail cluster.JobDetail
	if err := c.get(ctx, jobPath(key), nil, &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch job %s: %w", key, err)
	}

	return &detail, nil
}

// JobTimes fetches only the three timestamps of a job record.
func (c *Client) JobTimes(ctx context.Context, key cluster.JobKey) (cluster.JobTimes, error) {
	detail, err := c.JobDetail(ctx, key)
	if err != nil {
		return cluster.JobTimes{}, err
	}

	return detail.Times(), nil
}

// JobFilter narrows a job listing. Zero values mean no filtering on
// that dimension; ID selects all elements of one array job.
type JobFilter struct {
	ID    int64
	User  string
	Queue string
	Host  string
	State string
	Name  string
}

func (f JobFilter) query() url.Values {
	q := url.Values{}
	if f.ID != 0 {
		q.Set("job_id", strconv.FormatInt(f.ID, 10))
	}
	if f.User != "" {
		q.Set("user_name", f.User)
	}
	if f.Queue != "" {
		q.Set("queue_name", f.Queue)
	}
	if f.Host != "" {
		q.Set("host_name", f.Host)
	}
	if f.State != "" {
		q.Set("job_state", f.State)
	}
	if f.Name != "" {
		q.Set("job_name", f.Name)
	}
	return q
}

func (c *Client) JobList(ctx context.Context, f JobFilter) ([]cluster.JobSummary, error) {
	if f.State != "" && !cluster.ValidJobState(f.State) {
		return nil, cluster.NewError(cluster.ClassJobSubmit, fmt.Sprintf("invalid job state: %s", f.State))
	}

	var jobs []cluster.JobSummary
	if err := c.get(ctx, "/jobs/", f.query(), &jobs); err != nil {
		return nil, fmt.Errorf("failed to fetch job list: %w", err)
	}

	return jobs, nil
}

// JobFile streams a job's output or error file; which must be "output"
// or "error". The caller owns the returned reader.
func (c *Client) JobFile(ctx context.Context, key cluster.JobKey, which string) (io.ReadCloser, error) {
	if which != "output" && which != "error" {
		return nil, fmt.Errorf("unsupported job file: %s", which)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+jobPath(key)+"/"+which, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &cluster.Error{Class: cluster.ClassInterface, Message: "cannot reach cluster interface", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, cluster.NewError(cluster.ClassNoSuchJob, fmt.Sprintf("no %s file for job %s", which, key))
	}

	return resp.Body, nil
}

func (c *Client) KillJob(ctx context.Context, key cluster.JobKey) error {
	if err := c.post(ctx, jobPath(key)+"/kill", nil, nil); err != nil {
		return fmt.Errorf("failed to kill job %s: %w", key, err)
	}
	return nil
}

func (c *Client) SuspendJob(ctx context.Context, key cluster.JobKey) error {
	if err := c.post(ctx, jobPath(key)+"/suspend", nil, nil); err != nil {
		return fmt.Errorf("failed to suspend job %s: %w", key, err)
	}
	return nil
}

func (c *Client) ResumeJob(ctx context.Context, key cluster.JobKey) error {
	if err := c.post(ctx, jobPath(key)+"/resume", nil, nil); err != nil {
		return fmt.Errorf("failed to resume job %s: %w", key, err)
	}
	return nil
}

func (c *Client) RequeueJob(ctx context.Context, key cluster.JobKey, hold bool) error {
	body := map[string]bool{"hold": hold}
	if err := c.post(ctx, jobPath(key)+"/requeue", body, nil); err != nil {
		return fmt.Errorf("failed to requeue job %s: %w", key, err)
	}
	return nil
}

// SubmitJob submits a new job and returns the created job elements.
func (c *Client) SubmitJob(ctx context.Context, req cluster.SubmitRequest) ([]cluster.JobSummary, error) {
	var jobs []cluster.JobSummary
	if err := c.post(ctx, "/jobs/submit", req, &jobs); err != nil {
		return nil, fmt.Errorf("failed to submit job: %w", err)
	}

	return jobs, nil
}

func (c *Client) QueueList(ctx context.Context) ([]cluster.Queue, error) {
	var queues []cluster.Queue
	if err := c.get(ctx, "/queues/", nil, &queues); err != nil {
		return nil, fmt.Errorf("failed to fetch queue list: %w", err)
	}

	return queues, nil
}

func (c *Client) QueueInfo(ctx context.Context, name string) (*cluster.Queue, error) {
	var queue cluster.Queue
	if err := c.get(ctx, "/queues/"+url.PathEscape(name), nil, &queue); err != nil {
		return nil, fmt.Errorf("failed to fetch queue %s: %w", name, err)
	}

	return &queue, nil
}

func (c *Client) queueAction(ctx context.Context, name, action string) error {
	if err := c.post(ctx, "/queues/"+url.PathEscape(name)+"/"+action, nil, nil); err != nil {
		return fmt.Errorf("failed to %s queue %s: %w", action, name, err)
	}
	return nil
}

func (c *Client) OpenQueue(ctx context.Context, name string) error {
	return c.queueAction(ctx, name, "open")
}

func (c *Client) CloseQueue(ctx context.Context, name string) error {
	return c.queueAction(ctx, name, "close")
}

func (c *Client) ActivateQueue(ctx context.Context, name string) error {
	return c.queueAction(ctx, name, "activate")
}

func (c *Client) InactivateQueue(ctx context.Context, name string) error {
	return c.queueAction(ctx, name, "inactivate")
}

func (c *Client) HostList(ctx context.Context) ([]cluster.Host, error) {
	var hosts []cluster.Host
	if err := c.get(ctx, "/hosts/", nil, &hosts); err != nil {
		return nil, fmt.Errorf("failed to fetch host list: %w", err)
	}

	return hosts, nil
}

func (c *Client) HostInfo(ctx context.Context, name string) (*cluster.Host, error) {
	var host cluster.Host
	if err := c.get(ctx, "/hosts/"+url.PathEscape(name), nil, &host); err != nil {
		return nil, fmt.Errorf("failed to fetch host %s: %w", name, err)
	}

	return &host, nil
}

func (c *Client) hostAction(ctx context.Context, name, action string) error {
	if err := c.post(ctx, "/hosts/"+url.PathEscape(name)+"/"+action, nil, nil); err != nil {
		return fmt.Errorf("failed to %s host %s: %w", action, name, err)
	}
	return nil
}

func (c *Client) OpenHost(ctx context.Context, name string) error {
	return c.hostAction(ctx, name, "open")
}

func (c *Client) CloseHost(ctx context.Context, name string) error {
	return c.hostAction(ctx, name, "close")
}

func (c *Client) ClusterInfo(ctx context.Context) (*cluster.ClusterInfo, error) {
	var info cluster.ClusterInfo
	if err := c.get(ctx, "/cluster", nil, &info); err != nil {
		return nil, fmt.Errorf("failed to fetch cluster info: %w", err)
	}

	return &info, nil
}
