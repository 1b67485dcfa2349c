package cluster

import (
	"fmt"
	"strconv"
	"time"
)

// TypeOpenLava is the cluster_type reported by the openlava interface,
// the only variant that splits suspended counters by cause.
const TypeOpenLava = "openlava"

// JobKey identifies a single job element. ArrayIndex is zero for plain
// jobs; elements of an array job share a JobID and differ by index.
type JobKey struct {
	JobID      int64
	ArrayIndex int64
}

func (k JobKey) String() string {
	if k.ArrayIndex == 0 {
		return strconv.FormatInt(k.JobID, 10)
	}
	return fmt.Sprintf("%d[%d]", k.JobID, k.ArrayIndex)
}

// JobSummary is one entry of a job listing. Submit, start and end times
// are only known once the full job record has been fetched; a listing
// leaves them zero.
type JobSummary struct {
	JobID          int64     `json:"job_id"`
	ArrayIndex     int64     `json:"array_index"`
	Name           string    `json:"name"`
	UserName       string    `json:"user_name"`
	Queue          string    `json:"queue"`
	RequestedSlots int64     `json:"requested_slots"`
	Status         JobStatus `json:"status"`
	SubmitTime     int64     `json:"submit_time"`
	StartTime      int64     `json:"start_time"`
	EndTime        int64     `json:"end_time"`
}

func (j JobSummary) Key() JobKey {
	return JobKey{JobID: j.JobID, ArrayIndex: j.ArrayIndex}
}

func (j JobSummary) DisplayID() string {
	return j.Key().String()
}

// JobTimes carries the three timestamps a job listing omits.
type JobTimes struct {
	SubmitTime int64 `json:"submit_time"`
	StartTime  int64 `json:"start_time"`
	EndTime    int64 `json:"end_time"`
}

// JobDetail is the full job record.
type JobDetail struct {
	JobID               int64     `json:"job_id"`
	ArrayIndex          int64     `json:"array_index"`
	ClusterType         string    `json:"cluster_type"`
	Name                string    `json:"name"`
	UserName            string    `json:"user_name"`
	Queue               string    `json:"queue"`
	Status              JobStatus `json:"status"`
	Command             string    `json:"command"`
	SubmitTime          int64     `json:"submit_time"`
	StartTime           int64     `json:"start_time"`
	EndTime             int64     `json:"end_time"`
	PredictedStartTime  int64     `json:"predicted_start_time"`
	SubmissionHost      string    `json:"submission_host"`
	ExecutionHosts      []string  `json:"execution_hosts"`
	RequestedSlots      int64     `json:"requested_slots"`
	MaxRequestedSlots   int64     `json:"max_requested_slots"`
	Priority            int64     `json:"priority"`
	UserPriority        int64     `json:"user_priority"`
	CPUTime             float64   `json:"cpu_time"`
	PendingReasons      string    `json:"pending_reasons"`
	SuspensionReasons   string    `json:"suspension_reasons"`
	RequestedResources  string    `json:"requested_resources"`
	DependencyCondition string    `json:"dependency_condition"`
	InputFileName       string    `json:"input_file_name"`
	OutputFileName      string    `json:"output_file_name"`
	ErrorFileName       string    `json:"error_file_name"`
	ExecutionCWD        string    `json:"execution_cwd"`
	ProjectNames        []string  `json:"project_names"`
	WasKilled           bool      `json:"was_killed"`
}

func (j *JobDetail) Key() JobKey {
	return JobKey{JobID: j.JobID, ArrayIndex: j.ArrayIndex}
}

func (j *JobDetail) DisplayID() string {
	return j.Key().String()
}

func (j *JobDetail) Times() JobTimes {
	return JobTimes{SubmitTime: j.SubmitTime, StartTime: j.StartTime, EndTime: j.EndTime}
}

// UserSnapshot is one user's aggregate counters plus their current job
// listing, taken in a single scheduler query. The user- and
// system-suspended splits exist only on cluster types that report them;
// absent values stay nil so they are never rendered for other clusters.
type UserSnapshot struct {
	ClusterType         string  `json:"cluster_type"`
	Name                string  `json:"name"`
	MaxJobsPerProcessor float64 `json:"max_jobs_per_processor"`
	MaxSlots            int64   `json:"max_slots"`
	TotalSlots          int64   `json:"total_slots"`
	NumRunningSlots     int64   `json:"num_running_slots"`
	NumPendingSlots     int64   `json:"num_pending_slots"`
	NumSuspendedSlots   int64   `json:"num_suspended_slots"`
	NumReservedSlots    int64   `json:"num_reserved_slots"`
	MaxJobs             int64   `json:"max_jobs"`
	TotalJobs           int64   `json:"total_jobs"`
	NumRunningJobs      int64   `json:"num_running_jobs"`
	NumPendingJobs      int64   `json:"num_pending_jobs"`
	NumSuspendedJobs    int64   `json:"num_suspended_jobs"`

	NumUserSuspendedJobs    *int64 `json:"num_user_suspended_jobs,omitempty"`
	NumSystemSuspendedJobs  *int64 `json:"num_system_suspended_jobs,omitempty"`
	NumUserSuspendedSlots   *int64 `json:"num_user_suspended_slots,omitempty"`
	NumSystemSuspendedSlots *int64 `json:"num_system_suspended_slots,omitempty"`

	Jobs []JobSummary `json:"jobs"`
}

// Queue is one scheduler queue with its limits and occupancy.
type Queue struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Priority            int64    `json:"priority"`
	Statuses            []string `json:"statuses"`
	MaxJobs             int64    `json:"max_jobs"`
	MaxSlots            int64    `json:"max_slots"`
	MaxJobsPerUser      int64    `json:"max_jobs_per_user"`
	MaxSlotsPerUser     int64    `json:"max_slots_per_user"`
	MaxJobsPerProcessor float64  `json:"max_jobs_per_processor"`
	TotalJobs           int64    `json:"total_jobs"`
	TotalSlots          int64    `json:"total_slots"`
	NumRunningJobs      int64    `json:"num_running_jobs"`
	NumPendingJobs      int64    `json:"num_pending_jobs"`
	NumSuspendedJobs    int64    `json:"num_suspended_jobs"`
	NumReservedSlots    int64    `json:"num_reserved_slots"`
	IsAcceptingJobs     bool     `json:"is_accepting_jobs"`
	IsDispatchingJobs   bool     `json:"is_dispatching_jobs"`
}

// Host is one execution or client host known to the cluster.
type Host struct {
	Name             string   `json:"name"`
	HostName         string   `json:"host_name"`
	Statuses         []string `json:"statuses"`
	IsServer         bool     `json:"is_server"`
	IsDown           bool     `json:"is_down"`
	IsBusy           bool     `json:"is_busy"`
	IsClosed         bool     `json:"is_closed"`
	MaxJobs          int64    `json:"max_jobs"`
	MaxSlots         int64    `json:"max_slots"`
	MaxProcessors    int64    `json:"max_processors"`
	TotalJobs        int64    `json:"total_jobs"`
	TotalSlots       int64    `json:"total_slots"`
	NumRunningJobs   int64    `json:"num_running_jobs"`
	NumSuspendedJobs int64    `json:"num_suspended_jobs"`
	NumReservedSlots int64    `json:"num_reserved_slots"`
}

// ClusterInfo is the cluster-wide overview record.
type ClusterInfo struct {
	Name        string `json:"name"`
	ClusterType string `json:"cluster_type"`
	MasterName  string `json:"master_name"`
	TotalHosts  int64  `json:"total_hosts"`
	TotalQueues int64  `json:"total_queues"`
	TotalUsers  int64  `json:"total_users"`
	TotalJobs   int64  `json:"total_jobs"`
}

// OverviewPoint is one label/value pair of a system overview chart feed.
type OverviewPoint struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// SubmitRequest carries the user-settable fields of a job submission.
type SubmitRequest struct {
	Command        string `json:"command"`
	Queue          string `json:"queue,omitempty"`
	Name           string `json:"name,omitempty"`
	RequestedSlots int64  `json:"requested_slots,omitempty"`
	OutputFileName string `json:"output_file_name,omitempty"`
	ErrorFileName  string `json:"error_file_name,omitempty"`
	Project        string `json:"project,omitempty"`
}

// FormatTime renders an epoch-seconds timestamp for display; zero means
// the event has not happened yet.
func FormatTime(epoch int64) string {
	if epoch <= 0 {
		return "-"
	}
	return time.Unix(epoch, 0).Format("2006-01-02 15:04:05")
}

// Job listing state filters.
const (
	StateActive    = "ACT"
	StateAll       = "ALL"
	StateExited    = "EXIT"
	StatePending   = "PEND"
	StateRunning   = "RUN"
	StateSuspended = "SUSP"
)

func ValidJobState(state string) bool {
	switch state {
	case StateActive, StateAll, StateExited, StatePending, StateRunning, StateSuspended:
		return true
	}
	return false
}
