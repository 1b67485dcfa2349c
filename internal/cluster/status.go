package cluster

// Job state bits as reported by the scheduler interface.
const (
	StatNull            = 0x00
	StatPending         = 0x01
	StatHeld            = 0x02
	StatRunning         = 0x04
	StatSystemSuspended = 0x08
	StatUserSuspended   = 0x10
	StatExited          = 0x20
	StatDone            = 0x40
	StatProcessDone     = 0x80
	StatProcessError    = 0x100
	StatWaiting         = 0x200
	StatUnknown         = 0x10000
)

// JobStatus is the status object attached to every job the scheduler
// interface returns: the raw state value plus its symbolic name and the
// short and long human-readable forms.
type JobStatus struct {
	Status      int    `json:"status"`
	Name        string `json:"name"`
	Friendly    string `json:"friendly"`
	Description string `json:"description"`
}

var statusTable = map[int]JobStatus{
	StatNull: {
		Status:      StatNull,
		Name:        "JOB_STAT_NULL",
		Friendly:    "Null",
		Description: "State null.",
	},
	StatPending: {
		Status:      StatPending,
		Name:        "JOB_STAT_PEND",
		Friendly:    "Pending",
		Description: "The job is pending, i.e., it has not been dispatched yet.",
	},
	StatHeld: {
		Status:      StatHeld,
		Name:        "JOB_STAT_PSUSP",
		Friendly:    "Held",
		Description: "The pending job was suspended by its owner or the system administrator.",
	},
	StatRunning: {
		Status:      StatRunning,
		Name:        "JOB_STAT_RUN",
		Friendly:    "Running",
		Description: "The job is running.",
	},
	StatSystemSuspended: {
		Status:      StatSystemSuspended,
		Name:        "JOB_STAT_SSUSP",
		Friendly:    "Suspended by system",
		Description: "The running job was suspended by the system because an execution host was overloaded or the queue run window closed.",
	},
	StatUserSuspended: {
		Status:      StatUserSuspended,
		Name:        "JOB_STAT_USUSP",
		Friendly:    "Suspended by user",
		Description: "The running job was suspended by its owner or the system administrator.",
	},
	StatExited: {
		Status:      StatExited,
		Name:        "JOB_STAT_EXIT",
		Friendly:    "Exited",
		Description: "The job has terminated with a non-zero status - it may have been aborted due to an error in its execution, or killed by its owner or by the system administrator.",
	},
	StatDone: {
		Status:      StatDone,
		Name:        "JOB_STAT_DONE",
		Friendly:    "Completed",
		Description: "The job has terminated with status 0.",
	},
	StatProcessDone: {
		Status:      StatProcessDone,
		Name:        "JOB_STAT_PDONE",
		Friendly:    "Process Completed",
		Description: "Post job process done successfully.",
	},
	StatProcessError: {
		Status:      StatProcessError,
		Name:        "JOB_STAT_PERR",
		Friendly:    "Process Error",
		Description: "Post job process has error.",
	},
	StatWaiting: {
		Status:      StatWaiting,
		Name:        "JOB_STAT_WAIT",
		Friendly:    "Waiting for execution",
		Description: "Chunk job waiting its turn to exec.",
	},
	StatUnknown: {
		Status:      StatUnknown,
		Name:        "JOB_STAT_UNKWN",
		Friendly:    "Unknown",
		Description: "The subordinate batch daemon (sbatchd) on the host on which the job is processed has lost contact with the main batch daemon (mbatchd).",
	},
}

// StatusFromCode resolves a raw state value to its status object. Values
// outside the table map to Unknown but keep the raw value.
func StatusFromCode(code int) JobStatus {
	if s, ok := statusTable[code]; ok {
		return s
	}

	s := statusTable[StatUnknown]
	s.Status = code
	return s
}

func (s JobStatus) IsPending() bool {
	return s.Status&(StatPending|StatWaiting) != 0
}

func (s JobStatus) IsRunning() bool {
	return s.Status&StatRunning != 0
}

func (s JobStatus) IsSuspended() bool {
	return s.Status&(StatHeld|StatSystemSuspended|StatUserSuspended) != 0
}

func (s JobStatus) IsCompleted() bool {
	return s.Status&StatDone != 0
}

func (s JobStatus) IsFailed() bool {
	return s.Status&(StatExited|StatProcessError) != 0
}

func (s JobStatus) IsFinished() bool {
	return s.IsCompleted() || s.IsFailed()
}
