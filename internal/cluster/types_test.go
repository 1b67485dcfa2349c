package cluster

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobKeyString(t *testing.T) {
	assert.Equal(t, "9767", JobKey{JobID: 9767}.String())
	assert.Equal(t, "9767[3]", JobKey{JobID: 9767, ArrayIndex: 3}.String())
}

func TestJobSummaryDisplayID(t *testing.T) {
	plain := JobSummary{JobID: 101}
	assert.Equal(t, "101", plain.DisplayID())

	element := JobSummary{JobID: 101, ArrayIndex: 7}
	assert.Equal(t, "101[7]", element.DisplayID())
	assert.Equal(t, JobKey{JobID: 101, ArrayIndex: 7}, element.Key())
}

func TestUserSnapshotSuspendedSplitsOmitted(t *testing.T) {
	snap := UserSnapshot{ClusterType: "generic", Name: "irvined"}

	b, err := json.Marshal(snap)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))

	assert.NotContains(t, fields, "num_user_suspended_jobs")
	assert.NotContains(t, fields, "num_system_suspended_jobs")
	assert.NotContains(t, fields, "num_user_suspended_slots")
	assert.NotContains(t, fields, "num_system_suspended_slots")
}

func TestUserSnapshotSuspendedSplitsKept(t *testing.T) {
	var zero int64
	snap := UserSnapshot{
		ClusterType:            "openlava",
		Name:                   "irvined",
		NumUserSuspendedJobs:   &zero,
		NumSystemSuspendedJobs: &zero,
	}

	b, err := json.Marshal(snap)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))

	assert.Contains(t, fields, "num_user_suspended_jobs")
	assert.Contains(t, fields, "num_system_suspended_jobs")
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", FormatTime(0))
	assert.Equal(t, "-", FormatTime(-1))
	assert.NotEqual(t, "-", FormatTime(1400000000))
}
