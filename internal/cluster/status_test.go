package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromCode(t *testing.T) {
	s := StatusFromCode(StatRunning)
	require.Equal(t, "JOB_STAT_RUN", s.Name)
	assert.Equal(t, "Running", s.Friendly)
	assert.Equal(t, StatRunning, s.Status)

	s = StatusFromCode(StatSystemSuspended)
	assert.Equal(t, "Suspended by system", s.Friendly)

	s = StatusFromCode(StatHeld)
	assert.Equal(t, "Held", s.Friendly)
}

func TestStatusFromCodeUnknown(t *testing.T) {
	s := StatusFromCode(0x4242)
	assert.Equal(t, "JOB_STAT_UNKWN", s.Name)
	assert.Equal(t, "Unknown", s.Friendly)
	assert.Equal(t, 0x4242, s.Status)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusFromCode(StatPending).IsPending())
	assert.True(t, StatusFromCode(StatWaiting).IsPending())
	assert.False(t, StatusFromCode(StatRunning).IsPending())

	assert.True(t, StatusFromCode(StatRunning).IsRunning())

	for _, code := range []int{StatHeld, StatUserSuspended, StatSystemSuspended} {
		assert.True(t, StatusFromCode(code).IsSuspended(), "code %#x", code)
	}
	assert.False(t, StatusFromCode(StatRunning).IsSuspended())

	assert.True(t, StatusFromCode(StatDone).IsCompleted())
	assert.True(t, StatusFromCode(StatExited).IsFailed())
	assert.True(t, StatusFromCode(StatDone).IsFinished())
	assert.True(t, StatusFromCode(StatExited).IsFinished())
	assert.False(t, StatusFromCode(StatRunning).IsFinished())
}
