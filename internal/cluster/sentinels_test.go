package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelFormat(t *testing.T) {
	s := NewSentinelTable()

	assert.Equal(t, "Unlimited", s.Format("openlava", "max_jobs", 2147483647))
	assert.Equal(t, "Unlimited", s.Format("openlava", "max_jobs_per_processor", 2147483648.0))
	assert.Equal(t, "12", s.Format("openlava", "max_jobs", 12))
	assert.Equal(t, "1.5", s.Format("openlava", "max_jobs_per_processor", 1.5))
}

func TestSentinelOtherClusterType(t *testing.T) {
	s := NewSentinelTable()

	// The magic value only means "no limit" on cluster types that
	// declare it.
	assert.Equal(t, "2147483647", s.Format("generic", "max_jobs", 2147483647))
	assert.False(t, s.Unlimited("generic", "max_jobs", 2147483647))
}

func TestSentinelApply(t *testing.T) {
	s := NewSentinelTable()

	s.Apply(map[string]map[string]float64{
		"gridengine": {"max_jobs": 999999},
		"openlava":   {"max_jobs": 42},
	})

	assert.True(t, s.Unlimited("gridengine", "max_jobs", 999999))
	assert.True(t, s.Unlimited("openlava", "max_jobs", 42))
	assert.False(t, s.Unlimited("openlava", "max_jobs", 2147483647))

	// Defaults come back once the override disappears.
	s.Apply(nil)
	assert.False(t, s.Unlimited("gridengine", "max_jobs", 999999))
	assert.True(t, s.Unlimited("openlava", "max_jobs", 2147483647))
}
