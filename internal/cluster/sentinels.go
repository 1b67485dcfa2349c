package cluster

import (
	"math"
	"strconv"
	"sync"
)

// SentinelTable maps cluster type and quota field to the numeric value
// that scheduler variant uses to mean "no limit". The table can be
// replaced at runtime when the config file changes.
type SentinelTable struct {
	mu    sync.RWMutex
	rules map[string]map[string]float64
}

// Sentinels is the process-wide table, seeded with the openlava values.
var Sentinels = NewSentinelTable()

func defaultRules() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"openlava": {
			"max_jobs":                2147483647,
			"max_slots":               2147483647,
			"max_jobs_per_user":       2147483647,
			"max_slots_per_user":      2147483647,
			"max_jobs_per_processor":  2147483648.0,
			"max_slots_per_processor": 2147483648.0,
		},
	}
}

func NewSentinelTable() *SentinelTable {
	return &SentinelTable{rules: defaultRules()}
}

// Apply rebuilds the table as the defaults overlaid with the given
// overrides, so removing an override from the config restores the
// default on the next reload.
func (t *SentinelTable) Apply(overrides map[string]map[string]float64) {
	rules := defaultRules()
	for clusterType, fields := range overrides {
		if rules[clusterType] == nil {
			rules[clusterType] = make(map[string]float64, len(fields))
		}
		for field, value := range fields {
			rules[clusterType][field] = value
		}
	}

	t.mu.Lock()
	t.rules = rules
	t.mu.Unlock()
}

// Unlimited reports whether value is the "no limit" sentinel for the
// given cluster type and field.
func (t *SentinelTable) Unlimited(clusterType, field string, value float64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	fields, ok := t.rules[clusterType]
	if !ok {
		return false
	}

	sentinel, ok := fields[field]
	return ok && sentinel == value
}

// Format renders a quota value for display, substituting "Unlimited"
// when the value is the sentinel for this cluster type and field.
func (t *SentinelTable) Format(clusterType, field string, value float64) string {
	if t.Unlimited(clusterType, field, value) {
		return "Unlimited"
	}

	if value == math.Trunc(value) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}
