package hallway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudgetsExceeded(t *testing.T) {
	tests := []struct {
		name    string
		budgets map[string]float64
		usage   map[string]float64
		want    bool
	}{
		{
			name:    "usage below limit",
			budgets: map[string]float64{"tokens": 100},
			usage:   map[string]float64{"tokens": 99},
			want:    false,
		},
		{
			name:    "usage exactly at limit is allowed",
			budgets: map[string]float64{"tokens": 100},
			usage:   map[string]float64{"tokens": 100},
			want:    false,
		},
		{
			name:    "usage one over limit",
			budgets: map[string]float64{"tokens": 100},
			usage:   map[string]float64{"tokens": 101},
			want:    true,
		},
		{
			name:    "unbudgeted resources are unlimited",
			budgets: map[string]float64{"tokens": 100},
			usage:   map[string]float64{"time_ms": 99999},
			want:    false,
		},
		{
			name:    "any one exceeded resource trips the check",
			budgets: map[string]float64{"tokens": 100, "time_ms": 1000, "retries": 3},
			usage:   map[string]float64{"tokens": 10, "time_ms": 1001, "retries": 0},
			want:    true,
		},
		{
			name:    "empty budgets never trip",
			budgets: map[string]float64{},
			usage:   map[string]float64{"tokens": 1e9},
			want:    false,
		},
		{
			name:    "zero limit trips on any positive usage",
			budgets: map[string]float64{"retries": 0},
			usage:   map[string]float64{"retries": 1},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BudgetsExceeded(tt.budgets, tt.usage))
		})
	}
}

func TestAddUsageIgnoresNegativeDeltas(t *testing.T) {
	rc := newTestContext(nil, newFakeRegistry(), Policy{}, nil)

	rc.AddUsage(ResourceTokens, 10)
	rc.AddUsage(ResourceTokens, -5)

	assert.Equal(t, float64(10), rc.Usage[ResourceTokens])
}
