package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeHours(t *testing.T) {
	sorting := TaskStandard{Name: "Tri", Family: "Tri", AverageMinutes: 2, Active: true}
	delivery := TaskStandard{Name: "Tournee", Family: "Distribution", AverageMinutes: 2, Active: true}

	tests := []struct {
		name   string
		center string
		task   TaskStandard
		units  float64
		params Parameters
		want   float64
	}{
		{
			name:   "reference scenario",
			center: "cndp",
			task:   sorting,
			units:  300,
			params: Parameters{ProductivityPct: 100},
			want:   10,
		},
		{
			name:   "lower productivity inflates time",
			center: "cndp",
			task:   sorting,
			units:  300,
			params: Parameters{ProductivityPct: 50},
			want:   20,
		},
		{
			name:   "productivity above 100 is allowed up to 200",
			center: "cndp",
			task:   sorting,
			units:  300,
			params: Parameters{ProductivityPct: 400},
			want:   5,
		},
		{
			name:   "zero productivity treated as 100",
			center: "cndp",
			task:   sorting,
			units:  300,
			want:   10,
		},
		{
			name:   "negative productivity treated as 100",
			center: "cndp",
			task:   sorting,
			units:  300,
			params: Parameters{ProductivityPct: -20},
			want:   10,
		},
		{
			name:   "inactive task contributes nothing",
			center: "cndp",
			task:   TaskStandard{AverageMinutes: 2, Active: false},
			units:  300,
			want:   0,
		},
		{
			name:   "both complexity multipliers",
			center: "general",
			task:   delivery,
			units:  300,
			params: Parameters{ComplexityCirculation: 1.25, ComplexityGeo: 1.5},
			want:   18.75,
		},
		{
			name:   "circulation only when geo disabled",
			center: "cndp",
			task:   delivery,
			units:  300,
			params: Parameters{ComplexityCirculation: 1.25, ComplexityGeo: 1.5},
			want:   12.5,
		},
		{
			name:   "insensitive task ignores complexity",
			center: "general",
			task:   sorting,
			units:  300,
			params: Parameters{ComplexityCirculation: 1.5, ComplexityGeo: 1.5},
			want:   10,
		},
		{
			name:   "task flag makes it sensitive",
			center: "general",
			task:   TaskStandard{Family: "Tri", AverageMinutes: 2, Complexity: true, Active: true},
			units:  300,
			params: Parameters{ComplexityCirculation: 1.5},
			want:   15,
		},
		{
			name:   "complexity snaps to allowed levels",
			center: "general",
			task:   delivery,
			units:  300,
			params: Parameters{ComplexityCirculation: 1.3},
			want:   12.5,
		},
		{
			name:   "shift multiplier when enabled",
			center: "bandoeng",
			task:   sorting,
			units:  300,
			params: Parameters{ShiftMultiplier: 2},
			want:   20,
		},
		{
			name:   "shift multiplier ignored when disabled",
			center: "cndp",
			task:   sorting,
			units:  300,
			params: Parameters{ShiftMultiplier: 2},
			want:   10,
		},
		{
			name:   "NaN units treated as zero",
			center: "cndp",
			task:   sorting,
			units:  math.NaN(),
			want:   0,
		},
		{
			name:   "negative minutes treated as zero",
			center: "cndp",
			task:   TaskStandard{AverageMinutes: -3, Active: true},
			units:  300,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, tt.center)
			got := engine.ComputeHours(tt.task, tt.units, tt.params)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}
