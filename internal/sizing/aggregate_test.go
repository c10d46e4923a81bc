package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateScenario(t *testing.T) {
	got := Aggregate([]TaskLoad{{Task: "a", Hours: 6}, {Task: "b", Hours: 4}}, Parameters{ProductivityPct: 100})

	assert.InDelta(t, 10, got.TotalHours, 1e-9)
	assert.InDelta(t, 8, got.NetCapacityHoursPerFTE, 1e-9)
	assert.InDelta(t, 1.25, got.FTERaw, 1e-9)
	assert.Equal(t, 1.0, got.FTERounded)
}

func TestAggregateIgnoresInvalidHours(t *testing.T) {
	got := Aggregate([]TaskLoad{{Hours: 8}, {Hours: -4}, {Hours: math.NaN()}}, Parameters{ProductivityPct: 100})
	assert.InDelta(t, 8, got.TotalHours, 1e-9)
	assert.Equal(t, 1.0, got.FTERounded)
}

func TestAggregateZeroCapacity(t *testing.T) {
	got := Aggregate([]TaskLoad{{Hours: 40}}, Parameters{ProductivityPct: 100, IdleMinutesPerDay: 600})

	assert.Equal(t, 0.0, got.NetCapacityHoursPerFTE)
	assert.Equal(t, 0.0, got.FTERaw)
	assert.Equal(t, 0.0, got.FTERounded)
}

func TestAggregateZeroProductivity(t *testing.T) {
	for _, productivity := range []float64{0, -50} {
		got := Aggregate([]TaskLoad{{Hours: 10}}, Parameters{ProductivityPct: productivity})

		assert.InDelta(t, 10, got.TotalHours, 1e-9)
		assert.Equal(t, 0.0, got.NetCapacityHoursPerFTE, "productivity=%v", productivity)
		assert.Equal(t, 0.0, got.FTERaw, "productivity=%v", productivity)
		assert.Equal(t, 0.0, got.FTERounded, "productivity=%v", productivity)
	}
}

func TestNetCapacity(t *testing.T) {
	tests := []struct {
		name   string
		params Parameters
		want   float64
	}{
		{"full productivity", Parameters{ProductivityPct: 100}, 8},
		{"unset productivity gives no capacity", Parameters{}, 0},
		{"negative productivity gives no capacity", Parameters{ProductivityPct: -50}, 0},
		{"NaN productivity gives no capacity", Parameters{ProductivityPct: math.NaN()}, 0},
		{"idle time", Parameters{ProductivityPct: 100, IdleMinutesPerDay: 30}, 7.5},
		{"reduced productivity", Parameters{ProductivityPct: 75, IdleMinutesPerDay: 60}, 5},
		{"productivity capped at 200", Parameters{ProductivityPct: 500}, 16},
		{"negative idle clamped", Parameters{ProductivityPct: 100, IdleMinutesPerDay: -60}, 8},
		{"floored at zero", Parameters{ProductivityPct: 50, IdleMinutesPerDay: 300}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, NetCapacity(tt.params), 1e-9)
		})
	}
}

func TestNetCapacityMonotonicInIdle(t *testing.T) {
	for _, productivity := range []float64{50, 80, 100, 150, 200} {
		previous := math.Inf(1)
		for idle := 0.0; idle <= 1200; idle += 15 {
			capacity := NetCapacity(Parameters{ProductivityPct: productivity, IdleMinutesPerDay: idle})
			assert.LessOrEqual(t, capacity, previous, "productivity=%v idle=%v", productivity, idle)
			assert.GreaterOrEqual(t, capacity, 0.0)
			previous = capacity
		}
	}
}

func TestRoundFTE(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{0, 0},
		{0.05, 0},
		{0.1, 0},
		{0.11, 0},
		{0.5, 1},
		{1.25, 1},
		{1.49, 1},
		{2.5, 3},
		{7.51, 8},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundFTE(tt.raw), "raw=%v", tt.raw)
	}
}

func TestRoundingLaw(t *testing.T) {
	for raw := 0.0; raw <= 20; raw += 0.013 {
		got := RoundFTE(raw)
		if raw <= 0.1 {
			assert.Equal(t, 0.0, got, "raw=%v", raw)
			continue
		}
		assert.Equal(t, math.Round(raw), got, "raw=%v", raw)
	}
}
