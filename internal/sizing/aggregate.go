package sizing

import (
	"math"

	"github.com/iwvelando/staffing-forecast/pkg/constants"
	"github.com/iwvelando/staffing-forecast/pkg/mathutil"
)

// NetCapacity returns the productive hours one FTE delivers per day.
// Productivity is only clamped here: a zero or negative value gives no
// capacity, unlike the per-unit time of ComputeHours.
func NetCapacity(params Parameters) float64 {
	productivity := mathutil.Clamp(params.ProductivityPct, 0, constants.MaxPercentage)
	idle := mathutil.NonNegative(params.IdleMinutesPerDay)
	gross := constants.BaseHoursPerDay * productivity / constants.PercentageMultiplier
	return math.Max(0, gross-idle/constants.MinutesPerHour)
}

// RoundFTE rounds a raw FTE to the reported headcount. Loads at or under
// the threshold are reported as zero.
func RoundFTE(fteRaw float64) float64 {
	if !mathutil.Finite(fteRaw) || fteRaw <= constants.FTERoundingThreshold {
		return 0
	}
	return math.Round(fteRaw)
}

// Aggregate sums task hours and derives the raw and rounded FTE.
func Aggregate(perTask []TaskLoad, params Parameters) Capacity {
	total := 0.0
	for _, load := range perTask {
		total += mathutil.NonNegative(load.Hours)
	}

	capacity := NetCapacity(params)
	fteRaw := 0.0
	if capacity > 0 {
		fteRaw = total / capacity
	}

	return Capacity{
		TotalHours:             total,
		NetCapacityHoursPerFTE: capacity,
		FTERaw:                 fteRaw,
		FTERounded:             RoundFTE(fteRaw),
	}
}
