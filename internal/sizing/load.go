package sizing

import (
	"github.com/iwvelando/staffing-forecast/pkg/constants"
	"github.com/iwvelando/staffing-forecast/pkg/mathutil"
)

// ComputeHours returns the daily hours a task requires for dailyUnits.
// Inactive tasks contribute nothing. Productivity below 100% inflates the
// per-unit time; complexity and shift multipliers apply as the center rules
// dictate.
func (e *Engine) ComputeHours(task TaskStandard, dailyUnits float64, params Parameters) float64 {
	if !task.Active {
		return 0
	}

	p := params.Sanitized()
	units := mathutil.NonNegative(dailyUnits)
	minutes := mathutil.NonNegative(task.AverageMinutes)

	adjustedMinutes := minutes / (p.ProductivityPct / constants.PercentageMultiplier)
	hours := units * adjustedMinutes / constants.MinutesPerHour

	if e.rules.complexitySensitive(task) {
		if e.rules.ApplyCirculation {
			hours *= p.ComplexityCirculation
		}
		if e.rules.ApplyGeo {
			hours *= p.ComplexityGeo
		}
	}
	if e.rules.ApplyShift {
		hours *= p.ShiftMultiplier
	}

	return mathutil.NonNegative(hours)
}
