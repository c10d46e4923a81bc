package sizing

import (
	"github.com/iwvelando/staffing-forecast/pkg/constants"
	"github.com/iwvelando/staffing-forecast/pkg/mathutil"
)

// DefaultParameters returns the neutral parameter set.
func DefaultParameters() Parameters {
	return Parameters{
		WorkingDaysPerYear:    constants.DefaultWorkingDaysPerYear,
		ProductivityPct:       constants.DefaultProductivityPct,
		ShiftMultiplier:       constants.DefaultShiftMultiplier,
		ComplexityCirculation: constants.DefaultComplexity,
		ComplexityGeo:         constants.DefaultComplexity,
	}
}

// Sanitized returns a copy of p where every field is usable by the engine:
// negative or non-finite values are clamped, percentages are bounded and
// unset multipliers fall back to their neutral value. Container ratios are
// only clamped to be non-negative; a zero ratio makes container conversions
// yield zero.
func (p Parameters) Sanitized() Parameters {
	out := p

	out.UnitsPerContainer = mathutil.NonNegative(p.UnitsPerContainer)
	out.ContainersPerSecondaryContainer = mathutil.NonNegative(p.ContainersPerSecondaryContainer)

	out.WorkingDaysPerYear = mathutil.NonNegative(p.WorkingDaysPerYear)
	if out.WorkingDaysPerYear == 0 {
		out.WorkingDaysPerYear = constants.DefaultWorkingDaysPerYear
	}

	out.ProductivityPct = mathutil.Clamp(p.ProductivityPct, 0, constants.MaxPercentage)
	if out.ProductivityPct == 0 {
		out.ProductivityPct = constants.DefaultProductivityPct
	}

	out.IdleMinutesPerDay = mathutil.NonNegative(p.IdleMinutesPerDay)

	out.ShiftMultiplier = mathutil.NonNegative(p.ShiftMultiplier)
	if out.ShiftMultiplier == 0 {
		out.ShiftMultiplier = constants.DefaultShiftMultiplier
	}

	out.ComplexityCirculation = complexityLevel(p.ComplexityCirculation)
	out.ComplexityGeo = complexityLevel(p.ComplexityGeo)

	out.InternationalPct = mathutil.Clamp(p.InternationalPct, 0, constants.MaxSharePercentage)
	out.AxesPct = mathutil.Clamp(p.AxesPct, 0, constants.MaxSharePercentage)

	return out
}

func complexityLevel(val float64) float64 {
	if !mathutil.Finite(val) || val <= 0 {
		return constants.DefaultComplexity
	}
	return mathutil.Nearest(val, constants.ComplexityLevels)
}
