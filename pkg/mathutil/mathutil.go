// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/staffing-forecast/pkg/constants"
)

// Round rounds a value to the given number of decimals, half away from zero.
func Round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(val*scale) / scale
}

// Finite reports whether val is neither NaN nor infinite.
func Finite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// NonNegative returns val, or 0 when val is negative, NaN or infinite.
func NonNegative(val float64) float64 {
	if !Finite(val) || val < 0 {
		return 0
	}
	return val
}

// Clamp bounds val to [lo, hi]. NaN and infinities collapse to lo.
func Clamp(val, lo, hi float64) float64 {
	if !Finite(val) || val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// SafeDiv divides a by b and returns 0 instead of NaN or Inf.
func SafeDiv(a, b float64) float64 {
	if b == 0 || !Finite(a) || !Finite(b) {
		return 0
	}
	res := a / b
	if !Finite(res) {
		return 0
	}
	return res
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// Nearest returns the element of levels closest to val. Ties resolve to the
// lower level. levels must not be empty.
func Nearest(val float64, levels []float64) float64 {
	best := levels[0]
	for _, level := range levels[1:] {
		if math.Abs(level-val) < math.Abs(best-val) {
			best = level
		}
	}
	return best
}
