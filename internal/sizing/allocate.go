package sizing

import (
	"math"

	"github.com/iwvelando/staffing-forecast/pkg/mathutil"
)

// Allocate distributes the rounded FTE target over the staffing categories.
//
// MOI is never adjusted. A shortfall is absorbed by APS while any MOD
// headcount exists, and creates MOD otherwise. A surplus shrinks APS first
// and MOD only once APS is exhausted, never below zero.
func Allocate(fteRounded, moiActual, modActual, apsActual float64) Allocation {
	actual := Headcount{
		MOD: mathutil.NonNegative(modActual),
		MOI: mathutil.NonNegative(moiActual),
		APS: mathutil.NonNegative(apsActual),
	}
	final := actual

	ecart := mathutil.NonNegative(fteRounded) - actual.MOD - actual.APS
	switch {
	case ecart > 0:
		if actual.MOD > 0 {
			final.APS = actual.APS + ecart
		} else {
			final.MOD = ecart
		}
	case ecart < 0:
		d := -ecart
		if actual.APS >= d {
			final.APS = actual.APS - d
		} else {
			final.APS = 0
			final.MOD = math.Max(0, actual.MOD-(d-actual.APS))
		}
	}

	return Allocation{
		Final: final,
		Gap:   final.Sub(actual),
	}
}
