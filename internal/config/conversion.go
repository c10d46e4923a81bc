// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"

	"github.com/iwvelando/staffing-forecast/internal/sizing"
)

// ToRun converts a scenario into an engine run. Scenario parameters
// override the common ones field by field; scenario positions replace the
// common positions when present.
func (scenario Scenario) ToRun(common Common, standards []sizing.TaskStandard) (sizing.Run, error) {
	rules, ok := sizing.Preset(scenario.Center)
	if !ok {
		return sizing.Run{}, fmt.Errorf("scenario %q: unknown center %q, expected one of %v",
			scenario.Name, scenario.Center, sizing.Presets())
	}

	return sizing.Run{
		Name:      scenario.Name,
		Rules:     rules,
		Volumes:   append([]sizing.VolumeInput(nil), scenario.Volumes...),
		Params:    scenario.parameters(common),
		Standards: standards,
		Positions: scenario.positions(common),
	}, nil
}

func (scenario Scenario) positions(common Common) []sizing.StaffPosition {
	if len(scenario.Positions) > 0 {
		return append([]sizing.StaffPosition(nil), scenario.Positions...)
	}
	return append([]sizing.StaffPosition(nil), common.Positions...)
}

func (scenario Scenario) parameters(common Common) sizing.Parameters {
	return MergeParameters(common.Parameters, scenario.Parameters, scenario.explicit)
}

// MergeParameters returns base with every non-zero field of override
// applied. Fields named in explicit (lower-cased YAML keys) are applied
// even when zero.
func MergeParameters(base, override sizing.Parameters, explicit map[string]bool) sizing.Parameters {
	merged := base
	pick := func(key string, dst *float64, val float64) {
		if val != 0 || explicit[key] {
			*dst = val
		}
	}

	pick("unitspercontainer", &merged.UnitsPerContainer, override.UnitsPerContainer)
	pick("containerspersecondarycontainer", &merged.ContainersPerSecondaryContainer, override.ContainersPerSecondaryContainer)
	pick("workingdaysperyear", &merged.WorkingDaysPerYear, override.WorkingDaysPerYear)
	pick("productivitypct", &merged.ProductivityPct, override.ProductivityPct)
	pick("idleminutesperday", &merged.IdleMinutesPerDay, override.IdleMinutesPerDay)
	pick("shiftmultiplier", &merged.ShiftMultiplier, override.ShiftMultiplier)
	pick("complexitycirculation", &merged.ComplexityCirculation, override.ComplexityCirculation)
	pick("complexitygeo", &merged.ComplexityGeo, override.ComplexityGeo)
	pick("internationalpct", &merged.InternationalPct, override.InternationalPct)
	pick("axespct", &merged.AxesPct, override.AxesPct)

	return merged
}
