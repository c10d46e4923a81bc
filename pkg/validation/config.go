// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/staffing-forecast/internal/sizing"
	"github.com/iwvelando/staffing-forecast/pkg/constants"
	"github.com/iwvelando/staffing-forecast/pkg/mathutil"
)

// ValidateParameters reports parameter values the engine will clamp or
// replace by a default.
func ValidateParameters(owner string, p sizing.Parameters) []string {
	var warnings []string

	if p.ProductivityPct < 0 || p.ProductivityPct > constants.MaxPercentage || !mathutil.Finite(p.ProductivityPct) {
		warnings = append(warnings, fmt.Sprintf("%s: productivityPct %v outside 0-%v, it will be clamped",
			owner, p.ProductivityPct, constants.MaxPercentage))
	}
	if p.IdleMinutesPerDay < 0 {
		warnings = append(warnings, fmt.Sprintf("%s: negative idleMinutesPerDay %v treated as 0", owner, p.IdleMinutesPerDay))
	}
	if p.IdleMinutesPerDay >= constants.BaseHoursPerDay*constants.MinutesPerHour {
		warnings = append(warnings, fmt.Sprintf("%s: idleMinutesPerDay %v leaves no working time", owner, p.IdleMinutesPerDay))
	}
	if p.WorkingDaysPerYear < 0 {
		warnings = append(warnings, fmt.Sprintf("%s: negative workingDaysPerYear %v, default %v used",
			owner, p.WorkingDaysPerYear, constants.DefaultWorkingDaysPerYear))
	}
	if p.ShiftMultiplier < 0 {
		warnings = append(warnings, fmt.Sprintf("%s: negative shiftMultiplier %v, default used", owner, p.ShiftMultiplier))
	}

	sanitized := p.Sanitized()
	for _, c := range []struct {
		field string
		value float64
		used  float64
	}{
		{"complexityCirculation", p.ComplexityCirculation, sanitized.ComplexityCirculation},
		{"complexityGeo", p.ComplexityGeo, sanitized.ComplexityGeo},
	} {
		if c.value != 0 && !isComplexityLevel(c.value) {
			warnings = append(warnings, fmt.Sprintf("%s: %s %v is not one of %v, %v used",
				owner, c.field, c.value, constants.ComplexityLevels, c.used))
		}
	}

	for _, s := range []struct {
		field string
		value float64
	}{
		{"internationalPct", p.InternationalPct},
		{"axesPct", p.AxesPct},
	} {
		if s.value < 0 || s.value > constants.MaxSharePercentage {
			warnings = append(warnings, fmt.Sprintf("%s: %s %v outside 0-%v, it will be clamped",
				owner, s.field, s.value, constants.MaxSharePercentage))
		}
	}

	return warnings
}

func isComplexityLevel(val float64) bool {
	for _, level := range constants.ComplexityLevels {
		if val == level {
			return true
		}
	}
	return false
}

// ValidateVolumes reports volumes that will be clamped or ignored.
func ValidateVolumes(owner string, volumes []sizing.VolumeInput) []string {
	var warnings []string
	for i, v := range volumes {
		label := fmt.Sprintf("%s volume %d (%s)", owner, i, v.Flow)
		if v.Amount < 0 || !mathutil.Finite(v.Amount) {
			warnings = append(warnings, fmt.Sprintf("%s: amount %v treated as 0", label, v.Amount))
		}
		if v.Direction == "" || !v.Direction.Valid() {
			warnings = append(warnings, fmt.Sprintf("%s: direction %q matches only tasks without direction", label, v.Direction))
		}
		switch sizing.Period(strings.ToLower(string(v.Period))) {
		case "", sizing.PeriodAnnual, sizing.PeriodDaily:
		default:
			warnings = append(warnings, fmt.Sprintf("%s: unknown period %q treated as annual", label, v.Period))
		}
	}
	return warnings
}

// ValidatePositions reports positions the allocator will ignore or clamp.
func ValidatePositions(owner string, positions []sizing.StaffPosition) []string {
	var warnings []string
	seen := make(map[string]bool, len(positions))
	for _, pos := range positions {
		if seen[pos.ID] {
			warnings = append(warnings, fmt.Sprintf("%s: duplicate position id %q", owner, pos.ID))
		}
		seen[pos.ID] = true

		switch sizing.Category(strings.ToUpper(strings.TrimSpace(string(pos.Category)))) {
		case sizing.CategoryMOD, sizing.CategoryMOI, sizing.CategoryAPS:
		default:
			warnings = append(warnings, fmt.Sprintf("%s: position %q has unknown category %q and is ignored",
				owner, pos.ID, pos.Category))
		}
		if pos.CurrentHeadcount < 0 {
			warnings = append(warnings, fmt.Sprintf("%s: position %q negative headcount treated as 0", owner, pos.ID))
		}
	}
	return warnings
}

// ScenarioConfig is the validation view of one scenario.
type ScenarioConfig struct {
	Name       string
	Active     bool
	Center     string
	Parameters sizing.Parameters
	Volumes    []sizing.VolumeInput
	Positions  []sizing.StaffPosition
}

// ConfigValidator validates a whole configuration.
type ConfigValidator struct {
	Standards []sizing.TaskStandard
	Scenarios []ScenarioConfig
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if len(cv.Standards) == 0 {
		warnings = append(warnings, "no time standards configured, every scenario will size to 0 FTE")
	}

	active := 0
	for _, scenario := range cv.Scenarios {
		if !scenario.Active {
			continue
		}
		active++
		owner := fmt.Sprintf("Scenario '%s'", scenario.Name)

		rules, ok := sizing.Preset(scenario.Center)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s: unknown center %q, expected one of %v",
				owner, scenario.Center, sizing.Presets()))
		} else {
			for _, task := range cv.Standards {
				if diag := rules.Diagnose(task); diag != "" {
					warnings = append(warnings, fmt.Sprintf("%s: %s", owner, diag))
				}
			}
			if rules.UsesContainers(cv.Standards) {
				p := scenario.Parameters
				if p.UnitsPerContainer <= 0 || p.ContainersPerSecondaryContainer <= 0 {
					warnings = append(warnings, fmt.Sprintf("%s: container ratios not set, bag counts may be 0", owner))
				}
			}
		}

		if mathutil.Clamp(scenario.Parameters.ProductivityPct, 0, constants.MaxPercentage) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s: productivityPct not set, net capacity and FTE will be 0", owner))
		}
		warnings = append(warnings, ValidateParameters(owner, scenario.Parameters)...)
		warnings = append(warnings, ValidateVolumes(owner, scenario.Volumes)...)
		warnings = append(warnings, ValidatePositions(owner, scenario.Positions)...)
	}

	if active == 0 {
		warnings = append(warnings, "no active scenarios")
	}

	return warnings
}
