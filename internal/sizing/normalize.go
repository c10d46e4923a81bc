package sizing

import (
	"strings"

	"github.com/iwvelando/staffing-forecast/pkg/mathutil"
	"go.uber.org/zap"
)

// Normalize converts declared volumes into a daily unit count per task.
// Tasks whose unit or flow tag the rule table cannot map get zero units.
func (e *Engine) Normalize(volumes []VolumeInput, params Parameters, standards []TaskStandard) map[TaskKey]float64 {
	p := params.Sanitized()
	inputs := e.prepareVolumes(volumes, p)

	units := make(map[TaskKey]float64, len(standards))
	for _, task := range standards {
		daily, _ := e.dailyUnits(task, inputs, p)
		units[TaskKey{Task: task.Name, Unit: task.Unit}] = daily
	}
	return units
}

// prepareVolumes clamps amounts and applies the segment splits when the
// center rules enable them.
func (e *Engine) prepareVolumes(volumes []VolumeInput, p Parameters) []VolumeInput {
	clean := make([]VolumeInput, len(volumes))
	for i, v := range volumes {
		amount := mathutil.NonNegative(v.Amount)
		if amount != v.Amount {
			e.logger.Debug("clamped volume amount",
				zap.String("op", "sizing.Normalize"),
				zap.String("flow", string(v.Flow)),
				zap.Float64("amount", v.Amount),
			)
		}
		v.Amount = amount
		clean[i] = v
	}

	if !e.rules.SplitSegments {
		return clean
	}
	return expandVolumes(clean, p)
}

// dailyUnits returns the daily units feeding a task and a diagnostic when
// the task could not be mapped.
func (e *Engine) dailyUnits(task TaskStandard, inputs []VolumeInput, p Parameters) (float64, string) {
	if diag := e.rules.Diagnose(task); diag != "" {
		return 0, diag
	}
	conv, _ := e.rules.conversion(task.Unit)
	flows, allFlows, _ := e.rules.resolveFlows(task.FlowType)

	total := 0.0
	for _, v := range inputs {
		if !allFlows && !containsFlow(flows, v.Flow) {
			continue
		}
		if task.Direction != "" && !task.Direction.matches(v.Direction) {
			continue
		}
		if !segmentMatches(task.Segment, v.Segment) {
			continue
		}

		daily := v.Amount
		if normalizeKey(string(v.Period)) != string(PeriodDaily) {
			daily = mathutil.SafeDiv(v.Amount, p.WorkingDaysPerYear)
		}

		switch conv {
		case ConvertDirect:
			total += daily
		case ConvertContainer:
			if e.rules.flowKind(v.Flow) == KindParcel {
				total += mathutil.SafeDiv(daily, p.UnitsPerContainer)
			} else {
				total += mathutil.SafeDiv(daily, p.ContainersPerSecondaryContainer)
			}
		}
	}

	return mathutil.NonNegative(total), ""
}

func containsFlow(flows []Flow, flow Flow) bool {
	for _, f := range flows {
		if strings.EqualFold(string(f), string(flow)) {
			return true
		}
	}
	return false
}

// segmentMatches reports whether an input segment feeds a task segment.
// National tasks also take the axes and local parts of a split.
func segmentMatches(taskSegment, inputSegment string) bool {
	want := normalizeKey(taskSegment)
	if want == "" {
		return true
	}
	got := normalizeKey(inputSegment)
	if want == got {
		return true
	}
	return want == SegmentNational && (got == SegmentAxes || got == SegmentLocal)
}
