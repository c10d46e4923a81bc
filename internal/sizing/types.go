// Package sizing implements the workforce sizing engine: volume
// normalization, task load calculation, FTE aggregation and the cascading
// staffing-category allocator. Every stage is a pure function of its inputs.
package sizing

import "strings"

// Flow identifies an operational flow declared by a center.
type Flow string

// Known flows. Centers may declare others; the rule table decides how they
// are converted.
const (
	FlowCO      Flow = "CO"
	FlowCR      Flow = "CR"
	FlowAmana   Flow = "Amana"
	FlowEbarkia Flow = "Ebarkia"
	FlowLRH     Flow = "LRH"
)

// Direction is the import/export side of a flow.
type Direction string

const (
	DirectionImport Direction = "Import"
	DirectionExport Direction = "Export"
)

// Valid reports whether d is empty (both directions) or a known direction.
func (d Direction) Valid() bool {
	return d == "" || d.matches(DirectionImport) || d.matches(DirectionExport)
}

func (d Direction) matches(other Direction) bool {
	return strings.EqualFold(strings.TrimSpace(string(d)), string(other))
}

// Period tells whether a volume amount is an annual total or already daily.
type Period string

const (
	PeriodAnnual Period = "annual"
	PeriodDaily  Period = "daily"
)

// Category is a staffing category.
type Category string

const (
	CategoryMOD Category = "MOD"
	CategoryMOI Category = "MOI"
	CategoryAPS Category = "APS"
)

// Segments produced by percentage splits.
const (
	SegmentInternational = "international"
	SegmentNational      = "national"
	SegmentAxes          = "axes"
	SegmentLocal         = "local"
)

// TaskStandard is one row of the time-standards table.
type TaskStandard struct {
	Name           string    `json:"name" yaml:"name"`
	Family         string    `json:"family" yaml:"family"`
	Unit           string    `json:"unit" yaml:"unit"`
	Phase          string    `json:"phase" yaml:"phase"`
	AverageMinutes float64   `json:"averageMinutes" yaml:"averageMinutes"`
	FlowType       string    `json:"flowType" yaml:"flowType"`
	Direction      Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
	Segment        string    `json:"segment,omitempty" yaml:"segment,omitempty"`
	Complexity     bool      `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	Active         bool      `json:"active" yaml:"active"`
}

// TaskKey identifies the normalized volume of a task.
type TaskKey struct {
	Task string
	Unit string
}

// VolumeInput is one declared volume.
type VolumeInput struct {
	Flow      Flow      `json:"flow" yaml:"flow"`
	Direction Direction `json:"direction" yaml:"direction"`
	Segment   string    `json:"segment,omitempty" yaml:"segment,omitempty"`
	Amount    float64   `json:"amount" yaml:"amount"`
	Period    Period    `json:"period,omitempty" yaml:"period,omitempty"`
}

// Parameters holds the conversion ratios, calendar and productivity
// settings of a simulation. Zero values mean "use the default" where a
// default exists; see Sanitized. Net capacity is the exception: a zero
// productivity gives no capacity.
type Parameters struct {
	UnitsPerContainer               float64 `json:"unitsPerContainer" yaml:"unitsPerContainer"`
	ContainersPerSecondaryContainer float64 `json:"containersPerSecondaryContainer" yaml:"containersPerSecondaryContainer"`
	WorkingDaysPerYear              float64 `json:"workingDaysPerYear" yaml:"workingDaysPerYear"`
	ProductivityPct                 float64 `json:"productivityPct" yaml:"productivityPct"`
	IdleMinutesPerDay               float64 `json:"idleMinutesPerDay" yaml:"idleMinutesPerDay"`
	ShiftMultiplier                 float64 `json:"shiftMultiplier" yaml:"shiftMultiplier"`
	ComplexityCirculation           float64 `json:"complexityCirculation" yaml:"complexityCirculation"`
	ComplexityGeo                   float64 `json:"complexityGeo" yaml:"complexityGeo"`
	InternationalPct                float64 `json:"internationalPct" yaml:"internationalPct"`
	AxesPct                         float64 `json:"axesPct" yaml:"axesPct"`
}

// StaffPosition is a position with its current headcount.
type StaffPosition struct {
	ID               string   `json:"id" yaml:"id"`
	Label            string   `json:"label" yaml:"label"`
	Category         Category `json:"category" yaml:"category"`
	CurrentHeadcount float64  `json:"currentHeadcount" yaml:"currentHeadcount"`
}

// Headcount is a split across the three staffing categories.
type Headcount struct {
	MOD float64 `json:"mod"`
	MOI float64 `json:"moi"`
	APS float64 `json:"aps"`
}

// Total returns the sum of the three categories.
func (h Headcount) Total() float64 {
	return h.MOD + h.MOI + h.APS
}

// Sub returns h - other per category.
func (h Headcount) Sub(other Headcount) Headcount {
	return Headcount{
		MOD: h.MOD - other.MOD,
		MOI: h.MOI - other.MOI,
		APS: h.APS - other.APS,
	}
}

// TaskLoad is the per-task line of a simulation.
type TaskLoad struct {
	Task       string  `json:"task"`
	Family     string  `json:"family"`
	Unit       string  `json:"unit"`
	Phase      string  `json:"phase"`
	DailyUnits float64 `json:"dailyUnits"`
	Hours      float64 `json:"hours"`
}

// Capacity is the output of the aggregator.
type Capacity struct {
	TotalHours             float64 `json:"totalHours"`
	NetCapacityHoursPerFTE float64 `json:"netCapacityHoursPerFte"`
	FTERaw                 float64 `json:"fteRaw"`
	FTERounded             float64 `json:"fteRounded"`
}

// Allocation is the output of the staffing allocator.
type Allocation struct {
	Final Headcount `json:"final"`
	Gap   Headcount `json:"gap"`
}

// SimulationResult is the full output of one simulation.
type SimulationResult struct {
	PerTask                []TaskLoad `json:"perTask"`
	TotalHours             float64    `json:"totalHours"`
	NetCapacityHoursPerFTE float64    `json:"netCapacityHoursPerFte"`
	FTERaw                 float64    `json:"fteRaw"`
	FTERounded             float64    `json:"fteRounded"`
	Actual                 Headcount  `json:"actual"`
	Target                 Headcount  `json:"target"`
	Final                  Headcount  `json:"final"`
	Gap                    Headcount  `json:"gap"`
	Diagnostics            []string   `json:"diagnostics,omitempty"`
}
