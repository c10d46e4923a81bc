// Package referentiel loads the time-standards table (référentiel) that maps
// each task to its average processing time per unit.
package referentiel

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/iwvelando/staffing-forecast/internal/sizing"
	"gopkg.in/yaml.v3"
)

// StateNA marks a task that does not apply to a center.
const StateNA = "NA"

// Record is one row of the référentiel as written in files and config.
type Record struct {
	Name           string  `yaml:"name" json:"name"`
	Family         string  `yaml:"family" json:"family"`
	Unit           string  `yaml:"unit" json:"unit"`
	Phase          string  `yaml:"phase" json:"phase"`
	AverageMinutes float64 `yaml:"averageMinutes" json:"averageMinutes"`
	FlowType       string  `yaml:"flowType" json:"flowType"`
	Direction      string  `yaml:"direction,omitempty" json:"direction,omitempty"`
	Segment        string  `yaml:"segment,omitempty" json:"segment,omitempty"`
	Complexity     bool    `yaml:"complexity,omitempty" json:"complexity,omitempty"`
	State          string  `yaml:"state,omitempty" json:"state,omitempty"`
}

// File is the on-disk layout of a référentiel.
type File struct {
	Center    string   `yaml:"center,omitempty"`
	Standards []Record `yaml:"standards"`
}

// ToStandard converts a record into an engine task standard. A blank state
// means the task is active.
func (r Record) ToStandard() sizing.TaskStandard {
	return sizing.TaskStandard{
		Name:           strings.TrimSpace(r.Name),
		Family:         strings.TrimSpace(r.Family),
		Unit:           strings.TrimSpace(r.Unit),
		Phase:          strings.TrimSpace(r.Phase),
		AverageMinutes: r.AverageMinutes,
		FlowType:       strings.TrimSpace(r.FlowType),
		Direction:      sizing.Direction(strings.TrimSpace(r.Direction)),
		Segment:        strings.TrimSpace(r.Segment),
		Complexity:     r.Complexity,
		Active:         !strings.EqualFold(strings.TrimSpace(r.State), StateNA),
	}
}

// FromStandard converts a task standard back into a record.
func FromStandard(s sizing.TaskStandard) Record {
	rec := Record{
		Name:           s.Name,
		Family:         s.Family,
		Unit:           s.Unit,
		Phase:          s.Phase,
		AverageMinutes: s.AverageMinutes,
		FlowType:       s.FlowType,
		Direction:      string(s.Direction),
		Segment:        s.Segment,
		Complexity:     s.Complexity,
	}
	if !s.Active {
		rec.State = StateNA
	}
	return rec
}

// Convert validates records and converts them into task standards, keeping
// their order.
func Convert(records []Record) ([]sizing.TaskStandard, error) {
	standards := make([]sizing.TaskStandard, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		std := rec.ToStandard()
		if std.Name == "" {
			return nil, fmt.Errorf("standard %d: name is required", i)
		}
		key := strings.ToLower(std.Name) + "|" + strings.ToLower(std.Unit)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("standard %d: duplicate task %q (unit %q) first declared at %d", i, std.Name, std.Unit, prev)
		}
		seen[key] = i
		if !std.Direction.Valid() {
			return nil, fmt.Errorf("standard %q: invalid direction %q", std.Name, std.Direction)
		}
		if rec.AverageMinutes < 0 {
			return nil, fmt.Errorf("standard %q: negative average minutes %v", std.Name, rec.AverageMinutes)
		}
		standards = append(standards, std)
	}
	return standards, nil
}

// Parse decodes a YAML référentiel.
func Parse(data []byte) ([]sizing.TaskStandard, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []sizing.TaskStandard{}, nil
	}

	var file File
	if err := yaml.Unmarshal(trimmed, &file); err != nil {
		return nil, fmt.Errorf("failed to parse référentiel: %w", err)
	}
	return Convert(file.Standards)
}

// LoadFile reads and parses a YAML référentiel from disk.
func LoadFile(path string) ([]sizing.TaskStandard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read référentiel %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal encodes task standards into the YAML référentiel layout.
func Marshal(center string, standards []sizing.TaskStandard) ([]byte, error) {
	file := File{Center: center, Standards: make([]Record, 0, len(standards))}
	for _, s := range standards {
		file.Standards = append(file.Standards, FromStandard(s))
	}
	return yaml.Marshal(file)
}
