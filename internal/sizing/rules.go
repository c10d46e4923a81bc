package sizing

import (
	"fmt"
	"sort"
	"strings"
)

// Conversion tells how a task unit is derived from daily flow volumes.
type Conversion int

const (
	// ConvertDirect counts one unit per declared item.
	ConvertDirect Conversion = iota
	// ConvertContainer counts containers: parcel flows are divided by
	// UnitsPerContainer and mail flows by ContainersPerSecondaryContainer.
	ConvertContainer
)

// FlowKind classifies a flow for container conversions.
type FlowKind int

const (
	KindMail FlowKind = iota
	KindParcel
)

// flowTagAll is the flow-type tag subscribing a task to every flow.
const flowTagAll = "all"

// Rules is the per-center rule table that parameterizes the engine.
type Rules struct {
	Center string

	// Units maps a lower-cased task unit to its conversion.
	Units map[string]Conversion

	// FlowKinds classifies known flows. Flows missing from the map are mail.
	FlowKinds map[Flow]FlowKind

	// FlowAliases maps a lower-cased flow-type tag to the flows it covers.
	FlowAliases map[string][]Flow

	// ComplexityFamilies lists task families that are complexity-sensitive
	// in addition to tasks flagged individually.
	ComplexityFamilies []string

	ApplyCirculation bool
	ApplyGeo         bool
	ApplyShift       bool

	// SplitSegments enables the international/national and axes/local
	// percentage splits of unsegmented volumes.
	SplitSegments bool
}

func (r Rules) conversion(unit string) (Conversion, bool) {
	conv, ok := r.Units[normalizeKey(unit)]
	return conv, ok
}

func (r Rules) flowKind(flow Flow) FlowKind {
	for known, kind := range r.FlowKinds {
		if strings.EqualFold(string(known), string(flow)) {
			return kind
		}
	}
	return KindMail
}

// resolveFlows parses a task flow-type tag. It returns the subscribed flows,
// whether the task takes every flow, and false when a part of the tag is
// neither a known flow nor an alias.
func (r Rules) resolveFlows(tag string) ([]Flow, bool, bool) {
	parts := splitTag(tag)
	if len(parts) == 0 {
		return nil, true, true
	}

	var flows []Flow
	for _, part := range parts {
		key := normalizeKey(part)
		if key == flowTagAll {
			return nil, true, true
		}
		if alias, ok := r.FlowAliases[key]; ok {
			flows = append(flows, alias...)
			continue
		}
		flow, ok := r.knownFlow(part)
		if !ok {
			return nil, false, false
		}
		flows = append(flows, flow)
	}
	return flows, false, true
}

func (r Rules) knownFlow(name string) (Flow, bool) {
	for known := range r.FlowKinds {
		if strings.EqualFold(string(known), strings.TrimSpace(name)) {
			return known, true
		}
	}
	return "", false
}

func (r Rules) complexitySensitive(task TaskStandard) bool {
	if task.Complexity {
		return true
	}
	for _, family := range r.ComplexityFamilies {
		if strings.EqualFold(family, strings.TrimSpace(task.Family)) {
			return true
		}
	}
	return false
}

func splitTag(tag string) []string {
	fields := strings.FieldsFunc(tag, func(r rune) bool {
		return r == '|' || r == ',' || r == '+' || r == ';' || r == '/'
	})
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func baseUnits() map[string]Conversion {
	return map[string]Conversion{
		"colis":    ConvertDirect,
		"amana":    ConvertDirect,
		"courrier": ConvertDirect,
		"pli":      ConvertDirect,
		"objet":    ConvertDirect,
		"envoi":    ConvertDirect,
		"sac":      ConvertContainer,
	}
}

func baseFlowKinds() map[Flow]FlowKind {
	return map[Flow]FlowKind{
		FlowCO:      KindMail,
		FlowCR:      KindMail,
		FlowLRH:     KindMail,
		FlowEbarkia: KindMail,
		FlowAmana:   KindParcel,
	}
}

func baseAliases() map[string][]Flow {
	return map[string][]Flow{
		"courrier": {FlowCO, FlowCR, FlowLRH, FlowEbarkia},
		"colis":    {FlowAmana},
	}
}

// presets builds the rule tables of the known centers. Each call returns
// fresh maps so callers may customize a preset without affecting others.
var presets = map[string]func() Rules{
	"general": func() Rules {
		return Rules{
			Center:             "general",
			Units:              baseUnits(),
			FlowKinds:          baseFlowKinds(),
			FlowAliases:        baseAliases(),
			ComplexityFamilies: []string{"Distribution"},
			ApplyCirculation:   true,
			ApplyGeo:           true,
			SplitSegments:      true,
		}
	},
	"cndp": func() Rules {
		return Rules{
			Center:             "cndp",
			Units:              baseUnits(),
			FlowKinds:          baseFlowKinds(),
			FlowAliases:        baseAliases(),
			ComplexityFamilies: []string{"Distribution"},
			ApplyCirculation:   true,
		}
	},
	"ccp": func() Rules {
		return Rules{
			Center:             "ccp",
			Units:              baseUnits(),
			FlowKinds:          baseFlowKinds(),
			FlowAliases:        baseAliases(),
			ComplexityFamilies: []string{"Distribution", "Tri"},
			ApplyCirculation:   true,
			ApplyGeo:           true,
			SplitSegments:      true,
		}
	},
	"cci": func() Rules {
		return Rules{
			Center:        "cci",
			Units:         baseUnits(),
			FlowKinds:     baseFlowKinds(),
			FlowAliases:   baseAliases(),
			SplitSegments: true,
		}
	},
	"cna": func() Rules {
		units := baseUnits()
		delete(units, "courrier")
		delete(units, "pli")
		return Rules{
			Center:      "cna",
			Units:       units,
			FlowKinds:   map[Flow]FlowKind{FlowAmana: KindParcel},
			FlowAliases: map[string][]Flow{"colis": {FlowAmana}},
			ApplyGeo:    true,
			ApplyShift:  true,
		}
	},
	"bandoeng": func() Rules {
		return Rules{
			Center:      "bandoeng",
			Units:       baseUnits(),
			FlowKinds:   baseFlowKinds(),
			FlowAliases: baseAliases(),
			ApplyShift:  true,
		}
	},
}

// Preset returns the rule table registered for a center name.
func Preset(center string) (Rules, bool) {
	build, ok := presets[normalizeKey(center)]
	if !ok {
		return Rules{}, false
	}
	return build(), true
}

// Presets lists the known center names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Diagnose returns why the rules cannot map a task, or an empty string when
// the task is supported.
func (r Rules) Diagnose(task TaskStandard) string {
	if _, ok := r.conversion(task.Unit); !ok {
		return fmt.Sprintf("task %q: unmapped unit %q", task.Name, task.Unit)
	}
	if _, _, ok := r.resolveFlows(task.FlowType); !ok {
		return fmt.Sprintf("task %q: unmapped flow type %q", task.Name, task.FlowType)
	}
	if !task.Direction.Valid() {
		return fmt.Sprintf("task %q: unknown direction %q", task.Name, task.Direction)
	}
	return ""
}

// UsesContainers reports whether any of the standards is converted per
// container under these rules.
func (r Rules) UsesContainers(standards []TaskStandard) bool {
	for _, task := range standards {
		if conv, ok := r.conversion(task.Unit); ok && conv == ConvertContainer {
			return true
		}
	}
	return false
}
