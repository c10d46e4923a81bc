package sizing

import (
	"math"

	"github.com/iwvelando/staffing-forecast/pkg/constants"
	"github.com/iwvelando/staffing-forecast/pkg/mathutil"
)

// Share is one child of a percentage split.
type Share struct {
	Segment string
	Pct     float64
}

// Part is the volume attributed to one child of a split.
type Part struct {
	Segment string
	Amount  float64
}

// SplitVolume splits parent into children proportionally to the share
// percentages. Children are rounded to whole units and the difference with
// the parent is attributed to the largest child, first on ties, so the
// children always sum to the parent. Percentages are bounded to 0-100 and
// weighed against their own total, and when every share is zero the whole
// parent goes to the first share.
func SplitVolume(parent float64, shares []Share) []Part {
	if len(shares) == 0 {
		return nil
	}

	total := mathutil.NonNegative(parent)
	parts := make([]Part, len(shares))

	weightSum := 0.0
	weights := make([]float64, len(shares))
	for i, share := range shares {
		parts[i].Segment = share.Segment
		weights[i] = mathutil.Clamp(share.Pct, 0, constants.MaxSharePercentage)
		weightSum += weights[i]
	}

	if weightSum == 0 {
		parts[0].Amount = total
		return parts
	}

	assigned := 0.0
	for i := range parts {
		parts[i].Amount = math.Round(total * weights[i] / weightSum)
		assigned += parts[i].Amount
	}

	remainder := total - assigned
	if remainder > 0 {
		parts[largestPart(parts)].Amount += remainder
		return parts
	}
	// Each pass empties a child or settles the remainder.
	for i := 0; i < len(parts) && remainder < 0; i++ {
		idx := largestPart(parts)
		take := math.Min(parts[idx].Amount, -remainder)
		parts[idx].Amount -= take
		remainder += take
	}

	return parts
}

func largestPart(parts []Part) int {
	idx := 0
	for i := 1; i < len(parts); i++ {
		if parts[i].Amount > parts[idx].Amount {
			idx = i
		}
	}
	return idx
}

// expandVolumes applies the segment splits to unsegmented inputs. An input
// without segment becomes international and national parts; every national
// input becomes axes and local parts.
func expandVolumes(volumes []VolumeInput, p Parameters) []VolumeInput {
	out := make([]VolumeInput, 0, len(volumes)*3)
	for _, v := range volumes {
		switch normalizeKey(v.Segment) {
		case "":
			parts := SplitVolume(v.Amount, []Share{
				{Segment: SegmentInternational, Pct: p.InternationalPct},
				{Segment: SegmentNational, Pct: constants.MaxSharePercentage - p.InternationalPct},
			})
			out = append(out, withSegment(v, parts[0]))
			out = append(out, splitNational(withSegment(v, parts[1]), p)...)
		case SegmentNational:
			out = append(out, splitNational(v, p)...)
		default:
			out = append(out, v)
		}
	}
	return out
}

func splitNational(v VolumeInput, p Parameters) []VolumeInput {
	parts := SplitVolume(v.Amount, []Share{
		{Segment: SegmentAxes, Pct: p.AxesPct},
		{Segment: SegmentLocal, Pct: constants.MaxSharePercentage - p.AxesPct},
	})
	return []VolumeInput{withSegment(v, parts[0]), withSegment(v, parts[1])}
}

func withSegment(v VolumeInput, part Part) VolumeInput {
	v.Segment = part.Segment
	v.Amount = part.Amount
	return v
}
