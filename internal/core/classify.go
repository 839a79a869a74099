package core

import (
	"math"
	"sort"
)

// Segment colors, best to worst.
const (
	ColorBest  = "#22c55e"
	ColorGood  = "#eab308"
	ColorWarn  = "#f97316"
	ColorWorst = "#ef4444"
)

// SegmentCount is the number of ranges every classification produces.
const SegmentCount = 4

// boundaryGap separates the max of a segment from the min of the one above it.
const boundaryGap = 0.01

// Palette returns the four segment colors in segment order. Segment 1 holds
// the highest values; with invert the high end is painted as worst.
func Palette(invert bool) [SegmentCount]string {
	if invert {
		return [SegmentCount]string{ColorWorst, ColorWarn, ColorGood, ColorBest}
	}
	return [SegmentCount]string{ColorBest, ColorGood, ColorWarn, ColorWorst}
}

type bounds struct{ min, max float64 }

// rawStrategy computes untightened segment bounds over a non-empty value set.
type rawStrategy func(values []float64) [SegmentCount]bounds

var strategies = map[ClassificationMode]rawStrategy{
	ModeEqualCount:    equalCountBounds,
	ModeEqualInterval: fromTopBounds,
	ModeValueQuartile: fromTopBounds,
}

// Classify computes the four ranges for values under mode. Manual mode has no
// strategy and yields nil; callers keep the stored ranges in that case. An
// empty value set yields four zero-width segments.
func Classify(mode ClassificationMode, values []float64, invert bool) []Range {
	strategy, ok := strategies[mode]
	if !ok {
		return nil
	}

	palette := Palette(invert)
	ranges := make([]Range, SegmentCount)
	if len(values) == 0 {
		for i := range ranges {
			ranges[i] = Range{Color: palette[i]}
		}
		return ranges
	}

	raw := tighten(strategy(values))
	for i, b := range raw {
		ranges[i] = Range{Min: b.min, Max: b.max, Color: palette[i]}
	}
	return ranges
}

// equalCountSizes splits n values into four groups as evenly as possible,
// earlier groups taking the remainder. Fifty values split 13-13-12-12.
func equalCountSizes(n int) [SegmentCount]int {
	if n <= 0 {
		return [SegmentCount]int{}
	}
	if n == 50 {
		return [SegmentCount]int{13, 13, 12, 12}
	}
	var sizes [SegmentCount]int
	base, rem := n/SegmentCount, n%SegmentCount
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

func equalCountBounds(values []float64) [SegmentCount]bounds {
	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	var out [SegmentCount]bounds
	start := 0
	for i, size := range equalCountSizes(len(sorted)) {
		group := sorted[start : start+size]
		if len(group) == 0 {
			// Fewer values than segments: the group collapses onto the global min.
			last := sorted[len(sorted)-1]
			out[i] = bounds{min: last, max: last}
			continue
		}
		out[i] = bounds{min: group[len(group)-1], max: group[0]}
		start += size
	}
	return out
}

// fromTopBounds splits [min, max] into four equal intervals, segment k
// spanning max-k*step to max-(k-1)*step.
func fromTopBounds(values []float64) [SegmentCount]bounds {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	step := (hi - lo) / SegmentCount

	var out [SegmentCount]bounds
	for i := range out {
		k := float64(i + 1)
		out[i] = bounds{min: hi - k*step, max: hi - (k-1)*step}
	}
	out[SegmentCount-1].min = lo
	return out
}

// tighten applies the shared post-processing: segment 1 keeps the global max,
// every lower segment tops out boundaryGap below the min of the segment above
// it, and every bound is clamped at zero and rounded to two decimals.
func tighten(raw [SegmentCount]bounds) [SegmentCount]bounds {
	var out [SegmentCount]bounds
	for i, b := range raw {
		hi := b.max
		if i > 0 {
			hi = out[i-1].min - boundaryGap
		}
		hi = round2(math.Max(hi, 0))
		lo := round2(math.Max(b.min, 0))
		if lo > hi {
			lo = hi
		}
		out[i] = bounds{min: lo, max: hi}
	}
	return out
}

// SelectValues picks the classification input from a series' observations.
// Equal-count and equal-interval look at the latest period that appears in
// any observation; value-quartile looks at every period. Null values are
// skipped. Manual mode selects nothing.
func SelectValues(mode ClassificationMode, observations []Observation) []float64 {
	switch mode {
	case ModeEqualCount, ModeEqualInterval:
		latest, ok := latestPeriod(observations)
		if !ok {
			return nil
		}
		var values []float64
		for _, o := range observations {
			if v := o.Values[latest]; v != nil {
				values = append(values, *v)
			}
		}
		return values
	case ModeValueQuartile:
		var values []float64
		for _, o := range observations {
			for _, v := range o.Values {
				if v != nil {
					values = append(values, *v)
				}
			}
		}
		return values
	default:
		return nil
	}
}

func latestPeriod(observations []Observation) (int, bool) {
	latest, found := 0, false
	for _, o := range observations {
		for year := range o.Values {
			if !found || year > latest {
				latest, found = year, true
			}
		}
	}
	return latest, found
}
