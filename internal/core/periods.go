package core

import "sort"

// PeriodSync is the registry content computed from a committed batch.
type PeriodSync struct {
	Periods []Period // Replacement registry, ascending, all enabled
	Dropped []int    // Years in the previous registry that the replacement omits
}

// ComputePeriods derives the replacement period registry from the plans of a
// committed batch. The registry is replaced wholesale, so years registered by
// an earlier batch but absent here are dropped even though their observation
// values stay in storage; Dropped reports them.
func ComputePeriods(plans []*FilePlan, current []Period) PeriodSync {
	union := make(map[int]bool)
	for _, p := range plans {
		for _, year := range p.Periods {
			union[year] = true
		}
	}

	years := make([]int, 0, len(union))
	for y := range union {
		years = append(years, y)
	}
	sort.Ints(years)

	sync := PeriodSync{Periods: make([]Period, len(years))}
	for i, y := range years {
		sync.Periods[i] = Period{Year: y, Enabled: true}
	}

	for _, p := range current {
		if !union[p.Year] {
			sync.Dropped = append(sync.Dropped, p.Year)
		}
	}
	sort.Ints(sync.Dropped)

	return sync
}
