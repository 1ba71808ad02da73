package territory

import "sort"

// Predicate selects territories for the reducers below.
type Predicate func(Territory) bool

// Assigned matches territories held by any franchise.
func Assigned() Predicate {
	return func(t Territory) bool { return t.Assigned() }
}

// Unassigned matches territories no franchise holds.
func Unassigned() Predicate {
	return func(t Territory) bool { return !t.Assigned() }
}

// AssignedTo matches territories held by franchiseID.
func AssignedTo(franchiseID uint) Predicate {
	return func(t Territory) bool {
		return t.Assigned() && *t.AssignedFranchiseID == franchiseID
	}
}

// InRegion matches territories of a region.
func InRegion(region string) Predicate {
	return func(t Territory) bool { return t.Region == region }
}

// WithStatus matches territories in status s.
func WithStatus(s Status) Predicate {
	return func(t Territory) bool { return t.Status == s }
}

// Filter keeps territories matching every predicate.
func Filter(ts []Territory, preds ...Predicate) []Territory {
	out := make([]Territory, 0, len(ts))
next:
	for _, t := range ts {
		for _, p := range preds {
			if !p(t) {
				continue next
			}
		}
		out = append(out, t)
	}
	return out
}

// Count returns how many territories match every predicate.
func Count(ts []Territory, preds ...Predicate) int {
	return len(Filter(ts, preds...))
}

// CountByStatus counts territories per lifecycle status. Every status is
// present in the result, zero when absent.
func CountByStatus(ts []Territory) map[Status]int {
	counts := map[Status]int{
		StatusEligible: 0,
		StatusReserved: 0,
		StatusClosed:   0,
	}
	for _, t := range ts {
		counts[t.Status]++
	}
	return counts
}

// TotalMondays sums the capacity of territories matching every predicate.
func TotalMondays(ts []Territory, preds ...Predicate) int {
	total := 0
	for _, t := range Filter(ts, preds...) {
		total += t.MondaysAvailable
	}
	return total
}

type RegionSummary struct {
	Region      string `json:"region"`
	Territories int    `json:"territories"`
	Mondays     int    `json:"mondays"`
}

// GroupByRegion summarises territories per region, regions in order of first
// appearance.
func GroupByRegion(ts []Territory) []RegionSummary {
	idx := make(map[string]int)
	var out []RegionSummary
	for _, t := range ts {
		i, ok := idx[t.Region]
		if !ok {
			i = len(out)
			idx[t.Region] = i
			out = append(out, RegionSummary{Region: t.Region})
		}
		out[i].Territories++
		out[i].Mondays += t.MondaysAvailable
	}
	return out
}

// TopByMondays returns the n territories with the most capacity, largest
// first. Ties keep their original order. The input is not modified.
func TopByMondays(ts []Territory, n int) []Territory {
	if n <= 0 {
		return []Territory{}
	}
	ranked := make([]Territory, len(ts))
	copy(ranked, ts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MondaysAvailable > ranked[j].MondaysAvailable
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
