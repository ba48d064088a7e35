package geo

import (
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/domain"
)

// CountResult is the per-county tally from one aggregation pass. Counts
// carries an entry for every county in the set, zero when nothing matched.
// Unmatched counts in-region points that landed in no polygon; they are
// excluded from county totals but never dropped silently.
type CountResult struct {
	Counts    map[string]int `json:"counts"`
	Unmatched int            `json:"unmatched"`
}

// CountByCounty assigns each record to the county containing its point and
// tallies per-county totals. Records are visited in slice order and the
// boundary set is never mutated, so the result is exactly reproducible for
// the same inputs.
func CountByCounty(records []domain.SpecimenRecord, set *CountySet) CountResult {
	counts := make(map[string]int, set.Len())
	for _, name := range set.Names() {
		counts[name] = 0
	}

	unmatched := 0
	for _, r := range records {
		c := set.Locate(r.Longitude, r.Latitude)
		if c == nil {
			unmatched++
			continue
		}
		counts[c.Name]++
	}
	return CountResult{Counts: counts, Unmatched: unmatched}
}

// Aggregate produces the cutoff-year and all-time tallies as two independent
// passes over the same selection subset. The all-time pass ignores the cutoff
// entirely; neither result shares state with the other.
func Aggregate(records []domain.SpecimenRecord, set *CountySet, cutoffYear int) (upTo, allTime CountResult) {
	filtered := make([]domain.SpecimenRecord, 0, len(records))
	for _, r := range records {
		if r.Year <= cutoffYear {
			filtered = append(filtered, r)
		}
	}
	return CountByCounty(filtered, set), CountByCounty(records, set)
}
