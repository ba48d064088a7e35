package domain

import (
	"sort"
	"strings"
)

// Index is the Family→Genus→Species containment hierarchy over a validated
// record set. It backs the cascading filter dropdowns and produces the active
// subset for a selection. Built once per load, read-only afterwards.
type Index struct {
	records []SpecimenRecord
}

// BuildIndex constructs the hierarchy from validated records.
func BuildIndex(records []SpecimenRecord) *Index {
	return &Index{records: records}
}

// Len returns the number of indexed records.
func (x *Index) Len() int { return len(x.records) }

// Families lists distinct family names, alphabetical and case-insensitive,
// display casing from the first occurrence.
func (x *Index) Families() []string {
	return x.distinct(func(r SpecimenRecord) string { return r.Family }, nil)
}

// Genera lists distinct genera within a family. The wildcard lists genera
// across all families.
func (x *Index) Genera(family string) []string {
	return x.distinct(
		func(r SpecimenRecord) string { return r.Genus },
		func(r SpecimenRecord) bool { return matchesLevel(r.Family, family) },
	)
}

// Species lists distinct species within a (family, genus) pair; either level
// may be the wildcard.
func (x *Index) Species(family, genus string) []string {
	return x.distinct(
		func(r SpecimenRecord) string { return r.Species },
		func(r SpecimenRecord) bool {
			return matchesLevel(r.Family, family) && matchesLevel(r.Genus, genus)
		},
	)
}

// Select returns the records matching the selection's taxonomy levels. The
// cutoff year is not applied here; the aggregator owns the year split. An
// empty result is a valid empty subset, not an error.
func (x *Index) Select(sel Selection) []SpecimenRecord {
	var subset []SpecimenRecord
	for _, r := range x.records {
		if matchesLevel(r.Family, sel.Family) &&
			matchesLevel(r.Genus, sel.Genus) &&
			matchesLevel(r.Species, sel.Species) {
			subset = append(subset, r)
		}
	}
	return subset
}

// YearRange returns the minimum and maximum collection year in the index.
func (x *Index) YearRange() (min, max int) {
	for _, r := range x.records {
		if min == 0 || r.Year < min {
			min = r.Year
		}
		if r.Year > max {
			max = r.Year
		}
	}
	return min, max
}

func matchesLevel(value, selected string) bool {
	return isWildcard(selected) || strings.EqualFold(strings.TrimSpace(selected), value)
}

// distinct collects unique values (case-insensitive, first-seen casing wins)
// from records passing the filter, sorted alphabetically ignoring case. The
// sort is stable so equal-folded duplicates cannot reorder between calls.
func (x *Index) distinct(value func(SpecimenRecord) string, filter func(SpecimenRecord) bool) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range x.records {
		if filter != nil && !filter(r) {
			continue
		}
		v := value(r)
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
