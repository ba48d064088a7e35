package domain

import "strings"

// RequiredColumns are the eight input columns, matched case-sensitively.
var RequiredColumns = []string{"lat", "lat_dir", "long", "long_dir", "family", "genus", "species", "year"}

// Table is the untyped tabular input as read from the workbook. Nothing past
// the validator operates on it.
type Table struct {
	Columns []string
	Rows    [][]string
}

// SpecimenRecord is one validated observation. Constructed only after
// validation succeeds and immutable thereafter. Taxonomy fields keep their
// original casing for display; comparisons are case-insensitive.
type SpecimenRecord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Family    string  `json:"family"`
	Genus     string  `json:"genus"`
	Species   string  `json:"species"`
	Year      int     `json:"year"`
}

// Selection is the active Family/Genus/Species choice plus the cutoff year
// for the "≤ year" map variant. Each taxonomy level may be the wildcard.
type Selection struct {
	Family  string `json:"family"`
	Genus   string `json:"genus"`
	Species string `json:"species"`
	Year    int    `json:"year"`
}

// Wildcard is the selection value meaning "no restriction at this level".
// Matched case-insensitively; the empty string is treated the same way.
const Wildcard = "all"

// Title renders the selection as the map heading, e.g.
// "Asteraceae > Solidago > missouriensis".
func (s Selection) Title() string {
	return displayLevel(s.Family) + " > " + displayLevel(s.Genus) + " > " + displayLevel(s.Species)
}

func displayLevel(v string) string {
	if isWildcard(v) {
		return "All"
	}
	return strings.TrimSpace(v)
}

func isWildcard(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, Wildcard)
}
