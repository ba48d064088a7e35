package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validate checks the table schema and converts rows to SpecimenRecords.
// A missing required column returns a *SchemaError before any row is read.
// Per-row failures are accumulated as Rejections and never interrupt the
// pass; the input table is not mutated.
func Validate(t *Table) ([]SpecimenRecord, []Rejection, error) {
	idx, err := columnIndex(t.Columns)
	if err != nil {
		return nil, nil, err
	}

	var (
		valid    []SpecimenRecord
		rejected []Rejection
	)
	for i, row := range t.Rows {
		// Row numbering matches the spreadsheet: header is row 1.
		rowNum := i + 2
		rec, rej := validateRow(idx, rowNum, row)
		if rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		valid = append(valid, rec)
	}
	return valid, rejected, nil
}

// columnIndex resolves required column positions, collecting every missing
// name so the schema error reports them all at once.
func columnIndex(columns []string) (map[string]int, error) {
	idx := make(map[string]int, len(columns))
	for i, name := range columns {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return idx, nil
}

func validateRow(idx map[string]int, rowNum int, row []string) (SpecimenRecord, *Rejection) {
	cell := func(name string) string {
		i := idx[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	lat, err := Normalize(cell("lat"), cellDir(cell("lat_dir"), "N", "S"))
	if err != nil {
		return SpecimenRecord{}, &Rejection{Row: rowNum, Reason: ReasonMalformedCoordinate, Detail: "lat: " + err.Error()}
	}
	lon, err := Normalize(cell("long"), cellDir(cell("long_dir"), "E", "W"))
	if err != nil {
		return SpecimenRecord{}, &Rejection{Row: rowNum, Reason: ReasonMalformedCoordinate, Detail: "long: " + err.Error()}
	}

	family, genus, species := cell("family"), cell("genus"), cell("species")
	if family == "" || genus == "" || species == "" {
		return SpecimenRecord{}, &Rejection{Row: rowNum, Reason: ReasonMissingTaxonomy}
	}

	year, err := parseYear(cell("year"))
	if err != nil {
		return SpecimenRecord{}, &Rejection{Row: rowNum, Reason: ReasonBadYear, Detail: err.Error()}
	}

	if !InRegion(lat, lon) {
		return SpecimenRecord{}, &Rejection{
			Row:    rowNum,
			Reason: ReasonOutOfRegion,
			Detail: fmt.Sprintf("(%.4f, %.4f) outside Montana bounds", lat, lon),
		}
	}

	return SpecimenRecord{
		Latitude:  lat,
		Longitude: lon,
		Family:    family,
		Genus:     genus,
		Species:   species,
		Year:      year,
	}, nil
}

// cellDir narrows a direction cell to the two letters valid for its axis,
// so a longitude letter in the latitude column is a parse failure rather
// than a silently flipped hemisphere.
func cellDir(v, pos, neg string) string {
	d := strings.ToUpper(strings.TrimSpace(v))
	if d == pos || d == neg {
		return d
	}
	return "?" + d // rejected by Normalize
}

// parseYear accepts an integer, tolerating the "1987.0" float rendering that
// spreadsheet tools produce for numeric cells. Fractional or non-positive
// years and years in the future fail.
func parseYear(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty year")
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("year %q is not an integer", s)
		}
		year = int(f)
	}

	if year <= 0 {
		return 0, fmt.Errorf("year %d is not positive", year)
	}
	if current := clock.Now().Year(); year > current {
		return 0, fmt.Errorf("year %d is in the future", year)
	}
	return year, nil
}
