// Command validate performs offline integrity checks on a specimen workbook
// before it is loaded into the mapping service: required columns, coordinate
// and year parsing, the Montana bounding box, and (when a shapefile is given)
// the point-to-county join.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -workbook data/specimens.xlsx \
//	  -shapefile shapefiles/cb_2021_us_county_5m.shp
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Ahmadjajja/montana-specimens-mapper/internal/domain"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/excel"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/geo"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	workbook := flag.String("workbook", "", "path to the specimen xlsx workbook")
	shapefile := flag.String("shapefile", "", "optional county shapefile for join coverage checks")
	flag.Parse()

	if *workbook == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*workbook, *shapefile); code != 0 {
		os.Exit(code)
	}
}

func run(workbookPath, shapefilePath string) int {
	fmt.Println("=== Specimen Workbook Validation ===")
	fmt.Println()

	table, err := excel.ReadTableFile(workbookPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read workbook: %v\n", err)
		return 1
	}

	schema := &phase{name: "Phase 1: Schema (required columns)"}
	records, rejections, err := domain.Validate(table)
	if err != nil {
		var schemaErr *domain.SchemaError
		if errors.As(err, &schemaErr) {
			for _, col := range schemaErr.Missing {
				schema.errorf("missing required column %q", col)
			}
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: validate: %v\n", err)
			return 1
		}
	}

	rows := validateRows(rejections)
	phases := []*phase{schema, rows}

	if schema.passed() {
		if shapefilePath != "" {
			phases = append(phases, validateCountyJoin(records, shapefilePath))
		}
		phases = append(phases, validateTaxonomy(records))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d total, %d valid, %d rejected\n", len(table.Rows), len(records), len(rejections))
	printStats(records, rejections)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateRows reports every rejected row. A workbook with rejections still
// loads, but curators want the list to fix the source data.
func validateRows(rejections []domain.Rejection) *phase {
	p := &phase{name: "Phase 2: Row Validation (parse + region)"}
	for _, r := range rejections {
		p.errorf("row %d: %s: %s", r.Row, r.Reason, r.Detail)
	}
	return p
}

// validateCountyJoin checks that every valid point lands in a county polygon.
// Points inside the bounding box but outside all polygons are usually bad
// digitization near the state border.
func validateCountyJoin(records []domain.SpecimenRecord, shapefilePath string) *phase {
	p := &phase{name: "Phase 3: County Join (shapefile)"}

	counties, err := geo.LoadShapefile(shapefilePath)
	if err != nil {
		p.errorf("load shapefile: %v", err)
		return p
	}
	fmt.Printf("  loaded %d county boundaries\n", counties.Len())

	for i, rec := range records {
		if counties.Locate(rec.Longitude, rec.Latitude) == nil {
			p.errorf("record %d (%s %s, %.4f, %.4f): no containing county",
				i, rec.Genus, rec.Species, rec.Latitude, rec.Longitude)
		}
	}
	return p
}

// validateTaxonomy flags rank values that look like data-entry slips: a genus
// appearing under multiple families usually means a misfiled row.
func validateTaxonomy(records []domain.SpecimenRecord) *phase {
	p := &phase{name: "Phase 4: Taxonomy Consistency"}

	familiesByGenus := map[string]map[string]bool{}
	for _, rec := range records {
		if familiesByGenus[rec.Genus] == nil {
			familiesByGenus[rec.Genus] = map[string]bool{}
		}
		familiesByGenus[rec.Genus][rec.Family] = true
	}
	for genus, families := range familiesByGenus {
		if len(families) > 1 {
			names := make([]string, 0, len(families))
			for f := range families {
				names = append(names, f)
			}
			p.errorf("genus %q appears under %d families: %v", genus, len(families), names)
		}
	}
	return p
}

func printStats(records []domain.SpecimenRecord, rejections []domain.Rejection) {
	byReason := map[domain.RejectReason]int{}
	for _, r := range rejections {
		byReason[r.Reason]++
	}
	if len(byReason) > 0 {
		fmt.Printf("Rejections by reason:")
		for _, reason := range []domain.RejectReason{
			domain.ReasonMalformedCoordinate,
			domain.ReasonMissingTaxonomy,
			domain.ReasonBadYear,
			domain.ReasonOutOfRegion,
		} {
			if n := byReason[reason]; n > 0 {
				fmt.Printf(" %s=%d", reason, n)
			}
		}
		fmt.Println()
	}

	if len(records) == 0 {
		return
	}
	index := domain.BuildIndex(records)
	yearMin, yearMax := index.YearRange()
	fmt.Printf("Years: %d-%d\n", yearMin, yearMax)
	fmt.Printf("Taxa: %d families, %d genera, %d species\n",
		len(index.Families()),
		len(index.Genera(domain.Wildcard)),
		len(index.Species(domain.Wildcard, domain.Wildcard)))
}
