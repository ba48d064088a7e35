// Command genmock generates a mock specimen workbook for exercising the
// mapping service without herbarium data. Rows mix decimal and DMS coordinate
// notation and include a configurable share of malformed and out-of-state
// rows so validation paths get coverage too. A fixed seed makes the output
// reproducible.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock_specimens.xlsx -rows 500 -seed 1
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strconv"

	"github.com/Ahmadjajja/montana-specimens-mapper/internal/domain"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/excel"
)

// taxon is one family/genus/species combination the generator samples from.
// All are plants documented in Montana.
type taxon struct {
	family  string
	genus   string
	species string
}

var taxa = []taxon{
	{"Asteraceae", "Solidago", "canadensis"},
	{"Asteraceae", "Solidago", "missouriensis"},
	{"Asteraceae", "Achillea", "millefolium"},
	{"Asteraceae", "Balsamorhiza", "sagittata"},
	{"Pinaceae", "Pinus", "ponderosa"},
	{"Pinaceae", "Pinus", "contorta"},
	{"Pinaceae", "Pseudotsuga", "menziesii"},
	{"Rosaceae", "Rosa", "woodsii"},
	{"Rosaceae", "Prunus", "virginiana"},
	{"Salicaceae", "Populus", "tremuloides"},
	{"Salicaceae", "Salix", "exigua"},
	{"Poaceae", "Festuca", "idahoensis"},
	{"Poaceae", "Pseudoroegneria", "spicata"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the xlsx workbook")
	rows := flag.Int("rows", 500, "number of data rows to generate")
	seed := flag.Int64("seed", 1, "random seed for reproducible output")
	badShare := flag.Float64("bad-share", 0.05, "fraction of rows made malformed or out of state")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *badShare < 0 || *badShare > 1 {
		return fmt.Errorf("-bad-share must be in [0,1], got %g", *badShare)
	}

	rng := rand.New(rand.NewSource(*seed))
	table := &domain.Table{
		Columns: []string{"lat", "lat_dir", "long", "long_dir", "family", "genus", "species", "year"},
	}

	var good, malformed, outOfState int
	for i := 0; i < *rows; i++ {
		var row []string
		switch {
		case rng.Float64() < *badShare/2:
			row = malformedRow(rng)
			malformed++
		case rng.Float64() < *badShare/2:
			row = outOfStateRow(rng)
			outOfState++
		default:
			row = specimenRow(rng)
			good++
		}
		table.Rows = append(table.Rows, row)
	}

	if err := excel.WriteTable(*out, table); err != nil {
		return err
	}

	log.Printf("wrote %s: %d rows (%d valid, %d malformed, %d out of state)",
		*out, *rows, good, malformed, outOfState)
	return nil
}

// specimenRow generates one in-state observation. Half the rows use DMS
// notation to exercise both coordinate parsers.
func specimenRow(rng *rand.Rand) []string {
	lat := domain.MinLatitude + rng.Float64()*(domain.MaxLatitude-domain.MinLatitude)
	lon := domain.MinLongitude + rng.Float64()*(domain.MaxLongitude-domain.MinLongitude)
	t := taxa[rng.Intn(len(taxa))]
	year := 1950 + rng.Intn(domain.Now().Year()-1950+1)

	latText := strconv.FormatFloat(lat, 'f', 5, 64)
	lonText := strconv.FormatFloat(-lon, 'f', 5, 64) // magnitude; W carries the sign
	if rng.Intn(2) == 0 {
		latText = domain.FormatDMS(lat)
		lonText = domain.FormatDMS(lon)
	}

	return []string{latText, "N", lonText, "W", t.family, t.genus, t.species, strconv.Itoa(year)}
}

// malformedRow generates a row the validator must reject at parse time.
func malformedRow(rng *rand.Rand) []string {
	t := taxa[rng.Intn(len(taxa))]
	bad := [][]string{
		{"not-a-number", "N", "110.5", "W"},
		{"46.5", "N", "", "W"},
		{"46°75'", "N", "110.5", "W"}, // minutes out of range
		{"46.5", "Q", "110.5", "W"},   // bad hemisphere letter
	}
	cells := bad[rng.Intn(len(bad))]
	return append(cells, t.family, t.genus, t.species, "1990")
}

// outOfStateRow generates a parseable point outside the Montana box.
func outOfStateRow(rng *rand.Rand) []string {
	t := taxa[rng.Intn(len(taxa))]
	lat := 30 + rng.Float64()*10 // well south of the state line
	lon := 95 + rng.Float64()*5
	return []string{
		strconv.FormatFloat(lat, 'f', 5, 64), "N",
		strconv.FormatFloat(lon, 'f', 5, 64), "W",
		t.family, t.genus, t.species, "1985",
	}
}
