package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedCoordinate reports a coordinate field that could not be parsed
// as decimal degrees or DMS notation. Per-row and recoverable: the row is
// rejected, the load continues.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

// SchemaError is fatal for the whole load: one or more required columns are
// absent from the input table. It is reported once, before any row processing.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input is missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// RejectReason classifies why a single input row was dropped.
type RejectReason string

const (
	// ReasonMalformedCoordinate: lat/long text unparseable, or an invalid
	// hemisphere letter.
	ReasonMalformedCoordinate RejectReason = "malformed_coordinate"
	// ReasonMissingTaxonomy: family, genus, or species cell is empty.
	ReasonMissingTaxonomy RejectReason = "missing_taxonomy"
	// ReasonBadYear: year is not a positive integer, or lies in the future.
	ReasonBadYear RejectReason = "bad_year"
	// ReasonOutOfRegion: coordinates parse but fall outside the Montana
	// bounding box. Content-level, distinct from parse failure.
	ReasonOutOfRegion RejectReason = "out_of_region"
)

// Rejection records one dropped row. Row is the 1-based spreadsheet row
// number counting the header, so it matches what the user sees in Excel.
type Rejection struct {
	Row    int          `json:"row"`
	Reason RejectReason `json:"reason"`
	Detail string       `json:"detail,omitempty"`
}
