// Package domain models Montana specimen collection records.
//
// # Data Source
//
// Specimen observations arrive as a spreadsheet with exactly eight columns:
// lat, lat_dir, long, long_dir, family, genus, species, year. Column names are
// case-sensitive and must match exactly; a missing column fails the whole load
// before any row is examined. The data comes from digitized herbarium and
// collection sheets, so the coordinate fields mix notations freely.
//
// # Coordinate Conventions
//
// Coordinate format (per field, decimal or DMS):
//
//	"46.5927"            →  plain decimal degrees
//	"46°35'30\""         →  degrees, minutes, seconds
//	"44°41.576'"         →  degrees and decimal minutes, seconds omitted
//	Unicode prime (′), double prime (″), curly quotes, and the masculine
//	ordinal (º) are accepted as synonyms for the ASCII symbols.
//
// Conversion: decimal = degrees + minutes/60 + seconds/3600. Minutes and
// seconds must lie in [0,60); out-of-range components are a parse failure,
// never wrapped.
//
// Hemisphere rule:
//
//	The direction column (N/S for latitude, E/W for longitude) is authoritative
//	over any sign embedded in the raw text. "45.0" with direction S and
//	"-45.0" with direction S both normalize to -45.0. Field sheets are
//	inconsistent about signing western longitudes, so the letter wins.
//
// Region bounds:
//
//	Montana spans roughly 44°N–49°N and 104°W–116°W. Records whose corrected
//	coordinates fall outside [44,49] × [-116,-104] are rejected with a
//	distinct out_of_region reason so bad data can be told apart from bad
//	format.
//
// # Count Buckets
//
// County specimen counts map to a five-step ordinal grayscale ramp used by
// both map variants and the shared legend:
//
//	0         white
//	1–10      #e7e8e9
//	11–100    #bcbec0
//	101–1000  #939598
//	>1000     #231f20
//
// Bucket bounds are inclusive on both ends; the top bucket is open-ended.
package domain
