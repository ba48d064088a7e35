package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Montana bounding box in signed decimal degrees, checked after hemisphere
// correction.
const (
	MinLatitude  = 44.0
	MaxLatitude  = 49.0
	MinLongitude = -116.0
	MaxLongitude = -104.0
)

var (
	// dmsRe parses "<deg>°<min>'<sec>\"" with seconds optional, after unicode
	// symbols have been folded to ASCII, e.g. `46°35'30"` or `44°41.576'`.
	dmsRe = regexp.MustCompile(`^(\d+)\s*[°\s]\s*(\d+(?:\.\d+)?)\s*'?\s*(\d+(?:\.\d+)?)?\s*"?$`)

	// symbolFolder maps unicode degree/minute/second variants typed by data
	// entry tools onto their ASCII equivalents.
	symbolFolder = strings.NewReplacer(
		"º", "°",
		"′", "'", "’", "'", "‘", "'",
		"″", `"`, "”", `"`, "“", `"`,
		" ", " ",
	)
)

// Normalize parses a raw coordinate value in decimal or DMS notation and
// applies the hemisphere letter. The letter is authoritative over any sign
// embedded in the text: S and W force the result negative, N and E force it
// non-negative. Failures wrap ErrMalformedCoordinate.
func Normalize(raw, direction string) (float64, error) {
	magnitude, err := parseMagnitude(raw)
	if err != nil {
		return 0, err
	}

	switch strings.ToUpper(strings.TrimSpace(direction)) {
	case "N", "E":
		return magnitude, nil
	case "S", "W":
		return -magnitude, nil
	default:
		return 0, fmt.Errorf("%w: invalid direction %q", ErrMalformedCoordinate, direction)
	}
}

// parseMagnitude converts the raw text to unsigned decimal degrees. A leading
// sign is discarded; only the hemisphere letter decides the sign.
func parseMagnitude(raw string) (float64, error) {
	s := strings.TrimSpace(symbolFolder.Replace(raw))
	s = strings.TrimLeft(s, "+-")
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrMalformedCoordinate)
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	m := dmsRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCoordinate, raw)
	}

	deg, _ := strconv.ParseFloat(m[1], 64)
	minutes, _ := strconv.ParseFloat(m[2], 64)
	seconds := 0.0
	if m[3] != "" {
		seconds, _ = strconv.ParseFloat(m[3], 64)
	}

	if minutes >= 60 {
		return 0, fmt.Errorf("%w: minutes %g out of range in %q", ErrMalformedCoordinate, minutes, raw)
	}
	if seconds >= 60 {
		return 0, fmt.Errorf("%w: seconds %g out of range in %q", ErrMalformedCoordinate, seconds, raw)
	}

	return deg + minutes/60 + seconds/3600, nil
}

// FormatDMS renders the magnitude of a decimal-degree value back into
// degrees/minutes/seconds notation, e.g. 46.5917 → `46°35'30.00"`. Used by
// reports and by the mock-data generator; the sign is dropped because the
// hemisphere letter carries it.
func FormatDMS(value float64) string {
	v := math.Abs(value)
	deg := math.Floor(v)
	rem := (v - deg) * 60
	minutes := math.Floor(rem)
	seconds := (rem - minutes) * 60

	// Roll over carry from float rounding at the top of the seconds scale.
	if seconds >= 59.995 {
		seconds = 0
		minutes++
		if minutes >= 60 {
			minutes = 0
			deg++
		}
	}

	return fmt.Sprintf(`%.0f°%.0f'%05.2f"`, deg, minutes, seconds)
}

// InRegion reports whether a corrected coordinate pair lies inside the
// Montana bounding box.
func InRegion(lat, lon float64) bool {
	return lat >= MinLatitude && lat <= MaxLatitude &&
		lon >= MinLongitude && lon <= MaxLongitude
}
