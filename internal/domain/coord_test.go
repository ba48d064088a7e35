package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Decimal(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		direction string
		want      float64
	}{
		{"plain decimal north", "46.5927", "N", 46.5927},
		{"plain decimal west", "112.0391", "W", -112.0391},
		{"integer degrees", "47", "N", 47},
		{"whitespace padded", "  46.5927 ", "N", 46.5927},
		{"lowercase direction", "46.5927", "n", 46.5927},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.direction)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalize_DMS(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		direction string
		want      float64
	}{
		{"ascii symbols", `46°35'30"`, "N", 46.0 + 35.0/60 + 30.0/3600},
		{"unicode primes", "46°35′30″", "N", 46.0 + 35.0/60 + 30.0/3600},
		{"degrees and decimal minutes", "44°41.576'", "N", 44.0 + 41.576/60},
		{"missing seconds, west", "112°2'", "W", -(112.0 + 2.0/60)},
		{"whitespace separated", "46 35 30", "N", 46.0 + 35.0/60 + 30.0/3600},
		{"curly quote seconds", "46°35'30”", "N", 46.0 + 35.0/60 + 30.0/3600},
		{"masculine ordinal degree", "46º35'30\"", "N", 46.0 + 35.0/60 + 30.0/3600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.direction)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalize_DirectionOverridesSign(t *testing.T) {
	south, err := Normalize("45.0", "S")
	require.NoError(t, err)
	assert.Equal(t, -45.0, south)

	alsoSouth, err := Normalize("-45.0", "S")
	require.NoError(t, err)
	assert.Equal(t, -45.0, alsoSouth)

	north, err := Normalize("-45.0", "N")
	require.NoError(t, err)
	assert.Equal(t, 45.0, north)
}

func TestNormalize_Failures(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		direction string
	}{
		{"empty value", "", "N"},
		{"garbage", "north of the river", "N"},
		{"minutes out of range", `46°61'0"`, "N"},
		{"seconds out of range", `46°35'60"`, "N"},
		{"invalid direction", "46.5", "Q"},
		{"empty direction", "46.5", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, tt.direction)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedCoordinate)
		})
	}
}

// Formatting a normalized DMS value back to DMS and re-normalizing recovers
// the same decimal degrees within float tolerance.
func TestNormalize_DMSRoundTrip(t *testing.T) {
	inputs := []string{
		`46°35'30"`,
		`44°41'34.56"`,
		`48°0'0.25"`,
		`45°59'59.99"`,
	}
	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			first, err := Normalize(raw, "N")
			require.NoError(t, err)

			second, err := Normalize(FormatDMS(first), "N")
			require.NoError(t, err)
			assert.InDelta(t, first, second, 1e-6)
		})
	}
}

func TestFormatDMS_SecondsCarry(t *testing.T) {
	// 46.99999999° would naively format as 46°59'60.00".
	assert.Equal(t, `47°0'00.00"`, FormatDMS(46.99999999))
}

func TestInRegion(t *testing.T) {
	assert.True(t, InRegion(46.6, -112.0))
	assert.True(t, InRegion(44.0, -116.0)) // corner inclusive
	assert.False(t, InRegion(50.0, -112.0))
	assert.False(t, InRegion(46.6, -103.9))
	assert.False(t, InRegion(-46.6, -112.0)) // southern mirror point
}
