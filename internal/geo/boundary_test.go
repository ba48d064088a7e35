package geo

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareCounty builds a synthetic square boundary in lon/lat space. Tests
// substitute these for the real shapefile so spatial behavior is exact.
func squareCounty(name string, minLon, minLat, maxLon, maxLat float64) *County {
	poly := geom.Polygon{{
		{X: minLon, Y: minLat},
		{X: maxLon, Y: minLat},
		{X: maxLon, Y: maxLat},
		{X: minLon, Y: maxLat},
	}}
	return &County{Name: name, Geographic: poly, Projected: poly}
}

// testSet is two adjacent squares covering lon [-113,-111] × lat [45,47].
func testSet() *CountySet {
	return NewCountySet([]*County{
		squareCounty("West", -113, 45, -112, 47),
		squareCounty("East", -112, 45, -111, 47),
	})
}

func TestNewCountySet_SortsByName(t *testing.T) {
	set := testSet()
	assert.Equal(t, []string{"East", "West"}, set.Names())
	assert.Equal(t, 2, set.Len())
}

func TestLocate(t *testing.T) {
	set := testSet()

	t.Run("interior point", func(t *testing.T) {
		c := set.Locate(-112.5, 46.0)
		require.NotNil(t, c)
		assert.Equal(t, "West", c.Name)
	})

	t.Run("other county", func(t *testing.T) {
		c := set.Locate(-111.5, 46.0)
		require.NotNil(t, c)
		assert.Equal(t, "East", c.Name)
	})

	t.Run("outside every polygon", func(t *testing.T) {
		assert.Nil(t, set.Locate(-110.0, 46.0))
	})

	t.Run("boundary point is contained", func(t *testing.T) {
		assert.NotNil(t, set.Locate(-112.5, 45.0))
	})

	t.Run("stable across repeated calls", func(t *testing.T) {
		// A point on the shared edge may fall in either square, but must
		// fall in the same one every time.
		first := set.Locate(-112.0, 46.0)
		require.NotNil(t, first)
		for i := 0; i < 50; i++ {
			again := set.Locate(-112.0, 46.0)
			require.NotNil(t, again)
			assert.Equal(t, first.Name, again.Name)
		}
	})
}

func TestLoadShapefile_MissingFile(t *testing.T) {
	_, err := LoadShapefile("testdata/does-not-exist.shp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open county shapefile")
}
