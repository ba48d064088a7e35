// Package geo owns the fixed county boundary set and the point-to-county
// spatial join. Boundaries are loaded once at startup and treated as
// process-wide read-only state; every aggregation call shares the same set.
package geo

import (
	"fmt"
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
)

// montanaFIPS filters the national county file down to Montana.
const montanaFIPS = "30"

// statePlaneProj4 is EPSG:32100 (NAD83 / Montana State Plane), the single
// fixed projection all rendering uses. A Lambert conformal conic keeps county
// areas and adjacency visually correct across the state's east-west extent.
const statePlaneProj4 = `+proj=lcc +lat_1=45 +lat_2=49 +lat_0=44.25 +lon_0=-109.5 +x_0=600000 +y_0=0 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs`

// geographicProj4 is the fallback source CRS when the shapefile carries no
// .prj sidecar. Census cartographic boundary files ship in NAD83 lon/lat.
const geographicProj4 = `+proj=longlat +datum=NAD83 +no_defs`

// County is one named boundary polygon, held in both coordinate spaces:
// geographic (lon/lat) for point membership, projected (state plane meters)
// for rendering.
type County struct {
	Name       string
	Geographic geom.Polygonal
	Projected  geom.Polygonal
}

// Bounds implements rtree.Spatial over the geographic polygon.
func (c *County) Bounds() *geom.Bounds {
	return c.Geographic.Bounds()
}

// Len, Points, Similar, and Transform delegate to the geographic polygon so
// *County satisfies geom.Geom, which rtree requires for stored items; the
// index itself only consults Bounds.
func (c *County) Len() int { return c.Geographic.Len() }

func (c *County) Points() func() geom.Point { return c.Geographic.Points() }

func (c *County) Similar(g geom.Geom, tol float64) bool { return c.Geographic.Similar(g, tol) }

func (c *County) Transform(t proj.Transformer) (geom.Geom, error) {
	return c.Geographic.Transform(t)
}

// CountySet is the read-only boundary context shared across aggregation and
// rendering calls. Construct via LoadShapefile in production or NewCountySet
// with a synthetic boundary list in tests.
type CountySet struct {
	counties []*County
	names    []string
	index    *rtree.Rtree
}

// NewCountySet builds the spatial index over an explicit boundary list.
// Counties are ordered by name so iteration and index construction are
// deterministic for identical input.
func NewCountySet(counties []*County) *CountySet {
	sorted := make([]*County, len(counties))
	copy(sorted, counties)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	index := rtree.NewTree(25, 50)
	names := make([]string, len(sorted))
	for i, c := range sorted {
		index.Insert(c)
		names[i] = c.Name
	}
	return &CountySet{counties: sorted, names: names, index: index}
}

// LoadShapefile reads a US county shapefile, keeps the Montana rows, and
// reprojects each polygon to the state plane. The county display name comes
// from the NAME attribute.
func LoadShapefile(path string) (*CountySet, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("open county shapefile: %w", err)
	}
	defer dec.Close()

	srcSR, err := dec.SR()
	if err != nil {
		srcSR, err = proj.Parse(geographicProj4)
		if err != nil {
			return nil, fmt.Errorf("parse fallback CRS: %w", err)
		}
	}
	planeSR, err := proj.Parse(statePlaneProj4)
	if err != nil {
		return nil, fmt.Errorf("parse state plane CRS: %w", err)
	}
	toPlane, err := srcSR.NewTransform(planeSR)
	if err != nil {
		return nil, fmt.Errorf("build projection transform: %w", err)
	}

	var counties []*County
	for {
		g, fields, more := dec.DecodeRowFields("STATEFP", "NAME")
		if !more {
			break
		}
		if fields["STATEFP"] != montanaFIPS {
			continue
		}
		poly, ok := g.(geom.Polygonal)
		if !ok {
			continue
		}
		projected, err := poly.Transform(toPlane)
		if err != nil {
			return nil, fmt.Errorf("project county %q: %w", fields["NAME"], err)
		}
		counties = append(counties, &County{
			Name:       fields["NAME"],
			Geographic: poly,
			Projected:  projected.(geom.Polygonal),
		})
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("read county shapefile: %w", err)
	}
	if len(counties) == 0 {
		return nil, fmt.Errorf("no Montana counties (STATEFP=%s) in %s", montanaFIPS, path)
	}

	return NewCountySet(counties), nil
}

// Len returns the number of counties in the set.
func (s *CountySet) Len() int { return len(s.counties) }

// Names returns county names in sorted order. The returned slice is shared;
// callers must not modify it.
func (s *CountySet) Names() []string { return s.names }

// Counties returns the boundaries in sorted-name order.
func (s *CountySet) Counties() []*County { return s.counties }

// Locate returns the county containing the geographic point, or nil when the
// point lands in no polygon (edge and precision cases). Boundary-touching
// points count as contained. Candidates come from the spatial index, which is
// built identically for identical input, so assignment is stable across runs.
func (s *CountySet) Locate(lon, lat float64) *County {
	p := geom.Point{X: lon, Y: lat}
	box := &geom.Bounds{Min: p, Max: p}
	for _, item := range s.index.SearchIntersect(box) {
		c := item.(*County)
		if p.Within(c.Geographic) != geom.Outside {
			return c
		}
	}
	return nil
}
