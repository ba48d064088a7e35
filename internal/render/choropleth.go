// Package render draws the county choropleth pair and encodes export
// rasters. Geometry is drawn from the state-plane projection prepared at
// boundary load; no reprojection happens per render.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/ctessum/geom"
	"github.com/fogleman/gg"

	"github.com/Ahmadjajja/montana-specimens-mapper/internal/domain"
	"github.com/Ahmadjajja/montana-specimens-mapper/internal/geo"
)

// Options control raster dimensions. Scale multiplies the base size: 1.0 for
// the interactive view, 3.0 for the 300 DPI print export. It is a resolution
// parameter only; the data path is identical.
type Options struct {
	Width  int
	Height int
	Scale  float64
}

// MapPair holds the two rendered variants for one generate request:
// A (records ≤ cutoff year) and B (all data).
type MapPair struct {
	ID    string
	Title string
	Year  int
	MapA  image.Image
	MapB  image.Image
}

// Renderer draws choropleths over a fixed boundary set.
type Renderer struct {
	set  *geo.CountySet
	opts Options
}

// New creates a renderer. The boundary set is shared read-only state.
func New(set *geo.CountySet, opts Options) *Renderer {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	return &Renderer{set: set, opts: opts}
}

// Pair renders both map variants, sharing boundary geometry and legend and
// differing only in per-county fill.
func (r *Renderer) Pair(id string, sel domain.Selection, upTo, allTime map[string]int) *MapPair {
	title := sel.Title()
	return &MapPair{
		ID:    id,
		Title: title,
		Year:  sel.Year,
		MapA:  r.renderOne(upTo, title, fmt.Sprintf("Map A <= %d", sel.Year)),
		MapB:  r.renderOne(allTime, title, "Map B: All data"),
	}
}

func (r *Renderer) renderOne(counts map[string]int, title, caption string) image.Image {
	k := r.opts.Scale
	w := int(math.Round(float64(r.opts.Width) * k))
	h := int(math.Round(float64(r.opts.Height) * k))

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	tx := r.planeToCanvas(float64(w), float64(h), 40*k)

	dc.SetFillRule(gg.FillRuleEvenOdd)
	for _, county := range r.set.Counties() {
		tracePolygonal(dc, county.Projected, tx)
		dc.SetHexColor(domain.BucketFor(counts[county.Name]).Color())
		dc.FillPreserve()
		dc.SetHexColor("#000000")
		dc.SetLineWidth(0.5 * k)
		dc.Stroke()
	}

	dc.SetHexColor("#231f20")
	dc.DrawStringAnchored(title, float64(w)/2, 14*k, 0.5, 0.5)
	dc.DrawStringAnchored(caption, float64(w)/2, 28*k, 0.5, 0.5)
	r.drawLegend(dc, float64(w), float64(h), k)

	return dc.Image()
}

// planeToCanvas builds the state-plane → pixel transform: uniform scale to
// fit the padded boundary extent, centered, with the Y axis flipped so north
// is up.
func (r *Renderer) planeToCanvas(w, h, margin float64) func(geom.Point) (float64, float64) {
	b := projectedBounds(r.set)
	dx := b.Max.X - b.Min.X
	dy := b.Max.Y - b.Min.Y

	// Pad the extent by 5% on each side so borders never touch the edge.
	padX, padY := dx*0.05, dy*0.05
	minX, maxY := b.Min.X-padX, b.Max.Y+padY
	dx += 2 * padX
	dy += 2 * padY

	innerW := w - 2*margin
	innerH := h - 2*margin
	s := math.Min(innerW/dx, innerH/dy)
	ox := margin + (innerW-dx*s)/2
	oy := margin + (innerH-dy*s)/2

	return func(p geom.Point) (float64, float64) {
		return ox + (p.X-minX)*s, oy + (maxY-p.Y)*s
	}
}

func projectedBounds(set *geo.CountySet) *geom.Bounds {
	b := geom.NewBounds()
	for _, c := range set.Counties() {
		b.Extend(c.Projected.Bounds())
	}
	return b
}

// tracePolygonal adds every ring of the polygonal as a closed subpath.
// Interior rings become holes under the even-odd fill rule.
func tracePolygonal(dc *gg.Context, p geom.Polygonal, tx func(geom.Point) (float64, float64)) {
	dc.ClearPath()
	for _, poly := range p.Polygons() {
		for _, ring := range poly {
			if len(ring) == 0 {
				continue
			}
			dc.NewSubPath()
			x, y := tx(ring[0])
			dc.MoveTo(x, y)
			for _, pt := range ring[1:] {
				x, y = tx(pt)
				dc.LineTo(x, y)
			}
			dc.ClosePath()
		}
	}
}

// drawLegend paints the shared bucket legend at the lower right.
func (r *Renderer) drawLegend(dc *gg.Context, w, h, k float64) {
	swatch := 12 * k
	rowGap := 6 * k
	x := w - 110*k
	y := h - (swatch+rowGap)*float64(len(domain.Buckets())) - 12*k

	for _, b := range domain.Buckets() {
		dc.SetHexColor(b.Color())
		dc.DrawRectangle(x, y, swatch, swatch)
		dc.FillPreserve()
		dc.SetHexColor("#000000")
		dc.SetLineWidth(0.5 * k)
		dc.Stroke()
		dc.SetHexColor("#231f20")
		dc.DrawStringAnchored(b.Label(), x+swatch+6*k, y+swatch/2, 0, 0.4)
		y += swatch + rowGap
	}
}
