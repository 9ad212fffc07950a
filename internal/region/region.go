// Package region provides region-of-interest queries over projected rasters:
// surface area and separation estimates, latitude/longitude bounds, and
// area-weighted field statistics.
package region

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"gonum.org/v1/gonum/stat"

	"github.com/mapforge/cartograph/internal/projection"
	"github.com/mapforge/cartograph/internal/raster"
)

// Window is a rectangular sub-area of a projected raster, in pixel
// coordinates of a raster with the given vertical resolution.
type Window struct {
	X0     int `json:"x0"`
	Y0     int `json:"y0"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether the window has positive extent and lies inside a
// raster of the given dimensions.
func (w Window) Valid(rasterWidth, rasterHeight int) bool {
	return w.Width > 0 && w.Height > 0 &&
		w.X0 >= 0 && w.Y0 >= 0 &&
		w.X0+w.Width <= rasterWidth && w.Y0+w.Height <= rasterHeight
}

// Area estimates the surface area covered by the window, in the square of the
// radius unit, by summing per-cell spherical quadrilateral estimates.
func (w Window) Area(cfg projection.Config, verticalRes int, radiusSquared float64) float64 {
	var total float64
	for y := w.Y0; y < w.Y0+w.Height; y++ {
		for x := w.X0; x < w.X0+w.Width; x++ {
			total += projection.AreaOfCell(x, y, verticalRes, cfg, radiusSquared)
		}
	}
	return total
}

// MeanSeparation estimates the mean linear cell extent across the window, in
// the radius unit.
func (w Window) MeanSeparation(cfg projection.Config, verticalRes int, radius float64) float64 {
	var total float64
	for y := w.Y0; y < w.Y0+w.Height; y++ {
		for x := w.X0; x < w.X0+w.Width; x++ {
			total += projection.SeparationOfCell(x, y, verticalRes, cfg, radius)
		}
	}
	return total / float64(w.Width*w.Height)
}

// Bounds is a latitude/longitude box in radians.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Bounds returns the spherical extent of the window under the projection.
// Windows spanning the antimeridian report MinLon > MaxLon.
func (w Window) Bounds(cfg projection.Config, verticalRes int) Bounds {
	topLat := cfg.LatitudeAt(float64(w.Y0), verticalRes)
	botLat := cfg.LatitudeAt(float64(w.Y0+w.Height), verticalRes)
	westLon := cfg.LongitudeAt(float64(w.X0), verticalRes)
	eastLon := cfg.LongitudeAt(float64(w.X0+w.Width), verticalRes)
	return Bounds{
		MinLat: math.Min(topLat, botLat),
		MaxLat: math.Max(topLat, botLat),
		MinLon: westLon,
		MaxLon: eastLon,
	}
}

// Outline returns the window's spherical footprint as a polygon with
// longitude/latitude coordinates in degrees, closed per GeoJSON convention.
func (w Window) Outline(cfg projection.Config, verticalRes int) *geom.Polygon {
	b := w.Bounds(cfg, verticalRes)
	deg := 180 / math.Pi
	ring := []geom.Coord{
		{b.MinLon * deg, b.MinLat * deg},
		{b.MaxLon * deg, b.MinLat * deg},
		{b.MaxLon * deg, b.MaxLat * deg},
		{b.MinLon * deg, b.MaxLat * deg},
		{b.MinLon * deg, b.MinLat * deg},
	}
	poly := geom.NewPolygon(geom.XY)
	poly.MustSetCoords([][]geom.Coord{ring})
	return poly
}

// WeightedMean computes the area-weighted mean of a raster field over the
// window, weighting each sample by its cell's estimated surface area. Unlike
// the pipeline's grid-wide simple mean, this does not over-weight polar
// cells.
func (w Window) WeightedMean(g *raster.Grid, cfg projection.Config, radiusSquared float64) (float64, error) {
	if !w.Valid(g.Width(), g.Height()) {
		return 0, eris.Errorf("region: window %+v outside %dx%d raster", w, g.Width(), g.Height())
	}

	n := w.Width * w.Height
	values := make([]float64, 0, n)
	weights := make([]float64, 0, n)
	for y := w.Y0; y < w.Y0+w.Height; y++ {
		for x := w.X0; x < w.X0+w.Width; x++ {
			values = append(values, g.At(x, y))
			weights = append(weights, projection.AreaOfCell(x, y, g.Height(), cfg, radiusSquared))
		}
	}
	return stat.Mean(values, weights), nil
}
