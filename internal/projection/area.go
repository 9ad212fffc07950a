package projection

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mapforge/cartograph/internal/planet"
)

// AreaOfCell estimates the surface area covered by the pixel at (x, y) in a
// raster of the given vertical resolution, in the square of the radius unit.
//
// The estimate converts the cell and its four orthogonal neighbors to
// spherical positions, takes the midpoints between the center and each
// neighbor, and measures the spherical quadrilateral enclosed by those four
// midpoints, scaled by radiusSquared.
func AreaOfCell(x, y, verticalRes int, cfg Config, radiusSquared float64) float64 {
	mids := neighborMidpoints(x, y, verticalRes, cfg)
	quad := sphericalTriangleArea(mids[0], mids[1], mids[2]) +
		sphericalTriangleArea(mids[0], mids[2], mids[3])
	return quad * radiusSquared
}

// SeparationOfCell estimates the linear extent of the pixel at (x, y): the
// mean great-circle distance from the cell center to the midpoints toward its
// four orthogonal neighbors, in the radius unit.
func SeparationOfCell(x, y, verticalRes int, cfg Config, radius float64) float64 {
	lat, lon := cfg.Inverse(float64(x), float64(y), verticalRes)
	center := planet.Position(lat, lon)

	var sum float64
	for _, m := range neighborMidpoints(x, y, verticalRes, cfg) {
		sum += greatCircleAngle(center, m)
	}
	return sum / 4 * radius
}

// neighborMidpoints returns unit vectors at the midpoints between the cell
// center and its west, north, east, and south neighbors, in winding order.
func neighborMidpoints(x, y, verticalRes int, cfg Config) [4]r3.Vec {
	fx, fy := float64(x), float64(y)
	clat, clon := cfg.Inverse(fx, fy, verticalRes)

	neighbors := [4][2]float64{
		{fx - 1, fy}, // west
		{fx, fy - 1}, // north
		{fx + 1, fy}, // east
		{fx, fy + 1}, // south
	}

	var mids [4]r3.Vec
	for i, n := range neighbors {
		nlat, nlon := cfg.Inverse(n[0], n[1], verticalRes)
		mlat := (clat + nlat) / 2
		// Longitude midpoint must respect antimeridian wraparound.
		mlon := clon + wrapLongitude(nlon-clon)/2
		mids[i] = planet.Position(mlat, mlon)
	}
	return mids
}

// sphericalTriangleArea returns the spherical excess of the triangle with
// unit-vector vertices a, b, c (van Oosterom & Strackee).
func sphericalTriangleArea(a, b, c r3.Vec) float64 {
	num := math.Abs(r3.Dot(a, r3.Cross(b, c)))
	den := 1 + r3.Dot(a, b) + r3.Dot(b, c) + r3.Dot(c, a)
	return 2 * math.Atan2(num, den)
}

// greatCircleAngle returns the central angle between two unit vectors.
func greatCircleAngle(a, b r3.Vec) float64 {
	cross := r3.Cross(a, b)
	return math.Atan2(r3.Norm(cross), r3.Dot(a, b))
}
