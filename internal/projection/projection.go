// Package projection implements the bidirectional mapping between spherical
// coordinates (latitude/longitude, radians) and raster pixel coordinates for
// two cylindrical projection families: equirectangular and equal-area.
//
// All pixel math is parameterized by the vertical resolution of the target
// raster so that the same Config can drive rasters of different sizes.
package projection

import "math"

// indexEpsilon absorbs floating-point drift when truncating a forward-mapped
// coordinate to an integer pixel index, so that values an ulp below a whole
// number still land on it.
const indexEpsilon = 1e-9

// Config describes a map projection. The zero value is an equirectangular
// projection centered on the equator and prime meridian covering the full
// globe. Build instances through NewConfig, which clamps parameters to their
// valid ranges; treat values as immutable once constructed.
//
// Scale factor and aspect ratio are derived from these fields on demand and
// are never stored.
type Config struct {
	// CentralMeridian is the longitude mapped to the horizontal center,
	// in [-pi, pi].
	CentralMeridian float64 `json:"central_meridian"`
	// CentralParallel is the latitude mapped to the vertical center,
	// in [-pi/2, pi/2].
	CentralParallel float64 `json:"central_parallel"`
	// StandardParallel is the latitude at which scale is 1:1. It is
	// sign-insensitive and defaults to the central parallel.
	StandardParallel float64 `json:"standard_parallel"`
	// LatitudeRange is the latitude span covered by the raster, in [0, pi].
	// Zero means the full globe.
	LatitudeRange float64 `json:"latitude_range"`
	// EqualArea selects cylindrical equal-area instead of equirectangular.
	EqualArea bool `json:"equal_area"`
}

// Option configures optional Config parameters.
type Option func(*Config)

// WithStandardParallel sets the standard parallel. Negative values are
// treated as their northern mirror.
func WithStandardParallel(lat float64) Option {
	return func(c *Config) { c.StandardParallel = clampLatitude(math.Abs(lat)) }
}

// WithLatitudeRange restricts the raster to a partial latitude span.
func WithLatitudeRange(r float64) Option {
	return func(c *Config) { c.LatitudeRange = math.Max(0, math.Min(math.Pi, r)) }
}

// WithEqualArea selects the cylindrical equal-area projection.
func WithEqualArea() Option {
	return func(c *Config) { c.EqualArea = true }
}

// NewConfig builds a Config centered on the given meridian and parallel.
// The standard parallel defaults to the central parallel.
func NewConfig(centralMeridian, centralParallel float64, opts ...Option) Config {
	c := Config{
		CentralMeridian:  wrapLongitude(centralMeridian),
		CentralParallel:  clampLatitude(centralParallel),
		StandardParallel: clampLatitude(math.Abs(centralParallel)),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ScaleFactor is the cosine of the standard parallel.
func (c Config) ScaleFactor() float64 {
	return math.Cos(c.StandardParallel)
}

// AspectRatio is the width-to-height ratio of a full-globe raster: 2 for
// equirectangular, pi*cos^2(standardParallel) for equal-area.
func (c Config) AspectRatio() float64 {
	if c.EqualArea {
		sf := c.ScaleFactor()
		return math.Pi * sf * sf
	}
	return 2
}

// Range is the covered latitude span: LatitudeRange, or pi when unset.
func (c Config) Range() float64 {
	if c.LatitudeRange > 0 {
		return c.LatitudeRange
	}
	return math.Pi
}

// Scale is the vertical pixel density: pixels per radian of covered latitude.
func (c Config) Scale(verticalRes int) float64 {
	return float64(verticalRes) / c.Range()
}

// Width is the raster width for a given vertical resolution.
func (c Config) Width(verticalRes int) int {
	return int(c.AspectRatio() * float64(verticalRes))
}

// SameShape reports whether two configs agree on every non-resolution
// parameter. Rasters produced under configs that differ in shape cannot be
// resampled against each other.
func (c Config) SameShape(o Config) bool {
	return c.CentralMeridian == o.CentralMeridian &&
		c.CentralParallel == o.CentralParallel &&
		c.StandardParallel == o.StandardParallel &&
		c.LatitudeRange == o.LatitudeRange &&
		c.EqualArea == o.EqualArea
}

// Y maps a latitude to a vertical pixel coordinate, clamped to [0, verticalRes].
func (c Config) Y(latitude float64, verticalRes int) float64 {
	h := float64(verticalRes)
	var y float64
	if c.EqualArea {
		sinTop, sinBot := c.sinBounds()
		sinScale := h / (sinTop - sinBot)
		y = sinScale * (sinTop - math.Sin(latitude))
	} else {
		y = c.Scale(verticalRes)*(c.CentralParallel-latitude) + h/2
	}
	return math.Max(0, math.Min(h, y))
}

// LatitudeAt recovers the latitude of a vertical pixel coordinate. It is the
// inverse of Y away from the clamped boundary.
func (c Config) LatitudeAt(y float64, verticalRes int) float64 {
	h := float64(verticalRes)
	if c.EqualArea {
		sinTop, sinBot := c.sinBounds()
		sinScale := h / (sinTop - sinBot)
		s := sinTop - y/sinScale
		return math.Asin(math.Max(-1, math.Min(1, s)))
	}
	return c.CentralParallel - (y-h/2)/c.Scale(verticalRes)
}

// X maps a longitude to a horizontal pixel coordinate. The longitude offset
// from the central meridian is wrapped into [-pi, pi) before scaling, so the
// antimeridian resolves to a single edge.
func (c Config) X(longitude float64, verticalRes int) float64 {
	w := float64(c.Width(verticalRes))
	return c.xScale(verticalRes)*wrapLongitude(longitude-c.CentralMeridian) + w/2
}

// LongitudeAt recovers the longitude of a horizontal pixel coordinate.
func (c Config) LongitudeAt(x float64, verticalRes int) float64 {
	w := float64(c.Width(verticalRes))
	return wrapLongitude((x-w/2)/c.xScale(verticalRes) + c.CentralMeridian)
}

// Forward maps a spherical position to pixel coordinates.
func (c Config) Forward(latitude, longitude float64, verticalRes int) (x, y float64) {
	return c.X(longitude, verticalRes), c.Y(latitude, verticalRes)
}

// Inverse maps pixel coordinates back to a spherical position.
func (c Config) Inverse(x, y float64, verticalRes int) (latitude, longitude float64) {
	return c.LatitudeAt(y, verticalRes), c.LongitudeAt(x, verticalRes)
}

// RowIndex maps a latitude to an integer row of a raster with the given
// vertical resolution.
func (c Config) RowIndex(latitude float64, verticalRes int) int {
	return clampIndex(c.Y(latitude, verticalRes), verticalRes)
}

// ColIndex maps a longitude to an integer column of a raster with the given
// vertical resolution.
func (c Config) ColIndex(longitude float64, verticalRes int) int {
	return clampIndex(c.X(longitude, verticalRes), c.Width(verticalRes))
}

// xScale is the horizontal pixel density in pixels per radian of longitude.
// For equirectangular this stretches by the inverse scale factor; for
// equal-area the full raster width spans 2*pi at the standard parallel.
// Partial latitude ranges zoom longitude by the same proportion.
func (c Config) xScale(verticalRes int) float64 {
	if c.EqualArea {
		w := float64(c.Width(verticalRes))
		return w / (2 * math.Pi) * (math.Pi / c.Range())
	}
	return c.Scale(verticalRes) / c.ScaleFactor()
}

// sinBounds returns the sines of the top and bottom covered latitudes for the
// equal-area vertical mapping. The bounds are pole-safe: no trigonometric
// division by cos(latitude) occurs anywhere in the projection.
func (c Config) sinBounds() (sinTop, sinBot float64) {
	half := c.Range() / 2
	top := clampLatitude(c.CentralParallel + half)
	bot := clampLatitude(c.CentralParallel - half)
	sinTop, sinBot = math.Sin(top), math.Sin(bot)
	if sinTop == sinBot {
		// Degenerate window collapsed against a pole; fall back to the
		// full globe rather than divide by zero.
		return 1, -1
	}
	return sinTop, sinBot
}

// wrapLongitude wraps a longitude into [-pi, pi). Exactly +pi maps to -pi so
// the antimeridian always resolves to the same raster edge.
func wrapLongitude(lon float64) float64 {
	lon = math.Mod(lon+math.Pi, 2*math.Pi)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return lon - math.Pi
}

func clampLatitude(lat float64) float64 {
	return math.Max(-math.Pi/2, math.Min(math.Pi/2, lat))
}

func clampIndex(v float64, n int) int {
	i := int(math.Floor(v + indexEpsilon))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
