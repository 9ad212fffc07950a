package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfigs() map[string]Config {
	return map[string]Config{
		"equirect full globe":       NewConfig(0, 0),
		"equirect offset meridian":  NewConfig(1.2, 0),
		"equirect standard 30":      NewConfig(0, 0, WithStandardParallel(math.Pi/6)),
		"equirect partial range":    NewConfig(0, 0.4, WithLatitudeRange(1.0)),
		"equal-area full globe":     NewConfig(0, 0, WithEqualArea()),
		"equal-area standard 45":    NewConfig(0, 0, WithEqualArea(), WithStandardParallel(math.Pi/4)),
		"equal-area offset":         NewConfig(-0.7, 0.2, WithEqualArea()),
		"equal-area negative std":   NewConfig(0, 0, WithEqualArea(), WithStandardParallel(-math.Pi/6)),
	}
}

func TestForwardInverseRoundTrip(t *testing.T) {
	const vRes = 256

	for name, cfg := range testConfigs() {
		t.Run(name, func(t *testing.T) {
			// Keep samples inside the covered latitude band and away from
			// the antimeridian, where clamping and wrapping quantize.
			half := cfg.Range()/2 - 0.05
			for lat := -half; lat <= half; lat += half / 7 {
				sampleLat := cfg.CentralParallel + lat
				if sampleLat > math.Pi/2-0.05 || sampleLat < -math.Pi/2+0.05 {
					continue
				}
				for lon := -3.0; lon <= 3.0; lon += 0.5 {
					x, y := cfg.Forward(sampleLat, lon, vRes)
					gotLat, gotLon := cfg.Inverse(x, y, vRes)
					assert.InDelta(t, sampleLat, gotLat, 1e-6, "lat at (%f,%f)", sampleLat, lon)
					assert.InDelta(t, lon, gotLon, 1e-6, "lon at (%f,%f)", sampleLat, lon)
				}
			}
		})
	}
}

func TestAspectRatio(t *testing.T) {
	assert.Equal(t, 2.0, NewConfig(0, 0).AspectRatio())
	assert.Equal(t, 2.0, NewConfig(1.0, 0.5, WithStandardParallel(0.3)).AspectRatio())

	ea := NewConfig(0, 0, WithEqualArea())
	assert.InDelta(t, math.Pi, ea.AspectRatio(), 1e-12)

	std := math.Pi / 4
	ea45 := NewConfig(0, 0, WithEqualArea(), WithStandardParallel(std))
	cos := math.Cos(std)
	assert.InDelta(t, math.Pi*cos*cos, ea45.AspectRatio(), 1e-12)
}

func TestScale(t *testing.T) {
	full := NewConfig(0, 0)
	assert.InDelta(t, 180/math.Pi, full.Scale(180), 1e-12)

	partial := NewConfig(0, 0, WithLatitudeRange(1.0))
	assert.InDelta(t, 180.0, partial.Scale(180), 1e-12)
}

func TestScaleFactorDerived(t *testing.T) {
	cfg := NewConfig(0, 0, WithStandardParallel(math.Pi/3))
	assert.InDelta(t, 0.5, cfg.ScaleFactor(), 1e-12)

	// Sign-insensitive: a southern standard parallel behaves as northern.
	neg := NewConfig(0, 0, WithStandardParallel(-math.Pi/3))
	assert.InDelta(t, 0.5, neg.ScaleFactor(), 1e-12)
}

func TestStandardParallelDefaultsToCentral(t *testing.T) {
	cfg := NewConfig(0, -0.6)
	assert.InDelta(t, 0.6, cfg.StandardParallel, 1e-12)
}

func TestWrapLongitude(t *testing.T) {
	// The antimeridian resolves deterministically to the -pi edge.
	assert.Equal(t, -math.Pi, wrapLongitude(math.Pi))
	assert.Equal(t, -math.Pi, wrapLongitude(-math.Pi))
	assert.InDelta(t, -math.Pi+0.1, wrapLongitude(math.Pi+0.1), 1e-12)
	assert.InDelta(t, 0.5, wrapLongitude(0.5+4*math.Pi), 1e-9)
}

func TestFullGlobeCoversRaster(t *testing.T) {
	const vRes = 180

	for name, cfg := range testConfigs() {
		if cfg.LatitudeRange > 0 {
			continue
		}
		t.Run(name, func(t *testing.T) {
			w := float64(cfg.Width(vRes))

			// Poles map to the vertical extremes.
			assert.InDelta(t, 0, cfg.Y(math.Pi/2, vRes), 1.0)
			assert.InDelta(t, float64(vRes), cfg.Y(-math.Pi/2, vRes), 1.0)

			// The wrapped longitude domain maps inside [0, w], except for
			// equirectangular configs with a non-equatorial standard
			// parallel, which stretch longitude past the raster edge.
			if cfg.EqualArea || cfg.ScaleFactor() == 1 {
				xMin := cfg.X(cfg.CentralMeridian-math.Pi, vRes)
				xMax := cfg.X(cfg.CentralMeridian+math.Pi-1e-9, vRes)
				assert.GreaterOrEqual(t, xMin, -1e-6)
				assert.LessOrEqual(t, xMax, w+1e-6)
			}
		})
	}
}

func TestPoleSafety(t *testing.T) {
	cfg := NewConfig(0, 0, WithEqualArea())
	y := cfg.Y(math.Pi/2, 100)
	assert.False(t, math.IsNaN(y))
	assert.False(t, math.IsInf(y, 0))

	lat := cfg.LatitudeAt(0, 100)
	assert.InDelta(t, math.Pi/2, lat, 1e-9)

	// A window collapsed against the pole must not divide by zero.
	deg := NewConfig(0, math.Pi/2, WithEqualArea(), WithLatitudeRange(1e-18))
	assert.False(t, math.IsNaN(deg.Y(0.3, 100)))
}

func TestYClampedToHeight(t *testing.T) {
	cfg := NewConfig(0, 0.4, WithLatitudeRange(0.5))
	assert.Equal(t, 0.0, cfg.Y(math.Pi/2, 100))
	assert.Equal(t, 100.0, cfg.Y(-math.Pi/2, 100))
}

func TestRowColIndexBounds(t *testing.T) {
	cfg := NewConfig(0, 0)
	assert.Equal(t, 0, cfg.RowIndex(math.Pi/2, 180))
	assert.Equal(t, 179, cfg.RowIndex(-math.Pi/2, 180))
	assert.Equal(t, 0, cfg.ColIndex(-math.Pi, 180))
	assert.Equal(t, 90, cfg.RowIndex(0, 180))
}

func TestSameShape(t *testing.T) {
	a := NewConfig(0.5, 0.2, WithEqualArea())
	b := NewConfig(0.5, 0.2, WithEqualArea())
	c := NewConfig(0.5, 0.2)

	assert.True(t, a.SameShape(b))
	assert.False(t, a.SameShape(c))

	d := NewConfig(0.5, 0.2, WithEqualArea(), WithLatitudeRange(1.0))
	assert.False(t, a.SameShape(d))
}

func TestAreaOfCellSumsToSphere(t *testing.T) {
	// The quadrilateral through the four neighbor midpoints is the diamond
	// inscribed in the pixel, which tiles exactly half of each cell, so a
	// full-globe sum approximates half the sphere surface.
	const vRes = 48
	const radius = 1.0

	for _, equalArea := range []bool{false, true} {
		cfg := NewConfig(0, 0)
		if equalArea {
			cfg = NewConfig(0, 0, WithEqualArea())
		}
		width := cfg.Width(vRes)

		var total float64
		for y := 0; y < vRes; y++ {
			for x := 0; x < width; x++ {
				a := AreaOfCell(x, y, vRes, cfg, radius*radius)
				require.GreaterOrEqual(t, a, 0.0)
				total += a
			}
		}

		halfSphere := 2 * math.Pi * radius * radius
		assert.InEpsilon(t, halfSphere, total, 0.15, "equalArea=%v", equalArea)
	}
}

func TestAreaOfCellEqualAreaUniform(t *testing.T) {
	// The equal-area projection should give near-identical cell areas at
	// different latitudes away from the poles.
	cfg := NewConfig(0, 0, WithEqualArea())
	const vRes = 64

	equatorial := AreaOfCell(50, vRes/2, vRes, cfg, 1)
	midLat := AreaOfCell(50, vRes/4, vRes, cfg, 1)
	assert.InEpsilon(t, equatorial, midLat, 0.05)
}

func TestSeparationOfCell(t *testing.T) {
	cfg := NewConfig(0, 0)
	const vRes = 90

	sep := SeparationOfCell(90, 45, vRes, cfg, 6371.0)
	assert.Greater(t, sep, 0.0)

	// One equatorial pixel of a 90-row equirectangular raster spans 2
	// degrees of latitude; center-to-midpoint separation is about a
	// quarter of that arc.
	expected := 6371.0 * (math.Pi / float64(vRes)) / 2
	assert.InEpsilon(t, expected, sep, 0.35)
}
