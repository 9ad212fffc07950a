package planet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionLatLonRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"equator prime meridian", 0, 0},
		{"mid latitude", 0.7, -1.2},
		{"high latitude", 1.4, 2.9},
		{"southern hemisphere", -0.9, 0.3},
		{"near north pole", math.Pi/2 - 1e-4, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Position(tt.lat, tt.lon)
			lat, lon := LatLon(v)
			assert.InDelta(t, tt.lat, lat, 1e-9)
			assert.InDelta(t, tt.lon, lon, 1e-9)
		})
	}
}

func TestPositionUnitLength(t *testing.T) {
	v := Position(0.5, 1.5)
	norm := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	assert.InDelta(t, 1.0, norm, 1e-12)
}

func TestPositionPoles(t *testing.T) {
	north := Position(math.Pi/2, 0)
	assert.InDelta(t, 1.0, north.Z, 1e-12)

	south := Position(-math.Pi/2, 2.0)
	assert.InDelta(t, -1.0, south.Z, 1e-12)
}

func TestRadiusSquared(t *testing.T) {
	p := Earthlike()
	assert.InDelta(t, 6371.0*6371.0, p.RadiusSquared(), 1e-6)
}
