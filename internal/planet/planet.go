// Package planet describes the physical properties of the body whose surface
// fields are being projected: radius, sea level, elevation and precipitation
// scales, and conversions between spherical positions and unit vectors.
package planet

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Atmosphere holds the precipitation scales used to denormalize raster samples.
// Rates are in millimeters per hour at a raster sample of 1.0.
type Atmosphere struct {
	MaxPrecipitationRate float64 `json:"max_precipitation_rate"`
	MaxSnowfallRate      float64 `json:"max_snowfall_rate"`
}

// Planet holds the scalar properties of a planetary body. Values are treated
// as immutable for the duration of a pipeline run.
type Planet struct {
	// Radius is the mean radius in kilometers.
	Radius float64 `json:"radius"`
	// SeaLevel is the mean sea level elevation in meters above datum.
	SeaLevel float64 `json:"sea_level"`
	// MaxElevation is the elevation in meters at a bipolar sample of +1.
	MaxElevation float64 `json:"max_elevation"`
	// NormalizedSeaLevel is sea level expressed in the bipolar [-1,1]
	// elevation convention.
	NormalizedSeaLevel float64 `json:"normalized_sea_level"`

	Atmosphere Atmosphere `json:"atmosphere"`
}

// RadiusSquared returns the squared mean radius in square kilometers.
func (p Planet) RadiusSquared() float64 {
	return p.Radius * p.Radius
}

// Earthlike returns a planet with Earth-scale properties, used as the CLI
// default and in tests.
func Earthlike() Planet {
	return Planet{
		Radius:             6371,
		SeaLevel:           0,
		MaxElevation:       8800,
		NormalizedSeaLevel: 0,
		Atmosphere: Atmosphere{
			MaxPrecipitationRate: 2.0,
			MaxSnowfallRate:      0.5,
		},
	}
}

// Position converts a latitude/longitude pair (radians) to a unit vector in a
// right-handed frame with +Z through the north pole and +X through the
// intersection of the equator and the prime meridian.
func Position(latitude, longitude float64) r3.Vec {
	cosLat := math.Cos(latitude)
	return r3.Vec{
		X: cosLat * math.Cos(longitude),
		Y: cosLat * math.Sin(longitude),
		Z: math.Sin(latitude),
	}
}

// LatLon converts a unit vector back to a latitude/longitude pair in radians.
// It is the inverse of Position for vectors on the unit sphere.
func LatLon(v r3.Vec) (latitude, longitude float64) {
	latitude = math.Asin(math.Max(-1, math.Min(1, v.Z)))
	longitude = math.Atan2(v.Y, v.X)
	return latitude, longitude
}
