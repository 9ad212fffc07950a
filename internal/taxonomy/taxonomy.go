// Package taxonomy owns the categorical climate, humidity, and biome
// classifications and their threshold tables. Classification functions are
// pure and deterministic; callers supply denormalized physical values
// (temperature in Kelvin, precipitation in mm/hr, elevation in meters
// relative to sea level).
package taxonomy

import "math"

// ClimateType is an ordered temperature regime, coldest first.
type ClimateType int

// Climate regimes.
const (
	Polar ClimateType = iota
	Subpolar
	Temperate
	Subtropical
	Tropical
)

var climateNames = [...]string{"polar", "subpolar", "temperate", "subtropical", "tropical"}

func (c ClimateType) String() string {
	if c < 0 || int(c) >= len(climateNames) {
		return "unknown"
	}
	return climateNames[c]
}

// HumidityType is an ordered moisture regime, driest first.
type HumidityType int

// Moisture regimes.
const (
	Arid HumidityType = iota
	Semiarid
	Subhumid
	Humid
	Superhumid
)

var humidityNames = [...]string{"arid", "semiarid", "subhumid", "humid", "superhumid"}

func (h HumidityType) String() string {
	if h < 0 || int(h) >= len(humidityNames) {
		return "unknown"
	}
	return humidityNames[h]
}

// BiomeType is the combined ecological regime of a cell.
type BiomeType int

// Biomes.
const (
	Ocean BiomeType = iota
	IceSheet
	Tundra
	BorealForest
	Grassland
	Shrubland
	Desert
	TemperateForest
	Savanna
	TropicalForest
	Alpine
)

var biomeNames = [...]string{
	"ocean", "ice_sheet", "tundra", "boreal_forest", "grassland", "shrubland",
	"desert", "temperate_forest", "savanna", "tropical_forest", "alpine",
}

func (b BiomeType) String() string {
	if b < 0 || int(b) >= len(biomeNames) {
		return "unknown"
	}
	return biomeNames[b]
}

// FreezingPoint is the freezing point of fresh water in Kelvin. Climate bands
// are anchored to it.
const FreezingPoint = 273.15

// Temperature band upper bounds in Kelvin, applied to the range mean in
// order. A range whose high never reaches freezing is polar regardless of
// its mean.
var climateBands = []struct {
	maxMean float64
	climate ClimateType
}{
	{278.15, Subpolar},
	{291.15, Temperate},
	{297.15, Subtropical},
	{math.Inf(1), Tropical},
}

// Precipitation band upper bounds in mm/hr, applied in order. The bounds
// approximate the 250/500/1000/2000 mm annual isohyets.
var humidityBands = []struct {
	maxRate  float64
	humidity HumidityType
}{
	{0.03, Arid},
	{0.06, Semiarid},
	{0.11, Subhumid},
	{0.23, Humid},
	{math.Inf(1), Superhumid},
}

// alpineElevation is the elevation above sea level, in meters, past which
// every land biome gives way to alpine terrain.
const alpineElevation = 3500.0

// TemperatureRange describes the spread of temperatures a location sees
// across the year, in Kelvin.
type TemperatureRange struct {
	Low  float64 `json:"low"`
	Mean float64 `json:"mean"`
	High float64 `json:"high"`
}

// NewTemperatureRange builds a two-point range from seasonal extremes; the
// mean is their midpoint. Arguments may arrive in either order.
func NewTemperatureRange(a, b float64) TemperatureRange {
	lo, hi := math.Min(a, b), math.Max(a, b)
	return TemperatureRange{Low: lo, Mean: (lo + hi) / 2, High: hi}
}

// ClassifyClimate maps a temperature range to its regime.
func ClassifyClimate(r TemperatureRange) ClimateType {
	if r.High < FreezingPoint {
		return Polar
	}
	for _, band := range climateBands {
		if r.Mean < band.maxMean {
			return band.climate
		}
	}
	return Tropical
}

// ClassifyHumidity maps a precipitation rate in mm/hr to its regime.
func ClassifyHumidity(mmPerHour float64) HumidityType {
	for _, band := range humidityBands {
		if mmPerHour < band.maxRate {
			return band.humidity
		}
	}
	return Superhumid
}

// biomeTable maps climate x humidity to a land biome.
var biomeTable = [5][5]BiomeType{
	Polar:       {IceSheet, IceSheet, IceSheet, IceSheet, IceSheet},
	Subpolar:    {Tundra, Tundra, Tundra, BorealForest, BorealForest},
	Temperate:   {Shrubland, Grassland, Grassland, TemperateForest, TemperateForest},
	Subtropical: {Desert, Shrubland, Grassland, TemperateForest, TropicalForest},
	Tropical:    {Desert, Shrubland, Savanna, Savanna, TropicalForest},
}

// ClassifyBiome maps a climate/humidity pair and an elevation in meters
// relative to sea level to a biome. Elevations at or below sea level are
// ocean regardless of regime.
func ClassifyBiome(c ClimateType, h HumidityType, elevation float64) BiomeType {
	if elevation <= 0 {
		return Ocean
	}
	if elevation > alpineElevation {
		return Alpine
	}
	return biomeTable[c][h]
}
