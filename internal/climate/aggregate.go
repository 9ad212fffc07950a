package climate

import (
	"github.com/mapforge/cartograph/internal/planet"
	"github.com/mapforge/cartograph/internal/taxonomy"
)

// Summary is the scalar classification of the whole mapped area, computed
// from grid-wide means of the underlying fields rather than by voting over
// per-cell results.
type Summary struct {
	Climate  taxonomy.ClimateType  `json:"climate"`
	Humidity taxonomy.HumidityType `json:"humidity"`
	Biome    taxonomy.BiomeType    `json:"biome"`

	MinTemperature  float64 `json:"min_temperature"`  // Kelvin
	MeanTemperature float64 `json:"mean_temperature"` // Kelvin
	MaxTemperature  float64 `json:"max_temperature"`  // Kelvin

	// MeanPrecipitation is the grid-wide mean precipitation rate in mm/hr.
	MeanPrecipitation float64 `json:"mean_precipitation"`
	// MeanElevation is the grid-wide mean elevation in meters relative to
	// sea level.
	MeanElevation float64 `json:"mean_elevation"`
}

// summarize folds the merged accumulator into a Summary. The overall climate
// classifies the full (min, mean, max) temperature triple; humidity and biome
// classify the denormalized mean precipitation and elevation. Means are
// simple per-cell averages; polar cells are not down-weighted for their
// smaller surface area.
func summarize(acc *accumulator, p planet.Planet) Summary {
	n := float64(acc.cells)
	meanTemp := acc.tempSum / n
	meanPrecip := acc.precipSum / n * p.Atmosphere.MaxPrecipitationRate
	meanElev := acc.elevSum / n * p.MaxElevation

	climate := taxonomy.ClassifyClimate(taxonomy.TemperatureRange{
		Low:  acc.minTemp,
		Mean: meanTemp,
		High: acc.maxTemp,
	})
	humidity := taxonomy.ClassifyHumidity(meanPrecip)
	biome := taxonomy.ClassifyBiome(climate, humidity, meanElev)

	return Summary{
		Climate:           climate,
		Humidity:          humidity,
		Biome:             biome,
		MinTemperature:    acc.minTemp,
		MeanTemperature:   meanTemp,
		MaxTemperature:    acc.maxTemp,
		MeanPrecipitation: meanPrecip,
		MeanElevation:     meanElev,
	}
}
