package climate

import (
	"math"

	"github.com/mapforge/cartograph/internal/taxonomy"
)

// TemperatureScale converts an unsigned-normalized temperature sample to
// Kelvin: a sample of 1.0 is this many Kelvin.
const TemperatureScale = 400.0

// accumulator carries the running statistics one worker gathers while
// classifying its block of rows. Partial accumulators merge associatively, so
// a fixed row partition reduces to the same totals in any arrangement.
type accumulator struct {
	minTemp   float64
	maxTemp   float64
	tempSum   float64 // sum of per-cell midpoints of the seasonal extremes
	precipSum float64 // raw pre-scaled samples
	elevSum   float64 // sea-level-relative bipolar samples
	cells     int
}

func newAccumulator() *accumulator {
	return &accumulator{minTemp: math.Inf(1), maxTemp: math.Inf(-1)}
}

func (a *accumulator) merge(b *accumulator) {
	a.minTemp = math.Min(a.minTemp, b.minTemp)
	a.maxTemp = math.Max(a.maxTemp, b.maxTemp)
	a.tempSum += b.tempSum
	a.precipSum += b.precipSum
	a.elevSum += b.elevSum
	a.cells += b.cells
}

// classifyRow fills one output row of the grid and folds the row's samples
// into acc. It reads only prebuilt caches and source rasters, so rows can be
// processed concurrently as long as each row is owned by one worker.
func classifyRow(g *Grid, s *sampler, in *Input, y int, acc *accumulator) {
	lat := s.lats[y]
	p := in.Planet

	for x := 0; x < g.Width; x++ {
		elevSample := 2*s.at(srcElevation, in.Elevation.Grid, x, y) - 1
		relElev := elevSample - p.NormalizedSeaLevel

		winterK := s.at(srcWinter, in.WinterTemp.Grid, x, y) * TemperatureScale
		summerK := s.at(srcSummer, in.SummerTemp.Grid, x, y) * TemperatureScale
		precipSample := s.at(srcPrecip, in.Precipitation.Grid, x, y)
		precipRate := precipSample * p.Atmosphere.MaxPrecipitationRate

		climate := taxonomy.ClassifyClimate(taxonomy.NewTemperatureRange(winterK, summerK))
		humidity := taxonomy.ClassifyHumidity(precipRate)
		biome := taxonomy.ClassifyBiome(climate, humidity, relElev*p.MaxElevation)

		g.Climate[x][y] = climate
		g.Humidity[x][y] = humidity
		g.Biome[x][y] = biome
		g.SeaIce[x][y] = estimateSeaIce(relElev, winterK, summerK, lat)

		lo := math.Min(winterK, summerK)
		hi := math.Max(winterK, summerK)
		acc.minTemp = math.Min(acc.minTemp, lo)
		acc.maxTemp = math.Max(acc.maxTemp, hi)
		acc.tempSum += (lo + hi) / 2
		acc.precipSum += precipSample
		acc.elevSum += relElev
		acc.cells++
	}
}

// source raster order inside the sampler.
const (
	srcElevation = iota
	srcWinter
	srcSummer
	srcPrecip
)
