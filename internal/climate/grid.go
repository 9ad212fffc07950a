// Package climate derives classified climate, humidity, biome, and sea-ice
// grids from elevation, seasonal temperature, and precipitation rasters that
// may be sampled at different resolutions.
package climate

import (
	"github.com/rotisserie/eris"

	"github.com/mapforge/cartograph/internal/taxonomy"
)

// ErrShapeMismatch is returned when a grid is assembled from component arrays
// whose outer or inner lengths disagree.
var ErrShapeMismatch = eris.New("climate: grid shape mismatch")

// Grid holds the per-cell classification results, indexed by output X then Y.
// All component arrays share identical extents, fixed at construction.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	Climate  [][]taxonomy.ClimateType  `json:"climate"`
	Humidity [][]taxonomy.HumidityType `json:"humidity"`
	Biome    [][]taxonomy.BiomeType    `json:"biome"`
	SeaIce   [][]SeaIceRange           `json:"sea_ice"`
}

// NewGrid allocates a zeroed classification grid.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("climate: invalid grid dimensions %dx%d", width, height)
	}
	g := &Grid{
		Width:    width,
		Height:   height,
		Climate:  make([][]taxonomy.ClimateType, width),
		Humidity: make([][]taxonomy.HumidityType, width),
		Biome:    make([][]taxonomy.BiomeType, width),
		SeaIce:   make([][]SeaIceRange, width),
	}
	for x := 0; x < width; x++ {
		g.Climate[x] = make([]taxonomy.ClimateType, height)
		g.Humidity[x] = make([]taxonomy.HumidityType, height)
		g.Biome[x] = make([]taxonomy.BiomeType, height)
		g.SeaIce[x] = make([]SeaIceRange, height)
	}
	return g, nil
}

// NewGridFrom assembles a grid from pre-built component arrays. It fails fast
// with ErrShapeMismatch if any outer or inner extent disagrees.
func NewGridFrom(
	climate [][]taxonomy.ClimateType,
	humidity [][]taxonomy.HumidityType,
	biome [][]taxonomy.BiomeType,
	seaIce [][]SeaIceRange,
) (*Grid, error) {
	width := len(climate)
	if len(humidity) != width || len(biome) != width || len(seaIce) != width {
		return nil, eris.Wrap(ErrShapeMismatch, "outer extents differ")
	}
	if width == 0 {
		return nil, eris.Wrap(ErrShapeMismatch, "empty grid")
	}

	height := len(climate[0])
	for x := 0; x < width; x++ {
		if len(climate[x]) != height || len(humidity[x]) != height ||
			len(biome[x]) != height || len(seaIce[x]) != height {
			return nil, eris.Wrapf(ErrShapeMismatch, "inner extents differ at column %d", x)
		}
	}
	if height == 0 {
		return nil, eris.Wrap(ErrShapeMismatch, "empty grid")
	}

	return &Grid{
		Width:    width,
		Height:   height,
		Climate:  climate,
		Humidity: humidity,
		Biome:    biome,
		SeaIce:   seaIce,
	}, nil
}
