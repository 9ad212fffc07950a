package climate

import (
	"github.com/mapforge/cartograph/internal/projection"
	"github.com/mapforge/cartograph/internal/raster"
)

// sourceIndex maps output grid coordinates to the native pixel coordinates of
// one source raster. Row indices live in a flat array because every output
// row is visited exactly once; column indices are memoized so their
// trigonometry runs at most once per distinct output column regardless of
// output height.
type sourceIndex struct {
	rows []int
	cols []int

	// colComputations counts the longitude/column derivations actually
	// performed, excluding identity shortcuts; it backs the memoization
	// bound guarantee.
	colComputations int
}

// sampler holds the cross-resolution coordinate caches for one output grid
// and its source rasters, plus the per-row latitudes the classifier needs for
// hemisphere-dependent phase behavior. Caches are fully built before any
// classification runs, so concurrent row processing reads them without
// coordination.
type sampler struct {
	cfg     projection.Config
	vRes    int
	width   int
	lats    []float64
	sources []sourceIndex
}

// buildSampler constructs the caches in a single pass: one inverse-Y
// derivation per output row and one inverse-X derivation per output column,
// then one forward derivation per source per row/column — unless the source
// resolution matches the output, in which case the output index is reused
// directly to avoid reintroducing trigonometric rounding error.
func buildSampler(cfg projection.Config, vRes int, grids []*raster.Grid) *sampler {
	s := &sampler{
		cfg:     cfg,
		vRes:    vRes,
		width:   cfg.Width(vRes),
		lats:    make([]float64, vRes),
		sources: make([]sourceIndex, len(grids)),
	}
	for i := range grids {
		s.sources[i].rows = make([]int, vRes)
		s.sources[i].cols = make([]int, s.width)
	}

	for y := 0; y < vRes; y++ {
		lat := cfg.LatitudeAt(float64(y), vRes)
		s.lats[y] = lat
		for i, g := range grids {
			if g.Height() == vRes {
				s.sources[i].rows[y] = y
				continue
			}
			s.sources[i].rows[y] = cfg.RowIndex(lat, g.Height())
		}
	}

	for x := 0; x < s.width; x++ {
		var lon float64
		var haveLon bool
		for i, g := range grids {
			if g.Width() == s.width {
				s.sources[i].cols[x] = x
				continue
			}
			if !haveLon {
				lon = cfg.LongitudeAt(float64(x), vRes)
				haveLon = true
			}
			s.sources[i].cols[x] = cfg.ColIndex(lon, g.Height())
			s.sources[i].colComputations++
		}
	}

	return s
}

// at samples source i at the output cell (x, y).
func (s *sampler) at(i int, g *raster.Grid, x, y int) float64 {
	return g.At(s.sources[i].cols[x], s.sources[i].rows[y])
}
