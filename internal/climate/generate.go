package climate

import (
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mapforge/cartograph/internal/planet"
	"github.com/mapforge/cartograph/internal/projection"
	"github.com/mapforge/cartograph/internal/raster"
)

// ErrProjectionMismatch is returned when input rasters disagree on any
// non-resolution projection parameter. Resampling such rasters together would
// produce geometrically inconsistent output with no detectable error, so the
// pipeline rejects them up front.
var ErrProjectionMismatch = eris.New("climate: input projection parameters disagree")

// Input bundles everything one generation run consumes. All fields are read
// only for the duration of the call.
type Input struct {
	Elevation     raster.Field
	WinterTemp    raster.Field
	SummerTemp    raster.Field
	Precipitation raster.Field

	Planet     planet.Planet
	Projection projection.Config

	// VerticalResolution is the output grid height; the width follows from
	// the projection's aspect ratio.
	VerticalResolution int

	// Workers bounds the number of concurrent row-classification
	// goroutines. Zero means one per CPU. The row partition depends only
	// on this value, so runs with equal inputs produce bit-identical
	// results.
	Workers int
}

// Result is the output of one generation run, owned by the caller.
type Result struct {
	Grid    *Grid   `json:"grid"`
	Summary Summary `json:"summary"`
}

// Generate runs the full pipeline synchronously: validate inputs, build the
// cross-resolution coordinate caches, classify every output cell, and reduce
// the per-worker statistics into the Summary.
func Generate(in Input) (*Result, error) {
	if in.VerticalResolution <= 0 {
		return nil, eris.Errorf("climate: invalid vertical resolution %d", in.VerticalResolution)
	}
	if err := validateFields(&in); err != nil {
		return nil, err
	}

	grids := []*raster.Grid{
		in.Elevation.Grid,
		in.WinterTemp.Grid,
		in.SummerTemp.Grid,
		in.Precipitation.Grid,
	}

	// Phase one: single-threaded cache construction.
	s := buildSampler(in.Projection, in.VerticalResolution, grids)

	g, err := NewGrid(s.width, in.VerticalResolution)
	if err != nil {
		return nil, err
	}

	// Phase two: classify rows concurrently over a fixed contiguous
	// partition. Each worker owns its rows and its own accumulator.
	workers := in.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > in.VerticalResolution {
		workers = in.VerticalResolution
	}

	partials := make([]*accumulator, workers)
	var eg errgroup.Group
	rowsPerWorker := (in.VerticalResolution + workers - 1) / workers
	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			acc := newAccumulator()
			lo := w * rowsPerWorker
			hi := min(lo+rowsPerWorker, in.VerticalResolution)
			for y := lo; y < hi; y++ {
				classifyRow(g, s, &in, y, acc)
			}
			partials[w] = acc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Merge in partition order so float sums are reproducible.
	total := newAccumulator()
	for _, p := range partials {
		total.merge(p)
	}

	summary := summarize(total, in.Planet)
	zap.L().Debug("climate: generation complete",
		zap.Int("width", g.Width),
		zap.Int("height", g.Height),
		zap.Stringer("climate", summary.Climate),
		zap.Stringer("biome", summary.Biome),
	)

	return &Result{Grid: g, Summary: summary}, nil
}

// validateFields checks that every source raster exists, was rendered under
// the same projection shape as the output, and has the width its own height
// implies under that shape.
func validateFields(in *Input) error {
	fields := []struct {
		name string
		f    raster.Field
	}{
		{"elevation", in.Elevation},
		{"winter temperature", in.WinterTemp},
		{"summer temperature", in.SummerTemp},
		{"precipitation", in.Precipitation},
	}

	for _, fd := range fields {
		if fd.f.Grid == nil {
			return eris.Errorf("climate: missing %s raster", fd.name)
		}
		if !fd.f.Config.SameShape(in.Projection) {
			return eris.Wrapf(ErrProjectionMismatch, "%s raster", fd.name)
		}
		if want := in.Projection.Width(fd.f.Grid.Height()); fd.f.Grid.Width() != want {
			return eris.Errorf("climate: %s raster is %dx%d, want width %d for its height",
				fd.name, fd.f.Grid.Width(), fd.f.Grid.Height(), want)
		}
	}
	return nil
}
