// Package export serializes classification grids to interchange formats
// consumed by desktop GIS tools.
package export

import (
	"encoding/json"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/mapforge/cartograph/internal/climate"
	"github.com/mapforge/cartograph/internal/projection"
)

const degPerRad = 180 / math.Pi

// WriteGeoJSON emits one polygon feature per classified cell, with the cell
// footprint expressed in WGS84 degrees and the classification results as
// feature properties.
func WriteGeoJSON(w io.Writer, g *climate.Grid, cfg projection.Config) error {
	if g == nil {
		return eris.New("export: nil grid")
	}

	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, g.Width*g.Height),
	}

	for y := 0; y < g.Height; y++ {
		north := cfg.LatitudeAt(float64(y), g.Height) * degPerRad
		south := cfg.LatitudeAt(float64(y+1), g.Height) * degPerRad

		for x := 0; x < g.Width; x++ {
			west := cfg.LongitudeAt(float64(x), g.Height) * degPerRad
			east := cfg.LongitudeAt(float64(x+1), g.Height) * degPerRad
			if east <= west {
				east += 360
			}

			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry: cellPolygon(west, south, east, north),
				Properties: map[string]interface{}{
					"climate":       g.Climate[x][y].String(),
					"humidity":      g.Humidity[x][y].String(),
					"biome":         g.Biome[x][y].String(),
					"sea_ice_start": g.SeaIce[x][y].Start,
					"sea_ice_end":   g.SeaIce[x][y].End,
				},
			})
		}
	}

	if err := json.NewEncoder(w).Encode(fc); err != nil {
		return eris.Wrap(err, "export: encode GeoJSON")
	}

	zap.L().Debug("GeoJSON written",
		zap.Int("features", len(fc.Features)),
	)
	return nil
}

// cellPolygon builds a closed rectangular ring for one cell footprint.
func cellPolygon(west, south, east, north float64) *geom.Polygon {
	p := geom.NewPolygon(geom.XY).SetSRID(4326)
	p.MustSetCoords([][]geom.Coord{{
		{west, south},
		{east, south},
		{east, north},
		{west, north},
		{west, south},
	}})
	return p
}
