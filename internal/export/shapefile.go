package export

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mapforge/cartograph/internal/climate"
	"github.com/mapforge/cartograph/internal/projection"
	"github.com/mapforge/cartograph/internal/region"
)

// shapefileFields is the attribute schema for exported records. DBF field
// names are capped at ten characters.
var shapefileFields = []shp.Field{
	shp.StringField("CLIMATE", 12),
	shp.StringField("HUMID", 12),
	shp.StringField("BIOME", 16),
	shp.FloatField("ICE_START", 8, 4),
	shp.FloatField("ICE_END", 8, 4),
}

// WriteShapefile emits one POLYGON record per classified cell, in WGS84
// degrees, with the classification as DBF attributes. A non-nil window
// restricts output to the cells it covers.
func WriteShapefile(path string, g *climate.Grid, cfg projection.Config, win *region.Window) error {
	if g == nil {
		return eris.New("export: nil grid")
	}

	x0, y0, x1, y1 := 0, 0, g.Width, g.Height
	if win != nil {
		if !win.Valid(g.Width, g.Height) {
			return eris.Errorf("export: window %+v outside %dx%d grid", *win, g.Width, g.Height)
		}
		x0, y0 = win.X0, win.Y0
		x1, y1 = win.X0+win.Width, win.Y0+win.Height
	}

	writer, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrap(err, "export: create shapefile")
	}
	defer writer.Close()

	if err := writer.SetFields(shapefileFields); err != nil {
		return eris.Wrap(err, "export: set shapefile fields")
	}

	var written int
	for y := y0; y < y1; y++ {
		north := cfg.LatitudeAt(float64(y), g.Height) * degPerRad
		south := cfg.LatitudeAt(float64(y+1), g.Height) * degPerRad

		for x := x0; x < x1; x++ {
			west := cfg.LongitudeAt(float64(x), g.Height) * degPerRad
			east := cfg.LongitudeAt(float64(x+1), g.Height) * degPerRad
			if east <= west {
				east += 360
			}

			row := int(writer.Write(cellShape(west, south, east, north)))
			attrs := []interface{}{
				g.Climate[x][y].String(),
				g.Humidity[x][y].String(),
				g.Biome[x][y].String(),
				g.SeaIce[x][y].Start,
				g.SeaIce[x][y].End,
			}
			for i, v := range attrs {
				if err := writer.WriteAttribute(row, i, v); err != nil {
					return eris.Wrapf(err, "export: write attribute %d at row %d", i, row)
				}
			}
			written++
		}
	}

	zap.L().Debug("shapefile written",
		zap.String("path", path),
		zap.Int("records", written),
	)
	return nil
}

// cellShape builds a single clockwise closed ring for one cell footprint.
func cellShape(west, south, east, north float64) *shp.Polygon {
	return &shp.Polygon{
		Box:       shp.Box{MinX: west, MinY: south, MaxX: east, MaxY: north},
		NumParts:  1,
		NumPoints: 5,
		Parts:     []int32{0},
		Points: []shp.Point{
			{X: west, Y: north},
			{X: east, Y: north},
			{X: east, Y: south},
			{X: west, Y: south},
			{X: west, Y: north},
		},
	}
}
