// Package raster provides the in-memory grid container the pipeline samples
// from: single-channel rasters of normalized values with a PNG codec.
package raster

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/rotisserie/eris"

	"github.com/mapforge/cartograph/internal/projection"
)

// Grid is a rectangular field of samples normalized to [0,1], stored row-major.
type Grid struct {
	W       int       `json:"width"`
	H       int       `json:"height"`
	Samples []float64 `json:"samples"`
}

// NewGrid allocates a zeroed grid.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("raster: invalid dimensions %dx%d", width, height)
	}
	return &Grid{W: width, H: height, Samples: make([]float64, width*height)}, nil
}

// Uniform allocates a grid filled with a constant sample.
func Uniform(width, height int, v float64) (*Grid, error) {
	g, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	for i := range g.Samples {
		g.Samples[i] = v
	}
	return g, nil
}

// Width returns the horizontal extent in pixels.
func (g *Grid) Width() int { return g.W }

// Height returns the vertical extent in pixels.
func (g *Grid) Height() int { return g.H }

// At returns the unsigned sample at (x, y). Coordinates are clamped to the
// grid bounds, so edge cells extend beyond the raster.
func (g *Grid) At(x, y int) float64 {
	return g.Samples[g.clampY(y)*g.W+g.clampX(x)]
}

// BipolarAt returns the sample at (x, y) rescaled to the bipolar [-1,1]
// convention used by elevation fields.
func (g *Grid) BipolarAt(x, y int) float64 {
	return 2*g.At(x, y) - 1
}

// Set stores a sample at (x, y). Out-of-bounds writes are ignored.
func (g *Grid) Set(x, y int, v float64) {
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return
	}
	g.Samples[y*g.W+x] = v
}

// Resize produces a nearest-neighbor resampling of the grid.
func (g *Grid) Resize(width, height int) (*Grid, error) {
	out, err := NewGrid(width, height)
	if err != nil {
		return nil, eris.Wrap(err, "raster: resize")
	}
	for y := 0; y < height; y++ {
		sy := y * g.H / height
		for x := 0; x < width; x++ {
			sx := x * g.W / width
			out.Samples[y*width+x] = g.Samples[sy*g.W+sx]
		}
	}
	return out, nil
}

func (g *Grid) clampX(x int) int {
	if x < 0 {
		return 0
	}
	if x >= g.W {
		return g.W - 1
	}
	return x
}

func (g *Grid) clampY(y int) int {
	if y < 0 {
		return 0
	}
	if y >= g.H {
		return g.H - 1
	}
	return y
}

// Field pairs a grid with the projection configuration it was rendered under.
// Rasters fed to the same pipeline run must share every non-resolution
// projection parameter.
type Field struct {
	Grid   *Grid             `json:"grid"`
	Config projection.Config `json:"config"`
}

// DecodePNG reads a grayscale PNG into a grid, normalizing 8- or 16-bit
// luminance to [0,1].
func DecodePNG(r io.Reader) (*Grid, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, eris.Wrap(err, "raster: decode png")
	}

	b := img.Bounds()
	g, err := NewGrid(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			gray := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			g.Samples[y*g.W+x] = float64(gray.Y) / 65535
		}
	}
	return g, nil
}

// EncodePNG writes the grid as a 16-bit grayscale PNG. Samples outside [0,1]
// are clamped.
func (g *Grid) EncodePNG(w io.Writer) error {
	img := image.NewGray16(image.Rect(0, 0, g.W, g.H))
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			v := g.Samples[y*g.W+x]
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v*65535 + 0.5)})
		}
	}
	return eris.Wrap(png.Encode(w, img), "raster: encode png")
}
