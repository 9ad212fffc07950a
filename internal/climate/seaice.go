package climate

import "math"

// SeawaterFreezing is the freezing point of seawater in Kelvin.
const SeawaterFreezing = 271.35

// SeaIceRange marks the fraction of the year, measured from the winter
// solstice, during which a below-sea-level cell bears persistent ice. The
// zero value means no persistent ice.
type SeaIceRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NoIce is the sentinel for cells that never bear persistent ice.
var NoIce = SeaIceRange{}

// FullYearIce is the sentinel for cells frozen through the whole year.
var FullYearIce = SeaIceRange{Start: 0, End: 1}

// None reports whether the range carries no ice at all.
func (r SeaIceRange) None() bool { return r == NoIce }

// FullYear reports whether the cell is frozen year round.
func (r SeaIceRange) FullYear() bool { return r == FullYearIce }

// estimateSeaIce derives the persistent ice window for one cell.
//
// Cells strictly above sea level never freeze, nor do cells whose cooler
// season stays at or above the seawater freezing point. Cells below freezing
// in both seasons are frozen year round. Otherwise exactly one season crosses
// the freezing point: the freeze proportion is derived from where the
// freezing point falls between the seasonal extremes, and the window is
// phased from the winter solstice. Southern-hemisphere cells shift by half a
// year since their solstices are offset.
func estimateSeaIce(elevation, winterK, summerK, latitude float64) SeaIceRange {
	if elevation > 0 {
		return NoIce
	}

	cool := math.Min(winterK, summerK)
	warm := math.Max(winterK, summerK)

	if cool >= SeawaterFreezing {
		return NoIce
	}
	if warm < SeawaterFreezing {
		return FullYearIce
	}

	// t runs from 0 at the cooler season to 1 at the warmer.
	t := (SeawaterFreezing - cool) / (warm - cool)
	proportion := 0.8*t - 0.1
	if math.IsNaN(proportion) || proportion <= 0 {
		return NoIce
	}

	start := 1 - proportion/4
	end := 0.75 * proportion
	if latitude < 0 {
		start = math.Mod(start+0.5, 1)
		end = math.Mod(end+0.5, 1)
	}
	return SeaIceRange{Start: start, End: end}
}
