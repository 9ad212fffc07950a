package climate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateSeaIceLandNeverFreezes(t *testing.T) {
	r := estimateSeaIce(0.1, 200, 210, 0.8)
	assert.True(t, r.None())
}

func TestEstimateSeaIceWarmOcean(t *testing.T) {
	// Both seasons at or above seawater freezing: no ice.
	r := estimateSeaIce(-0.2, SeawaterFreezing, 290, 0.8)
	assert.True(t, r.None())
}

func TestEstimateSeaIceFrozenYearRound(t *testing.T) {
	r := estimateSeaIce(-0.3, 250, 260, 1.0)
	assert.True(t, r.FullYear())
}

func TestEstimateSeaIceSeasonalWindow(t *testing.T) {
	// Winter below freezing, summer above: a single seasonal window phased
	// from the winter solstice.
	winter, summer := 260.0, 280.0
	r := estimateSeaIce(-0.5, winter, summer, 1.0)
	require.False(t, r.None())
	require.False(t, r.FullYear())

	tFrac := (SeawaterFreezing - winter) / (summer - winter)
	p := 0.8*tFrac - 0.1
	assert.InDelta(t, 1-p/4, r.Start, 1e-12)
	assert.InDelta(t, 0.75*p, r.End, 1e-12)
}

func TestEstimateSeaIceBarelyFreezingHasNoIce(t *testing.T) {
	// A cooler season only slightly below freezing gives a freeze
	// proportion at or below zero: no persistent ice.
	winter := SeawaterFreezing - 0.1
	summer := winter + 50
	r := estimateSeaIce(-0.5, winter, summer, 1.0)
	assert.True(t, r.None())
}

func TestEstimateSeaIceHemisphereSymmetry(t *testing.T) {
	// Identical temperature crossings at latitude L and -L are offset by
	// exactly half a year, modulo 1.
	const lat = 0.9
	north := estimateSeaIce(-0.4, 262, 285, lat)
	south := estimateSeaIce(-0.4, 262, 285, -lat)
	require.False(t, north.None())
	require.False(t, south.None())

	startDiff := math.Mod(south.Start-north.Start+1, 1)
	endDiff := math.Mod(south.End-north.End+1, 1)
	assert.InDelta(t, 0.5, startDiff, 1e-12)
	assert.InDelta(t, 0.5, endDiff, 1e-12)
}

func TestEstimateSeaIceSeasonOrderIrrelevant(t *testing.T) {
	a := estimateSeaIce(-0.4, 262, 285, 1.0)
	b := estimateSeaIce(-0.4, 285, 262, 1.0)
	assert.Equal(t, a, b)
}

func TestEstimateSeaIceNaNPropagation(t *testing.T) {
	r := estimateSeaIce(-0.4, math.NaN(), 285, 1.0)
	assert.True(t, r.None())
}

func TestSeaIceRangeSentinels(t *testing.T) {
	assert.True(t, NoIce.None())
	assert.False(t, NoIce.FullYear())
	assert.True(t, FullYearIce.FullYear())
	assert.False(t, FullYearIce.None())
}
