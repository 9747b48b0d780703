package tectonic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

func TestGenerateCoversAllTiles(t *testing.T) {
	w := Generate(GenerateOptions{Width: 20, Height: 16, NumPlates: 6, Rng: rand.New(rand.NewSource(42))})
	require.NoError(t, w.ValidateCoverage())
	for _, tl := range w.Tiles {
		assert.GreaterOrEqual(t, tl.PlateID, 0)
	}
}

func TestAdvanceTurnKeepsCoverage(t *testing.T) {
	w := Generate(GenerateOptions{Width: 16, Height: 12, NumPlates: 5, Rng: rand.New(rand.NewSource(7))})
	p := DefaultMotionParams()
	p.Rng = rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		result := w.AdvanceTurn(i, p)
		for _, d := range result.TerrainDeltas {
			assert.LessOrEqual(t, d.ElevationDeltaM, p.TerrainChangeCapM+1e-9)
			assert.GreaterOrEqual(t, d.ElevationDeltaM, -p.TerrainChangeCapM-1e-9)
		}
	}
	require.NoError(t, w.ValidateCoverage())
}

func TestMantleCyclesForever(t *testing.T) {
	m := NewMantleState(0.5, nil)
	for i := 0; i < 12; i++ {
		m.Advance()
	}
	assert.Equal(t, 1, m.TotalCycles)
}

func TestGenerateSeedsMantle(t *testing.T) {
	w := Generate(GenerateOptions{Width: 12, Height: 10, NumPlates: 4, Rng: rand.New(rand.NewSource(9))})
	assert.Equal(t, MantleSupercontinent, w.Mantle.Phase)
	assert.NotEmpty(t, w.Mantle.ConvectionCells)
}

func TestAdvanceTurnAppliesMantleVelocityModifier(t *testing.T) {
	quiet := Generate(GenerateOptions{Width: 12, Height: 10, NumPlates: 4, Rng: rand.New(rand.NewSource(9))})
	quiet.Mantle.Phase = MantleSupercontinent // 0.3x multiplier
	quiet.Mantle.ConvectionCells = nil

	fast := Generate(GenerateOptions{Width: 12, Height: 10, NumPlates: 4, Rng: rand.New(rand.NewSource(9))})
	fast.Mantle.Phase = MantleRifting // 1.4x multiplier
	fast.Mantle.ConvectionCells = nil

	p := DefaultMotionParams()
	p.Rng = rand.New(rand.NewSource(9))

	quiet.AdvanceTurn(0, p)
	fast.AdvanceTurn(0, p)

	quietSpeed := math.Hypot(quiet.Plates[0].VX, quiet.Plates[0].VY)
	fastSpeed := math.Hypot(fast.Plates[0].VX, fast.Plates[0].VY)
	assert.Less(t, quietSpeed, fastSpeed)
}

func TestSpeciesTrackerEmitsIsolationOnDisconnect(t *testing.T) {
	tracker := NewSpeciesTracker()
	tracker.UpdatePresence(0, []string{"A"})
	tracker.UpdatePresence(1, []string{"A"})
	tracker.connected = map[[2]int]bool{{0, 1}: true}

	w := Generate(GenerateOptions{Width: 10, Height: 10, NumPlates: 2, Rng: rand.New(rand.NewSource(3))})
	// Force every boundary between plate 0 and 1 to subduction by making
	// plate 0 oceanic and driving the two plates straight at each other, so
	// connectivity collapses in Advance().
	w.Plates[0].Type = worldtypes.PlateOceanic
	dx := w.Plates[1].RotationCenterX - w.Plates[0].RotationCenterX
	dy := w.Plates[1].RotationCenterY - w.Plates[0].RotationCenterY
	n := math.Hypot(dx, dy)
	w.Plates[0].VX, w.Plates[0].VY = 0.5*dx/n, 0.5*dy/n
	w.Plates[1].VX, w.Plates[1].VY = -0.5*dx/n, -0.5*dy/n
	profiles := map[string]SpeciesProfile{}
	isolations, _ := tracker.Advance(w, profiles)
	require.Len(t, isolations, 1)
	assert.Equal(t, IsolationEvent{LineageCode: "A", PlateA: 0, PlateB: 1}, isolations[0])
}
