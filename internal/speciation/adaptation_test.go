package speciation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

func TestAdaptTraitsMovesAlongGradient(t *testing.T) {
	traits := map[string]float64{"drought_resistance": 1.0}
	out := AdaptTraits(traits, []string{"drought"}, 4, 1.0, 0.5, worldtypes.EraHadean)
	assert.Greater(t, out["drought_resistance"], traits["drought_resistance"])
}

func TestAdaptTraitsIgnoresUnknownPressure(t *testing.T) {
	traits := map[string]float64{"drought_resistance": 1.0}
	out := AdaptTraits(traits, []string{"unknown_pressure"}, 4, 1.0, 0.5, worldtypes.EraHadean)
	assert.Equal(t, traits["drought_resistance"], out["drought_resistance"])
}

func TestAdaptTraitsRenormalizesToEraCap(t *testing.T) {
	traits := map[string]float64{"heat_resistance": 14, "cold_resistance": 14, "defense": 14}
	out := AdaptTraits(traits, []string{"heat"}, 50, 1.0, 0.1, worldtypes.EraHadean)

	sumSq := 0.0
	for _, v := range out {
		sumSq += v * v
	}
	assert.LessOrEqual(t, sumSq, worldtypes.TraitNormCap(worldtypes.EraHadean)*worldtypes.TraitNormCap(worldtypes.EraHadean)+1e-6)
}

func TestDegenerateSkipsWhenNotDue(t *testing.T) {
	traits := map[string]float64{"speed": 5}
	result := Degenerate(traits, nil, 3, 100, nil, func(map[string]float64) string { return "speed" }, 0.2)
	assert.Empty(t, result.TraitReductions)
	assert.Equal(t, 5.0, traits["speed"])
}

func TestDegenerateReducesHighTraitOnScheduledTurn(t *testing.T) {
	traits := map[string]float64{"speed": 5}
	result := Degenerate(traits, nil, 5, 100, nil, func(map[string]float64) string { return "speed" }, 0.2)
	assert.Equal(t, 0.2, result.TraitReductions["speed"])
	assert.Equal(t, 4.8, traits["speed"])
}

func TestDegenerateDeactivatesMismatchedOrgan(t *testing.T) {
	traits := map[string]float64{"heat_resistance": 10}
	organs := map[worldtypes.OrganCategory]worldtypes.Organ{
		worldtypes.OrganMetabolic: {Active: true},
	}
	mismatches := map[string]worldtypes.OrganCategory{"heat_resistance": worldtypes.OrganMetabolic}

	result := Degenerate(traits, organs, 5, 1000, mismatches, func(map[string]float64) string { return "" }, 0.2)

	assert.Contains(t, result.OrgansDeactivated, worldtypes.OrganMetabolic)
	assert.False(t, organs[worldtypes.OrganMetabolic].Active)
	assert.InDelta(t, 9.0, traits["heat_resistance"], 1e-9)
}
