package speciation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

func TestHybridNamingAndInheritance(t *testing.T) {
	a1 := &worldtypes.Species{
		LineageCode: "A1", GenusCode: "A", TrophicLevel: 2.0, CreatedTurn: 3,
		Status: worldtypes.StatusAlive,
		Traits: map[string]float64{"speed": 5, "armor": 3},
	}
	a2 := &worldtypes.Species{
		LineageCode: "A2", GenusCode: "A", TrophicLevel: 2.0, CreatedTurn: 5,
		Status: worldtypes.StatusAlive,
		Traits: map[string]float64{"speed": 6, "armor": 4},
	}

	ok, fertility := Hybridizable(a1, a2, 0.20)
	require.True(t, ok)
	assert.GreaterOrEqual(t, fertility, 0.6)
	assert.LessOrEqual(t, fertility, 1.0)

	existing := map[string]bool{}
	rng := rand.New(rand.NewSource(1))
	hybrid := BuildHybrid(a1, a2, fertility, HybridNatural, 6, func(c string) bool { return existing[c] }, rng)

	assert.Equal(t, "A1h1", hybrid.LineageCode)
	require.NotNil(t, hybrid.ParentCode)
	assert.Equal(t, "A1", *hybrid.ParentCode)
	assert.Equal(t, []string{"A1", "A2"}, hybrid.HybridParentCodes)
	require.NotNil(t, hybrid.HybridFertility)
	assert.InDelta(t, fertility, *hybrid.HybridFertility, 1e-9)
}

func TestCrossGenusFertilityCapped(t *testing.T) {
	a := &worldtypes.Species{LineageCode: "A", GenusCode: "A", TrophicLevel: 2.0, Status: worldtypes.StatusAlive}
	b := &worldtypes.Species{LineageCode: "B", GenusCode: "B", TrophicLevel: 2.0, Status: worldtypes.StatusAlive}
	ok, fertility := Hybridizable(a, b, 0.05)
	require.True(t, ok)
	assert.LessOrEqual(t, fertility, 0.3)
}

func TestChimeraFertilityCapped(t *testing.T) {
	_, fertility := ForceChimera(0.9)
	assert.LessOrEqual(t, fertility, 0.15)
}
