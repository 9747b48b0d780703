package speciation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

func nicheSpecies(code string, habitat worldtypes.HabitatType, trophic, pop float64) *worldtypes.Species {
	return &worldtypes.Species{
		LineageCode:  code,
		Habitat:      habitat,
		TrophicLevel: trophic,
		Traits:       map[string]float64{},
		Morphology: map[worldtypes.MorphologyStat]float64{
			worldtypes.MorphPopulation:   pop,
			worldtypes.MorphBodyLength:   10,
			worldtypes.MorphBodyWeight:   5,
		},
		Description: "a generic organism",
	}
}

func TestAnalyzeUsesFallbackVectorWhenUnindexed(t *testing.T) {
	a := nicheSpecies("A1", worldtypes.HabitatTerrestrial, 1.0, 500)
	b := nicheSpecies("A2", worldtypes.HabitatTerrestrial, 1.0, 500)

	metrics := Analyze([]*worldtypes.Species{a, b}, nil, nil, 10000)

	assert.True(t, metrics["A1"].FallbackUsed)
	assert.True(t, metrics["A2"].FallbackUsed)
	assert.Greater(t, metrics["A1"].Overlap, 0.0)
}

func TestAnalyzeTileOverlapDiscountsSimilarity(t *testing.T) {
	a := nicheSpecies("A1", worldtypes.HabitatTerrestrial, 1.0, 500)
	b := nicheSpecies("A2", worldtypes.HabitatTerrestrial, 1.0, 500)

	noOverlap := func(x, y string) float64 { return 0 }
	fullOverlap := func(x, y string) float64 { return 1 }

	withNone := Analyze([]*worldtypes.Species{a, b}, nil, noOverlap, 10000)
	withFull := Analyze([]*worldtypes.Species{a, b}, nil, fullOverlap, 10000)

	assert.Less(t, withNone["A1"].Overlap, withFull["A1"].Overlap)
}

func TestAnalyzeSaturationScalesWithPopulation(t *testing.T) {
	a := nicheSpecies("A1", worldtypes.HabitatTerrestrial, 1.0, 50000)
	metrics := Analyze([]*worldtypes.Species{a}, nil, nil, 1000)
	assert.Equal(t, 2.0, metrics["A1"].Saturation)
}

func TestAnalyzeEmptyReturnsEmptyMap(t *testing.T) {
	metrics := Analyze(nil, nil, nil, 1000)
	assert.Empty(t, metrics)
}
