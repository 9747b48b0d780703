package speciation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

func TestEvaluateReemergenceEligible(t *testing.T) {
	sp := &worldtypes.Species{
		LineageCode: "A1",
		CommonName:  "test lineage",
		Status:      worldtypes.StatusExtinct,
		HiddenTraits: map[string]float64{
			"x": 0.1, "y": 0.2, "z": 0.3,
		},
	}
	events := EvaluateReemergence([]*worldtypes.Species{sp}, map[string]float64{"drought": 0.5})

	require.Len(t, events, 1)
	assert.Equal(t, "A1", events[0].LineageCode)
	assert.Equal(t, worldtypes.StatusAlive, sp.Status)
	assert.Equal(t, reemergenceStartPopulation, sp.Morphology[worldtypes.MorphPopulation])
}

func TestEvaluateReemergenceBlockedByPressure(t *testing.T) {
	sp := &worldtypes.Species{
		LineageCode:  "A1",
		Status:       worldtypes.StatusExtinct,
		HiddenTraits: map[string]float64{"x": 0.1, "y": 0.2, "z": 0.3},
	}
	events := EvaluateReemergence([]*worldtypes.Species{sp}, map[string]float64{"drought": 1.5, "cold": 1.0})

	assert.Empty(t, events)
	assert.Equal(t, worldtypes.StatusExtinct, sp.Status)
}

func TestEvaluateReemergenceBlockedByLowDiversity(t *testing.T) {
	sp := &worldtypes.Species{
		LineageCode:  "A1",
		Status:       worldtypes.StatusExtinct,
		HiddenTraits: map[string]float64{"x": 0.1},
	}
	events := EvaluateReemergence([]*worldtypes.Species{sp}, nil)
	assert.Empty(t, events)
}

func TestEvaluateReemergenceSkipsAlive(t *testing.T) {
	sp := &worldtypes.Species{
		LineageCode:  "A1",
		Status:       worldtypes.StatusAlive,
		HiddenTraits: map[string]float64{"x": 0.1, "y": 0.2, "z": 0.3},
	}
	events := EvaluateReemergence([]*worldtypes.Species{sp}, nil)
	assert.Empty(t, events)
}
