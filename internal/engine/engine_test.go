package engine

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/evosim/internal/config"
	"github.com/GoCodeAlone/evosim/internal/foodweb"
	"github.com/GoCodeAlone/evosim/internal/pressure"
	"github.com/GoCodeAlone/evosim/internal/tectonic"
	"github.com/GoCodeAlone/evosim/internal/tensorkernel"
	"github.com/GoCodeAlone/evosim/internal/tensorstate"
	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	balance := config.DefaultBalanceConfig()

	world := tectonic.Generate(tectonic.GenerateOptions{
		Width: 6, Height: 6, NumPlates: 3,
		MinSeedDistance: 1,
		Rng:             rand.New(rand.NewSource(7)),
	})

	state := tensorstate.NewState(6, 6, 1, tensorstate.EnvChannelCount)
	row, err := state.SpeciesMap.Add("A1")
	require.NoError(t, err)
	for i := range state.Pop.Channel(row) {
		state.Pop.Channel(row)[i] = 10
	}
	for i := range state.Env.Channel(tensorstate.EnvTemperature) {
		state.Env.Channel(tensorstate.EnvTemperature)[i] = 20
	}

	eng := New(tensorkernel.NewDenseBackend(), balance, world, state, foodweb.NewManager(config.DefaultFoodWebConfig()), nil, nil)

	sp := &worldtypes.Species{
		LineageCode:  "A1",
		GenusCode:    "A",
		Traits:       map[string]float64{},
		HiddenTraits: map[string]float64{},
		Morphology:   map[worldtypes.MorphologyStat]float64{worldtypes.MorphPopulation: 10},
		Habitat:      worldtypes.HabitatTerrestrial,
		Diet:         worldtypes.DietAutotroph,
		TrophicLevel: 1.0,
		Status:       worldtypes.StatusAlive,
	}
	require.NoError(t, eng.Repo.Upsert(sp))
	return eng
}

func TestRunTurnProducesReport(t *testing.T) {
	eng := newTestEngine(t)

	report, err := eng.RunTurn(context.Background(), TurnRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.TurnIndex)
	assert.Equal(t, 1, eng.TurnIndex)
}

func TestRunTurnRejectsInvalidDescriptor(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.RunTurn(context.Background(), TurnRequest{
		Descriptors: []pressure.Descriptor{{Kind: pressure.KindTemperature, Intensity: 99}},
	})
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRunTurnAppliesPressureDescriptor(t *testing.T) {
	eng := newTestEngine(t)

	report, err := eng.RunTurn(context.Background(), TurnRequest{
		Descriptors: []pressure.Descriptor{{Kind: pressure.KindRadiation, Intensity: 5}},
	})
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestRunTurnIncrementsTurnIndexAcrossCalls(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.RunTurn(context.Background(), TurnRequest{})
	require.NoError(t, err)
	_, err = eng.RunTurn(context.Background(), TurnRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, eng.TurnIndex)
}
