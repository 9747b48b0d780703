package foodweb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/evosim/internal/config"
	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

func producer(code string, habitat worldtypes.HabitatType, pop float64) *worldtypes.Species {
	return &worldtypes.Species{
		LineageCode:  code,
		Status:       worldtypes.StatusAlive,
		TrophicLevel: 1.0,
		Habitat:      habitat,
		Diet:         worldtypes.DietAutotroph,
		Morphology: map[worldtypes.MorphologyStat]float64{
			worldtypes.MorphPopulation: pop,
			worldtypes.MorphBodyWeight: 2.0,
		},
	}
}

func consumer(code string, habitat worldtypes.HabitatType, trophic float64, prey []string) *worldtypes.Species {
	return &worldtypes.Species{
		LineageCode:     code,
		Status:          worldtypes.StatusAlive,
		TrophicLevel:    trophic,
		Habitat:         habitat,
		Diet:            worldtypes.DietHerbivore,
		PreySpecies:     prey,
		PreyPreferences: map[string]float64{},
		Morphology: map[worldtypes.MorphologyStat]float64{
			worldtypes.MorphPopulation: 500,
			worldtypes.MorphBodyWeight: 5.0,
		},
	}
}

func TestMaintainFoodWebAssignsMissingPrey(t *testing.T) {
	cfg := config.DefaultFoodWebConfig()
	mgr := NewManager(cfg)

	p := producer("P1", worldtypes.HabitatTerrestrial, 5000)
	c := consumer("C1", worldtypes.HabitatTerrestrial, 2.0, nil)

	analysis, changes := mgr.MaintainFoodWeb([]*worldtypes.Species{p, c})

	require.NotEmpty(t, changes)
	assert.Equal(t, ChangePreyAssigned, changes[0].Kind)
	assert.Contains(t, c.PreySpecies, "P1")
	assert.Equal(t, 2, analysis.TotalSpecies)
}

func TestMaintainFoodWebReplacesExtinctPrey(t *testing.T) {
	cfg := config.DefaultFoodWebConfig()
	mgr := NewManager(cfg)

	p1 := producer("P1", worldtypes.HabitatTerrestrial, 5000)
	c := consumer("C1", worldtypes.HabitatTerrestrial, 2.0, []string{"EXTINCT"})

	_, changes := mgr.MaintainFoodWeb([]*worldtypes.Species{p1, c})

	require.NotEmpty(t, changes)
	assert.Equal(t, ChangePreyReplaced, changes[0].Kind)
	assert.Equal(t, []string{"P1"}, c.PreySpecies)
}

func TestAnalyzeFoodWebFlagsOrphanedConsumer(t *testing.T) {
	cfg := config.DefaultFoodWebConfig()
	cfg.MinPreyCountT2 = 0
	mgr := NewManager(cfg)

	c := consumer("C1", worldtypes.HabitatTerrestrial, 2.0, nil)
	analysis, _ := mgr.MaintainFoodWeb([]*worldtypes.Species{c})

	assert.Contains(t, analysis.OrphanedConsumers, "C1")
	assert.Less(t, analysis.HealthScore, 1.0)
}

func TestAnalyzeFoodWebIdentifiesKeystone(t *testing.T) {
	cfg := config.DefaultFoodWebConfig()
	mgr := NewManager(cfg)

	p := producer("P1", worldtypes.HabitatTerrestrial, 9000)
	c1 := consumer("C1", worldtypes.HabitatTerrestrial, 2.0, []string{"P1"})
	c2 := consumer("C2", worldtypes.HabitatTerrestrial, 2.0, []string{"P1"})
	c3 := consumer("C3", worldtypes.HabitatTerrestrial, 2.0, []string{"P1"})

	analysis, _ := mgr.MaintainFoodWeb([]*worldtypes.Species{p, c1, c2, c3})

	assert.Contains(t, analysis.KeystoneSpecies, "P1")
}

func TestIntegrateNewProducersAddsWithinTrophicGap(t *testing.T) {
	cfg := config.DefaultFoodWebConfig()
	cfg.IntegratePriorityWhenPreyBelow = 1
	mgr := NewManager(cfg)

	existingPrey := producer("P0", worldtypes.HabitatTerrestrial, 5000)
	c := consumer("C1", worldtypes.HabitatTerrestrial, 2.0, []string{"P0"})
	newProducer := producer("P1", worldtypes.HabitatTerrestrial, 5000)

	changes := mgr.IntegrateNewProducers([]*worldtypes.Species{newProducer}, []*worldtypes.Species{existingPrey, c, newProducer}, nil)

	require.NotEmpty(t, changes)
	assert.Contains(t, c.PreySpecies, "P1")
}

func TestIntegrateNewProducersSkipsWhenPreyAlreadySufficient(t *testing.T) {
	cfg := config.DefaultFoodWebConfig()
	cfg.IntegratePriorityWhenPreyBelow = 1
	mgr := NewManager(cfg)

	p0 := producer("P0", worldtypes.HabitatTerrestrial, 5000)
	p2 := producer("P2", worldtypes.HabitatTerrestrial, 5000)
	c := consumer("C1", worldtypes.HabitatTerrestrial, 2.0, []string{"P0", "P2"})
	newProducer := producer("P1", worldtypes.HabitatTerrestrial, 5000)

	changes := mgr.IntegrateNewProducers([]*worldtypes.Species{newProducer}, []*worldtypes.Species{p0, p2, c, newProducer}, nil)

	assert.Empty(t, changes)
	assert.NotContains(t, c.PreySpecies, "P1")
}

func TestIntegrateNewProducersRejectsNoTileOverlap(t *testing.T) {
	cfg := config.DefaultFoodWebConfig()
	cfg.IntegratePriorityWhenPreyBelow = 1
	mgr := NewManager(cfg)

	existingPrey := producer("P0", worldtypes.HabitatTerrestrial, 5000)
	c := consumer("C1", worldtypes.HabitatTerrestrial, 2.0, []string{"P0"})
	newProducer := producer("P1", worldtypes.HabitatTerrestrial, 5000)

	noOverlap := func(a, b string) bool { return false }
	changes := mgr.IntegrateNewProducers([]*worldtypes.Species{newProducer}, []*worldtypes.Species{existingPrey, c, newProducer}, noOverlap)

	assert.Empty(t, changes)
}
