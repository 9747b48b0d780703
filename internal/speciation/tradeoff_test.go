package speciation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTradeoffRespectsEnergyConservationSlack(t *testing.T) {
	cfg := TradeoffConfig{
		EnergyCost: map[string]float64{
			"speed": 1.0, "armor": 1.2, "vision": 0.8, "stamina": 1.0, "size": 1.5,
		},
		CompetitionMap: map[string][]string{
			"speed": {"armor"},
		},
		DefaultPool:   []string{"vision", "stamina", "size"},
		TradeoffRatio: 0.75,
		MinPenalty:    0.01,
	}
	parentTraits := map[string]float64{
		"armor": 8, "vision": 10, "stamina": 9, "size": 7,
	}
	gains := map[string]float64{"speed": 3.0}

	result := Compute(gains, parentTraits, cfg)

	slack := math.Max(0.5, 0.05*result.TotalGainCost)
	target := cfg.TradeoffRatio * result.TotalGainCost
	assert.InDelta(t, target, result.TotalPenaltyCost, slack)

	for trait, units := range result.Penalties {
		cap := math.Min(parentTraits[trait]*0.3, 2.0)
		assert.LessOrEqual(t, units, cap+1e-9)
	}
	_, gained := result.Penalties["speed"]
	assert.False(t, gained, "must never penalize the trait just gained")
}
