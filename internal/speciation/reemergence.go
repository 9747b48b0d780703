package speciation

import "github.com/GoCodeAlone/evosim/pkg/worldtypes"

// minReemergenceDiversity is the minimum hidden-trait count an extinct
// lineage must retain to be eligible for reemergence.
const minReemergenceDiversity = 3

// maxReemergencePressure caps the total absolute environmental-modifier
// pressure under which reemergence can still occur.
const maxReemergencePressure = 2.0

// reemergenceStartPopulation is the population a reemerged lineage is
// seeded with.
const reemergenceStartPopulation = 100.0

// ReemergenceEvent records an extinct lineage returning to alive status.
type ReemergenceEvent struct {
	LineageCode string
	CommonName  string
	Reason      string
}

// EvaluateReemergence scans extinct candidates and flips eligible ones back
// to alive, seeding their population. A candidate is eligible when it
// retains at least minReemergenceDiversity hidden traits and the combined
// absolute environmental modifiers do not exceed maxReemergencePressure.
func EvaluateReemergence(candidates []*worldtypes.Species, modifiers map[string]float64) []ReemergenceEvent {
	totalPressure := 0.0
	for _, v := range modifiers {
		if v < 0 {
			totalPressure -= v
		} else {
			totalPressure += v
		}
	}
	tooHarsh := totalPressure > maxReemergencePressure

	var events []ReemergenceEvent
	for _, sp := range candidates {
		if sp.Status != worldtypes.StatusExtinct {
			continue
		}
		if tooHarsh || len(sp.HiddenTraits) < minReemergenceDiversity {
			continue
		}
		sp.Status = worldtypes.StatusAlive
		if sp.Morphology == nil {
			sp.Morphology = map[worldtypes.MorphologyStat]float64{}
		}
		sp.Morphology[worldtypes.MorphPopulation] = reemergenceStartPopulation
		events = append(events, ReemergenceEvent{
			LineageCode: sp.LineageCode,
			CommonName:  sp.CommonName,
			Reason:      "residual population recovery",
		})
	}
	return events
}
