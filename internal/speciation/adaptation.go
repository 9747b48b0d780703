package speciation

import (
	"math"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

// GradientDirection maps an active pressure kind to the trait directions it
// pushes (spec.md §4.4 "Gradual adaptation"): positive entries increase
// that trait, negative entries decrease it.
var GradientDirection = map[string]map[string]float64{
	"drought":     {"drought_resistance": 1.0},
	"cold":        {"cold_resistance": 1.0, "heat_resistance": -1.0},
	"heat":        {"heat_resistance": 1.0, "cold_resistance": -1.0},
	"predation":   {"defense": 0.6, "speed": 0.4},
	"radiation":   {"radiation_resistance": 1.0},
}

// AdaptTraits moves a species' trait vector slowly along the
// environment-gradient vector determined by the active pressures,
// multiplied by generation count, a time-scaling factor and a
// plasticity-buffer urgency factor, then renormalizes to the era cap
// (spec.md §4.4).
func AdaptTraits(traits map[string]float64, activePressures []string, generationCount float64, timeScale float64, plasticityBuffer float64, era worldtypes.Era) map[string]float64 {
	urgency := 1.5 - plasticityBuffer // low buffer -> higher urgency
	if urgency < 0.1 {
		urgency = 0.1
	}
	step := generationCount * timeScale * urgency * 0.01

	out := make(map[string]float64, len(traits))
	for k, v := range traits {
		out[k] = v
	}
	for _, p := range activePressures {
		dirs, ok := GradientDirection[p]
		if !ok {
			continue
		}
		for trait, dir := range dirs {
			out[trait] = clip15(out[trait] + dir*step)
		}
	}
	renormalizeToCap(out, worldtypes.TraitNormCap(era))
	return out
}

func clip15(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 15 {
		return 15
	}
	return v
}

func renormalizeToCap(traits map[string]float64, cap float64) {
	sumSq := 0.0
	for _, v := range traits {
		sumSq += v * v
	}
	norm := math.Sqrt(sumSq)
	if norm <= cap || norm == 0 {
		return
	}
	scale := cap / norm
	for k, v := range traits {
		traits[k] = v * scale
	}
}

// DegenerationResult bundles what a degeneration pass removed.
type DegenerationResult struct {
	TraitReductions map[string]float64
	OrgansDeactivated []worldtypes.OrganCategory
}

// Degenerate implements spec.md §4.4 "Degeneration": entropy-driven
// reduction of a randomly chosen high-value trait by 0.1-0.4, plus
// environment-driven use-it-or-lose-it reductions for mismatched traits,
// run every fifth turn or whenever the trait sum exceeds
// maintenanceThreshold.
func Degenerate(traits map[string]float64, organs map[worldtypes.OrganCategory]worldtypes.Organ, turn int, maintenanceThreshold float64, envMismatches map[string]worldtypes.OrganCategory, pickHighTrait func(map[string]float64) string, entropyAmount float64) DegenerationResult {
	result := DegenerationResult{TraitReductions: map[string]float64{}}

	sum := 0.0
	for _, v := range traits {
		sum += v
	}
	due := turn%5 == 0 || sum > maintenanceThreshold
	if !due {
		return result
	}

	if len(traits) > 0 {
		target := pickHighTrait(traits)
		if target != "" {
			amount := entropyAmount
			if amount < 0.1 {
				amount = 0.1
			}
			if amount > 0.4 {
				amount = 0.4
			}
			traits[target] = clip15(traits[target] - amount)
			result.TraitReductions[target] = amount
		}
	}

	for mismatchTrait, organCategory := range envMismatches {
		if _, ok := traits[mismatchTrait]; ok {
			reduced := traits[mismatchTrait] * 0.9
			result.TraitReductions[mismatchTrait] += traits[mismatchTrait] - reduced
			traits[mismatchTrait] = reduced
		}
		if organ, ok := organs[organCategory]; ok && organ.Active {
			organ.Active = false
			organs[organCategory] = organ
			result.OrgansDeactivated = append(result.OrgansDeactivated, organCategory)
		}
	}
	return result
}
