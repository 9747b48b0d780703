// Package foodweb maintains prey relationships between species at the
// end of every turn: assigning prey to orphaned consumers, replacing
// extinct prey, topping up below-threshold diversity, and reporting the
// resulting web's health (spec.md §4.5).
package foodweb

import (
	"math"
	"sort"

	"github.com/GoCodeAlone/evosim/internal/config"
	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

// ChangeKind tags what a Change record describes.
type ChangeKind string

const (
	ChangePreyAssigned  ChangeKind = "prey_assigned"
	ChangePreyReplaced  ChangeKind = "prey_replaced"
	ChangePreyAdded     ChangeKind = "prey_added"
	ChangePreyLost      ChangeKind = "prey_lost"
)

// Change records one species' prey-list mutation for narrative/audit use.
type Change struct {
	LineageCode string
	Kind        ChangeKind
	OldPrey     []string
	NewPrey     []string
}

// Analysis summarizes the food web's structural health after a maintenance
// pass (spec.md §4.5).
type Analysis struct {
	TotalSpecies        int
	TotalLinks          int
	OrphanedConsumers   []string
	StarvingSpecies     []string
	KeystoneSpecies     []string
	IsolatedSpecies     []string
	AvgPreyPerConsumer  float64
	Density             float64
	HealthScore         float64
	PreyShortageSpecies []string
}

// Manager runs the per-turn food-web maintenance pass.
type Manager struct {
	cfg *config.FoodWebConfig
}

// NewManager builds a Manager from the given configuration, or compiled
// defaults when cfg is nil.
func NewManager(cfg *config.FoodWebConfig) *Manager {
	if cfg == nil {
		cfg = config.DefaultFoodWebConfig()
	}
	return &Manager{cfg: cfg}
}

// MaintainFoodWeb assigns prey to consumers missing it, replaces prey lost
// to extinction, tops up diversity below the per-trophic-level threshold,
// and returns the resulting Analysis plus the Changes made along the way.
func (m *Manager) MaintainFoodWeb(species []*worldtypes.Species) (Analysis, []Change) {
	alive := aliveOf(species)
	aliveCodes := codesOf(alive)
	speciesMap := make(map[string]*worldtypes.Species, len(alive))
	for _, sp := range alive {
		speciesMap[sp.LineageCode] = sp
	}

	var changes []Change
	var preyShortage []string

	for _, sp := range alive {
		if sp.TrophicLevel < 2.0 {
			continue
		}
		current := sp.PreySpecies
		valid, extinct := splitByAlive(current, aliveCodes)
		minCount := m.minPreyCount(sp.TrophicLevel)

		switch {
		case len(current) == 0:
			assigned := m.inferPrey(sp, alive, minCount+2)
			if len(assigned) > 0 {
				changes = append(changes, m.assignPrey(sp, assigned, speciesMap, ChangePreyAssigned, nil))
			}

		case len(extinct) > 0 && len(valid) == 0:
			replacement := m.inferPrey(sp, alive, minCount+2)
			if len(replacement) > 0 {
				changes = append(changes, m.assignPrey(sp, replacement, speciesMap, ChangePreyReplaced, current))
			} else {
				changes = append(changes, Change{LineageCode: sp.LineageCode, Kind: ChangePreyLost, OldPrey: current, NewPrey: nil})
			}

		case len(extinct) > 0:
			replacement := m.findReplacementPrey(sp, extinct, valid, alive)
			if len(replacement) > 0 {
				newList := append(append([]string{}, valid...), replacement...)
				changes = append(changes, m.assignPrey(sp, newList, speciesMap, ChangePreyAdded, current))
			}

		case len(valid) < minCount:
			preyShortage = append(preyShortage, sp.LineageCode)
			needed := minCount - len(valid)
			if needed > m.cfg.MaxPreyAdditionsPerTurn {
				needed = m.cfg.MaxPreyAdditionsPerTurn
			}
			additions := m.findAdditionalPrey(sp, valid, alive, needed)
			if len(additions) > 0 {
				newList := append(append([]string{}, valid...), additions...)
				changes = append(changes, m.assignPrey(sp, newList, speciesMap, ChangePreyAdded, current))
			}
		}
	}

	analysis := m.analyze(alive)
	analysis.PreyShortageSpecies = preyShortage
	return analysis, changes
}

// IntegrateNewProducers folds newly emerged producer species into the diet
// of consumers whose valid prey count is still at or below the configured
// priority threshold (spec.md §4.5: "newly emerged producers are integrated
// as prey for existing consumers only when (a) trophic-level gap in
// [0.5,1.5] (b) habitats compatible (c) tile sets overlap (d) biomass
// constraint holds"), a pass distinct from the below-minimum diversity
// top-up MaintainFoodWeb already runs. tileOverlap reports whether the
// consumer and producer share any territory; pass nil when that data isn't
// available to skip the check rather than reject everything.
func (m *Manager) IntegrateNewProducers(newProducers []*worldtypes.Species, alive []*worldtypes.Species, tileOverlap func(consumerCode, producerCode string) bool) []Change {
	if len(newProducers) == 0 {
		return nil
	}
	speciesMap := make(map[string]*worldtypes.Species, len(alive))
	for _, sp := range alive {
		speciesMap[sp.LineageCode] = sp
	}
	aliveCodes := codesOf(alive)

	var changes []Change
	for _, consumer := range alive {
		if consumer.TrophicLevel < 2.0 {
			continue
		}
		valid, _ := splitByAlive(consumer.PreySpecies, aliveCodes)
		if len(valid) > m.cfg.IntegratePriorityWhenPreyBelow {
			continue
		}
		have := make(map[string]bool, len(valid))
		for _, c := range valid {
			have[c] = true
		}

		var added []string
		for _, producer := range newProducers {
			if producer.LineageCode == consumer.LineageCode || have[producer.LineageCode] {
				continue
			}
			trophicDiff := consumer.TrophicLevel - producer.TrophicLevel
			if trophicDiff < 0.5 || trophicDiff > 1.5 {
				continue
			}
			if consumer.Habitat != producer.Habitat && !habitatsCompatible(consumer.Habitat, producer.Habitat) {
				continue
			}
			if tileOverlap != nil && !tileOverlap(consumer.LineageCode, producer.LineageCode) {
				continue
			}
			if m.cfg.EnableBiomassConstraint && !checkBiomassConstraint(consumer, producer, m.cfg) {
				continue
			}
			added = append(added, producer.LineageCode)
			if len(added) >= 2 {
				break
			}
		}
		if len(added) == 0 {
			continue
		}
		newList := append(append([]string{}, valid...), added...)
		changes = append(changes, m.assignPrey(consumer, newList, speciesMap, ChangePreyAdded, consumer.PreySpecies))
	}
	return changes
}

func habitatsCompatible(a, b worldtypes.HabitatType) bool {
	groups := [][]worldtypes.HabitatType{
		{worldtypes.HabitatMarine, worldtypes.HabitatCoastal, worldtypes.HabitatDeepSea},
		{worldtypes.HabitatFreshwater, worldtypes.HabitatTerrestrial, worldtypes.HabitatAmphibious},
		{worldtypes.HabitatTerrestrial, worldtypes.HabitatAerial},
	}
	for _, g := range groups {
		if containsHabitat(g, a) && containsHabitat(g, b) {
			return true
		}
	}
	return false
}

func containsHabitat(set []worldtypes.HabitatType, h worldtypes.HabitatType) bool {
	for _, x := range set {
		if x == h {
			return true
		}
	}
	return false
}

func (m *Manager) minPreyCount(trophicLevel float64) int {
	switch {
	case trophicLevel < 3.0:
		return m.cfg.MinPreyCountT2
	case trophicLevel < 4.0:
		return m.cfg.MinPreyCountT3
	case trophicLevel < 5.0:
		return m.cfg.MinPreyCountT4
	default:
		return m.cfg.MinPreyCountT5
	}
}

// inferPrey collects candidates whose trophic level lies between the
// predator's level minus 1.5 (at least 1.0) and its level minus 0.5 and
// that pass the biomass constraint, ranks them by habitat match, and
// returns up to limit codes.
func (m *Manager) inferPrey(predator *worldtypes.Species, alive []*worldtypes.Species, limit int) []string {
	minLevel := predator.TrophicLevel - 1.5
	if minLevel < 1.0 {
		minLevel = 1.0
	}
	maxLevel := predator.TrophicLevel - 0.5

	type scored struct {
		code  string
		score float64
	}
	var candidates []scored
	for _, prey := range alive {
		if prey.LineageCode == predator.LineageCode {
			continue
		}
		if prey.TrophicLevel < minLevel || prey.TrophicLevel > maxLevel {
			continue
		}
		if m.cfg.EnableBiomassConstraint && !checkBiomassConstraint(predator, prey, m.cfg) {
			continue
		}
		score := 0.3
		if predator.Habitat == prey.Habitat {
			score += 0.2
		}
		candidates = append(candidates, scored{prey.LineageCode, score})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.code
	}
	return out
}

func (m *Manager) findReplacementPrey(predator *worldtypes.Species, extinct, valid []string, alive []*worldtypes.Species) []string {
	have := make(map[string]bool, len(valid))
	for _, c := range valid {
		have[c] = true
	}
	candidates := m.inferPrey(predator, alive, len(extinct)+4)
	var out []string
	for _, c := range candidates {
		if have[c] {
			continue
		}
		out = append(out, c)
		if len(out) == len(extinct) {
			break
		}
	}
	return out
}

func (m *Manager) findAdditionalPrey(predator *worldtypes.Species, valid []string, alive []*worldtypes.Species, count int) []string {
	have := make(map[string]bool, len(valid))
	for _, c := range valid {
		have[c] = true
	}
	candidates := m.inferPrey(predator, alive, count+len(valid))
	var out []string
	for _, c := range candidates {
		if have[c] {
			continue
		}
		out = append(out, c)
		if len(out) >= count {
			break
		}
	}
	return out
}

func checkBiomassConstraint(predator, prey *worldtypes.Species, cfg *config.FoodWebConfig) bool {
	preyPop := prey.Morphology[worldtypes.MorphPopulation]
	preyWeight := prey.Morphology[worldtypes.MorphBodyWeight]
	if preyWeight <= 0 {
		preyWeight = 0.001
	}
	preyBiomass := preyPop * preyWeight
	trophicDiff := predator.TrophicLevel - prey.TrophicLevel
	required := cfg.MinPreyBiomassG * pow(cfg.BiomassTrophicMultiplier, trophicDiff)
	return preyBiomass >= required
}

func pow(base, exp float64) float64 {
	if exp <= 0 {
		return 1
	}
	return math.Pow(base, exp)
}

func (m *Manager) assignPrey(sp *worldtypes.Species, preyCodes []string, speciesMap map[string]*worldtypes.Species, kind ChangeKind, oldPrey []string) Change {
	prefs := recalculatePreferences(sp, preyCodes, speciesMap)
	sp.PreySpecies = preyCodes
	sp.PreyPreferences = prefs
	switch {
	case sp.TrophicLevel >= 3.5:
		sp.Diet = worldtypes.DietCarnivore
	case sp.TrophicLevel >= 2.5:
		sp.Diet = worldtypes.DietOmnivore
	default:
		sp.Diet = worldtypes.DietHerbivore
	}
	return Change{LineageCode: sp.LineageCode, Kind: kind, OldPrey: oldPrey, NewPrey: preyCodes}
}

func recalculatePreferences(predator *worldtypes.Species, preyCodes []string, speciesMap map[string]*worldtypes.Species) map[string]float64 {
	if len(preyCodes) == 0 {
		return nil
	}
	weights := make(map[string]float64, len(preyCodes))
	total := 0.0
	for _, code := range preyCodes {
		prey, ok := speciesMap[code]
		if !ok {
			weights[code] = 1.0
			total += 1.0
			continue
		}
		levelDiff := predator.TrophicLevel - prey.TrophicLevel
		base := 1.0 / (absf(levelDiff-1.0) + 0.5)
		pop := prey.Morphology[worldtypes.MorphPopulation]
		if pop == 0 {
			pop = 100
		}
		popFactor := 0.5 + pop/10000
		if popFactor > 1.5 {
			popFactor = 1.5
		}
		weights[code] = base * popFactor
		total += weights[code]
	}
	if total > 0 {
		for k := range weights {
			weights[k] /= total
		}
	}
	return weights
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (m *Manager) analyze(alive []*worldtypes.Species) Analysis {
	aliveCodes := codesOf(alive)
	preyCounts := map[string]int{}
	var orphaned, starving []string
	totalLinks := 0
	consumerCount := 0
	totalPreyCount := 0

	for _, sp := range alive {
		valid, _ := splitByAlive(sp.PreySpecies, aliveCodes)
		totalLinks += len(valid)
		for _, code := range valid {
			preyCounts[code]++
		}
		if sp.TrophicLevel >= 2.0 {
			consumerCount++
			totalPreyCount += len(valid)
			if len(valid) == 0 {
				if len(sp.PreySpecies) == 0 {
					orphaned = append(orphaned, sp.LineageCode)
				} else {
					starving = append(starving, sp.LineageCode)
				}
			}
		}
	}

	var keystone []string
	for code, count := range preyCounts {
		if count >= 3 {
			keystone = append(keystone, code)
		}
	}
	sort.Strings(keystone)

	var isolated []string
	for _, sp := range alive {
		valid, _ := splitByAlive(sp.PreySpecies, aliveCodes)
		_, isPredated := preyCounts[sp.LineageCode]
		if len(valid) == 0 && !isPredated && sp.TrophicLevel >= 2.0 {
			isolated = append(isolated, sp.LineageCode)
		}
	}
	sort.Strings(isolated)

	avgPrey := 0.0
	if consumerCount > 0 {
		avgPrey = float64(totalPreyCount) / float64(consumerCount)
	}
	total := len(alive)
	maxLinks := float64(total*(total-1)) / 2
	density := 0.0
	if maxLinks > 0 {
		density = float64(totalLinks) / maxLinks
	}

	return Analysis{
		TotalSpecies:       total,
		TotalLinks:         totalLinks,
		OrphanedConsumers:  orphaned,
		StarvingSpecies:    starving,
		KeystoneSpecies:    keystone,
		IsolatedSpecies:    isolated,
		AvgPreyPerConsumer: avgPrey,
		Density:            density,
		HealthScore:        healthScore(total, totalLinks, len(orphaned), len(starving), avgPrey),
	}
}

func healthScore(total, links, orphaned, starving int, avgPrey float64) float64 {
	if total == 0 {
		return 0
	}
	score := 1.0
	score -= (float64(orphaned) / float64(total)) * 0.3
	score -= (float64(starving) / float64(total)) * 0.5

	linksPerSpecies := float64(links) / float64(total)
	switch {
	case linksPerSpecies >= 2:
		score += 0.1
	case linksPerSpecies < 1:
		score -= 0.1
	}
	switch {
	case avgPrey >= 2:
		score += 0.1
	case avgPrey < 1:
		score -= 0.1
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func aliveOf(species []*worldtypes.Species) []*worldtypes.Species {
	out := make([]*worldtypes.Species, 0, len(species))
	for _, sp := range species {
		if sp.Status == worldtypes.StatusAlive {
			out = append(out, sp)
		}
	}
	return out
}

func codesOf(species []*worldtypes.Species) map[string]bool {
	out := make(map[string]bool, len(species))
	for _, sp := range species {
		out[sp.LineageCode] = true
	}
	return out
}

func splitByAlive(codes []string, alive map[string]bool) (valid, extinct []string) {
	for _, c := range codes {
		if alive[c] {
			valid = append(valid, c)
		} else {
			extinct = append(extinct, c)
		}
	}
	return valid, extinct
}
