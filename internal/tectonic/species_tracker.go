package tectonic

import "github.com/GoCodeAlone/evosim/pkg/worldtypes"

// SpeciesProfile is the minimal per-species information the tracker needs
// to choose a contact InteractionType without depending on the species
// package (which would create an import cycle with speciation/foodweb).
type SpeciesProfile struct {
	LineageCode  string
	Diet         worldtypes.DietType
	TrophicLevel float64
}

// SpeciesTracker maintains, per plate, the set of species with any
// population on the plate's tiles, and per-plate-pair connectivity, so it
// can emit IsolationEvent/ContactEvent when connectivity changes (spec.md
// §4.3 "Species tracker").
type SpeciesTracker struct {
	plateSpecies map[int]map[string]bool
	connected    map[[2]int]bool
}

// NewSpeciesTracker constructs an empty tracker.
func NewSpeciesTracker() *SpeciesTracker {
	return &SpeciesTracker{
		plateSpecies: make(map[int]map[string]bool),
		connected:    make(map[[2]int]bool),
	}
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// UpdatePresence replaces the species-presence set for a plate.
func (t *SpeciesTracker) UpdatePresence(plateID int, lineageCodes []string) {
	set := make(map[string]bool, len(lineageCodes))
	for _, c := range lineageCodes {
		set[c] = true
	}
	t.plateSpecies[plateID] = set
}

// connectivityFromWorld derives, for every adjacent plate pair, whether a
// land-or-sea path still connects them: true unless every boundary tile
// between them is a subduction zone or the plates no longer share any
// tile boundary at all.
func connectivityFromWorld(w *World) map[[2]int]bool {
	out := make(map[[2]int]bool)
	sharedBoundary := make(map[[2]int]bool)
	subductionOnly := make(map[[2]int]bool)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.TileIndex(x, y)
			a := w.Tiles[idx].PlateID
			for _, n := range worldtypes.NeighborsOddQ(x, y, w.Width, w.Height) {
				b := w.Tiles[w.TileIndex(n[0], n[1])].PlateID
				if b == a {
					continue
				}
				key := pairKey(a, b)
				sharedBoundary[key] = true
				bt := boundaryTypeOf(w, a, b)
				if _, seen := subductionOnly[key]; !seen {
					subductionOnly[key] = true
				}
				if bt != worldtypes.BoundarySubduction {
					subductionOnly[key] = false
				}
			}
		}
	}
	for key := range sharedBoundary {
		out[key] = !subductionOnly[key]
	}
	return out
}

func boundaryTypeOf(w *World, a, b int) worldtypes.BoundaryType {
	return w.classifyBoundary(a, b)
}

// Advance recomputes connectivity against the world's current boundaries
// and diffs it against the previous turn's connectivity, emitting
// IsolationEvent/ContactEvent for species present on both sides of a
// pair whose connectivity changed (spec.md §4.3).
func (t *SpeciesTracker) Advance(w *World, profiles map[string]SpeciesProfile) ([]IsolationEvent, []ContactEvent) {
	newConnected := connectivityFromWorld(w)

	var isolations []IsolationEvent
	var contacts []ContactEvent

	allPairs := make(map[[2]int]bool)
	for k := range t.connected {
		allPairs[k] = true
	}
	for k := range newConnected {
		allPairs[k] = true
	}

	for pair := range allPairs {
		wasConnected := t.connected[pair]
		isConnected := newConnected[pair]
		if wasConnected == isConnected {
			continue
		}
		a, b := pair[0], pair[1]
		speciesOnBoth := intersect(t.plateSpecies[a], t.plateSpecies[b])
		if !isConnected {
			for _, code := range speciesOnBoth {
				isolations = append(isolations, IsolationEvent{LineageCode: code, PlateA: a, PlateB: b})
			}
		} else {
			onA, onB := t.plateSpecies[a], t.plateSpecies[b]
			for codeA := range onA {
				for codeB := range onB {
					if codeA == codeB {
						continue
					}
					pa, okA := profiles[codeA]
					pb, okB := profiles[codeB]
					if !okA || !okB {
						continue
					}
					contacts = append(contacts, ContactEvent{
						LineageA: codeA, LineageB: codeB, PlateA: a, PlateB: b,
						Interaction: classifyInteraction(pa, pb),
					})
				}
			}
		}
	}

	t.connected = newConnected
	return isolations, contacts
}

// TileSetsOverlap reports whether two lineages share presence on any
// tracked plate, the coarsest territory granularity the tracker keeps.
func (t *SpeciesTracker) TileSetsOverlap(a, b string) bool {
	for _, set := range t.plateSpecies {
		if set[a] && set[b] {
			return true
		}
	}
	return false
}

func intersect(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if b[k] {
			out = append(out, k)
		}
	}
	return out
}

func classifyInteraction(a, b SpeciesProfile) InteractionType {
	predatorPrey := (a.TrophicLevel > b.TrophicLevel+0.5 && isCarnivorous(a.Diet)) ||
		(b.TrophicLevel > a.TrophicLevel+0.5 && isCarnivorous(b.Diet))
	if predatorPrey {
		return InteractionPredation
	}
	if a.Diet == b.Diet {
		return InteractionCompetition
	}
	return InteractionNeutral
}

func isCarnivorous(d worldtypes.DietType) bool {
	return d == worldtypes.DietCarnivore || d == worldtypes.DietOmnivore
}
