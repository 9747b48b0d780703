package speciation

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

const fallbackVectorDim = 64

// EmbeddingLookup resolves a species to a precomputed embedding vector. It
// returns ok=false when no vector is indexed for that lineage, in which
// case Analyze falls back to a deterministic attribute vector.
type EmbeddingLookup func(lineageCode string) (vector []float64, ok bool)

// NicheMetrics is one species' niche-overlap and resource-saturation score
// (spec.md §4.2).
type NicheMetrics struct {
	Overlap      float64
	Saturation   float64
	FallbackUsed bool
}

// TileOverlap resolves the Jaccard tile-overlap factor between two species'
// lineage codes, used to discount niche similarity between species that
// never actually share ground.
type TileOverlap func(a, b string) float64

// Analyze computes per-species niche overlap and saturation (spec.md §4.2):
// cosine similarity of niche-embedding vectors, adjusted by ecological-rule
// bonuses and a tile-overlap Jaccard factor, averaged per species and
// combined with population vs. per-species carrying-capacity share.
func Analyze(species []*worldtypes.Species, lookup EmbeddingLookup, tileOverlap TileOverlap, carryingCapacity float64) map[string]NicheMetrics {
	if len(species) == 0 {
		return map[string]NicheMetrics{}
	}
	if carryingCapacity < 1 {
		carryingCapacity = 1
	}

	vectors, fallbackUsed := vectorsFor(species, lookup)
	similarity := cosineMatrix(vectors)
	applyEcologicalRules(species, similarity)
	if tileOverlap != nil {
		applyTileOverlapFactor(species, similarity, tileOverlap)
	}

	n := len(species)
	perSpeciesCapacity := carryingCapacity / float64(n)

	out := make(map[string]NicheMetrics, n)
	for i, sp := range species {
		overlap := 0.0
		if n > 1 {
			rowSum := floats.Sum(similarity[i]) - 1.0
			overlap = rowSum / float64(n-1)
		}
		population := sp.Morphology[worldtypes.MorphPopulation]
		saturation := population / math.Max(perSpeciesCapacity, 1.0)
		if saturation > 2.0 {
			saturation = 2.0
		}
		out[sp.LineageCode] = NicheMetrics{
			Overlap:      overlap,
			Saturation:   saturation,
			FallbackUsed: fallbackUsed[i],
		}
	}
	return out
}

func vectorsFor(species []*worldtypes.Species, lookup EmbeddingLookup) ([][]float64, []bool) {
	vectors := make([][]float64, len(species))
	fallback := make([]bool, len(species))
	dim := 0
	for i, sp := range species {
		if lookup != nil {
			if v, ok := lookup(sp.LineageCode); ok {
				vectors[i] = v
				if dim == 0 {
					dim = len(v)
				}
				continue
			}
		}
		fallback[i] = true
	}
	for i, sp := range species {
		if fallback[i] {
			vectors[i] = fallbackVector(sp)
		} else if dim != 0 && len(vectors[i]) != dim {
			vectors[i] = fallbackVector(sp)
			fallback[i] = true
		}
	}
	return vectors, fallback
}

// fallbackVector builds a deterministic 64-dimensional feature vector from
// structured species attributes when no model-backed embedding is
// available (spec.md §9's niche-analyzer fallback Open Question: tagged
// FallbackUsed, never silently trusted as equivalent).
func fallbackVector(sp *worldtypes.Species) []float64 {
	v := make([]float64, 0, fallbackVectorDim)

	v = append(v,
		math.Log10(sp.Morphology[worldtypes.MorphBodyLength]+1),
		math.Log10(sp.Morphology[worldtypes.MorphBodyWeight]+1),
		sp.Morphology[worldtypes.MorphMetabolicRate]/10.0,
		sp.Morphology[worldtypes.MorphLifespanDays]/36500.0,
		sp.Morphology[worldtypes.MorphGenerationDays]/3650.0,
	)
	for len(v) < 10 {
		v = append(v, 0)
	}

	traitNames := []string{
		"cold_resistance", "heat_resistance", "drought_resistance", "salinity_tolerance",
		"light_requirement", "oxygen_requirement", "reproduction_rate", "mobility",
		"sociality", "ph_tolerance",
	}
	for _, name := range traitNames {
		v = append(v, sp.Traits[name]/10.0)
	}

	v = append(v,
		sp.TrophicLevel/5.0,
		boolF(sp.Habitat == worldtypes.HabitatMarine),
		boolF(sp.Habitat == worldtypes.HabitatTerrestrial),
		boolF(sp.Habitat == worldtypes.HabitatFreshwater),
		boolF(sp.Habitat == worldtypes.HabitatAerial),
		float64(len(sp.Organs))/10.0,
	)
	for len(v) < 30 {
		v = append(v, 0)
	}

	keywords := []string{
		"photosynthesis", "predator", "filter-feeder", "scavenger", "parasite", "symbiont",
		"colonial", "solitary", "diurnal", "nocturnal", "migratory", "hibernating",
		"ectothermic", "endothermic", "oviparous", "viviparous", "aquatic", "terrestrial",
		"flying", "swimming", "running", "climbing", "burrowing", "jumping",
		"vision", "olfaction", "hearing", "touch", "electroreception", "magnetoreception",
		"echolocation", "bioluminescent", "toxic", "camouflaged",
	}
	desc := strings.ToLower(sp.Description)
	for _, kw := range keywords {
		v = append(v, boolF(strings.Contains(desc, kw)))
	}

	norm := floats.Norm(v, 2)
	if norm > 0 {
		floats.Scale(1/norm, v)
	}
	return v
}

func boolF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func cosineMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = floats.Norm(v, 2)
		if norms[i] == 0 {
			norms[i] = 1
		}
	}
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dot := 0.0
			if len(vectors[i]) == len(vectors[j]) {
				dot = floats.Dot(vectors[i], vectors[j])
			}
			v := dot / (norms[i] * norms[j])
			if v > 1 {
				v = 1
			}
			if v < -1 {
				v = -1
			}
			sim[i][j] = v
			sim[j][i] = v
		}
	}
	return sim
}

// applyEcologicalRules adds structured-attribute similarity bonuses (same
// functional group, habitat, size class, genus), capped at +0.30 total
// (spec.md §4.2).
func applyEcologicalRules(species []*worldtypes.Species, sim [][]float64) {
	n := len(species)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			bonus := 0.0

			trophicDiff := math.Abs(species[i].TrophicLevel - species[j].TrophicLevel)
			switch {
			case trophicDiff < 0.5:
				bonus += 0.12
			case trophicDiff < 1.0:
				bonus += 0.06
			}

			if species[i].Habitat == species[j].Habitat {
				bonus += 0.10
			} else if habitatsCompatible(species[i].Habitat, species[j].Habitat) {
				bonus += 0.05
			}

			sizeI := math.Max(species[i].Morphology[worldtypes.MorphBodyLength], 0.001)
			sizeJ := math.Max(species[j].Morphology[worldtypes.MorphBodyLength], 0.001)
			ratio := math.Max(sizeI, sizeJ) / math.Min(sizeI, sizeJ)
			switch {
			case ratio <= 2.0:
				bonus += 0.06
			case ratio <= 5.0:
				bonus += 0.03
			}

			if commonPrefixLen(species[i].LineageCode, species[j].LineageCode) >= 2 {
				bonus += 0.15
			}

			if bonus > 0.30 {
				bonus = 0.30
			}
			v := math.Min(1.0, sim[i][j]+bonus)
			sim[i][j] = v
			sim[j][i] = v
		}
	}
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

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// applyTileOverlapFactor discounts similarity between species whose tile
// footprints barely or never overlap, so niche competition reflects actual
// spatial contact rather than abstract similarity alone (spec.md §4.2).
func applyTileOverlapFactor(species []*worldtypes.Species, sim [][]float64, tileOverlap TileOverlap) {
	n := len(species)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			factor := tileOverlap(species[i].LineageCode, species[j].LineageCode)
			if factor <= 0 {
				factor = 0.1
			}
			sim[i][j] *= factor
			sim[j][i] *= factor
		}
	}
}
