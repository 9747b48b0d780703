package speciation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

const (
	withinGenusThreshold = 0.5
	crossGenusThreshold  = 0.5 * 0.6
	crossGenusFertilityCap = 0.3
	chimeraFertilityCap    = 0.15
)

// Hybridizable reports whether two species can hybridize naturally (spec.md
// §4.4 "Hybridization"): distinct, alive, and genetic distance below the
// within-genus or cross-genus threshold depending on shared genus.
func Hybridizable(a, b *worldtypes.Species, geneticDistance float64) (ok bool, fertility float64) {
	if a.LineageCode == b.LineageCode || a.Status != worldtypes.StatusAlive || b.Status != worldtypes.StatusAlive {
		return false, 0
	}
	sameGenus := a.GenusCode != "" && a.GenusCode == b.GenusCode
	threshold := crossGenusThreshold
	if sameGenus {
		threshold = withinGenusThreshold
	}
	if geneticDistance >= threshold {
		return false, 0
	}
	base := 1 - geneticDistance/threshold
	if base < 0 {
		base = 0
	}
	fert := math.Pow(base, 0.7)
	if !sameGenus && fert > crossGenusFertilityCap {
		fert = crossGenusFertilityCap
	}
	return true, fert
}

// ChoosePrimaryParent selects the parent whose lineage the hybrid inherits
// parent_code from: the lower trophic level, ties broken by earlier
// creation turn, then lineage-code order (spec.md §4.4).
func ChoosePrimaryParent(a, b *worldtypes.Species) *worldtypes.Species {
	if a.TrophicLevel != b.TrophicLevel {
		if a.TrophicLevel < b.TrophicLevel {
			return a
		}
		return b
	}
	if a.CreatedTurn != b.CreatedTurn {
		if a.CreatedTurn < b.CreatedTurn {
			return a
		}
		return b
	}
	if a.LineageCode < b.LineageCode {
		return a
	}
	return b
}

// NextHybridCode builds a unique "{primary}h{n}" code, probing n upward
// until existing reports the code is unused.
func NextHybridCode(primaryCode string, existing func(code string) bool) string {
	for n := 1; ; n++ {
		code := fmt.Sprintf("%sh%d", primaryCode, n)
		if !existing(code) {
			return code
		}
	}
}

// InheritanceOutcome is the per-trait roll applied when building a hybrid's
// trait vector (spec.md §4.4): 20% heterosis, 40% dominant, 30%
// intermediate, 10% recessive.
type InheritanceOutcome string

const (
	Heterosis    InheritanceOutcome = "heterosis"
	Dominant     InheritanceOutcome = "dominant"
	Intermediate InheritanceOutcome = "intermediate"
	Recessive    InheritanceOutcome = "recessive"
)

func rollInheritance(rng *rand.Rand) InheritanceOutcome {
	r := rng.Float64()
	switch {
	case r < 0.20:
		return Heterosis
	case r < 0.60:
		return Dominant
	case r < 0.90:
		return Intermediate
	default:
		return Recessive
	}
}

// BlendTraits computes the hybrid's trait map from two parents' trait maps,
// applying the per-trait inheritance roll plus small noise proportional to
// the parental difference (spec.md §4.4).
func BlendTraits(a, b map[string]float64, rng *rand.Rand) map[string]float64 {
	out := make(map[string]float64)
	keys := make(map[string]bool)
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}
	for k := range keys {
		va, vb := a[k], b[k]
		outcome := rollInheritance(rng)
		var v float64
		switch outcome {
		case Heterosis:
			maxParent := math.Max(va, vb)
			v = maxParent * (1 + 0.1 + rng.Float64()*0.1)
		case Dominant:
			v = math.Max(va, vb)
		case Intermediate:
			v = (va + vb) / 2
		case Recessive:
			v = math.Min(va, vb)
		}
		diff := math.Abs(va - vb)
		noise := (rng.Float64()*2 - 1) * diff * 0.1
		out[k] = clip15(v + noise)
	}
	return out
}

// HybridizationKind distinguishes a natural hybrid from a forced chimera.
type HybridizationKind string

const (
	HybridNatural HybridizationKind = ""
	HybridChimera HybridizationKind = "chimera"
)

// ForceChimera allows any two species to cross regardless of genetic
// distance, capping fertility at chimeraFertilityCap and tagging the
// result (spec.md §4.4 "Forced hybridization").
func ForceChimera(requestedFertility float64) (kind HybridizationKind, fertility float64) {
	f := requestedFertility
	if f > chimeraFertilityCap || f <= 0 {
		f = chimeraFertilityCap
	}
	return HybridChimera, f
}

// BuildHybrid assembles a new Species record from two parents, following
// spec.md §4.4's naming, parentage and trait-blend rules. Traits and
// hidden traits are blended with BlendTraits. Morphology and organs are
// not blended: the hybrid takes the primary parent's morphology map as is,
// and its organs are the primary parent's plus any organ category only the
// secondary parent has.
func BuildHybrid(a, b *worldtypes.Species, fertility float64, kind HybridizationKind, createdTurn int, existing func(string) bool, rng *rand.Rand) *worldtypes.Species {
	primary := ChoosePrimaryParent(a, b)
	secondary := a
	if primary == a {
		secondary = b
	}
	code := NextHybridCode(primary.LineageCode, existing)
	parentCode := primary.LineageCode

	hybrid := &worldtypes.Species{
		LineageCode:       code,
		ParentCode:        &parentCode,
		GenusCode:         primary.GenusCode,
		Traits:            BlendTraits(a.Traits, b.Traits, rng),
		HiddenTraits:      BlendTraits(a.HiddenTraits, b.HiddenTraits, rng),
		Morphology:        primary.Morphology,
		Organs:            map[worldtypes.OrganCategory]worldtypes.Organ{},
		Habitat:           primary.Habitat,
		Diet:              mergeDiet(a.Diet, b.Diet),
		TrophicLevel:      (a.TrophicLevel + b.TrophicLevel) / 2,
		PreySpecies:       mergePrey(a.PreySpecies, b.PreySpecies),
		Status:            worldtypes.StatusAlive,
		CreatedTurn:       createdTurn,
		HybridParentCodes: []string{a.LineageCode, b.LineageCode},
		HybridFertility:   &fertility,
		HybridRank:        string(kind),
	}
	hybrid.PreyPreferences = mergePreyPreferences(a.PreyPreferences, b.PreyPreferences, hybrid.PreySpecies)
	for cat, organ := range primary.Organs {
		hybrid.Organs[cat] = organ
	}
	for cat, organ := range secondary.Organs {
		if _, exists := hybrid.Organs[cat]; !exists {
			hybrid.Organs[cat] = organ
		}
	}
	return hybrid
}

// mergeDiet picks the hybrid's diet type: the parents' diet when both
// share it, otherwise omnivore.
func mergeDiet(a, b worldtypes.DietType) worldtypes.DietType {
	if a == worldtypes.DietOmnivore || b == worldtypes.DietOmnivore {
		return worldtypes.DietOmnivore
	}
	if a == b {
		return a
	}
	return worldtypes.DietOmnivore
}

// mergePrey unions both parents' prey lists, sorted for determinism.
func mergePrey(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, c := range a {
		set[c] = true
	}
	for _, c := range b {
		set[c] = true
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// mergePreyPreferences averages both parents' preference weight for a prey
// code present in both, or carries over whichever parent had it, then
// renormalizes to sum 1 over the hybrid's merged prey list.
func mergePreyPreferences(a, b map[string]float64, preyCodes []string) map[string]float64 {
	if len(preyCodes) == 0 {
		return nil
	}
	out := make(map[string]float64, len(preyCodes))
	total := 0.0
	for _, code := range preyCodes {
		va, vb := a[code], b[code]
		v := va
		switch {
		case va > 0 && vb > 0:
			v = (va + vb) / 2
		case vb > 0:
			v = vb
		}
		if v <= 0 {
			v = 1
		}
		out[code] = v
		total += v
	}
	if total > 0 {
		for code := range out {
			out[code] /= total
		}
	}
	return out
}
