// Package worldtypes holds the entity records shared across the engine:
// species, tiles, plates and geological features. These are plain data
// records; behavior lives in the internal packages that own each tensor or
// subsystem.
package worldtypes

import "fmt"

// HabitatType is the closed set of habitats a species can occupy.
type HabitatType string

const (
	HabitatMarine      HabitatType = "marine"
	HabitatDeepSea     HabitatType = "deep_sea"
	HabitatCoastal     HabitatType = "coastal"
	HabitatFreshwater  HabitatType = "freshwater"
	HabitatAmphibious  HabitatType = "amphibious"
	HabitatTerrestrial HabitatType = "terrestrial"
	HabitatAerial      HabitatType = "aerial"
)

// DietType is the closed set of feeding strategies.
type DietType string

const (
	DietAutotroph   DietType = "autotroph"
	DietHerbivore   DietType = "herbivore"
	DietCarnivore   DietType = "carnivore"
	DietOmnivore    DietType = "omnivore"
	DietDetritivore DietType = "detritivore"
)

// SpeciesStatus is alive or extinct; extinction never deletes a record.
type SpeciesStatus string

const (
	StatusAlive   SpeciesStatus = "alive"
	StatusExtinct SpeciesStatus = "extinct"
)

// Era gates the trait-vector L2 cap a species may carry.
type Era string

const (
	EraHadean      Era = "hadean"
	EraArchean     Era = "archean"
	EraProterozoic Era = "proterozoic"
	EraPaleozoic   Era = "paleozoic"
	EraMesozoic    Era = "mesozoic"
	EraCenozoic    Era = "cenozoic"
)

// EraTraitCap is the L2-norm bound on a species' abstract-trait vector for
// each geological era (spec.md §3, "Invariants").
var EraTraitCap = map[Era]float64{
	EraHadean:      20,
	EraArchean:     30,
	EraProterozoic: 45,
	EraPaleozoic:   60,
	EraMesozoic:    80,
	EraCenozoic:    100,
}

// OrganCategory is the closed set of organ slots a species tracks.
type OrganCategory string

const (
	OrganSensory      OrganCategory = "sensory"
	OrganLocomotion   OrganCategory = "locomotion"
	OrganDigestive    OrganCategory = "digestive"
	OrganDefense      OrganCategory = "defense"
	OrganReproductive OrganCategory = "reproductive"
	OrganMetabolic    OrganCategory = "metabolic"
)

// MaxActiveOrgans bounds the number of active organ entries per species
// (spec.md §3, "Invariants").
const MaxActiveOrgans = 12

// Organ is a single organ record within a species' organ map.
type Organ struct {
	Type             string             `json:"type"`
	Parameters       map[string]float64 `json:"parameters"`
	EvolutionStage   int                `json:"evolution_stage"`   // 1..4
	EvolutionProgress float64           `json:"evolution_progress"` // 0..1
	Active           bool               `json:"active"`
}

// MorphologyStat names the fixed set of morphology keys on a species.
type MorphologyStat string

const (
	MorphPopulation    MorphologyStat = "population"
	MorphBodyLength    MorphologyStat = "body_length"
	MorphBodyWeight    MorphologyStat = "body_weight"
	MorphLifespanDays  MorphologyStat = "lifespan_days"
	MorphMetabolicRate MorphologyStat = "metabolic_rate"
	MorphGenerationDays MorphologyStat = "generation_time_days"
)

// DormantGene is an append-only candidate trait/organ a species may express
// under future pressure exposure (spec.md §9, "Dormant-gene registry").
type DormantGene struct {
	PotentialValue     float64  `json:"potential_value"`
	ActivationThreshold float64 `json:"activation_threshold"`
	PressureTypes      []string `json:"pressure_types"`
	ExposureCount      int      `json:"exposure_count"`
	Activated          bool     `json:"activated"`
}

// Species is the full record for one lineage, alive or extinct.
type Species struct {
	LineageCode string  `json:"lineage_code"`
	ParentCode  *string `json:"parent_code,omitempty"`
	GenusCode   string  `json:"genus_code"`

	CommonName  string `json:"common_name"`
	LatinName   string `json:"latin_name"`
	Description string `json:"description"`

	Traits       map[string]float64 `json:"traits"`        // [0,15]
	HiddenTraits map[string]float64 `json:"hidden_traits"` // [0,1]
	Morphology   map[MorphologyStat]float64 `json:"morphology"`
	Organs       map[OrganCategory]Organ    `json:"organs"`

	PlasticityBuffer *float64 `json:"plasticity_buffer,omitempty"` // [0,1]

	Habitat      HabitatType `json:"habitat_type"`
	Diet         DietType    `json:"diet_type"`
	TrophicLevel float64     `json:"trophic_level"` // [1,6]

	PreySpecies     []string           `json:"prey_species"`
	PreyPreferences map[string]float64 `json:"prey_preferences"`

	Status      SpeciesStatus `json:"status"`
	CreatedTurn int           `json:"created_turn"`
	IsBackground bool         `json:"is_background"`

	HybridParentCodes []string `json:"hybrid_parent_codes,omitempty"` // len==2 when present
	HybridFertility   *float64 `json:"hybrid_fertility,omitempty"`
	HybridRank        string   `json:"hybrid_rank,omitempty"` // "" or "chimera"

	DormantGenes map[string]DormantGene `json:"dormant_genes,omitempty"`

	// Historical counters carried across turns.
	LastDescriptionUpdateTurn int     `json:"last_description_update_turn"`
	AccumulatedAdaptationScore float64 `json:"accumulated_adaptation_score"`
}

// ActiveOrganCount returns the number of organ entries with Active set.
func (s *Species) ActiveOrganCount() int {
	n := 0
	for _, o := range s.Organs {
		if o.Active {
			n++
		}
	}
	return n
}

// Validate checks the structural invariants from spec.md §3 that do not
// require tensor or world context (tile/plate membership is checked by the
// caller that owns that context).
func (s *Species) Validate() error {
	if s.LineageCode == "" {
		return fmt.Errorf("species: empty lineage_code")
	}
	if s.ParentCode != nil {
		if len(*s.ParentCode) >= len(s.LineageCode) || s.LineageCode[:len(*s.ParentCode)] != *s.ParentCode {
			return fmt.Errorf("species %s: parent_code %q is not a strict prefix", s.LineageCode, *s.ParentCode)
		}
	}
	if s.ActiveOrganCount() > MaxActiveOrgans {
		return fmt.Errorf("species %s: %d active organs exceeds max %d", s.LineageCode, s.ActiveOrganCount(), MaxActiveOrgans)
	}
	if s.TrophicLevel < 1.0 || s.TrophicLevel > 6.0 {
		return fmt.Errorf("species %s: trophic_level %f out of [1,6]", s.LineageCode, s.TrophicLevel)
	}
	if s.TrophicLevel >= 2.0 && s.Status == StatusAlive && len(s.PreySpecies) == 0 {
		return fmt.Errorf("species %s: trophic consumer has no prey_species", s.LineageCode)
	}
	if s.PlasticityBuffer != nil && (*s.PlasticityBuffer < 0 || *s.PlasticityBuffer > 1) {
		return fmt.Errorf("species %s: plasticity_buffer out of [0,1]", s.LineageCode)
	}
	if s.HybridParentCodes != nil && len(s.HybridParentCodes) != 2 {
		return fmt.Errorf("species %s: hybrid_parent_codes must have exactly 2 entries", s.LineageCode)
	}
	sumPref := 0.0
	for _, v := range s.PreyPreferences {
		if v < 0 {
			return fmt.Errorf("species %s: negative prey preference", s.LineageCode)
		}
		sumPref += v
	}
	if sumPref > 1.0+1e-6 {
		return fmt.Errorf("species %s: prey preferences sum to %f > 1", s.LineageCode, sumPref)
	}
	return nil
}

// TraitNormCap returns the L2-norm bound applicable to this species' era.
func TraitNormCap(era Era) float64 {
	if cap, ok := EraTraitCap[era]; ok {
		return cap
	}
	return EraTraitCap[EraCenozoic]
}

// IsStrictPrefixLineage reports whether child is a plausible descendant
// lineage code of parent (strict string prefix, per spec.md glossary).
func IsStrictPrefixLineage(parent, child string) bool {
	return len(parent) < len(child) && child[:len(parent)] == parent
}
