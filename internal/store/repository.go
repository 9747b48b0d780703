package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

// SpeciesRepository is an in-memory, mutex-guarded species store. A turn's
// mutations are staged and committed atomically so a mid-turn failure
// never leaves half a turn's species changes visible (spec.md §7
// "persistence failures are surfaced immediately ... in-memory state
// remains consistent with the last successful save").
type SpeciesRepository struct {
	mu      sync.RWMutex
	species map[string]*worldtypes.Species
}

// NewSpeciesRepository builds an empty repository.
func NewSpeciesRepository() *SpeciesRepository {
	return &SpeciesRepository{species: map[string]*worldtypes.Species{}}
}

// Upsert inserts or replaces a species record after validating it.
func (r *SpeciesRepository) Upsert(sp *worldtypes.Species) error {
	if err := sp.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.species[sp.LineageCode] = sp
	return nil
}

// Get returns the species with the given lineage code.
func (r *SpeciesRepository) Get(code string) (*worldtypes.Species, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sp, ok := r.species[code]
	return sp, ok
}

// All returns every species record, sorted by lineage code for
// deterministic iteration.
func (r *SpeciesRepository) All() []*worldtypes.Species {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*worldtypes.Species, 0, len(r.species))
	for _, sp := range r.species {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineageCode < out[j].LineageCode })
	return out
}

// Alive returns every species with Status == StatusAlive.
func (r *SpeciesRepository) Alive() []*worldtypes.Species {
	var out []*worldtypes.Species
	for _, sp := range r.All() {
		if sp.Status == worldtypes.StatusAlive {
			out = append(out, sp)
		}
	}
	return out
}

// Transaction runs fn against a snapshot of the repository's current
// records; if fn returns an error, none of its Upsert calls (made via the
// *SpeciesRepository passed to fn) take effect, preserving the
// last-known-good state.
func (r *SpeciesRepository) Transaction(fn func(staging *SpeciesRepository) error) error {
	r.mu.RLock()
	staging := &SpeciesRepository{species: make(map[string]*worldtypes.Species, len(r.species))}
	for code, sp := range r.species {
		staging.species[code] = cloneSpecies(sp)
	}
	r.mu.RUnlock()

	if err := fn(staging); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.species = staging.species
	return nil
}

// cloneSpecies deep-copies the map and pointer fields a staged transaction
// mutates in place (traits, organs, dormant genes), so edits made inside a
// failed Transaction never alias the committed record.
func cloneSpecies(sp *worldtypes.Species) *worldtypes.Species {
	clone := *sp
	clone.Traits = copyFloatMap(sp.Traits)
	clone.HiddenTraits = copyFloatMap(sp.HiddenTraits)
	clone.PreyPreferences = copyFloatMap(sp.PreyPreferences)
	clone.PreySpecies = append([]string(nil), sp.PreySpecies...)
	clone.HybridParentCodes = append([]string(nil), sp.HybridParentCodes...)

	if sp.Morphology != nil {
		m := make(map[worldtypes.MorphologyStat]float64, len(sp.Morphology))
		for k, v := range sp.Morphology {
			m[k] = v
		}
		clone.Morphology = m
	}
	if sp.Organs != nil {
		o := make(map[worldtypes.OrganCategory]worldtypes.Organ, len(sp.Organs))
		for k, v := range sp.Organs {
			o[k] = v
		}
		clone.Organs = o
	}
	if sp.DormantGenes != nil {
		d := make(map[string]worldtypes.DormantGene, len(sp.DormantGenes))
		for k, v := range sp.DormantGenes {
			d[k] = v
		}
		clone.DormantGenes = d
	}
	if sp.ParentCode != nil {
		v := *sp.ParentCode
		clone.ParentCode = &v
	}
	if sp.PlasticityBuffer != nil {
		v := *sp.PlasticityBuffer
		clone.PlasticityBuffer = &v
	}
	if sp.HybridFertility != nil {
		v := *sp.HybridFertility
		clone.HybridFertility = &v
	}
	return &clone
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// LoadSnapshot replaces the repository's contents with a snapshot's species
// list, skipping records that fail validation rather than aborting the
// whole load (a save should never become entirely unloadable because one
// record is malformed).
func (r *SpeciesRepository) LoadSnapshot(species []worldtypes.Species) []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.species = make(map[string]*worldtypes.Species, len(species))
	var errs []error
	for i := range species {
		sp := species[i]
		if err := sp.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		r.species[sp.LineageCode] = &sp
	}
	return errs
}
