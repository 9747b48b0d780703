// Package tensorkernel implements the batched mortality, dispersal,
// migration, reproduction and competition kernels (spec.md §4.1) behind a
// pluggable Backend, grounded on onuse-worldgenerator_go's ComputeBackend
// pattern (compute_backend.go): the engine picks the first available
// backend at construction and every backend must produce numerically
// equivalent results within a relative tolerance of 1e-4.
package tensorkernel

import (
	"github.com/GoCodeAlone/evosim/internal/config"
	"github.com/GoCodeAlone/evosim/internal/pressure"
	"github.com/GoCodeAlone/evosim/internal/tensorstate"
)

// SpeciesRuntime carries the per-species scalars the kernels need beyond
// species_params: trophic level, whether its migration cooldown is set this
// turn, and its prey rows.
type SpeciesRuntime struct {
	TrophicLevel []float64 // len S
	Cooldown     []bool    // len S
	// PreyIndex[s] lists the row indices of s's prey species, used to build
	// the trophic-scarcity mortality term and the migration prey-density
	// blend. Producers (trophic < 2.0) have an empty slice.
	PreyIndex [][]int
}

// StageInput bundles everything a single turn's kernel run needs.
type StageInput struct {
	State     *tensorstate.State
	Overlay   *pressure.Overlay
	Runtime   SpeciesRuntime
	Balance   *config.BalanceConfig
	Era       string
	TurnIndex int
}

// MortalityOutput is the result of the mortality stage.
type MortalityOutput struct {
	MortalityRate *tensorstate.Tensor3 // (S,H,W), values in [0.01,0.95]
	DeathCounts   []float64            // per species, total deaths this stage
	SurvivorCounts []float64           // per species, total survivors this stage
}

// DispersalOutput is the result of the dispersal stage.
type DispersalOutput struct {
	Suitability *tensorstate.Tensor3 // (S,H,W) in [0,1]
}

// MigrationOutput is the result of the migration stage.
type MigrationOutput struct {
	MigratedSpecies []int // row indices whose population shifted by > 5%
}

// ReproductionOutput is the result of the reproduction stage (no auxiliary
// data beyond the updated pop tensor, which is mutated in State directly).
type ReproductionOutput struct{}

// CompetitionOutput is the result of the competition stage.
type CompetitionOutput struct{}

// TurnKernelOutput is the combined result of running all five stages in
// order, returned by RunStages.
type TurnKernelOutput struct {
	Mortality   MortalityOutput
	Dispersal   DispersalOutput
	Migration   MigrationOutput
	Reproduction ReproductionOutput
	Competition CompetitionOutput
}

// Backend is the kernel set every tensor-compute backend must implement.
// Stages are invoked one at a time from the pipeline in RunStages; a
// backend must not retain cross-call state that would break the "pure
// function of the previous stage's output" contract in spec.md §4.1.
type Backend interface {
	Name() string
	Available() bool

	Mortality(in StageInput) (MortalityOutput, error)
	Dispersal(in StageInput, mortality MortalityOutput) (DispersalOutput, error)
	Migration(in StageInput, dispersal DispersalOutput) (MigrationOutput, error)
	Reproduction(in StageInput, dispersal DispersalOutput) (ReproductionOutput, error)
	Competition(in StageInput) (CompetitionOutput, error)
}

// RunStages executes the five ordered stages against backend, mutating
// in.State.Pop in place stage by stage (each stage only ever reads the
// previous stage's committed output, per spec.md §4.1/§5).
func RunStages(backend Backend, in StageInput) (TurnKernelOutput, error) {
	var out TurnKernelOutput
	var err error

	out.Mortality, err = backend.Mortality(in)
	if err != nil {
		return out, err
	}
	out.Dispersal, err = backend.Dispersal(in, out.Mortality)
	if err != nil {
		return out, err
	}
	out.Migration, err = backend.Migration(in, out.Dispersal)
	if err != nil {
		return out, err
	}
	out.Reproduction, err = backend.Reproduction(in, out.Dispersal)
	if err != nil {
		return out, err
	}
	out.Competition, err = backend.Competition(in)
	if err != nil {
		return out, err
	}
	clampNonNegative(in.State.Pop)
	return out, nil
}

func clampNonNegative(pop *tensorstate.Tensor3) {
	for i, v := range pop.Data {
		if v < 0 {
			pop.Data[i] = 0
		}
	}
}
