package tensorkernel

import (
	"gonum.org/v1/gonum/floats"
)

// DenseBackend is the vectorized dense-array fallback backend (spec.md
// §4.1 "Backend selection"). Its stage methods call the shared scalar
// reference math in math.go; gonum/floats is used only by the totalOf
// helper below.
type DenseBackend struct{}

// NewDenseBackend constructs the dense backend. It is always available: it
// requires no accelerator and is the engine's default choice.
func NewDenseBackend() *DenseBackend { return &DenseBackend{} }

func (b *DenseBackend) Name() string      { return "dense" }
func (b *DenseBackend) Available() bool   { return true }

func (b *DenseBackend) Mortality(in StageInput) (MortalityOutput, error) {
	return computeMortality(in), nil
}

func (b *DenseBackend) Dispersal(in StageInput, _ MortalityOutput) (DispersalOutput, error) {
	return computeDispersal(in), nil
}

func (b *DenseBackend) Migration(in StageInput, dispersal DispersalOutput) (MigrationOutput, error) {
	return computeMigration(in, dispersal), nil
}

func (b *DenseBackend) Reproduction(in StageInput, dispersal DispersalOutput) (ReproductionOutput, error) {
	computeReproduction(in, dispersal)
	return ReproductionOutput{}, nil
}

func (b *DenseBackend) Competition(in StageInput) (CompetitionOutput, error) {
	computeCompetition(in)
	return CompetitionOutput{}, nil
}

// totalOf sums a population plane using gonum's vectorized Sum rather than
// a hand-written loop. No stage method calls it.
func totalOf(plane []float64) float64 {
	return floats.Sum(plane)
}
