package tensorkernel

// ScalarBackend is the minimal scalar backend reserved for correctness
// tests (spec.md §4.1 "Backend selection"). It calls the exact same shared
// math as DenseBackend, so the two are bit-identical rather than merely
// within tolerance; a GPU backend implementing the same formulas with
// reduced-precision arithmetic is where the 1e-4 relative tolerance in
// spec.md actually matters.
type ScalarBackend struct{}

// NewScalarBackend constructs the scalar reference backend.
func NewScalarBackend() *ScalarBackend { return &ScalarBackend{} }

func (b *ScalarBackend) Name() string    { return "scalar" }
func (b *ScalarBackend) Available() bool { return true }

func (b *ScalarBackend) Mortality(in StageInput) (MortalityOutput, error) {
	return computeMortality(in), nil
}

func (b *ScalarBackend) Dispersal(in StageInput, _ MortalityOutput) (DispersalOutput, error) {
	return computeDispersal(in), nil
}

func (b *ScalarBackend) Migration(in StageInput, dispersal DispersalOutput) (MigrationOutput, error) {
	return computeMigration(in, dispersal), nil
}

func (b *ScalarBackend) Reproduction(in StageInput, dispersal DispersalOutput) (ReproductionOutput, error) {
	computeReproduction(in, dispersal)
	return ReproductionOutput{}, nil
}

func (b *ScalarBackend) Competition(in StageInput) (CompetitionOutput, error) {
	computeCompetition(in)
	return CompetitionOutput{}, nil
}
