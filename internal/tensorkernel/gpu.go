package tensorkernel

// GPUBackend is the accelerated-kernel backend slot (spec.md §4.1). It
// mirrors onuse-worldgenerator_go's MPSBackend/OpenCLBackend pattern in
// compute_backend.go: a lazily-checked Available() that reports false when
// no accelerator driver is linked in, so Select falls through to
// DenseBackend. This module ships no GPU driver binding, so it always
// reports unavailable; a reimplementer targeting a specific accelerator
// would satisfy the same Backend interface here.
type GPUBackend struct {
	checked bool
	enabled bool
}

// NewGPUBackend constructs the (currently always-unavailable) GPU backend
// slot.
func NewGPUBackend() *GPUBackend { return &GPUBackend{} }

func (b *GPUBackend) Name() string { return "gpu" }

func (b *GPUBackend) Available() bool {
	if !b.checked {
		b.checked = true
		b.enabled = false
	}
	return b.enabled
}

func (b *GPUBackend) Mortality(in StageInput) (MortalityOutput, error) {
	return computeMortality(in), nil
}

func (b *GPUBackend) Dispersal(in StageInput, _ MortalityOutput) (DispersalOutput, error) {
	return computeDispersal(in), nil
}

func (b *GPUBackend) Migration(in StageInput, dispersal DispersalOutput) (MigrationOutput, error) {
	return computeMigration(in, dispersal), nil
}

func (b *GPUBackend) Reproduction(in StageInput, dispersal DispersalOutput) (ReproductionOutput, error) {
	computeReproduction(in, dispersal)
	return ReproductionOutput{}, nil
}

func (b *GPUBackend) Competition(in StageInput) (CompetitionOutput, error) {
	computeCompetition(in)
	return CompetitionOutput{}, nil
}
