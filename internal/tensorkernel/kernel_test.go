package tensorkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/evosim/internal/config"
	"github.com/GoCodeAlone/evosim/internal/tensorstate"
)

func newTestState(t *testing.T, h, w int) *tensorstate.State {
	t.Helper()
	st := tensorstate.NewState(h, w, 1, tensorstate.EnvChannelCount)
	_, err := st.SpeciesMap.Add("A")
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			st.Env.Set(tensorstate.EnvTemperature, y, x, 20)
			st.Env.Set(tensorstate.EnvHumidity, y, x, 0.5)
			st.Env.Set(tensorstate.EnvResources, y, x, 1.0)
			st.Env.Set(tensorstate.EnvHabitatTerrestrial, y, x, 1.0)
		}
	}
	st.SpeciesParams.Set(0, tensorstate.ParamTemperaturePref, 0.4) // *50 = 20C
	st.SpeciesParams.Set(0, tensorstate.ParamHumidityPref, 0.5)
	st.SpeciesParams.Set(0, tensorstate.ParamToleranceWidth, 8)
	st.SpeciesParams.Set(0, tensorstate.ParamHabitatAffinityTerrestrial, 1.0)
	st.SpeciesParams.Set(0, tensorstate.ParamReproductiveRate, 0.1)
	st.Pop.Set(0, h/2, w/2, 10000)
	return st
}

func TestDispersalConservesTotalPopulation(t *testing.T) {
	st := newTestState(t, 16, 16)
	before := st.TotalPopulation(0)

	in := StageInput{
		State:   st,
		Runtime: SpeciesRuntime{TrophicLevel: []float64{1}, Cooldown: []bool{false}, PreyIndex: [][]int{{}}},
		Balance: config.DefaultBalanceConfig(),
		Era:     "cenozoic",
	}
	computeDispersal(in)

	after := st.TotalPopulation(0)
	assert.InDelta(t, before, after, before*1e-4+1e-6)
}

func TestMortalityClampsRange(t *testing.T) {
	st := newTestState(t, 8, 8)
	in := StageInput{
		State:   st,
		Runtime: SpeciesRuntime{TrophicLevel: []float64{1}, Cooldown: []bool{false}, PreyIndex: [][]int{{}}},
		Balance: config.DefaultBalanceConfig(),
		Era:     "cenozoic",
	}
	out := computeMortality(in)
	for _, v := range out.MortalityRate.Data {
		assert.GreaterOrEqual(t, v, 0.01)
		assert.LessOrEqual(t, v, 0.95)
	}
	for _, v := range st.Pop.Data {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestRunStagesNeverProducesNegativePopulation(t *testing.T) {
	st := newTestState(t, 10, 10)
	in := StageInput{
		State:   st,
		Runtime: SpeciesRuntime{TrophicLevel: []float64{1}, Cooldown: []bool{false}, PreyIndex: [][]int{{}}},
		Balance: config.DefaultBalanceConfig(),
		Era:     "cenozoic",
	}
	backend := NewDenseBackend()
	_, err := RunStages(backend, in)
	require.NoError(t, err)
	for _, v := range st.Pop.Data {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestScalarAndDenseBackendsAgree(t *testing.T) {
	stDense := newTestState(t, 10, 10)
	stScalar := newTestState(t, 10, 10)

	balance := config.DefaultBalanceConfig()
	inDense := StageInput{State: stDense, Runtime: SpeciesRuntime{TrophicLevel: []float64{1}, Cooldown: []bool{false}, PreyIndex: [][]int{{}}}, Balance: balance, Era: "cenozoic"}
	inScalar := StageInput{State: stScalar, Runtime: SpeciesRuntime{TrophicLevel: []float64{1}, Cooldown: []bool{false}, PreyIndex: [][]int{{}}}, Balance: balance, Era: "cenozoic"}

	_, err := RunStages(NewDenseBackend(), inDense)
	require.NoError(t, err)
	_, err = RunStages(NewScalarBackend(), inScalar)
	require.NoError(t, err)

	for i := range stDense.Pop.Data {
		assert.InDelta(t, stDense.Pop.Data[i], stScalar.Pop.Data[i], 1e-9)
	}
}

func TestEmptySpeciesSetProducesEmptyUpdate(t *testing.T) {
	st := tensorstate.NewState(4, 4, 0, tensorstate.EnvChannelCount)
	in := StageInput{State: st, Runtime: SpeciesRuntime{}, Balance: config.DefaultBalanceConfig(), Era: "cenozoic"}
	_, err := RunStages(NewDenseBackend(), in)
	require.NoError(t, err)
	assert.Equal(t, 0, len(st.Pop.Data))
}
