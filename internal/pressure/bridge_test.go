package pressure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/evosim/internal/tensorstate"
)

func TestApplyWithNoDescriptorsIsIdentity(t *testing.T) {
	env := tensorstate.NewTensor3(tensorstate.EnvChannelCount, 3, 3)
	before := append([]float64(nil), env.Data...)

	b := NewBridge()
	overlay, err := b.Apply(env, nil)
	require.NoError(t, err)

	assert.Equal(t, before, env.Data)
	for _, v := range overlay.ExternalPressure {
		assert.Zero(t, v)
	}
}

func TestApplyRejectsOutOfRangeIntensity(t *testing.T) {
	env := tensorstate.NewTensor3(tensorstate.EnvChannelCount, 2, 2)
	b := NewBridge()
	_, err := b.Apply(env, []Descriptor{{Kind: KindTemperature, Intensity: 11}})
	assert.Error(t, err)
}

func TestApplyTemperatureAddsToChannel(t *testing.T) {
	env := tensorstate.NewTensor3(tensorstate.EnvChannelCount, 2, 2)
	b := NewBridge()
	_, err := b.Apply(env, []Descriptor{{Kind: KindTemperature, Intensity: 3}})
	require.NoError(t, err)

	for _, v := range env.Channel(tensorstate.EnvTemperature) {
		assert.Equal(t, 3.0, v)
	}
}

func TestApplyRespectsExtent(t *testing.T) {
	env := tensorstate.NewTensor3(tensorstate.EnvChannelCount, 2, 2)
	b := NewBridge()
	_, err := b.Apply(env, []Descriptor{{
		Kind: KindTemperature, Intensity: 5,
		Extent: &Extent{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0},
	}})
	require.NoError(t, err)

	assert.Equal(t, 5.0, env.At(tensorstate.EnvTemperature, 0, 0))
	assert.Equal(t, 0.0, env.At(tensorstate.EnvTemperature, 0, 1))
}

func TestApplyOrogenyCompoundsElevationMultiplier(t *testing.T) {
	env := tensorstate.NewTensor3(tensorstate.EnvChannelCount, 2, 2)
	b := NewBridge()
	overlay, err := b.Apply(env, []Descriptor{
		{Kind: KindOrogeny, Intensity: 5},
		{Kind: KindOrogeny, Intensity: 5},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.5*1.5, overlay.TectonicElevationBiasMultiplier, 1e-9)
}

func TestApplyHumidityClampsToUnitRange(t *testing.T) {
	env := tensorstate.NewTensor3(tensorstate.EnvChannelCount, 2, 2)
	b := NewBridge()
	_, err := b.Apply(env, []Descriptor{{Kind: KindHumidity, Intensity: 10}})
	require.NoError(t, err)
	for _, v := range env.Channel(tensorstate.EnvHumidity) {
		assert.LessOrEqual(t, v, 1.0)
	}
}
