package speciation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/evosim/internal/tensorstate"
)

func TestScanFlagsGeographicIsolation(t *testing.T) {
	st := tensorstate.NewState(3, 6, 1, tensorstate.EnvChannelCount)
	row, err := st.SpeciesMap.Add("A1")
	require.NoError(t, err)

	plane := st.Pop.Channel(row)
	plane[0*6+0] = 10 // (x=0,y=0)
	plane[2*6+5] = 10 // (x=5,y=2), unreachable from (0,0) through y=1

	m := NewMonitor(0.99, 10)
	triggers := m.Scan(st)

	require.Len(t, triggers, 1)
	assert.Equal(t, TriggerGeographicIsolation, triggers[0].Kind)
	assert.Equal(t, "A1", triggers[0].LineageCode)
	assert.Len(t, triggers[0].Components, 2)
}

func TestScanFlagsEcologicalDivergence(t *testing.T) {
	st := tensorstate.NewState(2, 2, 1, tensorstate.EnvChannelCount)
	row, err := st.SpeciesMap.Add("A1")
	require.NoError(t, err)
	st.Pop.Channel(row)[0] = 5
	st.Pop.Channel(row)[1] = 5
	st.Pop.Channel(row)[2] = 5
	st.Pop.Channel(row)[3] = 5

	temp := st.Env.Channel(tensorstate.EnvTemperature)
	temp[0], temp[1], temp[2], temp[3] = 0, 40, 0, 40

	m := NewMonitor(0.01, 1)
	triggers := m.Scan(st)

	var found bool
	for _, tr := range triggers {
		if tr.Kind == TriggerEcologicalDivergence {
			found = true
			assert.Greater(t, tr.Divergence, 0.0)
		}
	}
	assert.True(t, found)
}

func TestScanSkipsUnoccupiedSpecies(t *testing.T) {
	st := tensorstate.NewState(2, 2, 1, tensorstate.EnvChannelCount)
	_, err := st.SpeciesMap.Add("A1")
	require.NoError(t, err)

	m := NewMonitor(0.4, 10)
	triggers := m.Scan(st)
	assert.Empty(t, triggers)
}
