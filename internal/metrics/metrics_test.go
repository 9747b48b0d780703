package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAddsAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New()
	require.NotPanics(t, func() { m.Register(reg) })

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestDoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New()
	m.Register(reg)
	assert.Panics(t, func() { m.Register(reg) })
}
