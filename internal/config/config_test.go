package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBalanceConfigValidates(t *testing.T) {
	cfg := DefaultBalanceConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeTradeoffRatio(t *testing.T) {
	cfg := DefaultBalanceConfig()
	cfg.TradeoffRatio = 0.2
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroDispersalRate(t *testing.T) {
	cfg := DefaultBalanceConfig()
	cfg.DispersalRate = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadLayeredWithMissingPathUsesDefaults(t *testing.T) {
	cfg, err := LoadLayered("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBalanceConfig().DispersalRate, cfg.DispersalRate)
}

func TestLoadLayeredOverlaysYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dispersal_rate: 0.5\n"), 0o644))

	cfg, err := LoadLayered(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.DispersalRate)
	assert.Equal(t, DefaultBalanceConfig().CompetitionStrength, cfg.CompetitionStrength)
}

func TestLoadLayeredRejectsInvalidOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tradeoff_ratio: 2.0\n"), 0o644))

	_, err := LoadLayered(path)
	assert.Error(t, err)
}

func TestEraScalingForEra(t *testing.T) {
	scaling := DefaultBalanceConfig().EraScaling
	assert.Equal(t, scaling.Cenozoic, scaling.ForEra("cenozoic"))
	assert.Equal(t, 1.0, scaling.ForEra("unknown"))
}

func TestDefaultFoodWebConfigHasPositiveThresholds(t *testing.T) {
	cfg := DefaultFoodWebConfig()
	assert.Positive(t, cfg.MinPreyCountT2)
	assert.Positive(t, cfg.MaxPreyAdditionsPerTurn)
}
