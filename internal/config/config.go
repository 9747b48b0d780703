// Package config holds the layered configuration for the engine: compiled
// defaults, overridden by an optional YAML balance file, overridden by
// environment variables. The nesting mirrors GoCodeAlone-EvoSim's
// SimulationConfig / DefaultSimulationConfig pattern in config.go.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MortalityWeights are the three weights spec.md's Open Questions call out
// as set inconsistently in the source (w_temp, w_compete, w_resource). This
// struct is the single authoritative location threaded explicitly into
// kernel calls, resolving that ambiguity (see SPEC_FULL.md §4).
type MortalityWeights struct {
	Temperature float64 `yaml:"temperature"`
	Competition float64 `yaml:"competition"`
	Resource    float64 `yaml:"resource"`
	Trophic     float64 `yaml:"trophic"`
	External    float64 `yaml:"external"`
	BaseMortality float64 `yaml:"base_mortality"`
}

// EraScaling maps era name to the era-stability multiplier applied to
// mortality and competition decay (spec.md §4.1).
type EraScaling struct {
	Hadean, Archean, Proterozoic, Paleozoic, Mesozoic, Cenozoic float64
}

// BalanceConfig is the numeric-tuning surface for the tensor and speciation
// kernels.
type BalanceConfig struct {
	MortalityWeights MortalityWeights `yaml:"mortality_weights"`
	EraScaling        EraScaling       `yaml:"-"`

	DispersalRate       float64 `yaml:"dispersal_rate"`
	CapacityMultiplier  float64 `yaml:"capacity_multiplier"`
	BaseMigrationRate   float64 `yaml:"base_migration_rate"`
	MigrationPressureThreshold float64 `yaml:"migration_pressure_threshold"`
	BaseBirthRate       float64 `yaml:"base_birth_rate"`
	CompetitionStrength float64 `yaml:"competition_strength"`

	TradeoffRatio float64 `yaml:"tradeoff_ratio"` // [0.5, 1.0]

	DivergenceThreshold float64 `yaml:"divergence_threshold"`
	DivergenceDivisor   float64 `yaml:"divergence_divisor"`

	MinHotspotSpacing int `yaml:"min_hotspot_spacing"`

	ModelRouterMaxConcurrency int `yaml:"model_router_max_concurrency"`
	ModelRouterMaxRetries     int `yaml:"model_router_max_retries"`
}

// DefaultBalanceConfig mirrors GoCodeAlone-EvoSim's DefaultSimulationConfig:
// a single function returning sane defaults, overridden in layers.
func DefaultBalanceConfig() *BalanceConfig {
	return &BalanceConfig{
		MortalityWeights: MortalityWeights{
			Temperature:   0.35,
			Competition:   0.25,
			Resource:      0.25,
			Trophic:       0.10,
			External:      0.05,
			BaseMortality: 0.02,
		},
		EraScaling: EraScaling{
			Hadean: 1.6, Archean: 1.4, Proterozoic: 1.2,
			Paleozoic: 1.0, Mesozoic: 0.85, Cenozoic: 0.7,
		},
		DispersalRate:              0.25,
		CapacityMultiplier:         1.0,
		BaseMigrationRate:          0.05,
		MigrationPressureThreshold: 0.3,
		BaseBirthRate:              0.12,
		CompetitionStrength:        0.2,
		TradeoffRatio:              0.75,
		DivergenceThreshold:        0.4,
		DivergenceDivisor:          10.0,
		MinHotspotSpacing:          6,
		ModelRouterMaxConcurrency:  4,
		ModelRouterMaxRetries:      3,
	}
}

// Validate checks the numeric ranges spec.md pins down explicitly.
func (c *BalanceConfig) Validate() error {
	if c.TradeoffRatio < 0.5 || c.TradeoffRatio > 1.0 {
		return fmt.Errorf("config: tradeoff_ratio %f out of [0.5, 1.0]", c.TradeoffRatio)
	}
	if c.DispersalRate <= 0 || c.DispersalRate > 1 {
		return fmt.Errorf("config: dispersal_rate %f out of (0,1]", c.DispersalRate)
	}
	if c.ModelRouterMaxConcurrency <= 0 {
		return fmt.Errorf("config: model_router_max_concurrency must be positive")
	}
	return nil
}

// LoadLayered reads compiled defaults, overlays an optional YAML file at
// path (if non-empty and it exists), then overlays recognized environment
// variables. Missing optional fields fall back silently to the prior
// layer's value, matching the "loaders must tolerate missing optional
// fields" requirement for saves (spec.md §6) generalized to config.
func LoadLayered(path string) (*BalanceConfig, error) {
	cfg := DefaultBalanceConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
			overlay := *cfg
			if err := yaml.Unmarshal(data, &overlay); err != nil {
				return nil, fmt.Errorf("config: parsing %s: %w", path, err)
			}
			cfg = &overlay
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *BalanceConfig) {
	if v, ok := os.LookupEnv("EVOSIM_TRADEOFF_RATIO"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TradeoffRatio = f
		}
	}
	if v, ok := os.LookupEnv("EVOSIM_DISPERSAL_RATE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DispersalRate = f
		}
	}
	if v, ok := os.LookupEnv("EVOSIM_ROUTER_MAX_CONCURRENCY"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ModelRouterMaxConcurrency = n
		}
	}
}

// FoodWebConfig tunes the automatic prey-assignment and diversity-repair
// pass the engine runs at the end of every turn (spec.md §4.5).
type FoodWebConfig struct {
	MinPreyCountT2 int `yaml:"min_prey_count_t2"`
	MinPreyCountT3 int `yaml:"min_prey_count_t3"`
	MinPreyCountT4 int `yaml:"min_prey_count_t4"`
	MinPreyCountT5 int `yaml:"min_prey_count_t5"`

	MaxPreyAdditionsPerTurn int `yaml:"max_prey_additions_per_turn"`

	EnableBiomassConstraint   bool    `yaml:"enable_biomass_constraint"`
	MinPreyBiomassG           float64 `yaml:"min_prey_biomass_g"`
	BiomassTrophicMultiplier  float64 `yaml:"biomass_trophic_multiplier"`

	IntegratePriorityWhenPreyBelow int `yaml:"integrate_priority_when_prey_below"`
}

// DefaultFoodWebConfig mirrors the original food_web_manager's baked-in
// defaults (spec.md §4.5).
func DefaultFoodWebConfig() *FoodWebConfig {
	return &FoodWebConfig{
		MinPreyCountT2:                 1,
		MinPreyCountT3:                 2,
		MinPreyCountT4:                 3,
		MinPreyCountT5:                 4,
		MaxPreyAdditionsPerTurn:        3,
		EnableBiomassConstraint:        true,
		MinPreyBiomassG:                1.0,
		BiomassTrophicMultiplier:       4.0,
		IntegratePriorityWhenPreyBelow: 1,
	}
}

// ForEra returns the scaling multiplier for a given era name.
func (e EraScaling) ForEra(era string) float64 {
	switch era {
	case "hadean":
		return e.Hadean
	case "archean":
		return e.Archean
	case "proterozoic":
		return e.Proterozoic
	case "paleozoic":
		return e.Paleozoic
	case "mesozoic":
		return e.Mesozoic
	case "cenozoic":
		return e.Cenozoic
	default:
		return 1.0
	}
}
