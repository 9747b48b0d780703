package main

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/evosim/internal/config"
	"github.com/GoCodeAlone/evosim/internal/engine"
	"github.com/GoCodeAlone/evosim/internal/foodweb"
	"github.com/GoCodeAlone/evosim/internal/metrics"
	"github.com/GoCodeAlone/evosim/internal/router"
	"github.com/GoCodeAlone/evosim/internal/tectonic"
	"github.com/GoCodeAlone/evosim/internal/tensorkernel"
	"github.com/GoCodeAlone/evosim/internal/tensorstate"
	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

// runOptions gathers the flags bootstrapEngine needs to build a fresh run.
type runOptions struct {
	Width, Height  int
	NumPlates      int
	Seed           int64
	ConfigPath     string
	ForceFallback  bool
	EnableMetrics  bool
}

// bootstrapResult is everything a fresh run needs plus the session
// identifier used to tag its log lines and the watch view's header
// (spec.md §6 "Save-state schema" session identifiers).
type bootstrapResult struct {
	SessionID string
	Engine    *engine.Engine
	Metrics   *metrics.Metrics
}

func bootstrapEngine(opt runOptions) (*bootstrapResult, error) {
	balance, err := config.LoadLayered(opt.ConfigPath)
	if err != nil {
		return nil, &engine.ConfigError{Reason: err.Error()}
	}

	rng := rand.New(rand.NewSource(opt.Seed))
	world := tectonic.Generate(tectonic.GenerateOptions{
		Width: opt.Width, Height: opt.Height,
		NumPlates:       opt.NumPlates,
		MinSeedDistance: 2,
		Rng:             rng,
	})
	world.DistributeFeatures(balance.MinHotspotSpacing, rng)

	state := tensorstate.NewState(opt.Height, opt.Width, 0, tensorstate.EnvChannelCount)

	backend := tensorkernel.Select(opt.ForceFallback)
	fw := foodweb.NewManager(config.DefaultFoodWebConfig())

	var mx *metrics.Metrics
	if opt.EnableMetrics {
		mx = metrics.New()
	}

	rt := router.New(map[string]router.ModelConfig{
		"describe_species": {Provider: "local", Model: "narrator"},
	}, nil, balance.ModelRouterMaxConcurrency, balance.ModelRouterMaxRetries, true)

	eng := engine.New(backend, balance, world, state, fw, rt, mx)
	eng.Era = worldtypes.EraHadean

	return &bootstrapResult{
		SessionID: uuid.NewString(),
		Engine:    eng,
		Metrics:   mx,
	}, nil
}
