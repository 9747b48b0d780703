package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/GoCodeAlone/evosim/internal/config"
	"github.com/GoCodeAlone/evosim/internal/foodweb"
	"github.com/GoCodeAlone/evosim/internal/logging"
	"github.com/GoCodeAlone/evosim/internal/metrics"
	"github.com/GoCodeAlone/evosim/internal/pressure"
	"github.com/GoCodeAlone/evosim/internal/router"
	"github.com/GoCodeAlone/evosim/internal/speciation"
	"github.com/GoCodeAlone/evosim/internal/store"
	"github.com/GoCodeAlone/evosim/internal/tectonic"
	"github.com/GoCodeAlone/evosim/internal/tensorkernel"
	"github.com/GoCodeAlone/evosim/internal/tensorstate"
	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

var logger = logging.For("engine")

// degenerationMaintenanceThreshold is the trait-sum above which Degenerate
// fires even off its every-fifth-turn schedule (spec.md §4.4).
const degenerationMaintenanceThreshold = 40.0

// Engine owns every subsystem a turn touches and the mutable state that
// carries across turns (spec.md §3 "Ownership"). Its zero value is not
// usable; build one with New.
type Engine struct {
	Backend tensorkernel.Backend
	Balance *config.BalanceConfig
	World   *tectonic.World
	State   *tensorstate.State

	Bridge   *pressure.Bridge
	Monitor  *speciation.Monitor
	FoodWeb  *foodweb.Manager
	Tracker  *tectonic.SpeciesTracker
	Repo     *store.SpeciesRepository
	Router   *router.Router
	Metrics  *metrics.Metrics

	Era       worldtypes.Era
	TurnIndex int
}

// New wires an Engine from its already-constructed subsystems. Callers
// assemble the World/State pair with tectonic.Generate and
// tensorstate.NewState before calling New (spec.md §3 "World generation
// happens once, up front").
func New(backend tensorkernel.Backend, balance *config.BalanceConfig, world *tectonic.World, state *tensorstate.State, fw *foodweb.Manager, rt *router.Router, mx *metrics.Metrics) *Engine {
	return &Engine{
		Backend: backend,
		Balance: balance,
		World:   world,
		State:   state,
		Bridge:  pressure.NewBridge(),
		Monitor: speciation.NewMonitor(balance.DivergenceThreshold, balance.DivergenceDivisor),
		FoodWeb: fw,
		Tracker: tectonic.NewSpeciesTracker(),
		Repo:    store.NewSpeciesRepository(),
		Router:  rt,
		Metrics: mx,
		Era:     worldtypes.EraHadean,
	}
}

// TurnRequest is one turn-run request (spec.md §6 "turn-run request").
type TurnRequest struct {
	Descriptors []pressure.Descriptor
}

// TurnReport is the per-turn result returned to the caller (spec.md §6
// "turn-run response").
type TurnReport struct {
	TurnIndex int

	Kernel   tensorkernel.TurnKernelOutput
	Tectonic tectonic.TectonicTurnResult

	Triggers     []speciation.Trigger
	Reemerged    []speciation.ReemergenceEvent
	Isolations   []tectonic.IsolationEvent
	Contacts     []tectonic.ContactEvent
	Hybrids      []string

	FoodWeb        foodweb.Analysis
	FoodWebChanges []foodweb.Change

	DegradedSpecies []SoftFailure
	Warnings        []string
}

// RunTurn executes one full turn: pressure application, the five tensor
// kernel stages, tectonic motion (its terrain deltas are added onto the
// env tensor's elevation channel), speciation monitoring,
// plate-contact/isolation tracking, reemergence, adaptation and
// hybridization (the last two inside one repository transaction), and
// food-web maintenance, in that order (spec.md §5 "Per-turn pipeline"). The tensor and tectonic stages
// run to completion once started and never observe ctx directly, matching
// spec.md §7 "cooperative suspension points only at stage boundaries"; ctx
// is accepted here (rather than added later as a breaking change) because
// a caller wiring router-backed narrative generation onto a TurnReport
// after RunTurn returns needs the same cancellation boundary.
func (e *Engine) RunTurn(ctx context.Context, req TurnRequest) (*TurnReport, error) {
	for _, d := range req.Descriptors {
		if err := d.Validate(); err != nil {
			return nil, &ConfigError{Reason: err.Error()}
		}
	}

	report := &TurnReport{TurnIndex: e.TurnIndex}

	overlay, err := e.Bridge.Apply(e.State.Env, req.Descriptors)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("pressure bridge: %v", err)}
	}

	runtime := e.buildRuntime()
	in := tensorkernel.StageInput{
		State:     e.State,
		Overlay:   overlay,
		Runtime:   runtime,
		Balance:   e.Balance,
		Era:       string(e.Era),
		TurnIndex: e.TurnIndex,
	}

	kernelOut, err := tensorkernel.RunStages(e.Backend, in)
	if err != nil {
		return nil, &InvariantError{Invariant: "tensor_kernel_stage", Detail: err.Error()}
	}
	report.Kernel = kernelOut

	if err := e.State.Validate(); err != nil {
		return nil, &InvariantError{Invariant: "tensor_state", Detail: err.Error()}
	}

	motionParams := tectonic.DefaultMotionParams()
	motionParams.ElevationBiasMultiplier = overlay.TectonicElevationBiasMultiplier
	motionParams.VelocityBiasMultiplier = overlay.TectonicVelocityBiasMultiplier
	report.Tectonic = e.World.AdvanceTurn(e.TurnIndex, motionParams)
	for _, d := range report.Tectonic.TerrainDeltas {
		e.State.Env.Set(tensorstate.EnvElevation, d.Y, d.X, e.State.Env.At(tensorstate.EnvElevation, d.Y, d.X)+d.ElevationDeltaM)
	}

	if err := e.World.ValidateCoverage(); err != nil {
		return nil, &InvariantError{Invariant: "plate_tile_coverage", Detail: err.Error()}
	}

	report.Triggers = e.Monitor.Scan(e.State)

	alive := e.Repo.Alive()
	report.Isolations, report.Contacts = e.Tracker.Advance(e.World, profilesOf(alive))

	extinct := extinctOf(e.Repo.All())
	report.Reemerged = speciation.EvaluateReemergence(extinct, report.Tectonic.PressureFeedback)

	activePressures := activePressureNames(req.Descriptors)
	var newProducers []*worldtypes.Species

	if err := e.Repo.Transaction(func(staging *store.SpeciesRepository) error {
		report.Reemerged = append(report.Reemerged, speciation.EvaluateReemergence(extinctOf(staging.All()), report.Tectonic.PressureFeedback)...)
		for _, ev := range report.Reemerged {
			if sp, ok := staging.Get(ev.LineageCode); ok {
				if err := staging.Upsert(sp); err != nil {
					return fmt.Errorf("reemergence: %w", err)
				}
			}
		}

		for _, live := range alive {
			sp, ok := staging.Get(live.LineageCode)
			if !ok {
				continue
			}
			e.adaptSpecies(sp, activePressures)
			if err := staging.Upsert(sp); err != nil {
				return fmt.Errorf("adaptation: %w", err)
			}
		}

		for _, contact := range report.Contacts {
			if contact.Interaction != tectonic.InteractionCompetition {
				continue
			}
			hybrid, err := e.tryHybridize(staging, contact)
			if err != nil {
				return fmt.Errorf("hybridization: %w", err)
			}
			if hybrid == nil {
				continue
			}
			if err := staging.Upsert(hybrid); err != nil {
				return fmt.Errorf("hybridization: %w", err)
			}
			report.Hybrids = append(report.Hybrids, hybrid.LineageCode)
			if hybrid.TrophicLevel < 2.0 {
				newProducers = append(newProducers, hybrid)
			}
		}
		return nil
	}); err != nil {
		report.DegradedSpecies = append(report.DegradedSpecies, SoftFailure{Component: "species_turn", Detail: err.Error()})
	}

	aliveAfter := e.Repo.Alive()
	analysis, changes := e.FoodWeb.MaintainFoodWeb(aliveAfter)
	changes = append(changes, e.FoodWeb.IntegrateNewProducers(newProducers, aliveAfter, e.Tracker.TileSetsOverlap)...)
	report.FoodWeb = analysis
	report.FoodWebChanges = changes

	if e.Metrics != nil {
		e.Metrics.TurnsProcessed.Inc()
		e.Metrics.SpeciesAlive.Set(float64(len(e.Repo.Alive())))
		e.Metrics.FoodWebHealth.Set(analysis.HealthScore)
		for range report.Tectonic.Earthquakes {
			e.Metrics.TectonicEvents.WithLabelValues("earthquake").Inc()
		}
		for _, ev := range report.Tectonic.VolcanicEvents {
			e.Metrics.TectonicEvents.WithLabelValues(string(ev.Kind)).Inc()
		}
	}

	logger.Debug().
		Int("turn", e.TurnIndex).
		Int("triggers", len(report.Triggers)).
		Int("reemerged", len(report.Reemerged)).
		Int("food_web_changes", len(report.FoodWebChanges)).
		Msg("engine: turn completed")

	e.TurnIndex++
	return report, nil
}

// buildRuntime derives the kernel's SpeciesRuntime from the repository's
// current species records, keeping the tensor row order in sync with
// State.SpeciesMap.
func (e *Engine) buildRuntime() tensorkernel.SpeciesRuntime {
	s := e.State.S()
	rt := tensorkernel.SpeciesRuntime{
		TrophicLevel: make([]float64, s),
		Cooldown:     make([]bool, s),
		PreyIndex:    make([][]int, s),
	}
	for row := 0; row < s; row++ {
		code, ok := e.State.SpeciesMap.Code(row)
		if !ok {
			continue
		}
		sp, ok := e.Repo.Get(code)
		if !ok {
			continue
		}
		rt.TrophicLevel[row] = sp.TrophicLevel
		for _, preyCode := range sp.PreySpecies {
			if preyRow, ok := e.State.SpeciesMap.Index(preyCode); ok {
				rt.PreyIndex[row] = append(rt.PreyIndex[row], preyRow)
			}
		}
	}
	return rt
}

func profilesOf(species []*worldtypes.Species) map[string]tectonic.SpeciesProfile {
	out := make(map[string]tectonic.SpeciesProfile, len(species))
	for _, sp := range species {
		out[sp.LineageCode] = tectonic.SpeciesProfile{
			LineageCode:  sp.LineageCode,
			Diet:         sp.Diet,
			TrophicLevel: sp.TrophicLevel,
		}
	}
	return out
}

func extinctOf(species []*worldtypes.Species) []*worldtypes.Species {
	var out []*worldtypes.Species
	for _, sp := range species {
		if sp.Status == worldtypes.StatusExtinct {
			out = append(out, sp)
		}
	}
	return out
}

// activePressureNames maps the turn's pressure descriptors to the gradient
// names speciation.GradientDirection recognizes. Descriptor intensity
// carries no sign, so a temperature descriptor always reads as "heat"
// pressure rather than distinguishing a cold snap (speciation.adaptation's
// gradient table keeps "cold" for a future signed-intensity extension).
func activePressureNames(descriptors []pressure.Descriptor) []string {
	var out []string
	for _, d := range descriptors {
		switch d.Kind {
		case pressure.KindTemperature:
			out = append(out, "heat")
		case pressure.KindDrought:
			out = append(out, "drought")
		case pressure.KindRadiation:
			out = append(out, "radiation")
		case pressure.KindPredation:
			out = append(out, "predation")
		}
	}
	return out
}

// adaptSpecies applies this turn's gradual trait drift and, on its own
// internal schedule, degeneration, mutating sp in place (spec.md §4.4,
// §2 "adaptation service applies slow trait drift ... every turn").
func (e *Engine) adaptSpecies(sp *worldtypes.Species, activePressures []string) {
	generationCount := float64(e.TurnIndex - sp.CreatedTurn)
	if generationCount < 0 {
		generationCount = 0
	}
	timeScale := e.Balance.EraScaling.ForEra(string(e.Era))
	plasticity := 0.5
	if sp.PlasticityBuffer != nil {
		plasticity = *sp.PlasticityBuffer
	}

	sp.Traits = speciation.AdaptTraits(sp.Traits, activePressures, generationCount, timeScale, plasticity, e.Era)

	entropy := 0.1 + 0.3*(1-plasticity)
	speciation.Degenerate(sp.Traits, sp.Organs, e.TurnIndex, degenerationMaintenanceThreshold, nil, pickHighTrait, entropy)
}

// pickHighTrait returns the trait with the largest value, breaking ties
// alphabetically so repeated runs on the same state pick the same trait.
func pickHighTrait(traits map[string]float64) string {
	best := ""
	bestVal := -1.0
	for k, v := range traits {
		if v > bestVal || (v == bestVal && (best == "" || k < best)) {
			best, bestVal = k, v
		}
	}
	return best
}

// tryHybridize evaluates one contact event for natural hybridization,
// returning the new hybrid record or nil if the pair's genetic distance is
// too large (spec.md §4.4 "Hybridization").
func (e *Engine) tryHybridize(staging *store.SpeciesRepository, contact tectonic.ContactEvent) (*worldtypes.Species, error) {
	a, okA := staging.Get(contact.LineageA)
	b, okB := staging.Get(contact.LineageB)
	if !okA || !okB {
		return nil, nil
	}
	dist := geneticDistance(a.Traits, b.Traits)
	ok, fertility := speciation.Hybridizable(a, b, dist)
	if !ok {
		return nil, nil
	}
	exists := func(code string) bool {
		_, found := staging.Get(code)
		return found
	}
	rng := turnRNG(e.TurnIndex, a.LineageCode, b.LineageCode)
	hybrid := speciation.BuildHybrid(a, b, fertility, speciation.HybridNatural, e.TurnIndex, exists, rng)
	if err := hybrid.Validate(); err != nil {
		logger.Warn().Str("hybrid", hybrid.LineageCode).Err(err).Msg("engine: discarding invalid hybrid")
		return nil, nil
	}
	return hybrid, nil
}

// geneticDistance is a normalized Euclidean distance over the union of two
// trait maps, scaled into roughly the same [0,1] range Hybridizable's
// genetic-distance thresholds expect.
func geneticDistance(a, b map[string]float64) float64 {
	keys := make(map[string]bool, len(a)+len(b))
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}
	if len(keys) == 0 {
		return 0
	}
	sumSq := 0.0
	for k := range keys {
		d := a[k] - b[k]
		sumSq += d * d
	}
	return math.Sqrt(sumSq) / (15.0 * math.Sqrt(float64(len(keys))))
}

// turnRNG derives a deterministic random source from the turn index and a
// set of lineage codes, so repeated runs over the same world produce
// identical hybridization rolls (spec.md §8 "Round-trip laws").
func turnRNG(turn int, codes ...string) *rand.Rand {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d", turn)
	for _, c := range codes {
		h.Write([]byte(c))
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
