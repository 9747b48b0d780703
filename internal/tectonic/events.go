package tectonic

import "github.com/GoCodeAlone/evosim/pkg/worldtypes"

// EarthquakeEvent is emitted at a boundary tile (spec.md §4.3).
type EarthquakeEvent struct {
	X, Y      int
	Magnitude float64
	Boundary  worldtypes.BoundaryType
}

// VolcanicEventKind distinguishes the three volcanic source types spec.md
// §4.3 names.
type VolcanicEventKind string

const (
	VolcanicHotspot        VolcanicEventKind = "hotspot"
	VolcanicSubductionArc  VolcanicEventKind = "subduction_arc"
	VolcanicRift           VolcanicEventKind = "rift"
)

// VolcanicEvent is an eruption at a feature.
type VolcanicEvent struct {
	Kind      VolcanicEventKind
	X, Y      int
	Intensity float64
	PlateID   int
}

// IsolationEvent fires when the last connected tile-path between two
// plates breaks for a species present on both (spec.md §4.3).
type IsolationEvent struct {
	LineageCode   string
	PlateA, PlateB int
}

// InteractionType classifies a ContactEvent by the species' profile.
type InteractionType string

const (
	InteractionCompetition InteractionType = "competition"
	InteractionPredation   InteractionType = "predation"
	InteractionNeutral     InteractionType = "neutral"
)

// ContactEvent fires when a previously disconnected plate pair gains a
// connected path and two species (on either side) can now interact.
type ContactEvent struct {
	LineageA, LineageB string
	PlateA, PlateB     int
	Interaction        InteractionType
}

// TerrainDelta is an elevation change to apply back onto the env tensor's
// elevation channel for one tile (spec.md §4.3, data flow in spec.md §2).
type TerrainDelta struct {
	X, Y        int
	ElevationDeltaM float64
}

// TectonicTurnResult bundles everything one call to AdvanceTurn produces.
type TectonicTurnResult struct {
	TerrainDeltas   []TerrainDelta
	Earthquakes     []EarthquakeEvent
	VolcanicEvents  []VolcanicEvent
	PressureFeedback map[string]float64
}
