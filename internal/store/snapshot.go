// Package store owns the versioned save-snapshot schema and the
// transactional in-memory species repository the engine persists through
// (spec.md §3 "Ownership", §6 "Save-state schema").
package store

import (
	"encoding/json"
	"fmt"

	"github.com/GoCodeAlone/evosim/internal/tectonic"
	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

// CurrentSchemaVersion is bumped whenever a field is added or changed in a
// way a loader must know about; loaders below this version fill missing
// fields with defaults rather than failing (spec.md §6).
const CurrentSchemaVersion = 1

// Snapshot is a complete, versioned capture of engine state (spec.md §6).
type Snapshot struct {
	SchemaVersion int `json:"schema_version"`

	WorldWidth  int    `json:"world_width"`
	WorldHeight int    `json:"world_height"`
	Seed        int64  `json:"seed"`
	TurnIndex   int    `json:"turn_index"`

	Plates          []worldtypes.Plate            `json:"plates"`
	PlateOwnership  []int                          `json:"plate_ownership"` // len H*W, plate index per tile
	Tiles           []worldtypes.Tile              `json:"tiles"`
	Features        []worldtypes.GeologicalFeature `json:"features"`
	MantleState     *tectonic.MantleState          `json:"mantle_state,omitempty"`

	Species []worldtypes.Species `json:"species"`

	PressureFeedback map[string]float64  `json:"pressure_feedback,omitempty"`
	MetricsHistory   []MetricsHistoryEntry `json:"metrics_history,omitempty"`
}

// MetricsHistoryEntry is one turn's rolling-history sample.
type MetricsHistoryEntry struct {
	TurnIndex        int     `json:"turn_index"`
	TotalPopulation  float64 `json:"total_population"`
	SpeciesAlive     int     `json:"species_alive"`
	FoodWebHealth    float64 `json:"food_web_health"`
}

// Marshal serializes the snapshot as indented JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal decodes data into a Snapshot, tolerating a missing or older
// schema_version by defaulting it to CurrentSchemaVersion-compatible zero
// values (optional fields already decode to their zero value when absent;
// this only guards the version field itself so callers can branch on it).
func Unmarshal(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("store: decoding snapshot: %w", err)
	}
	if snap.SchemaVersion == 0 {
		snap.SchemaVersion = 1
	}
	return &snap, nil
}
