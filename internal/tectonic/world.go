// Package tectonic implements the plate-motion engine: plate generation,
// weighted flood-fill ownership, Wilson-cycle mantle dynamics, boundary
// classification, terrain/feature evolution and species-plate tracking
// (spec.md §4.3). Grounded on onuse-worldgenerator_go's plates.go /
// tectonics.go / volcanism.go, adapted from a 3D sphere-mesh planet to the
// 2D odd-q hex grid this module's World uses (spec.md §3).
package tectonic

import (
	"fmt"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

// World is the tectonic subsystem's own view of the grid: tile ownership
// and plate records. The tensor engine's environment tensor is written back
// to by TerrainDelta results; World itself holds no species data (species
// tracking lives in species_tracker.go, keyed by plate id and lineage
// code only).
type World struct {
	Width, Height int
	Tiles         []worldtypes.Tile // row-major, len = Width*Height
	Plates        []worldtypes.Plate
	Features      []worldtypes.GeologicalFeature

	Mantle MantleState
}

func (w *World) tileAt(x, y int) *worldtypes.Tile {
	return &w.Tiles[y*w.Width+x]
}

// TileIndex returns the row-major index for (x,y).
func (w *World) TileIndex(x, y int) int { return y*w.Width + x }

// PlateByID returns a pointer to the plate record with the given id, or nil.
func (w *World) PlateByID(id int) *worldtypes.Plate {
	for i := range w.Plates {
		if w.Plates[i].ID == id {
			return &w.Plates[i]
		}
	}
	return nil
}

// ValidateCoverage checks the "sum(plate.tile_count) == W*H" invariant from
// spec.md §8.
func (w *World) ValidateCoverage() error {
	total := 0
	for _, p := range w.Plates {
		total += p.TileCount
	}
	if total != w.Width*w.Height {
		return fmt.Errorf("tectonic: plate tile-count coverage mismatch: got %d want %d", total, w.Width*w.Height)
	}
	return nil
}
