package tectonic

import (
	"math"
	"math/rand"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

// MotionParams tunes the per-turn motion update. Values mirror the
// qualitative behavior of onuse-worldgenerator_go's motion/volcanism
// passes (orogeny boost, rifting boost, latitude damping, polar bounce),
// adapted to the 2D hex grid.
type MotionParams struct {
	MinVelocity, MaxVelocity float64
	LatitudeDamping          float64
	Decay                    float64
	TerrainChangeCapM        float64 // max |elevation delta| per turn
	EarthquakeBaseProb       float64
	VolcanicMinInterval      int
	MaxEventRadius           int

	// ElevationBiasMultiplier / VelocityBiasMultiplier come from the
	// pressure bridge's orogeny / earthquake_period overlay (spec.md §6).
	ElevationBiasMultiplier float64
	VelocityBiasMultiplier  float64

	Rng *rand.Rand
}

// DefaultMotionParams returns the balance defaults used when the caller
// does not override them.
func DefaultMotionParams() MotionParams {
	return MotionParams{
		MinVelocity:         0.01,
		MaxVelocity:         1.0,
		LatitudeDamping:     0.15,
		Decay:               0.02,
		TerrainChangeCapM:   8.0,
		EarthquakeBaseProb:  0.04,
		VolcanicMinInterval: 12,
		MaxEventRadius:      2,
		ElevationBiasMultiplier: 1.0,
		VelocityBiasMultiplier:  1.0,
		Rng:                 rand.New(rand.NewSource(1)),
	}
}

// AdvanceTurn runs one turn of the motion engine: velocity update, boundary
// reclassification, terrain deltas, and earthquake/volcanic event emission
// (spec.md §4.3 "Motion engine (per turn)").
func (w *World) AdvanceTurn(turn int, p MotionParams) TectonicTurnResult {
	w.Mantle.Advance()
	w.ApplyConvection(w.Mantle.ConvectionCells)
	w.updateVelocities(p)
	boundaries := w.reclassifyBoundaries()
	deltas := w.computeTerrainDeltas(boundaries, p)
	quakes := w.emitEarthquakes(boundaries, p)
	volcanics := w.emitVolcanicEvents(turn, boundaries, p)

	feedback := map[string]float64{
		"tectonic": float64(len(quakes)) * 0.1,
		"volcanic": float64(len(volcanics)) * 0.15,
	}
	return TectonicTurnResult{
		TerrainDeltas:    deltas,
		Earthquakes:      quakes,
		VolcanicEvents:   volcanics,
		PressureFeedback: feedback,
	}
}

func (w *World) updateVelocities(p MotionParams) {
	for i := range w.Plates {
		pl := &w.Plates[i]

		speedMultiplier := 1.0
		switch pl.Phase {
		case worldtypes.PhaseColliding:
			speedMultiplier = 1.15 // orogeny boost
		case worldtypes.PhaseRifting:
			speedMultiplier = 1.1
		}
		speedMultiplier *= p.VelocityBiasMultiplier * w.Mantle.VelocityModifier()

		latFrac := math.Abs(pl.RotationCenterY-float64(w.Height)/2) / (float64(w.Height) / 2)
		damping := 1 - p.LatitudeDamping*latFrac

		pl.VX = pl.VX*damping*speedMultiplier*(1-p.Decay)
		pl.VY = pl.VY*damping*speedMultiplier*(1-p.Decay)

		speed := math.Hypot(pl.VX, pl.VY)
		if speed > p.MaxVelocity {
			scale := p.MaxVelocity / speed
			pl.VX *= scale
			pl.VY *= scale
		} else if speed < p.MinVelocity && speed > 0 {
			scale := p.MinVelocity / speed
			pl.VX *= scale
			pl.VY *= scale
		}

		pl.RotationCenterX += pl.VX
		pl.RotationCenterY += pl.VY
		// Polar bounce: reflect Y velocity near map edges since Y does not wrap.
		if pl.RotationCenterY < 1 || pl.RotationCenterY > float64(w.Height)-1 {
			pl.VY = -pl.VY
		}
		pl.AgeTurns++
	}
}

type boundaryTile struct {
	x, y         int
	plateA, plateB int
	btype        worldtypes.BoundaryType
}

// reclassifyBoundaries reclassifies every boundary cell by relative motion
// of adjacent plates, per spec.md §4.3.
func (w *World) reclassifyBoundaries() []boundaryTile {
	var out []boundaryTile
	boundaryCounts := make(map[int]int)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.TileIndex(x, y)
			plateA := w.Tiles[idx].PlateID
			for _, n := range worldtypes.NeighborsOddQ(x, y, w.Width, w.Height) {
				nIdx := w.TileIndex(n[0], n[1])
				plateB := w.Tiles[nIdx].PlateID
				if plateB == plateA {
					continue
				}
				bt := w.classifyBoundary(plateA, plateB)
				out = append(out, boundaryTile{x, y, plateA, plateB, bt})
				boundaryCounts[plateA]++
				break
			}
		}
	}
	w.derivePhases(out, boundaryCounts)
	return out
}

// classifyBoundary implements spec.md §4.3: contraction -> convergent (or
// subduction if one plate is oceanic), expansion -> divergent, shear ->
// transform.
func (w *World) classifyBoundary(a, b int) worldtypes.BoundaryType {
	pa, pb := w.PlateByID(a), w.PlateByID(b)
	if pa == nil || pb == nil {
		return worldtypes.BoundaryTransform
	}
	dirX := pb.RotationCenterX - pa.RotationCenterX
	dirY := pb.RotationCenterY - pa.RotationCenterY
	norm := math.Hypot(dirX, dirY)
	if norm == 0 {
		norm = 1
	}
	dirX, dirY = dirX/norm, dirY/norm

	relVX := pb.VX - pa.VX
	relVY := pb.VY - pa.VY
	dot := relVX*dirX + relVY*dirY

	switch {
	case dot < -0.001:
		if pa.Type == worldtypes.PlateOceanic || pb.Type == worldtypes.PlateOceanic {
			return worldtypes.BoundarySubduction
		}
		return worldtypes.BoundaryConvergent
	case dot > 0.001:
		return worldtypes.BoundaryDivergent
	default:
		return worldtypes.BoundaryTransform
	}
}

func (w *World) derivePhases(boundaries []boundaryTile, boundaryCounts map[int]int) {
	tally := make(map[int]map[worldtypes.BoundaryType]int)
	for _, b := range boundaries {
		if tally[b.plateA] == nil {
			tally[b.plateA] = map[worldtypes.BoundaryType]int{}
		}
		tally[b.plateA][b.btype]++
	}
	for i := range w.Plates {
		counts := tally[w.Plates[i].ID]
		w.Plates[i].BoundaryTileCount = boundaryCounts[w.Plates[i].ID]
		w.Plates[i].Phase = dominantPhase(counts)
	}
}

func dominantPhase(counts map[worldtypes.BoundaryType]int) worldtypes.MotionPhase {
	if len(counts) == 0 {
		return worldtypes.PhaseStable
	}
	best := worldtypes.BoundaryType("")
	bestN := -1
	for bt, n := range counts {
		if n > bestN {
			bestN, best = n, bt
		}
	}
	switch best {
	case worldtypes.BoundaryConvergent:
		return worldtypes.PhaseColliding
	case worldtypes.BoundarySubduction:
		return worldtypes.PhaseSubducting
	case worldtypes.BoundaryDivergent:
		return worldtypes.PhaseRifting
	case worldtypes.BoundaryTransform:
		return worldtypes.PhaseDrifting
	default:
		return worldtypes.PhaseStable
	}
}

// computeTerrainDeltas implements spec.md §4.3's terrain-delta rules within
// a radius of each boundary cell, capped to a small per-turn constant.
func (w *World) computeTerrainDeltas(boundaries []boundaryTile, p MotionParams) []TerrainDelta {
	deltaByIdx := make(map[int]float64)
	for _, b := range boundaries {
		base := 0.0
		switch b.btype {
		case worldtypes.BoundaryConvergent:
			base = 3.0
		case worldtypes.BoundarySubduction:
			base = -2.0 // every tile in the radius subsides; no arc-side uplift is applied
		case worldtypes.BoundaryDivergent:
			base = -1.5
		case worldtypes.BoundaryTransform:
			base = 0.0
		}
		base *= p.ElevationBiasMultiplier

		for dy := -p.MaxEventRadius; dy <= p.MaxEventRadius; dy++ {
			for dx := -p.MaxEventRadius; dx <= p.MaxEventRadius; dx++ {
				x, y := wrapX(b.x+dx, w.Width), clampY(b.y+dy, w.Height)
				dist := math.Hypot(float64(dx), float64(dy))
				if dist > float64(p.MaxEventRadius) {
					continue
				}
				falloff := 1 - dist/float64(p.MaxEventRadius+1)
				idx := w.TileIndex(x, y)
				deltaByIdx[idx] += base * falloff
			}
		}
	}

	// Erosion term on high elevations.
	for idx, t := range w.Tiles {
		if t.ElevationM > 2000 {
			deltaByIdx[idx] -= 0.2
		}
	}

	deltas := make([]TerrainDelta, 0, len(deltaByIdx))
	for idx, d := range deltaByIdx {
		if d > p.TerrainChangeCapM {
			d = p.TerrainChangeCapM
		} else if d < -p.TerrainChangeCapM {
			d = -p.TerrainChangeCapM
		}
		x, y := idx%w.Width, idx/w.Width
		w.Tiles[idx].ElevationM += d
		deltas = append(deltas, TerrainDelta{X: x, Y: y, ElevationDeltaM: d})
	}
	return deltas
}

func (w *World) emitEarthquakes(boundaries []boundaryTile, p MotionParams) []EarthquakeEvent {
	var out []EarthquakeEvent
	for _, b := range boundaries {
		prob := p.EarthquakeBaseProb
		switch b.btype {
		case worldtypes.BoundaryConvergent, worldtypes.BoundarySubduction:
			prob *= 2.5
		case worldtypes.BoundaryTransform:
			prob *= 1.8
		}
		if p.Rng.Float64() < prob {
			out = append(out, EarthquakeEvent{
				X: b.x, Y: b.y,
				Magnitude: 3 + p.Rng.Float64()*5,
				Boundary:  b.btype,
			})
		}
	}
	return out
}

func (w *World) emitVolcanicEvents(turn int, boundaries []boundaryTile, p MotionParams) []VolcanicEvent {
	var out []VolcanicEvent
	for i := range w.Features {
		f := &w.Features[i]
		if f.Kind != worldtypes.FeatureHotspot && f.Kind != worldtypes.FeatureVolcano {
			continue
		}
		if turn-f.LastEruptionTurn < p.VolcanicMinInterval {
			continue
		}
		chance := f.Intensity * 0.15
		if p.Rng.Float64() < chance {
			f.LastEruptionTurn = turn
			f.Dormant = false
			kind := VolcanicHotspot
			if f.Kind == worldtypes.FeatureVolcano {
				kind = VolcanicSubductionArc
			}
			out = append(out, VolcanicEvent{Kind: kind, X: f.X, Y: f.Y, Intensity: f.Intensity, PlateID: f.OwningPlate})
		} else {
			f.Dormant = true
		}
	}
	for _, b := range boundaries {
		if b.btype != worldtypes.BoundaryDivergent {
			continue
		}
		if p.Rng.Float64() < 0.02 {
			out = append(out, VolcanicEvent{Kind: VolcanicRift, X: b.x, Y: b.y, Intensity: 0.3, PlateID: b.plateA})
		}
	}
	return out
}

func wrapX(x, w int) int { return ((x % w) + w) % w }
func clampY(y, h int) int {
	if y < 0 {
		return 0
	}
	if y >= h {
		return h - 1
	}
	return y
}
