package tectonic

// MantlePhase is the Wilson-cycle phase (spec.md §4.3 "Mantle dynamics").
type MantlePhase string

const (
	MantleSupercontinent MantlePhase = "supercontinent"
	MantleRifting        MantlePhase = "rifting"
	MantleDrifting       MantlePhase = "drifting"
	MantleSubduction     MantlePhase = "subduction"
	MantleCollision      MantlePhase = "collision"
	MantleOrogeny        MantlePhase = "orogeny"
)

var mantleCycleOrder = []MantlePhase{
	MantleSupercontinent, MantleRifting, MantleDrifting,
	MantleSubduction, MantleCollision, MantleOrogeny,
}

// velocityModifier is the global per-phase speed multiplier applied to
// every plate during that phase (spec.md §4.3).
var velocityModifier = map[MantlePhase]float64{
	MantleSupercontinent: 0.3,
	MantleRifting:        1.4,
	MantleDrifting:       1.0,
	MantleSubduction:     1.2,
	MantleCollision:      0.9,
	MantleOrogeny:        0.6,
}

// ConvectionCell is one mantle convection cell contributing additive
// velocity at plate centroids.
type ConvectionCell struct {
	CenterX, CenterY float64
	Strength         float64
	DirX, DirY       float64
}

// MantleState tracks the current Wilson-cycle phase, its progress, the
// convection cells, and the lifetime cycle counter.
type MantleState struct {
	Phase           MantlePhase
	Progress        float64 // [0,1] fraction through current phase
	ProgressPerTurn float64
	ConvectionCells []ConvectionCell
	TotalCycles     int

	// DirectionalBiasPlateIDs lists plates singled out for a per-phase
	// directional bias. Nothing in this package sets or reads it, so no
	// per-plate directional bias is applied; every plate gets only the
	// phase's global VelocityModifier.
	DirectionalBiasPlateIDs []int
}

// NewMantleState starts the cycle at the supercontinent phase.
func NewMantleState(progressPerTurn float64, cells []ConvectionCell) MantleState {
	if progressPerTurn <= 0 {
		progressPerTurn = 0.01
	}
	return MantleState{
		Phase:           MantleSupercontinent,
		ProgressPerTurn: progressPerTurn,
		ConvectionCells: cells,
	}
}

// Advance moves the mantle state forward by one turn's progress fraction,
// cycling through the six Wilson-cycle phases forever and bumping
// TotalCycles each time the cycle wraps (spec.md §4.3, glossary "Wilson
// cycle").
func (m *MantleState) Advance() {
	m.Progress += m.ProgressPerTurn
	for m.Progress >= 1.0 {
		m.Progress -= 1.0
		m.advancePhase()
	}
}

func (m *MantleState) advancePhase() {
	idx := 0
	for i, p := range mantleCycleOrder {
		if p == m.Phase {
			idx = i
			break
		}
	}
	next := (idx + 1) % len(mantleCycleOrder)
	m.Phase = mantleCycleOrder[next]
	if next == 0 {
		m.TotalCycles++
	}
}

// VelocityModifier returns the current phase's global speed multiplier.
func (m *MantleState) VelocityModifier() float64 {
	return velocityModifier[m.Phase]
}

// ApplyConvection adds each convection cell's velocity contribution to the
// plate whose centroid is nearest that cell, scaled by the cell's strength
// only (spec.md §4.3: "Convection cells produce additive velocity
// contributions at the plate centroids").
func (w *World) ApplyConvection(cells []ConvectionCell) {
	for _, cell := range cells {
		var nearest *struct {
			idx  int
			dist float64
		}
		for i := range w.Plates {
			dx := w.Plates[i].RotationCenterX - cell.CenterX
			dy := w.Plates[i].RotationCenterY - cell.CenterY
			dist := dx*dx + dy*dy
			if nearest == nil || dist < nearest.dist {
				nearest = &struct {
					idx  int
					dist float64
				}{i, dist}
			}
		}
		if nearest == nil {
			continue
		}
		w.Plates[nearest.idx].VX += cell.DirX * cell.Strength
		w.Plates[nearest.idx].VY += cell.DirY * cell.Strength
	}
}
