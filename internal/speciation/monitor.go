// Package speciation implements the tensor-level speciation monitor,
// auto-tradeoff calculator, gradual adaptation, degeneration,
// hybridization and reemergence services (spec.md §4.4). Grounded on
// GoCodeAlone-EvoSim's speciation.go (Species/SpeciationEvent bookkeeping
// style) and dna.go (mutation/trait-vector manipulation), generalized from
// per-entity DNA strands to the tensor-indexed species model this module
// uses.
package speciation

import (
	"github.com/GoCodeAlone/evosim/internal/tensorstate"
)

// TriggerKind is the closed set of tensor-level speciation triggers.
type TriggerKind string

const (
	TriggerGeographicIsolation TriggerKind = "geographic_isolation"
	TriggerEcologicalDivergence TriggerKind = "ecological_divergence"
)

// ComponentMask is a boolean (H,W) mask for one connected component of a
// species' occupied cells.
type ComponentMask struct {
	H, W int
	Mask []bool
}

// Trigger is one speciation signal for one species.
type Trigger struct {
	Kind        TriggerKind
	LineageCode string
	SpeciesRow  int
	Components  []ComponentMask // set for TriggerGeographicIsolation
	Divergence  float64         // set for TriggerEcologicalDivergence, in [0,1]
}

// Monitor inspects the pop/env tensors each turn for isolation and
// divergence signals (spec.md §4.4 "Tensor speciation monitor").
type Monitor struct {
	DivergenceThreshold float64
	DivergenceDivisor   float64
}

// NewMonitor constructs a monitor with the given balance thresholds.
func NewMonitor(threshold, divisor float64) *Monitor {
	if divisor <= 0 {
		divisor = 1
	}
	return &Monitor{DivergenceThreshold: threshold, DivergenceDivisor: divisor}
}

// Scan runs both checks over every species row in state and returns all
// triggers fired this turn.
func (m *Monitor) Scan(st *tensorstate.State) []Trigger {
	var out []Trigger
	for s := 0; s < st.S(); s++ {
		code, ok := st.SpeciesMap.Code(s)
		if !ok {
			continue
		}
		if comps := connectedComponents(st.Pop.Channel(s), st.W(), st.H()); len(comps) >= 2 {
			out = append(out, Trigger{Kind: TriggerGeographicIsolation, LineageCode: code, SpeciesRow: s, Components: comps})
		}
		if div, has := m.divergence(st, s); has {
			out = append(out, Trigger{Kind: TriggerEcologicalDivergence, LineageCode: code, SpeciesRow: s, Divergence: div})
		}
	}
	return out
}

// connectedComponents finds 4-connected components of cells with positive
// population, wrapping X and clamping Y per spec.md §3.
func connectedComponents(plane []float64, w, h int) []ComponentMask {
	visited := make([]bool, len(plane))
	var comps []ComponentMask

	neighbors4 := func(x, y int) [4][2]int {
		wrap := func(v, m int) int { return ((v % m) + m) % m }
		ny1, ny2 := y-1, y+1
		if ny1 < 0 {
			ny1 = 0
		}
		if ny2 >= h {
			ny2 = h - 1
		}
		return [4][2]int{{wrap(x-1, w), y}, {wrap(x+1, w), y}, {x, ny1}, {x, ny2}}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] || plane[idx] <= 0 {
				continue
			}
			mask := make([]bool, w*h)
			queue := [][2]int{{x, y}}
			visited[idx] = true
			mask[idx] = true
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				for _, n := range neighbors4(cur[0], cur[1]) {
					nIdx := n[1]*w + n[0]
					if visited[nIdx] || plane[nIdx] <= 0 {
						continue
					}
					visited[nIdx] = true
					mask[nIdx] = true
					queue = append(queue, n)
				}
			}
			comps = append(comps, ComponentMask{H: h, W: w, Mask: mask})
		}
	}
	return comps
}

// divergence computes the mean per-channel variance of env restricted to
// occupied cells, normalized and clipped to [0,1] (spec.md §4.4).
func (m *Monitor) divergence(st *tensorstate.State, s int) (float64, bool) {
	plane := st.Pop.Channel(s)
	var occupied []int
	for i, v := range plane {
		if v > 0 {
			occupied = append(occupied, i)
		}
	}
	if len(occupied) == 0 {
		return 0, false
	}

	totalVar := 0.0
	for c := 0; c < st.Env.C; c++ {
		channel := st.Env.Channel(c)
		mean := 0.0
		for _, i := range occupied {
			mean += channel[i]
		}
		mean /= float64(len(occupied))
		variance := 0.0
		for _, i := range occupied {
			d := channel[i] - mean
			variance += d * d
		}
		variance /= float64(len(occupied))
		totalVar += variance
	}
	meanVar := totalVar / float64(st.Env.C)
	normalized := meanVar / m.DivergenceDivisor
	if normalized > 1 {
		normalized = 1
	}
	if normalized < m.DivergenceThreshold {
		return normalized, false
	}
	return normalized, true
}
