package tectonic

import (
	"math"
	"math/rand"
	"sort"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

// GenerateOptions configures world/plate creation.
type GenerateOptions struct {
	Width, Height   int
	NumPlates       int
	MinSeedDistance float64
	Rng             *rand.Rand
}

// Generate creates a new World: places plate seeds at random positions
// with a minimum inter-seed distance, assigns types with an
// equatorial/polar bias, and fills ownership with a weighted flood-fill
// (per-plate growth rates drawn uniformly from [0.7, 1.3]) followed by an
// irregularization pass (spec.md §4.3 "Plate generation"). Plate sizes are
// not drawn from a power-law distribution; they follow from the seed
// spacing and the growth rates.
func Generate(opt GenerateOptions) *World {
	rng := opt.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	w := &World{Width: opt.Width, Height: opt.Height}
	w.Tiles = make([]worldtypes.Tile, opt.Width*opt.Height)
	for y := 0; y < opt.Height; y++ {
		for x := 0; x < opt.Width; x++ {
			w.Tiles[w.TileIndex(x, y)] = worldtypes.Tile{X: x, Y: y, PlateID: -1, EnvChannels: map[string]float64{}}
		}
	}

	seeds := placeSeeds(opt, rng)
	w.Plates = make([]worldtypes.Plate, len(seeds))
	for i, s := range seeds {
		latFrac := math.Abs(float64(s[1])-float64(opt.Height)/2) / (float64(opt.Height) / 2)
		continentalBias := 1 - latFrac // higher near equator
		plateType := worldtypes.PlateOceanic
		if rng.Float64() < 0.35+0.4*continentalBias {
			plateType = worldtypes.PlateContinental
		}
		w.Plates[i] = worldtypes.Plate{
			ID:              i,
			Type:            plateType,
			Density:         densityFor(plateType),
			ThicknessKm:     thicknessFor(plateType),
			RotationCenterX: float64(s[0]),
			RotationCenterY: float64(s[1]),
			Phase:           worldtypes.PhaseStable,
		}
		angle := rng.Float64() * 2 * math.Pi
		speed := 0.1 + rng.Float64()*0.4
		w.Plates[i].VX = math.Cos(angle) * speed
		w.Plates[i].VY = math.Sin(angle) * speed
		w.Plates[i].AngularVelocity = (rng.Float64() - 0.5) * 0.02
	}

	weightedFloodFill(w, seeds, rng)
	irregularize(w, rng)
	recountTiles(w)
	classifyBoundaryTiles(w)
	w.Mantle = NewMantleState(0.02, generateConvectionCells(opt, rng))
	return w
}

// generateConvectionCells seeds a handful of mantle convection cells across
// the map, one per roughly three plates; every turn, in any mantle phase,
// ApplyConvection adds each cell's direction times its strength to the
// velocity of the nearest plate (spec.md §4.3 "convection cells").
func generateConvectionCells(opt GenerateOptions, rng *rand.Rand) []ConvectionCell {
	n := opt.NumPlates/3 + 1
	cells := make([]ConvectionCell, n)
	for i := range cells {
		angle := rng.Float64() * 2 * math.Pi
		cells[i] = ConvectionCell{
			CenterX:   rng.Float64() * float64(opt.Width),
			CenterY:   rng.Float64() * float64(opt.Height),
			Strength:  0.02 + rng.Float64()*0.04,
			DirX:      math.Cos(angle),
			DirY:      math.Sin(angle),
		}
	}
	return cells
}

func densityFor(t worldtypes.PlateType) float64 {
	switch t {
	case worldtypes.PlateOceanic:
		return 3.0
	case worldtypes.PlateContinental:
		return 2.7
	default:
		return 2.85
	}
}

func thicknessFor(t worldtypes.PlateType) float64 {
	switch t {
	case worldtypes.PlateOceanic:
		return 7
	case worldtypes.PlateContinental:
		return 35
	default:
		return 20
	}
}

func placeSeeds(opt GenerateOptions, rng *rand.Rand) [][2]int {
	minDist := opt.MinSeedDistance
	if minDist <= 0 {
		minDist = math.Sqrt(float64(opt.Width*opt.Height)/float64(opt.NumPlates)) * 0.6
	}
	seeds := make([][2]int, 0, opt.NumPlates)
	attempts := 0
	for len(seeds) < opt.NumPlates && attempts < opt.NumPlates*200 {
		attempts++
		cand := [2]int{rng.Intn(opt.Width), rng.Intn(opt.Height)}
		ok := true
		for _, s := range seeds {
			dx := float64(minInt(absInt(cand[0]-s[0]), opt.Width-absInt(cand[0]-s[0])))
			dy := float64(cand[1] - s[1])
			if math.Hypot(dx, dy) < minDist {
				ok = false
				break
			}
		}
		if ok {
			seeds = append(seeds, cand)
		}
	}
	for len(seeds) < opt.NumPlates {
		seeds = append(seeds, [2]int{rng.Intn(opt.Width), rng.Intn(opt.Height)})
	}
	return seeds
}

// weightedFloodFill assigns every tile to the nearest seed weighted by a
// per-seed random growth-rate factor (the "weighted plate growth" of
// spec.md §2), using a multi-source BFS frontier.
func weightedFloodFill(w *World, seeds [][2]int, rng *rand.Rand) {
	type frontierEntry struct {
		x, y, plate int
		cost        float64
	}
	growthRate := make([]float64, len(seeds))
	for i := range growthRate {
		growthRate[i] = 0.7 + rng.Float64()*0.6
	}

	costSoFar := make([]float64, w.Width*w.Height)
	for i := range costSoFar {
		costSoFar[i] = math.Inf(1)
	}

	frontier := make([]frontierEntry, 0, len(seeds))
	for i, s := range seeds {
		idx := w.TileIndex(s[0], s[1])
		costSoFar[idx] = 0
		w.Tiles[idx].PlateID = i
		frontier = append(frontier, frontierEntry{s[0], s[1], i, 0})
	}

	for len(frontier) > 0 {
		sort.Slice(frontier, func(i, j int) bool { return frontier[i].cost < frontier[j].cost })
		cur := frontier[0]
		frontier = frontier[1:]
		idx := w.TileIndex(cur.x, cur.y)
		if cur.cost > costSoFar[idx] {
			continue
		}
		for _, n := range worldtypes.NeighborsOddQ(cur.x, cur.y, w.Width, w.Height) {
			nIdx := w.TileIndex(n[0], n[1])
			step := 1.0 / growthRate[cur.plate]
			newCost := cur.cost + step
			if newCost < costSoFar[nIdx] {
				costSoFar[nIdx] = newCost
				w.Tiles[nIdx].PlateID = cur.plate
				frontier = append(frontier, frontierEntry{n[0], n[1], cur.plate, newCost})
			}
		}
	}
}

// irregularize applies a small boundary-noise pass: tiles adjacent to a
// different plate may flip with low probability, roughening straight
// flood-fill fronts (spec.md §4.3 "irregularization pass").
func irregularize(w *World, rng *rand.Rand) {
	for pass := 0; pass < 2; pass++ {
		for y := 0; y < w.Height; y++ {
			for x := 0; x < w.Width; x++ {
				idx := w.TileIndex(x, y)
				if rng.Float64() > 0.05 {
					continue
				}
				for _, n := range worldtypes.NeighborsOddQ(x, y, w.Width, w.Height) {
					nIdx := w.TileIndex(n[0], n[1])
					if w.Tiles[nIdx].PlateID != w.Tiles[idx].PlateID {
						w.Tiles[idx].PlateID = w.Tiles[nIdx].PlateID
						break
					}
				}
			}
		}
	}
}

func recountTiles(w *World) {
	counts := make(map[int]int)
	for _, t := range w.Tiles {
		counts[t.PlateID]++
	}
	for i := range w.Plates {
		w.Plates[i].TileCount = counts[w.Plates[i].ID]
	}
}

func classifyBoundaryTiles(w *World) {
	boundaryCounts := make(map[int]int)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			idx := w.TileIndex(x, y)
			plateID := w.Tiles[idx].PlateID
			for _, n := range worldtypes.NeighborsOddQ(x, y, w.Width, w.Height) {
				if w.Tiles[w.TileIndex(n[0], n[1])].PlateID != plateID {
					boundaryCounts[plateID]++
					break
				}
			}
		}
	}
	for i := range w.Plates {
		w.Plates[i].BoundaryTileCount = boundaryCounts[w.Plates[i].ID]
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
