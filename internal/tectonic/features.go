package tectonic

import (
	"math"
	"math/rand"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

// DistributeFeatures places hotspots, honoring the minimum hotspot spacing
// invariant from spec.md §3, and volcanoes, trenches, ridges, rifts and
// mountain ranges along plate boundaries. It places no lakes or crater
// lakes.
func (w *World) DistributeFeatures(minHotspotSpacing int, rng *rand.Rand) {
	w.placeHotspots(minHotspotSpacing, rng)
	w.placeBoundaryFeatures(rng)
}

func (w *World) placeHotspots(minSpacing int, rng *rand.Rand) {
	count := maxInt(1, len(w.Plates)/3)
	placed := 0
	attempts := 0
	for placed < count && attempts < count*200 {
		attempts++
		x, y := rng.Intn(w.Width), rng.Intn(w.Height)
		ok := true
		for _, f := range w.Features {
			if f.Kind != worldtypes.FeatureHotspot {
				continue
			}
			dx := float64(minInt(absInt(x-f.X), w.Width-absInt(x-f.X)))
			dy := float64(y - f.Y)
			if math.Hypot(dx, dy) < float64(minSpacing) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		idx := w.TileIndex(x, y)
		w.Features = append(w.Features, worldtypes.GeologicalFeature{
			Kind: worldtypes.FeatureHotspot, X: x, Y: y,
			Intensity: 0.4 + rng.Float64()*0.6, OwningPlate: w.Tiles[idx].PlateID,
		})
		placed++
	}
}

func (w *World) placeBoundaryFeatures(rng *rand.Rand) {
	boundaries := w.reclassifyBoundaries()
	for _, b := range boundaries {
		switch b.btype {
		case worldtypes.BoundarySubduction:
			if rng.Float64() < 0.15 {
				w.Features = append(w.Features, worldtypes.GeologicalFeature{
					Kind: worldtypes.FeatureVolcano, X: b.x, Y: b.y,
					Intensity: 0.5 + rng.Float64()*0.5, OwningPlate: b.plateB,
				})
			}
			if rng.Float64() < 0.1 {
				w.Features = append(w.Features, worldtypes.GeologicalFeature{
					Kind: worldtypes.FeatureTrench, X: b.x, Y: b.y,
					Intensity: 0.6, OwningPlate: b.plateA,
				})
			}
		case worldtypes.BoundaryDivergent:
			if rng.Float64() < 0.2 {
				kind := worldtypes.FeatureRidge
				if w.isLand(b.x, b.y) {
					kind = worldtypes.FeatureRift
				}
				w.Features = append(w.Features, worldtypes.GeologicalFeature{
					Kind: kind, X: b.x, Y: b.y, Intensity: 0.4, OwningPlate: b.plateA,
				})
			}
		case worldtypes.BoundaryConvergent:
			if rng.Float64() < 0.08 {
				w.Features = append(w.Features, worldtypes.GeologicalFeature{
					Kind: worldtypes.FeatureMountainRange, X: b.x, Y: b.y,
					Intensity: 0.5, OwningPlate: b.plateA,
				})
			}
		}
	}
}

func (w *World) isLand(x, y int) bool {
	return w.Tiles[w.TileIndex(x, y)].ElevationM > 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
