package worldtypes

import "fmt"

// BiomeLabel is a free-form biome classification for a tile; kept as a
// string rather than a closed enum because the tectonic/terrain pass
// produces and renames biomes dynamically (c.f. GoCodeAlone-EvoSim's
// BiomeType, generalized here to tectonic-driven biome drift).
type BiomeLabel string

// Tile is a single hex cell in odd-q offset layout: the X axis wraps, the Y
// axis does not.
type Tile struct {
	X, Y int

	Biome       BiomeLabel
	ElevationM  float64
	TemperatureC float64
	Humidity    float64 // [0,1]

	// EnvChannels holds per-channel environmental scalars keyed by channel
	// name, mirroring the `env` tensor's channel dimension for callers that
	// want a tile-indexed view instead of array indexing.
	EnvChannels map[string]float64

	PlateID int
}

// LatitudeTerm returns the latitude-dependent temperature contribution used
// by the elevation/temperature consistency invariant in spec.md §3.
func LatitudeTerm(y, height int) float64 {
	if height <= 1 {
		return 0
	}
	// Distance from equator in [0,1], 0 at equator, 1 at poles.
	mid := float64(height-1) / 2.0
	norm := (float64(y) - mid) / mid
	if norm < 0 {
		norm = -norm
	}
	return -30.0 * norm // up to -30C at the poles
}

// ExpectedTemperature computes the consistent temperature for a tile per
// spec.md §3: `temperature = base - 0.006 * elevation + latitude_term`.
func ExpectedTemperature(base, elevationM float64, y, height int) float64 {
	return base - 0.006*elevationM + LatitudeTerm(y, height)
}

// NeighborsOddQ returns the six axial neighbor coordinates of (x,y) in
// odd-q offset layout, wrapping X modulo width and clamping Y at the edges
// (Y does not wrap, per spec.md §3).
func NeighborsOddQ(x, y, width, height int) [6][2]int {
	var dirs [6][2]int
	if y%2 == 0 {
		dirs = [6][2]int{{x - 1, y}, {x, y - 1}, {x, y + 1}, {x + 1, y}, {x - 1, y - 1}, {x - 1, y + 1}}
	} else {
		dirs = [6][2]int{{x - 1, y}, {x, y - 1}, {x, y + 1}, {x + 1, y}, {x + 1, y - 1}, {x + 1, y + 1}}
	}
	for i := range dirs {
		nx := ((dirs[i][0] % width) + width) % width
		ny := dirs[i][1]
		if ny < 0 {
			ny = 0
		}
		if ny >= height {
			ny = height - 1
		}
		dirs[i][0], dirs[i][1] = nx, ny
	}
	return dirs
}

// Validate checks tile-local invariants (temperature/elevation consistency
// is checked separately by the caller that knows the world's base
// temperature and height, since a Tile alone does not carry that context).
func (t *Tile) Validate() error {
	if t.Humidity < 0 || t.Humidity > 1 {
		return fmt.Errorf("tile (%d,%d): humidity %f out of [0,1]", t.X, t.Y, t.Humidity)
	}
	if t.PlateID < 0 {
		return fmt.Errorf("tile (%d,%d): missing plate ownership", t.X, t.Y)
	}
	return nil
}
