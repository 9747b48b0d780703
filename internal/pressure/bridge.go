// Package pressure translates human-scale environmental pressures into
// per-channel overlay tensors consumed by the tensor kernels (spec.md §4.6,
// §6 "Pressure vocabulary"). Grounded on GoCodeAlone-EvoSim's
// environmental_pressures.go for the pressure-kind vocabulary, generalized
// from direct entity mutation to a tensor overlay.
package pressure

import (
	"fmt"

	"github.com/GoCodeAlone/evosim/internal/tensorstate"
)

// Kind is the closed set of recognized pressure kinds (spec.md §6).
type Kind string

const (
	KindTemperature     Kind = "temperature"
	KindDrought         Kind = "drought"
	KindHumidity        Kind = "humidity"
	KindRadiation       Kind = "radiation"
	KindPredation       Kind = "predation"
	KindVolcanicEruption Kind = "volcanic_eruption"
	KindOrogeny         Kind = "orogeny"
	KindEarthquakePeriod Kind = "earthquake_period"
)

// Extent is an optional spatial restriction for a pressure descriptor.
// A nil Extent means the pressure applies to every cell.
type Extent struct {
	MinX, MinY, MaxX, MaxY int
}

// Contains reports whether (x,y) falls within the extent.
func (e *Extent) Contains(x, y int) bool {
	if e == nil {
		return true
	}
	return x >= e.MinX && x <= e.MaxX && y >= e.MinY && y <= e.MaxY
}

// Descriptor is one externally supplied pressure instance.
type Descriptor struct {
	Kind          Kind
	Intensity     int // [1,10]
	Extent        *Extent
	NarrativeNote string
}

// Validate checks the intensity range spec.md §6 pins down.
func (d Descriptor) Validate() error {
	if d.Intensity < 1 || d.Intensity > 10 {
		return fmt.Errorf("pressure: intensity %d out of [1,10] for kind %s", d.Intensity, d.Kind)
	}
	switch d.Kind {
	case KindTemperature, KindDrought, KindHumidity, KindRadiation, KindPredation,
		KindVolcanicEruption, KindOrogeny, KindEarthquakePeriod:
	default:
		return fmt.Errorf("pressure: unknown kind %q", d.Kind)
	}
	return nil
}

// Overlay is the result of applying a set of descriptors: additive overlay
// channels for the tensor kernels, plus tectonic-only multipliers that do
// not live on the env tensor (orogeny, earthquake_period).
type Overlay struct {
	// ExternalPressure is a (H,W) additive channel summed from radiation,
	// predation and volcanic_eruption (spec.md §6), clipped to [0,0.5] by
	// the mortality kernel that consumes it, not here.
	ExternalPressure []float64
	H, W             int

	// TectonicElevationBiasMultiplier and TectonicVelocityBiasMultiplier
	// feed the tectonic subsystem (spec.md §6: orogeny, earthquake_period).
	TectonicElevationBiasMultiplier float64
	TectonicVelocityBiasMultiplier  float64
}

// NewOverlay allocates a zeroed overlay for a (H,W) world with identity
// tectonic multipliers.
func NewOverlay(h, w int) *Overlay {
	return &Overlay{
		ExternalPressure:                make([]float64, h*w),
		H:                               h,
		W:                               w,
		TectonicElevationBiasMultiplier: 1.0,
		TectonicVelocityBiasMultiplier:  1.0,
	}
}

func (o *Overlay) idx(x, y int) int { return y*o.W + x }

// Bridge applies pressure descriptors onto an environment tensor and
// produces the auxiliary Overlay. It is stateless across turns: calling
// Apply with an empty descriptor list is the identity on env (spec.md §8).
type Bridge struct{}

// NewBridge constructs a stateless pressure bridge.
func NewBridge() *Bridge { return &Bridge{} }

// Apply mutates env in place (adding the channel deltas spec.md §6
// describes) and returns the auxiliary Overlay consumed by the tectonic
// subsystem and the mortality kernel's external-pressure term.
func (b *Bridge) Apply(env *tensorstate.Tensor3, descriptors []Descriptor) (*Overlay, error) {
	overlay := NewOverlay(env.H, env.W)
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		intensity := float64(d.Intensity)
		switch d.Kind {
		case KindTemperature:
			addChannel(env, tensorstate.EnvTemperature, intensity, d.Extent)
		case KindDrought:
			addChannel(env, tensorstate.EnvHumidity, -intensity*0.1, d.Extent)
		case KindHumidity:
			addChannel(env, tensorstate.EnvHumidity, intensity*0.1, d.Extent)
		case KindRadiation:
			addOverlay(overlay, intensity*0.1, d.Extent)
		case KindPredation:
			addOverlay(overlay, intensity*0.1, d.Extent)
		case KindVolcanicEruption:
			addOverlay(overlay, intensity*0.2, d.Extent)
		case KindOrogeny:
			overlay.TectonicElevationBiasMultiplier *= 1 + 0.1*intensity
		case KindEarthquakePeriod:
			overlay.TectonicVelocityBiasMultiplier *= 1 + 0.02*intensity
		}
	}
	return overlay, nil
}

func addChannel(env *tensorstate.Tensor3, channel int, delta float64, extent *Extent) {
	for y := 0; y < env.H; y++ {
		for x := 0; x < env.W; x++ {
			if !extent.Contains(x, y) {
				continue
			}
			env.Set(channel, y, x, env.At(channel, y, x)+delta)
		}
	}
	if channel == tensorstate.EnvHumidity {
		clampChannel(env, channel, 0, 1)
	}
}

func clampChannel(env *tensorstate.Tensor3, channel int, lo, hi float64) {
	for y := 0; y < env.H; y++ {
		for x := 0; x < env.W; x++ {
			v := env.At(channel, y, x)
			if v < lo {
				v = lo
			} else if v > hi {
				v = hi
			}
			env.Set(channel, y, x, v)
		}
	}
}

func addOverlay(o *Overlay, delta float64, extent *Extent) {
	for y := 0; y < o.H; y++ {
		for x := 0; x < o.W; x++ {
			if !extent.Contains(x, y) {
				continue
			}
			o.ExternalPressure[o.idx(x, y)] += delta
		}
	}
}
