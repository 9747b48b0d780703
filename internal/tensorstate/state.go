// Package tensorstate owns the dense tensors the engine operates on: the
// multi-channel environment tensor, the per-species population tensor, and
// the species-parameter matrix, plus the bijection between lineage codes and
// tensor rows. Grounded on GoCodeAlone-EvoSim's World (world.go) for the
// grid/biome concepts, generalized from a slice-of-entities model to a
// dense-array model per spec.md §3.
package tensorstate

import "fmt"

// Standard environment channel indices. Additional pressure-overlay
// channels are appended after EnvChannelCount.
const (
	EnvElevation = iota
	EnvTemperature
	EnvHumidity
	EnvResources
	EnvHabitatTerrestrial
	EnvHabitatAquatic
	EnvHabitatAmphibious
	EnvChannelCount
)

// Standard species-parameter feature indices (the F dimension of
// species_params).
const (
	ParamTemperaturePref = iota
	ParamHumidityPref
	ParamHabitatAffinityTerrestrial
	ParamHabitatAffinityAquatic
	ParamHabitatAffinityAmphibious
	ParamToleranceWidth
	ParamDispersalAbility
	ParamMobility
	ParamReproductiveRate
	ParamFeatureCount
)

// Tensor3 is a dense (C,H,W) or (S,H,W) row-major f32-equivalent tensor
// backed by float64 for precision headroom; kernels downcast where a
// backend requires f32.
type Tensor3 struct {
	C, H, W int
	Data    []float64 // length C*H*W, index: ((c*H)+y)*W+x
}

// NewTensor3 allocates a zeroed tensor.
func NewTensor3(c, h, w int) *Tensor3 {
	return &Tensor3{C: c, H: h, W: w, Data: make([]float64, c*h*w)}
}

// At returns the value at channel c, row y, col x.
func (t *Tensor3) At(c, y, x int) float64 {
	return t.Data[((c*t.H)+y)*t.W+x]
}

// Set writes the value at channel c, row y, col x.
func (t *Tensor3) Set(c, y, x int, v float64) {
	t.Data[((c*t.H)+y)*t.W+x] = v
}

// Channel returns a view (no copy) over one channel's H*W plane.
func (t *Tensor3) Channel(c int) []float64 {
	start := c * t.H * t.W
	return t.Data[start : start+t.H*t.W]
}

// Clone deep-copies the tensor.
func (t *Tensor3) Clone() *Tensor3 {
	out := &Tensor3{C: t.C, H: t.H, W: t.W, Data: make([]float64, len(t.Data))}
	copy(out.Data, t.Data)
	return out
}

// Matrix2 is a dense (S,F) row-major matrix, used for species_params.
type Matrix2 struct {
	Rows, Cols int
	Data       []float64
}

// NewMatrix2 allocates a zeroed matrix.
func NewMatrix2(rows, cols int) *Matrix2 {
	return &Matrix2{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

func (m *Matrix2) At(r, c int) float64    { return m.Data[r*m.Cols+c] }
func (m *Matrix2) Set(r, c int, v float64) { m.Data[r*m.Cols+c] = v }

func (m *Matrix2) Clone() *Matrix2 {
	out := &Matrix2{Rows: m.Rows, Cols: m.Cols, Data: make([]float64, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

// SpeciesMap is the bijection from lineage code to tensor row index.
type SpeciesMap struct {
	codeToIndex map[string]int
	indexToCode []string
}

// NewSpeciesMap builds an empty map.
func NewSpeciesMap() *SpeciesMap {
	return &SpeciesMap{codeToIndex: make(map[string]int)}
}

// Add assigns the next free row index to code and returns it. It is an
// error to add a code twice.
func (m *SpeciesMap) Add(code string) (int, error) {
	if _, ok := m.codeToIndex[code]; ok {
		return 0, fmt.Errorf("tensorstate: lineage code %q already mapped", code)
	}
	idx := len(m.indexToCode)
	m.codeToIndex[code] = idx
	m.indexToCode = append(m.indexToCode, code)
	return idx, nil
}

// Index returns the row index for a lineage code.
func (m *SpeciesMap) Index(code string) (int, bool) {
	idx, ok := m.codeToIndex[code]
	return idx, ok
}

// Code returns the lineage code for a row index.
func (m *SpeciesMap) Code(idx int) (string, bool) {
	if idx < 0 || idx >= len(m.indexToCode) {
		return "", false
	}
	return m.indexToCode[idx], true
}

// Len returns the number of mapped species (S).
func (m *SpeciesMap) Len() int { return len(m.indexToCode) }

// Codes returns all mapped lineage codes in row-index order.
func (m *SpeciesMap) Codes() []string {
	out := make([]string, len(m.indexToCode))
	copy(out, m.indexToCode)
	return out
}

// State bundles the tensors the engine requires to agree on shape: env
// (C,H,W), pop (S,H,W), species_params (S,F), and the species_map bijection.
type State struct {
	Env           *Tensor3
	Pop           *Tensor3
	SpeciesParams *Matrix2
	SpeciesMap    *SpeciesMap
}

// NewState allocates a state with world size (H,W), S species and C
// environment channels (which must be >= EnvChannelCount to leave room for
// the fixed channels before any pressure overlay is stacked on).
func NewState(h, w, s, envChannels int) *State {
	if envChannels < EnvChannelCount {
		envChannels = EnvChannelCount
	}
	return &State{
		Env:           NewTensor3(envChannels, h, w),
		Pop:           NewTensor3(s, h, w),
		SpeciesParams: NewMatrix2(s, ParamFeatureCount),
		SpeciesMap:    NewSpeciesMap(),
	}
}

// Validate enforces the "all three tensors agree on S" invariant from
// spec.md §3.
func (st *State) Validate() error {
	s := st.Pop.C
	if st.SpeciesParams.Rows != s {
		return fmt.Errorf("tensorstate: pop has S=%d but species_params has %d rows", s, st.SpeciesParams.Rows)
	}
	if st.SpeciesMap.Len() != s {
		return fmt.Errorf("tensorstate: pop has S=%d but species_map has %d entries", s, st.SpeciesMap.Len())
	}
	for _, v := range st.Pop.Data {
		if v < 0 {
			return fmt.Errorf("tensorstate: negative population encountered")
		}
	}
	return nil
}

// ZeroSpeciesRow zeroes a species' population row, used when a species'
// status transitions to extinct (spec.md §3 invariant).
func (st *State) ZeroSpeciesRow(s int) {
	plane := st.H() * st.W()
	start := s * plane
	for i := start; i < start+plane; i++ {
		st.Pop.Data[i] = 0
	}
}

func (st *State) H() int { return st.Pop.H }
func (st *State) W() int { return st.Pop.W }
func (st *State) S() int { return st.Pop.C }

// TotalPopulation sums a species' population across all cells.
func (st *State) TotalPopulation(s int) float64 {
	total := 0.0
	for _, v := range st.Pop.Channel(s) {
		total += v
	}
	return total
}

// TotalAllPopulations sums every species' population in every cell (the
// whole-state total behind the conservation property in spec.md §8).
func (st *State) TotalAllPopulations() float64 {
	total := 0.0
	for _, v := range st.Pop.Data {
		total += v
	}
	return total
}
