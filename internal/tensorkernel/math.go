package tensorkernel

import (
	"math"

	"github.com/GoCodeAlone/evosim/internal/tensorstate"
)

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// computeMortality implements spec.md §4.1 stage 1 for every (s,y,x) cell.
// Shared by every backend so that "numerically equivalent within 1e-4" is
// exact rather than approximate.
func computeMortality(in StageInput) MortalityOutput {
	st := in.State
	S, H, W := st.S(), st.H(), st.W()
	out := tensorstate.NewTensor3(S, H, W)
	deaths := make([]float64, S)
	survivors := make([]float64, S)

	era := in.Balance.EraScaling.ForEra(in.Era)
	w := in.Balance.MortalityWeights

	// Precompute total population per cell across species for
	// intraspecific/resource terms.
	totalPerCell := make([]float64, H*W)
	for s := 0; s < S; s++ {
		plane := st.Pop.Channel(s)
		for i, v := range plane {
			totalPerCell[i] += v
		}
	}

	for s := 0; s < S; s++ {
		tempPref := st.SpeciesParams.At(s, tensorstate.ParamTemperaturePref)
		humidityPref := st.SpeciesParams.At(s, tensorstate.ParamHumidityPref)
		tolerance := st.SpeciesParams.At(s, tensorstate.ParamToleranceWidth)
		if tolerance <= 0 {
			tolerance = 1
		}
		trophic := 0.0
		if s < len(in.Runtime.TrophicLevel) {
			trophic = in.Runtime.TrophicLevel[s]
		}
		preyIdx := []int{}
		if s < len(in.Runtime.PreyIndex) {
			preyIdx = in.Runtime.PreyIndex[s]
		}

		own := st.Pop.Channel(s)
		for y := 0; y < H; y++ {
			for x := 0; x < W; x++ {
				i := y*W + x
				ownPop := own[i]

				envTemp := st.Env.At(tensorstate.EnvTemperature, y, x)
				envHumidity := st.Env.At(tensorstate.EnvHumidity, y, x)
				resources := st.Env.At(tensorstate.EnvResources, y, x)

				tempDev := math.Tanh(math.Abs(envTemp-tempPref*50) / tolerance)
				humidityDev := clip(math.Abs(envHumidity-humidityPref)*0.5, 0, 0.4)

				otherPop := totalPerCell[i] - ownPop
				intraComp := clip((otherPop/(ownPop+100))*0.1, 0, 0.3)

				capacity := resources * in.Balance.CapacityMultiplier
				resourceSat := 0.0
				if capacity > 0 {
					resourceSat = clip((totalPerCell[i]/capacity-0.5)*0.4, 0, 0.4)
				}

				trophicScarcity := 0.0
				if trophic >= 2.0 && len(preyIdx) > 0 {
					preyDensity := 0.0
					for _, p := range preyIdx {
						preyDensity += st.Pop.At(p, y, x)
					}
					normalized := clip(preyDensity/(capacity+1), 0, 1)
					trophicScarcity = 1 - normalized
				}

				external := 0.0
				if in.Overlay != nil {
					external = clip(in.Overlay.ExternalPressure[i], 0, 0.5)
				}

				m := w.BaseMortality +
					w.Temperature*tempDev +
					w.Competition*(intraComp) +
					w.Resource*resourceSat +
					w.Trophic*trophicScarcity +
					w.External*external +
					humidityDev*0.1

				m *= era
				m = clip(m, 0.01, 0.95)
				out.Set(s, y, x, m)

				survived := ownPop * (1 - m)
				deaths[s] += ownPop - survived
				survivors[s] += survived
				own[i] = survived
			}
		}
	}
	return MortalityOutput{MortalityRate: out, DeathCounts: deaths, SurvivorCounts: survivors}
}

// computeSuitability returns a (S,H,W) field in [0,1] from temperature,
// humidity, resource and habitat matching (used by both dispersal and
// reproduction per spec.md §4.1 steps 2 and 4).
func computeSuitability(in StageInput) *tensorstate.Tensor3 {
	st := in.State
	S, H, W := st.S(), st.H(), st.W()
	out := tensorstate.NewTensor3(S, H, W)
	for s := 0; s < S; s++ {
		tempPref := st.SpeciesParams.At(s, tensorstate.ParamTemperaturePref)
		humidityPref := st.SpeciesParams.At(s, tensorstate.ParamHumidityPref)
		tolerance := st.SpeciesParams.At(s, tensorstate.ParamToleranceWidth)
		if tolerance <= 0 {
			tolerance = 1
		}
		terrAff := st.SpeciesParams.At(s, tensorstate.ParamHabitatAffinityTerrestrial)
		aquaAff := st.SpeciesParams.At(s, tensorstate.ParamHabitatAffinityAquatic)
		amphAff := st.SpeciesParams.At(s, tensorstate.ParamHabitatAffinityAmphibious)

		for y := 0; y < H; y++ {
			for x := 0; x < W; x++ {
				envTemp := st.Env.At(tensorstate.EnvTemperature, y, x)
				envHumidity := st.Env.At(tensorstate.EnvHumidity, y, x)
				resources := st.Env.At(tensorstate.EnvResources, y, x)

				tempMatch := 1 - clip(math.Abs(envTemp-tempPref*50)/(tolerance*2), 0, 1)
				humidityMatch := 1 - clip(math.Abs(envHumidity-humidityPref), 0, 1)
				resourceMatch := clip(resources, 0, 1)

				habitatMatch := terrAff*st.Env.At(tensorstate.EnvHabitatTerrestrial, y, x) +
					aquaAff*st.Env.At(tensorstate.EnvHabitatAquatic, y, x) +
					amphAff*st.Env.At(tensorstate.EnvHabitatAmphibious, y, x)
				habitatMatch = clip(habitatMatch, 0, 1)

				suit := (tempMatch + humidityMatch + resourceMatch + habitatMatch) / 4.0
				out.Set(s, y, x, clip(suit, 0, 1))
			}
		}
	}
	return out
}

// computeDispersal implements spec.md §4.1 stage 2: 4-neighbor diffusion at
// rate r, then multiply by (suitability+0.1) and renormalize per species so
// pre/post totals match exactly. This module resolves the Open Question in
// spec.md §9 by treating the (suitability+0.1) reweight as intentional
// effective-habitat compression, strictly renormalized afterward (see
// SPEC_FULL.md §4).
func computeDispersal(in StageInput) DispersalOutput {
	suitability := computeSuitability(in)
	st := in.State
	S, H, W := st.S(), st.H(), st.W()
	r := in.Balance.DispersalRate

	for s := 0; s < S; s++ {
		before := st.Pop.Channel(s)
		total := 0.0
		for _, v := range before {
			total += v
		}
		if total <= 0 {
			continue
		}

		diffused := make([]float64, H*W)
		for y := 0; y < H; y++ {
			for x := 0; x < W; x++ {
				i := y*W + x
				center := before[i] * (1 - r)
				diffused[i] += center
				neighborShare := before[i] * r / 4
				for _, n := range worldtypesNeighbors4(x, y, W, H) {
					diffused[n[1]*W+n[0]] += neighborShare
				}
			}
		}

		weighted := make([]float64, H*W)
		weightedTotal := 0.0
		for i := range diffused {
			suit := suitability.Channel(s)[i]
			weighted[i] = diffused[i] * (suit + 0.1)
			weightedTotal += weighted[i]
		}
		if weightedTotal <= 0 {
			continue
		}
		scale := total / weightedTotal
		plane := st.Pop.Channel(s)
		for i := range plane {
			plane[i] = weighted[i] * scale
		}
	}
	return DispersalOutput{Suitability: suitability}
}

// worldtypesNeighbors4 returns the 4-neighbor (von Neumann) set used by the
// dispersal kernel's diffusion, wrapping X and clamping Y per spec.md §3.
func worldtypesNeighbors4(x, y, w, h int) [4][2]int {
	wrap := func(v, m int) int { return ((v % m) + m) % m }
	ny1, ny2 := y-1, y+1
	if ny1 < 0 {
		ny1 = 0
	}
	if ny2 >= h {
		ny2 = h - 1
	}
	return [4][2]int{
		{wrap(x-1, w), y},
		{wrap(x+1, w), y},
		{x, ny1},
		{x, ny2},
	}
}

// computeMigration implements spec.md §4.1 stage 3.
func computeMigration(in StageInput, dispersal DispersalOutput) MigrationOutput {
	st := in.State
	S, H, W := st.S(), st.H(), st.W()
	migrated := []int{}

	for s := 0; s < S; s++ {
		if s < len(in.Runtime.Cooldown) && in.Runtime.Cooldown[s] {
			continue
		}
		plane := st.Pop.Channel(s)
		totalBefore := 0.0
		for _, v := range plane {
			totalBefore += v
		}
		if totalBefore <= 0 {
			continue
		}

		trophic := 0.0
		if s < len(in.Runtime.TrophicLevel) {
			trophic = in.Runtime.TrophicLevel[s]
		}
		preyIdx := []int{}
		if s < len(in.Runtime.PreyIndex) {
			preyIdx = in.Runtime.PreyIndex[s]
		}

		rate := in.Balance.BaseMigrationRate
		// Death-rate pressure derived from mean suitability shortfall as a
		// proxy: low mean suitability implies the mortality stage likely
		// ran hot this turn for this species.
		meanSuit := 0.0
		suit := dispersal.Suitability.Channel(s)
		for _, v := range suit {
			meanSuit += v
		}
		meanSuit /= float64(len(suit))
		if 1-meanSuit > in.Balance.MigrationPressureThreshold {
			rate *= 2
		}
		rate *= in.Balance.EraScaling.ForEra(in.Era)

		scores := make([]float64, H*W)
		centroidX, centroidY := centroid(plane, W, H)
		maxScore := 0.0
		for y := 0; y < H; y++ {
			for x := 0; x < W; x++ {
				i := y*W + x
				if plane[i] > 0 {
					continue // already occupied: score zero
				}
				dist := math.Hypot(float64(x)-centroidX, float64(y)-centroidY)
				distWeight := 1 / (1 + dist)
				score := suit[i] * distWeight

				if trophic >= 2.0 && len(preyIdx) > 0 {
					preyDensity := 0.0
					for _, p := range preyIdx {
						preyDensity += st.Pop.At(p, y, x)
					}
					preyScore := clip(preyDensity/100, 0, 1)
					score = 0.7*score + 0.3*preyScore*suit[i]
				}
				scores[i] = score
				if score > maxScore {
					maxScore = score
				}
			}
		}

		withdrawTotal := rate * totalBefore
		if withdrawTotal <= 0 || maxScore <= 0 {
			continue
		}
		threshold := maxScore * 0.1
		scoreSum := 0.0
		for _, sc := range scores {
			if sc > threshold {
				scoreSum += sc
			}
		}
		if scoreSum <= 0 {
			continue
		}

		withdrawn := make([]float64, H*W)
		for i, v := range plane {
			if v <= 0 {
				continue
			}
			share := v / totalBefore * withdrawTotal
			withdrawn[i] = share
		}
		for i := range plane {
			plane[i] -= withdrawn[i]
		}
		for i, sc := range scores {
			if sc > threshold {
				plane[i] += withdrawTotal * (sc / scoreSum)
			}
		}

		if withdrawTotal/totalBefore > 0.05 {
			migrated = append(migrated, s)
		}
	}
	return MigrationOutput{MigratedSpecies: migrated}
}

func centroid(plane []float64, w, h int) (float64, float64) {
	total, cx, cy := 0.0, 0.0, 0.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := plane[y*w+x]
			total += v
			cx += v * float64(x)
			cy += v * float64(y)
		}
	}
	if total <= 0 {
		return float64(w) / 2, float64(h) / 2
	}
	return cx / total, cy / total
}

// computeReproduction implements spec.md §4.1 stage 4.
func computeReproduction(in StageInput, dispersal DispersalOutput) {
	st := in.State
	S, H, W := st.S(), st.H(), st.W()
	for s := 0; s < S; s++ {
		birthRate := st.SpeciesParams.At(s, tensorstate.ParamReproductiveRate)
		if birthRate <= 0 {
			birthRate = in.Balance.BaseBirthRate
		}
		plane := st.Pop.Channel(s)
		suit := dispersal.Suitability.Channel(s)
		totalPerCell := make([]float64, H*W)
		for ss := 0; ss < S; ss++ {
			p := st.Pop.Channel(ss)
			for i, v := range p {
				totalPerCell[i] += v
			}
		}
		for i := 0; i < H*W; i++ {
			pop := plane[i]
			if pop <= 0 {
				continue
			}
			y, x := i/W, i%W
			resources := st.Env.At(tensorstate.EnvResources, y, x)
			capacity := resources * in.Balance.CapacityMultiplier
			crowding := 1.0
			if capacity > 0 {
				crowding = clip(totalPerCell[i]/capacity, 0, 1)
			}
			births := pop * birthRate * suit[i] * (1 - crowding)
			if births > 0 {
				plane[i] += births
			}
		}
	}
}

// computeCompetition implements spec.md §4.1 stage 5.
func computeCompetition(in StageInput) {
	st := in.State
	S, H, W := st.S(), st.H(), st.W()
	strength := in.Balance.CompetitionStrength * in.Balance.EraScaling.ForEra(in.Era)

	totalPerCell := make([]float64, H*W)
	for s := 0; s < S; s++ {
		p := st.Pop.Channel(s)
		for i, v := range p {
			totalPerCell[i] += v
		}
	}

	for s := 0; s < S; s++ {
		plane := st.Pop.Channel(s)
		for i, myPop := range plane {
			if myPop <= 0 {
				continue
			}
			competitor := totalPerCell[i] - myPop
			fitness := myPop
			if fitness <= 0 {
				fitness = 1
			}
			loss := math.Min(0.5, competitor*strength/fitness)
			plane[i] = myPop * (1 - loss)
		}
	}
}
