package speciation

import "sort"

// TradeoffConfig carries the competition map and default pool the
// calculator draws compensating penalties from (spec.md §4.4
// "Auto-tradeoff calculator").
type TradeoffConfig struct {
	// EnergyCost maps trait name to its per-unit energy cost.
	EnergyCost map[string]float64
	// CompetitionMap maps a gained trait to the traits it should compete
	// against first when penalties are assigned.
	CompetitionMap map[string][]string
	// DefaultPool is drawn from once the competition map is exhausted.
	DefaultPool []string
	// TradeoffRatio in [0.5, 1.0] governs total penalty vs total gain cost.
	TradeoffRatio float64
	// MinPenalty: penalties below this are dropped (spec.md §4.4).
	MinPenalty float64
}

// TradeoffResult is the computed penalty set plus bookkeeping needed by the
// property test in spec.md §8.
type TradeoffResult struct {
	Penalties    map[string]float64
	TotalGainCost float64
	TotalPenaltyCost float64
}

// Compute implements spec.md §4.4's auto-tradeoff calculator: given
// proposed gains, a parent's current trait values and an energy-cost
// table, produce compensating penalties so that the weighted total penalty
// approximates tradeoff_ratio * total_gain_cost, drawing first from the
// competition map of the gain traits, then the default pool. Each single
// penalty is capped at min(parent_value*0.3, 2.0); penalties below
// MinPenalty are dropped.
func Compute(gains map[string]float64, parentTraits map[string]float64, cfg TradeoffConfig) TradeoffResult {
	totalGainCost := 0.0
	gainNames := make([]string, 0, len(gains))
	for name, amount := range gains {
		cost := cfg.EnergyCost[name]
		totalGainCost += amount * cost
		gainNames = append(gainNames, name)
	}
	sort.Strings(gainNames)

	targetPenalty := cfg.TradeoffRatio * totalGainCost

	candidates := candidateOrder(gainNames, cfg)

	penalties := make(map[string]float64)
	remaining := targetPenalty
	for _, trait := range candidates {
		if remaining <= 1e-9 {
			break
		}
		if _, isGain := gains[trait]; isGain {
			continue // never penalize the trait that was just gained
		}
		parentVal := parentTraits[trait]
		cap := parentVal * 0.3
		if cap > 2.0 {
			cap = 2.0
		}
		if cap <= 0 {
			continue
		}
		cost := cfg.EnergyCost[trait]
		if cost <= 0 {
			cost = 1
		}
		wantedUnits := remaining / cost
		units := wantedUnits
		if units > cap {
			units = cap
		}
		if units < cfg.MinPenalty {
			continue
		}
		penalties[trait] += units
		remaining -= units * cost
	}

	totalPenaltyCost := 0.0
	for trait, units := range penalties {
		totalPenaltyCost += units * costOf(cfg, trait)
	}

	return TradeoffResult{
		Penalties:        penalties,
		TotalGainCost:    totalGainCost,
		TotalPenaltyCost: totalPenaltyCost,
	}
}

func costOf(cfg TradeoffConfig, trait string) float64 {
	if c := cfg.EnergyCost[trait]; c > 0 {
		return c
	}
	return 1
}

// candidateOrder builds the penalty search order: each gained trait's
// competition-map entries first (in gain order, de-duplicated), then the
// default pool.
func candidateOrder(gainNames []string, cfg TradeoffConfig) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range gainNames {
		for _, c := range cfg.CompetitionMap[g] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	for _, c := range cfg.DefaultPool {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
