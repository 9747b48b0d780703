// Package metrics wraps the per-turn timing, cache and population
// counters the engine exposes, grounded on leemwalker-thousand-worlds'
// internal/metrics package (a thin struct of prometheus collectors plus a
// Register method).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every prometheus collector the engine updates.
type Metrics struct {
	StageDuration     *prometheus.HistogramVec
	TurnDuration      prometheus.Histogram
	TurnsProcessed    prometheus.Counter
	SpeciesAlive      prometheus.Gauge
	SpeciesExtinct    prometheus.Counter
	TectonicEvents    *prometheus.CounterVec
	FoodWebHealth     prometheus.Gauge
	NicheCacheHitRate prometheus.Gauge
	RouterRequests    *prometheus.CounterVec
	RouterLatency     *prometheus.HistogramVec
}

// New builds an unregistered Metrics set.
func New() *Metrics {
	return &Metrics{
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evosim_stage_duration_seconds",
			Help:    "Per-stage kernel execution time",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "evosim_turn_duration_seconds",
			Help:    "Total wall-clock time for one turn",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}),
		TurnsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evosim_turns_processed_total",
			Help: "Total turns advanced",
		}),
		SpeciesAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evosim_species_alive",
			Help: "Number of species currently alive",
		}),
		SpeciesExtinct: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evosim_species_extinct_total",
			Help: "Cumulative species extinctions",
		}),
		TectonicEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evosim_tectonic_events_total",
			Help: "Earthquake/volcanic/isolation/contact events emitted",
		}, []string{"kind"}),
		FoodWebHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evosim_food_web_health_score",
			Help: "Most recent food-web health score (0-1)",
		}),
		NicheCacheHitRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evosim_niche_cache_hit_rate",
			Help: "Fraction of niche-embedding lookups served from cache",
		}),
		RouterRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evosim_router_requests_total",
			Help: "Model-router dispatches by capability and outcome",
		}, []string{"capability", "outcome"}),
		RouterLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evosim_router_latency_seconds",
			Help:    "Model-router round-trip latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"capability"}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.StageDuration,
		m.TurnDuration,
		m.TurnsProcessed,
		m.SpeciesAlive,
		m.SpeciesExtinct,
		m.TectonicEvents,
		m.FoodWebHealth,
		m.NicheCacheHitRate,
		m.RouterRequests,
		m.RouterLatency,
	)
}
