package standings

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	computed    *prometheus.CounterVec
	cache       *prometheus.CounterVec
	unsupported prometheus.Counter
	duration    prometheus.Histogram
}

// NewMetrics registers the standings collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		computed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "c2c",
			Name:      "standings_computed_total",
			Help:      "Standings tables computed by the scoring engine.",
		}, []string{"format", "mode"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "c2c",
			Name:      "standings_cache_total",
			Help:      "Standings cache lookups by result.",
		}, []string{"result"}),
		unsupported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "c2c",
			Name:      "standings_unsupported_format_total",
			Help:      "Standings requests for tournaments the engine cannot score.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "c2c",
			Name:      "standings_compute_seconds",
			Help:      "Time spent in the scoring engine.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	reg.MustRegister(m.computed, m.cache, m.unsupported, m.duration)
	return m
}
