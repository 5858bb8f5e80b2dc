package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	InvalidationsTotal  *prometheus.CounterVec
	KeyOutcomesTotal    *prometheus.CounterVec
	RetriesTotal        prometheus.Counter
	VerifyFailuresTotal prometheus.Counter
	InvalidationLatency prometheus.Histogram
}

// New registers the cache invalidation metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InvalidationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_cache_invalidations_total",
			Help: "Invalidation calls by result (success, partial, failed, cancelled)",
		}, []string{"result"}),
		KeyOutcomesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_cache_key_outcomes_total",
			Help: "Per-key invalidation outcomes by key kind",
		}, []string{"kind", "result"}),
		RetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "deletionguard_cache_invalidation_retries_total",
			Help: "Invalidation cycles run after the first",
		}),
		VerifyFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "deletionguard_cache_verify_still_cached_total",
			Help: "Keys found still cached after invalidation",
		}),
		InvalidationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "deletionguard_cache_invalidation_duration_seconds",
			Help:    "End-to-end invalidation duration including retries",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementInvalidation(result string) {
	m.InvalidationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementKeyOutcome(kind, result string) {
	m.KeyOutcomesTotal.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) IncrementRetry() {
	m.RetriesTotal.Inc()
}

func (m *Metrics) IncrementStillCached() {
	m.VerifyFailuresTotal.Inc()
}

func (m *Metrics) ObserveInvalidation(d time.Duration) {
	m.InvalidationLatency.Observe(d.Seconds())
}
