package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AdmissionsTotal         *prometheus.CounterVec
	AdmissionDuration       prometheus.Histogram
	RuleRejectionsTotal     *prometheus.CounterVec
	DegradedTotal           *prometheus.CounterVec
	OutcomesTotal           *prometheus.CounterVec
	QuotaConsumeTotal       *prometheus.CounterVec
	AbuseScore              prometheus.Histogram
	BlocksCreatedTotal      *prometheus.CounterVec
	ActiveBlocks            prometheus.Gauge
	CleanupRunsTotal        *prometheus.CounterVec
	CleanupRemovedTotal     *prometheus.CounterVec
	CleanupDurationSeconds  prometheus.Histogram
	RulesReloadsTotal       *prometheus.CounterVec
	BlockStoreBreakerStates *prometheus.CounterVec
}

// New registers the deletion guard metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AdmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_admissions_total",
			Help: "Admission decisions by result and rejection reason",
		}, []string{"result", "reason"}),
		AdmissionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "deletionguard_admission_duration_seconds",
			Help:    "Time spent deciding an admission",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		RuleRejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_rule_rejections_total",
			Help: "Rejections by the rule or quota period that fired",
		}, []string{"rule"}),
		DegradedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_degraded_total",
			Help: "Admission stages skipped because of an internal error",
		}, []string{"stage"}),
		OutcomesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_outcomes_total",
			Help: "Recorded deletion outcomes",
		}, []string{"outcome"}),
		QuotaConsumeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_quota_consume_total",
			Help: "Quota consume calls by result",
		}, []string{"result"}),
		AbuseScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "deletionguard_abuse_score",
			Help:    "Distribution of abuse scores computed at admission",
			Buckets: []float64{0, 20, 40, 60, 80, 100},
		}),
		BlocksCreatedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_blocks_created_total",
			Help: "Blocks created by source",
		}, []string{"source"}),
		ActiveBlocks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "deletionguard_active_blocks",
			Help: "Active blocks observed at the last cleanup",
		}),
		CleanupRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_cleanup_runs_total",
			Help: "Total number of cleanup runs",
		}, []string{"status"}),
		CleanupRemovedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_cleanup_removed_total",
			Help: "Entries removed by the cleanup worker",
		}, []string{"kind"}),
		CleanupDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "deletionguard_cleanup_duration_seconds",
			Help: "Duration of cleanup runs in seconds",
		}),
		RulesReloadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_rules_reloads_total",
			Help: "Rule set replacements by source and status",
		}, []string{"source", "status"}),
		BlockStoreBreakerStates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deletionguard_block_store_breaker_transitions_total",
			Help: "Circuit breaker transitions for the shared block store",
		}, []string{"to"}),
	}
}

func (m *Metrics) ObserveAdmission(allowed bool, reason string, d time.Duration) {
	result := "allowed"
	if !allowed {
		result = "rejected"
	}
	m.AdmissionsTotal.WithLabelValues(result, reason).Inc()
	m.AdmissionDuration.Observe(d.Seconds())
}

func (m *Metrics) IncrementRuleRejection(rule string) {
	m.RuleRejectionsTotal.WithLabelValues(rule).Inc()
}

func (m *Metrics) IncrementDegraded(stage string) {
	m.DegradedTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) IncrementOutcome(outcome string) {
	m.OutcomesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementQuotaConsume(result string) {
	m.QuotaConsumeTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAbuseScore(score int) {
	m.AbuseScore.Observe(float64(score))
}

func (m *Metrics) IncrementBlocksCreated(source string) {
	m.BlocksCreatedTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) SetActiveBlocks(n int) {
	m.ActiveBlocks.Set(float64(n))
}

func (m *Metrics) IncrementCleanupRuns(status string) {
	m.CleanupRunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) AddCleanupRemoved(kind string, n int) {
	m.CleanupRemovedTotal.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) ObserveCleanupDuration(d time.Duration) {
	m.CleanupDurationSeconds.Observe(d.Seconds())
}

func (m *Metrics) IncrementRulesReload(source, status string) {
	m.RulesReloadsTotal.WithLabelValues(source, status).Inc()
}

func (m *Metrics) IncrementBreakerTransition(to string) {
	m.BlockStoreBreakerStates.WithLabelValues(to).Inc()
}
