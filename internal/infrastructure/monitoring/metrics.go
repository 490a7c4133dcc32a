package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turtacn/compliance/internal/domain/service"
)

// Metrics manages the Prometheus metrics.
// Metrics 管理 Prometheus 指标。
type Metrics struct {
	ScoreCalculations  *prometheus.CounterVec
	ScoreLatency       prometheus.Histogram
	TenantScore        *prometheus.GaugeVec
	RuleEvaluations    *prometheus.CounterVec
	AlertsRaised       *prometheus.CounterVec
	AlertsDeduplicated prometheus.Counter
	AuditsCompleted    prometheus.Counter
	SweepDuration      *prometheus.HistogramVec
	SweepFailures      *prometheus.CounterVec
	SweepTenants       *prometheus.GaugeVec

	HTTPRequests       *prometheus.CounterVec
	HTTPLatency        *prometheus.HistogramVec
	HTTPActiveRequests prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates the metrics on reg.
// NewMetricsWithRegistry 在指定的注册表上创建指标，便于测试隔离。
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ScoreCalculations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_score_calculations_total",
				Help: "Total number of compliance score calculations.",
			},
			[]string{"result"},
		),
		ScoreLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "compliance_score_calculation_seconds",
				Help:    "Latency of compliance score calculations.",
				Buckets: prometheus.DefBuckets,
			},
		),
		TenantScore: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "compliance_tenant_score",
				Help: "Most recent overall compliance score per tenant.",
			},
			[]string{"tenant_id"},
		),
		RuleEvaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_rule_evaluations_total",
				Help: "Total number of rule evaluation passes.",
			},
			[]string{"result"},
		),
		AlertsRaised: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_alerts_raised_total",
				Help: "Total number of regulatory alerts persisted.",
			},
			[]string{"severity", "source"},
		),
		AlertsDeduplicated: f.NewCounter(
			prometheus.CounterOpts{
				Name: "compliance_alerts_deduplicated_total",
				Help: "Triggered alerts skipped because an identical one is still open.",
			},
		),
		AuditsCompleted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "compliance_audits_completed_total",
				Help: "Total number of audits completed.",
			},
		),
		SweepDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "compliance_sweep_duration_seconds",
				Help:    "Duration of scheduled sweeps over all tenants.",
				Buckets: []float64{1, 5, 15, 60, 300, 900},
			},
			[]string{"job"},
		),
		SweepFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_sweep_tenant_failures_total",
				Help: "Tenants that failed during a scheduled sweep.",
			},
			[]string{"job"},
		),
		SweepTenants: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "compliance_sweep_tenants",
				Help: "Tenants processed by the last sweep.",
			},
			[]string{"job"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "compliance_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPActiveRequests: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "compliance_http_active_requests",
				Help: "In-flight HTTP requests.",
			},
		),
	}
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordScoreCalculation implements service.Metrics.
func (m *Metrics) RecordScoreCalculation(tenantID string, score float64, success bool, duration time.Duration) {
	m.ScoreCalculations.WithLabelValues(resultLabel(success)).Inc()
	m.ScoreLatency.Observe(duration.Seconds())
	if success {
		m.TenantScore.WithLabelValues(tenantID).Set(score)
	}
}

func (m *Metrics) RecordRuleEvaluation(success bool) {
	m.RuleEvaluations.WithLabelValues(resultLabel(success)).Inc()
}

func (m *Metrics) RecordAlertRaised(severity, source string) {
	m.AlertsRaised.WithLabelValues(severity, source).Inc()
}

func (m *Metrics) RecordAlertDeduplicated() {
	m.AlertsDeduplicated.Inc()
}

func (m *Metrics) RecordAuditCompleted() {
	m.AuditsCompleted.Inc()
}

func (m *Metrics) RecordSweep(job string, tenants, failures int, duration time.Duration) {
	m.SweepDuration.WithLabelValues(job).Observe(duration.Seconds())
	m.SweepTenants.WithLabelValues(job).Set(float64(tenants))
	if failures > 0 {
		m.SweepFailures.WithLabelValues(job).Add(float64(failures))
	}
}

// RecordHTTPRequest records one finished HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

var _ service.Metrics = (*Metrics)(nil)

// TrackInFlight counts a request as active until the returned func is called.
func (m *Metrics) TrackInFlight() func() {
	m.HTTPActiveRequests.Inc()
	return m.HTTPActiveRequests.Dec
}
