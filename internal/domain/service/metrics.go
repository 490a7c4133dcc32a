package service

import "time"

// Metrics defines the interface for collecting business metrics.
// This abstraction allows the application layer to remain independent of Prometheus.
// Metrics 定义了收集业务指标的接口。
type Metrics interface {
	// RecordScoreCalculation records one score calculation and, on success, the tenant's new score.
	// RecordScoreCalculation 记录一次分数计算，成功时记录租户的新分数。
	RecordScoreCalculation(tenantID string, score float64, success bool, duration time.Duration)

	// RecordRuleEvaluation records one evaluation pass over a tenant.
	// RecordRuleEvaluation 记录对一个租户的一次规则评估。
	RecordRuleEvaluation(success bool)

	// RecordAlertRaised records a newly persisted alert.
	// RecordAlertRaised 记录新持久化的告警。
	RecordAlertRaised(severity, source string)

	// RecordAlertDeduplicated records a triggered alert skipped because one is already open.
	// RecordAlertDeduplicated 记录因已有未解决告警而跳过的告警。
	RecordAlertDeduplicated()

	// RecordAuditCompleted records an audit transitioning to COMPLETED.
	// RecordAuditCompleted 记录审计转为 COMPLETED。
	RecordAuditCompleted()

	// RecordSweep records a scheduled sweep over all tenants.
	// RecordSweep 记录一次对所有租户的定时扫描。
	RecordSweep(job string, tenants, failures int, duration time.Duration)
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) RecordScoreCalculation(string, float64, bool, time.Duration) {}
func (NopMetrics) RecordRuleEvaluation(bool)                                   {}
func (NopMetrics) RecordAlertRaised(string, string)                            {}
func (NopMetrics) RecordAlertDeduplicated()                                    {}
func (NopMetrics) RecordAuditCompleted()                                       {}
func (NopMetrics) RecordSweep(string, int, int, time.Duration)                 {}
