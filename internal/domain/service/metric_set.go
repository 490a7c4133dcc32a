package service

import (
	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/pkg/utils"
)

// MetricSet is one consistent computation of the five sub-scores and the overall score.
// Rule evaluation and score persistence both read from it, so a metric is selected by lookup
// rather than by switching over the metric enum in two places.
type MetricSet struct {
	values   map[models.Metric]float64
	degraded map[models.Metric]bool
}

// NewMetricSet clamps each sub-score to [0, 100] and derives the overall score with weights.
func NewMetricSet(w Weights, kyc, reporting, bylaw, issue, alert float64) *MetricSet {
	kyc = utils.Clamp(kyc, 0, 100)
	reporting = utils.Clamp(reporting, 0, 100)
	bylaw = utils.Clamp(bylaw, 0, 100)
	issue = utils.Clamp(issue, 0, 100)
	alert = utils.Clamp(alert, 0, 100)

	overall := w.KYC*kyc + w.Reporting*reporting + w.Bylaw*bylaw + w.Issue*issue + w.Alert*alert

	return &MetricSet{values: map[models.Metric]float64{
		models.MetricKYCRate:             kyc,
		models.MetricFinancialTimeliness: reporting,
		models.MetricBylawAdherence:      bylaw,
		models.MetricIssueScore:          issue,
		models.MetricAlertResolution:     alert,
		models.MetricComplianceScore:     utils.Clamp(overall, 0, 100),
	}}
}

// Value returns the value of metric and whether the metric is known.
func (s *MetricSet) Value(metric models.Metric) (float64, bool) {
	v, ok := s.values[metric]
	return v, ok
}

// MarkDegraded records that metric was computed from a fallback value.
func (s *MetricSet) MarkDegraded(metric models.Metric) {
	if s.degraded == nil {
		s.degraded = make(map[models.Metric]bool)
	}
	s.degraded[metric] = true
}

// Degraded reports whether metric rests on a fallback value. The overall score is degraded
// as soon as any sub-score is.
func (s *MetricSet) Degraded(metric models.Metric) bool {
	if metric == models.MetricComplianceScore {
		return len(s.degraded) > 0
	}
	return s.degraded[metric]
}

// DegradedMetrics lists the degraded sub-scores in AllMetrics order.
func (s *MetricSet) DegradedMetrics() []models.Metric {
	var out []models.Metric
	for _, m := range models.AllMetrics() {
		if m != models.MetricComplianceScore && s.degraded[m] {
			out = append(out, m)
		}
	}
	return out
}

func (s *MetricSet) Overall() float64 {
	return s.values[models.MetricComplianceScore]
}

// ToScore builds the snapshot persisted for this set.
func (s *MetricSet) ToScore(rating models.Rating) *models.ComplianceScore {
	return &models.ComplianceScore{
		OverallScore:            s.values[models.MetricComplianceScore],
		KYCScore:                s.values[models.MetricKYCRate],
		FinancialReportingScore: s.values[models.MetricFinancialTimeliness],
		BylawAdherenceScore:     s.values[models.MetricBylawAdherence],
		IssueScore:              s.values[models.MetricIssueScore],
		AlertResolutionScore:    s.values[models.MetricAlertResolution],
		Rating:                  rating,
	}
}
