package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository/mocks"
	"github.com/turtacn/compliance/internal/domain/service"
	"github.com/turtacn/compliance/pkg/logger"
)

type collectorFixture struct {
	members *mocks.MockMemberSource
	bylaws  *mocks.MockBylawSource
	issues  *mocks.MockIssueSource
	alerts  *mocks.MockAlertRepository
	c       *service.MetricCollector
}

func newCollectorFixture(now time.Time) *collectorFixture {
	f := &collectorFixture{
		members: new(mocks.MockMemberSource),
		bylaws:  new(mocks.MockBylawSource),
		issues:  new(mocks.MockIssueSource),
		alerts:  new(mocks.MockAlertRepository),
	}
	f.c = service.NewMetricCollector(f.members, f.bylaws, f.issues, f.alerts,
		service.NewPlaceholderReportingScorer(85), logger.NewNoopLogger())
	f.c.SetClock(func() time.Time { return now })
	return f
}

func TestMetricCollector_ReferenceTenant(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	approved := now.AddDate(-1, 0, 0)
	f := newCollectorFixture(now)

	f.members.On("CountMembers", mock.Anything, "t1").Return(int64(10), nil)
	f.members.On("CountFullyVerified", mock.Anything, "t1").Return(int64(6), nil)
	f.bylaws.On("LatestReview", mock.Anything, "t1").Return(&models.BylawReview{
		Status: models.BylawStatusApproved, ApprovalDate: &approved,
	}, nil)
	f.issues.On("ListOpen", mock.Anything, "t1").Return([]*models.ComplianceIssue{
		{Severity: models.SeverityCritical, Status: models.IssueStatusOpen},
	}, nil)
	f.alerts.On("CountByTenant", mock.Anything, "t1").Return(int64(5), int64(3), nil)

	set := f.c.Collect(context.Background(), "t1")
	assert.InDelta(t, 78.25, set.Overall(), 1e-9)
	v, _ := set.Value(models.MetricAlertResolution)
	assert.Equal(t, 60.0, v)
}

func TestMetricCollector_SkipsVerifiedCountWithoutMembers(t *testing.T) {
	f := newCollectorFixture(time.Now())
	f.members.On("CountMembers", mock.Anything, "t1").Return(int64(0), nil)
	f.bylaws.On("LatestReview", mock.Anything, "t1").Return(nil, nil)
	f.issues.On("ListOpen", mock.Anything, "t1").Return(nil, nil)
	f.alerts.On("CountByTenant", mock.Anything, "t1").Return(int64(0), int64(0), nil)

	set := f.c.Collect(context.Background(), "t1")
	kyc, _ := set.Value(models.MetricKYCRate)
	bylaw, _ := set.Value(models.MetricBylawAdherence)
	assert.Equal(t, 100.0, kyc)
	assert.Equal(t, 50.0, bylaw)
	f.members.AssertNotCalled(t, "CountFullyVerified", mock.Anything, mock.Anything)
}

func TestMetricCollector_ConservativeFallbacks(t *testing.T) {
	f := newCollectorFixture(time.Now())
	boom := errors.New("connection refused")
	f.members.On("CountMembers", mock.Anything, "t1").Return(int64(0), boom)
	f.bylaws.On("LatestReview", mock.Anything, "t1").Return(nil, boom)
	f.issues.On("ListOpen", mock.Anything, "t1").Return(nil, boom)
	f.alerts.On("CountByTenant", mock.Anything, "t1").Return(int64(0), int64(0), boom)

	set := f.c.Collect(context.Background(), "t1")

	for metric, want := range map[models.Metric]float64{
		models.MetricKYCRate:             0,
		models.MetricFinancialTimeliness: 85,
		models.MetricBylawAdherence:      50,
		models.MetricIssueScore:          0,
		models.MetricAlertResolution:     0,
	} {
		got, _ := set.Value(metric)
		assert.Equal(t, want, got, metric)
	}
	assert.InDelta(t, 0.25*85+0.20*50, set.Overall(), 1e-9)

	assert.Equal(t, []models.Metric{
		models.MetricKYCRate,
		models.MetricBylawAdherence,
		models.MetricIssueScore,
		models.MetricAlertResolution,
	}, set.DegradedMetrics())
	assert.False(t, set.Degraded(models.MetricFinancialTimeliness))
	assert.True(t, set.Degraded(models.MetricComplianceScore))
}
