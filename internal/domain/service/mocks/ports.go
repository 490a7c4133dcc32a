package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/compliance/internal/domain/models"
)

type MockScoreCache struct {
	mock.Mock
}

func (m *MockScoreCache) GetLatest(ctx context.Context, tenantID string) (*models.ComplianceScore, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ComplianceScore), args.Error(1)
}

func (m *MockScoreCache) SetLatest(ctx context.Context, score *models.ComplianceScore) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *MockScoreCache) GetThresholds(ctx context.Context) (*models.RatingThresholds, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RatingThresholds), args.Error(1)
}

func (m *MockScoreCache) SetThresholds(ctx context.Context, t models.RatingThresholds, updatedAt time.Time) error {
	args := m.Called(ctx, t, updatedAt)
	return args.Error(0)
}

func (m *MockScoreCache) InvalidateThresholds(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *models.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordScoreCalculation(tenantID string, score float64, success bool, duration time.Duration) {
	m.Called(tenantID, score, success, duration)
}

func (m *MockMetrics) RecordRuleEvaluation(success bool) {
	m.Called(success)
}

func (m *MockMetrics) RecordAlertRaised(severity, source string) {
	m.Called(severity, source)
}

func (m *MockMetrics) RecordAlertDeduplicated() {
	m.Called()
}

func (m *MockMetrics) RecordAuditCompleted() {
	m.Called()
}

func (m *MockMetrics) RecordSweep(job string, tenants, failures int, duration time.Duration) {
	m.Called(job, tenants, failures, duration)
}
