package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appservice "github.com/turtacn/compliance/internal/application/service"
	"github.com/turtacn/compliance/internal/domain/models"
	repomocks "github.com/turtacn/compliance/internal/domain/repository/mocks"
	"github.com/turtacn/compliance/internal/domain/service"
	svcmocks "github.com/turtacn/compliance/internal/domain/service/mocks"
	apperrors "github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

type mockedCompliance struct {
	scores     *repomocks.MockScoreRepository
	tenants    *repomocks.MockTenantRepository
	thresholds *repomocks.MockThresholdRepository
	members    *repomocks.MockMemberSource
	bylaws     *repomocks.MockBylawSource
	issues     *repomocks.MockIssueSource
	alerts     *repomocks.MockAlertRepository
	cache      *svcmocks.MockScoreCache
	events     *svcmocks.MockEventPublisher
	svc        appservice.ComplianceAppService
}

func newMockedCompliance() *mockedCompliance {
	m := &mockedCompliance{
		scores:     new(repomocks.MockScoreRepository),
		tenants:    new(repomocks.MockTenantRepository),
		thresholds: new(repomocks.MockThresholdRepository),
		members:    new(repomocks.MockMemberSource),
		bylaws:     new(repomocks.MockBylawSource),
		issues:     new(repomocks.MockIssueSource),
		alerts:     new(repomocks.MockAlertRepository),
		cache:      new(svcmocks.MockScoreCache),
		events:     new(svcmocks.MockEventPublisher),
	}
	log := logger.NewNoopLogger()
	collector := service.NewMetricCollector(m.members, m.bylaws, m.issues, m.alerts, service.NewPlaceholderReportingScorer(85), log)
	collector.SetClock(func() time.Time { return fixedNow })
	sources := appservice.MetricSources{Members: m.members, Bylaws: m.bylaws, Issues: m.issues, Alerts: m.alerts}
	thresholds := appservice.NewThresholdAppService(m.thresholds, m.cache, log)
	m.svc = appservice.NewComplianceAppService(m.scores, m.tenants, sources, collector, thresholds, m.cache, m.events, nil, log)
	return m
}

func (m *mockedCompliance) emptyTenantSources(tenantID string) {
	m.members.On("CountMembers", mock.Anything, tenantID).Return(int64(0), nil)
	m.bylaws.On("LatestReview", mock.Anything, tenantID).Return(nil, nil)
	m.issues.On("ListOpen", mock.Anything, tenantID).Return([]*models.ComplianceIssue{}, nil)
	m.alerts.On("CountByTenant", mock.Anything, tenantID).Return(int64(0), int64(0), nil)
}

func TestCalculateScore_SideEffectsAreBestEffort(t *testing.T) {
	m := newMockedCompliance()
	m.emptyTenantSources("t1")
	m.cache.On("GetThresholds", mock.Anything).Return(nil, errors.New("redis down"))
	m.thresholds.On("Latest", mock.Anything).Return(nil, nil)
	m.cache.On("SetThresholds", mock.Anything, models.DefaultRatingThresholds(), time.Time{}).Return(errors.New("redis down"))
	m.scores.On("Save", mock.Anything, mock.AnythingOfType("*models.ComplianceScore")).Return(nil)
	m.tenants.On("UpdateComplianceProjection", mock.Anything, "t1", mock.MatchedBy(func(p models.ComplianceProjection) bool {
		return p.Rating == models.RatingGood && p.ReviewedAt.Equal(fixedNow)
	})).Return(nil)
	m.cache.On("SetLatest", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	m.events.On("Publish", mock.Anything, mock.MatchedBy(func(ev *models.DomainEvent) bool {
		return ev.Type == "score.calculated" && ev.TenantID == "t1"
	})).Return(errors.New("kafka down"))

	score, err := m.svc.CalculateScore(context.Background(), "t1", "admin")
	require.NoError(t, err)
	assert.InDelta(t, 86.25, score.OverallScore, 1e-9)
	assert.Equal(t, models.RatingGood, score.Rating)

	m.scores.AssertExpectations(t)
	m.tenants.AssertExpectations(t)
	m.events.AssertExpectations(t)
}

func TestCalculateScore_StoreFailurePropagates(t *testing.T) {
	m := newMockedCompliance()
	m.emptyTenantSources("t1")
	m.cache.On("GetThresholds", mock.Anything).Return(&models.RatingThresholds{Excellent: 90, Good: 75, Fair: 60, Poor: 40}, nil)
	dbErr := apperrors.ErrDatabaseOperation("save score", errors.New("connection refused"))
	m.scores.On("Save", mock.Anything, mock.Anything).Return(dbErr)

	_, err := m.svc.CalculateScore(context.Background(), "t1", "admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	m.tenants.AssertNotCalled(t, "UpdateComplianceProjection", mock.Anything, mock.Anything, mock.Anything)
}

func TestCalculateScore_ThresholdStoreFailurePropagates(t *testing.T) {
	m := newMockedCompliance()
	m.cache.On("GetThresholds", mock.Anything).Return(nil, nil)
	m.thresholds.On("Latest", mock.Anything).Return(nil, errors.New("db down"))

	_, err := m.svc.CalculateScore(context.Background(), "t1", "admin")
	assert.EqualError(t, err, "db down")
	m.scores.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCalculateScore_RequiresTenant(t *testing.T) {
	m := newMockedCompliance()
	_, err := m.svc.CalculateScore(context.Background(), " ", "admin")
	assert.True(t, apperrors.IsInvalidRequest(err))
}

func TestGetLatestScore_CacheFirst(t *testing.T) {
	m := newMockedCompliance()
	cached := &models.ComplianceScore{ID: "s1", TenantID: "t1", OverallScore: 70}
	m.cache.On("GetLatest", mock.Anything, "t1").Return(cached, nil)

	got, err := m.svc.GetLatestScore(context.Background(), "t1")
	require.NoError(t, err)
	assert.Same(t, cached, got)
	m.scores.AssertNotCalled(t, "Latest", mock.Anything, mock.Anything)
}

func TestGetLatestScore_MissFillsCache(t *testing.T) {
	m := newMockedCompliance()
	stored := &models.ComplianceScore{ID: "s2", TenantID: "t1", OverallScore: 55}
	m.cache.On("GetLatest", mock.Anything, "t1").Return(nil, nil)
	m.scores.On("Latest", mock.Anything, "t1").Return(stored, nil)
	m.cache.On("SetLatest", mock.Anything, stored).Return(nil)

	got, err := m.svc.GetLatestScore(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "s2", got.ID)
	m.cache.AssertExpectations(t)
}

func TestGetLatestScore_NoneIsNil(t *testing.T) {
	m := newMockedCompliance()
	m.cache.On("GetLatest", mock.Anything, "t9").Return(nil, errors.New("redis down"))
	m.scores.On("Latest", mock.Anything, "t9").Return(nil, nil)

	got, err := m.svc.GetLatestScore(context.Background(), "t9")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetScoreHistory_LimitBounds(t *testing.T) {
	m := newMockedCompliance()
	m.scores.On("ListByTenant", mock.Anything, "t1", 10).Return([]*models.ComplianceScore{}, nil).Once()
	m.scores.On("ListByTenant", mock.Anything, "t1", 100).Return([]*models.ComplianceScore{}, nil).Once()

	_, err := m.svc.GetScoreHistory(context.Background(), "t1", 0)
	require.NoError(t, err)
	_, err = m.svc.GetScoreHistory(context.Background(), "t1", 5000)
	require.NoError(t, err)
	m.scores.AssertExpectations(t)
}
