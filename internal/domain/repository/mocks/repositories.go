package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/compliance/internal/domain/models"
)

type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) Save(ctx context.Context, score *models.ComplianceScore) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *MockScoreRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*models.ComplianceScore, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ComplianceScore), args.Error(1)
}

func (m *MockScoreRepository) Latest(ctx context.Context, tenantID string) (*models.ComplianceScore, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ComplianceScore), args.Error(1)
}

func (m *MockScoreRepository) LatestPerTenant(ctx context.Context) ([]*models.ComplianceScore, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ComplianceScore), args.Error(1)
}

type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *models.ComplianceRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) Update(ctx context.Context, rule *models.ComplianceRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) FindByID(ctx context.Context, id string) (*models.ComplianceRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ComplianceRule), args.Error(1)
}

func (m *MockRuleRepository) List(ctx context.Context) ([]*models.ComplianceRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ComplianceRule), args.Error(1)
}

func (m *MockRuleRepository) ListActive(ctx context.Context) ([]*models.ComplianceRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ComplianceRule), args.Error(1)
}

type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) CreateIfNoneOpen(ctx context.Context, alert *models.RegulatoryAlert) (bool, error) {
	args := m.Called(ctx, alert)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) FindByID(ctx context.Context, id string) (*models.RegulatoryAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegulatoryAlert), args.Error(1)
}

func (m *MockAlertRepository) Resolve(ctx context.Context, id, resolvedBy string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, resolvedBy, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertRepository) ListByTenant(ctx context.Context, tenantID string, onlyOpen bool) ([]*models.RegulatoryAlert, error) {
	args := m.Called(ctx, tenantID, onlyOpen)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RegulatoryAlert), args.Error(1)
}

func (m *MockAlertRepository) CountByTenant(ctx context.Context, tenantID string) (int64, int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, audit *models.ComplianceAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockAuditRepository) FindByID(ctx context.Context, id string) (*models.ComplianceAudit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ComplianceAudit), args.Error(1)
}

func (m *MockAuditRepository) CompleteIfPending(ctx context.Context, audit *models.ComplianceAudit) (bool, error) {
	args := m.Called(ctx, audit)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuditRepository) List(ctx context.Context, tenantID string) ([]*models.ComplianceAudit, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ComplianceAudit), args.Error(1)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTenantRepository) UpdateComplianceProjection(ctx context.Context, tenantID string, p models.ComplianceProjection) error {
	args := m.Called(ctx, tenantID, p)
	return args.Error(0)
}

type MockThresholdRepository struct {
	mock.Mock
}

func (m *MockThresholdRepository) Latest(ctx context.Context) (*models.RegulatorSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegulatorSettings), args.Error(1)
}

func (m *MockThresholdRepository) Save(ctx context.Context, settings *models.RegulatorSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
