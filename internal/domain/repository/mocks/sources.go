package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/compliance/internal/domain/models"
)

type MockMemberSource struct {
	mock.Mock
}

func (m *MockMemberSource) CountMembers(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMemberSource) CountFullyVerified(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMemberSource) CountPendingKYC(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

type MockBylawSource struct {
	mock.Mock
}

func (m *MockBylawSource) LatestReview(ctx context.Context, tenantID string) (*models.BylawReview, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BylawReview), args.Error(1)
}

func (m *MockBylawSource) OldestPending(ctx context.Context, tenantID string) (*models.BylawReview, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BylawReview), args.Error(1)
}

type MockIssueSource struct {
	mock.Mock
}

func (m *MockIssueSource) ListOpen(ctx context.Context, tenantID string) ([]*models.ComplianceIssue, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ComplianceIssue), args.Error(1)
}
