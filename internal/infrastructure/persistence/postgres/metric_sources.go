package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/pkg/errors"
)

// MetricSources reads members, KYC, bye-law reviews and issues from the shared SACCO database.
type MetricSources struct {
	db *gorm.DB
}

// NewMetricSources creates the gorm-backed metric sources.
func NewMetricSources(db *gorm.DB) *MetricSources {
	return &MetricSources{db: db}
}

var (
	_ repository.MemberSource = (*MetricSources)(nil)
	_ repository.BylawSource  = (*MetricSources)(nil)
	_ repository.IssueSource  = (*MetricSources)(nil)
)

func (s *MetricSources) CountMembers(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Member{}).Where("tenant_id = ?", tenantID).Count(&n).Error; err != nil {
		return 0, errors.ErrDatabaseOperation("count members", err)
	}
	return n, nil
}

func (s *MetricSources) CountFullyVerified(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Member{}).
		Joins("JOIN member_kyc ON member_kyc.member_id = members.id").
		Where("members.tenant_id = ?", tenantID).
		Where("member_kyc.identity_verified = ? AND member_kyc.residence_verified = ? AND member_kyc.income_verified = ?",
			true, true, true).
		Count(&n).Error
	if err != nil {
		return 0, errors.ErrDatabaseOperation("count verified members", err)
	}
	return n, nil
}

// CountPendingKYC counts members lacking at least one verification, including members without a KYC record.
func (s *MetricSources) CountPendingKYC(ctx context.Context, tenantID string) (int64, error) {
	total, err := s.CountMembers(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	verified, err := s.CountFullyVerified(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return total - verified, nil
}

func (s *MetricSources) LatestReview(ctx context.Context, tenantID string) (*models.BylawReview, error) {
	return s.firstReview(ctx, s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("submitted_at DESC"))
}

func (s *MetricSources) OldestPending(ctx context.Context, tenantID string) (*models.BylawReview, error) {
	return s.firstReview(ctx, s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, models.BylawStatusPending).
		Order("submitted_at ASC"))
}

func (s *MetricSources) firstReview(_ context.Context, q *gorm.DB) (*models.BylawReview, error) {
	var review models.BylawReview
	if err := q.First(&review).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, nil
		}
		return nil, errors.ErrDatabaseOperation("get bylaw review", err)
	}
	return &review, nil
}

func (s *MetricSources) ListOpen(ctx context.Context, tenantID string) ([]*models.ComplianceIssue, error) {
	var issues []*models.ComplianceIssue
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, models.IssueStatusOpen).
		Find(&issues).Error
	if err != nil {
		return nil, errors.ErrDatabaseOperation("list open compliance issues", err)
	}
	return issues, nil
}
