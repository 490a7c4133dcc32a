package repository

import (
	"context"

	"github.com/turtacn/compliance/internal/domain/models"
)

// MemberSource reads member KYC state.
type MemberSource interface {
	CountMembers(ctx context.Context, tenantID string) (int64, error)

	// CountFullyVerified counts members whose identity, residence and income are all verified.
	CountFullyVerified(ctx context.Context, tenantID string) (int64, error)

	// CountPendingKYC counts members with at least one verification outstanding.
	CountPendingKYC(ctx context.Context, tenantID string) (int64, error)
}

// BylawSource reads bye-law reviews.
type BylawSource interface {
	// LatestReview returns the most recently submitted review, or (nil, nil).
	LatestReview(ctx context.Context, tenantID string) (*models.BylawReview, error)

	// OldestPending returns the earliest submitted review still PENDING, or (nil, nil).
	OldestPending(ctx context.Context, tenantID string) (*models.BylawReview, error)
}

// IssueSource reads compliance issues.
type IssueSource interface {
	ListOpen(ctx context.Context, tenantID string) ([]*models.ComplianceIssue, error)
}
