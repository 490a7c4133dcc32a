package repository

import (
	"context"

	"github.com/turtacn/compliance/internal/domain/models"
)

// RuleRepository stores compliance rules.
type RuleRepository interface {
	Create(ctx context.Context, rule *models.ComplianceRule) error

	// Update overwrites an existing rule. Returns a not-found error when the id is unknown.
	Update(ctx context.Context, rule *models.ComplianceRule) error

	FindByID(ctx context.Context, id string) (*models.ComplianceRule, error)

	// List returns all rules, newest first.
	List(ctx context.Context) ([]*models.ComplianceRule, error)

	// ListActive returns the rules with IsActive set, oldest first.
	ListActive(ctx context.Context) ([]*models.ComplianceRule, error)
}
