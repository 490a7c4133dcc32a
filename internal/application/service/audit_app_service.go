package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/internal/domain/service"
	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

// AuditAppService drives the audit lifecycle PENDING -> COMPLETED.
// AuditAppService 管理审计生命周期：PENDING -> COMPLETED。
type AuditAppService interface {
	// ScheduleAudit creates a PENDING audit. Dates in the past are accepted.
	// ScheduleAudit 创建待处理审计，允许过去的日期。
	ScheduleAudit(ctx context.Context, tenantID, auditorID string, scheduledDate time.Time) (*models.ComplianceAudit, error)

	// CompleteAudit completes a PENDING audit and freezes the tenant's latest score (0 when none).
	// Completing an audit twice is rejected with an invalid-state error.
	// CompleteAudit 完成待处理审计并冻结租户最新分数；重复完成将被拒绝。
	CompleteAudit(ctx context.Context, auditID, findings string) (*models.ComplianceAudit, error)

	// ListAudits returns audits newest scheduled first; an empty tenantID lists every tenant.
	// ListAudits 列出审计。
	ListAudits(ctx context.Context, tenantID string) ([]*models.ComplianceAudit, error)
}

type auditAppServiceImpl struct {
	audits  repository.AuditRepository
	scores  repository.ScoreRepository
	events  eventEmitter
	metrics service.Metrics
	logger  logger.Logger
	now     func() time.Time
}

// NewAuditAppService creates a new AuditAppService. publisher and metrics may be nil.
func NewAuditAppService(
	audits repository.AuditRepository,
	scores repository.ScoreRepository,
	publisher service.EventPublisher,
	metrics service.Metrics,
	log logger.Logger,
) AuditAppService {
	if metrics == nil {
		metrics = service.NopMetrics{}
	}
	l := log.WithComponent("audit_app_service")
	return &auditAppServiceImpl{
		audits:  audits,
		scores:  scores,
		events:  eventEmitter{publisher: publisher, logger: l},
		metrics: metrics,
		logger:  l,
		now:     time.Now,
	}
}

func (s *auditAppServiceImpl) ScheduleAudit(ctx context.Context, tenantID, auditorID string, scheduledDate time.Time) (*models.ComplianceAudit, error) {
	switch {
	case strings.TrimSpace(tenantID) == "":
		return nil, errors.ErrInvalidRequest("tenant_id is required")
	case strings.TrimSpace(auditorID) == "":
		return nil, errors.ErrInvalidRequest("auditor_id is required")
	case scheduledDate.IsZero():
		return nil, errors.ErrInvalidRequest("scheduled_date is required")
	}

	now := s.now().UTC()
	audit := &models.ComplianceAudit{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		AuditorID:     auditorID,
		Status:        models.AuditStatusPending,
		ScheduledDate: scheduledDate.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.audits.Create(ctx, audit); err != nil {
		s.logger.Error(ctx, "Failed to schedule audit", err, logger.String("tenant_id", tenantID))
		return nil, err
	}

	s.events.emit(ctx, constants.EventAuditScheduled, tenantID, audit)
	s.logger.Info(ctx, "Audit scheduled",
		logger.String("audit_id", audit.ID),
		logger.String("tenant_id", tenantID),
		logger.String("auditor_id", auditorID),
		logger.Time("scheduled_date", audit.ScheduledDate),
	)
	return audit, nil
}

func (s *auditAppServiceImpl) CompleteAudit(ctx context.Context, auditID, findings string) (audit *models.ComplianceAudit, err error) {
	if strings.TrimSpace(auditID) == "" {
		return nil, errors.ErrInvalidRequest("audit_id is required")
	}

	audit, err = s.audits.FindByID(ctx, auditID)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "AuditAppService.CompleteAudit", audit.TenantID)
	defer func() { endSpan(span, err) }()

	if audit.IsCompleted() {
		return nil, errors.ErrInvalidState("audit", auditID, string(audit.Status))
	}

	// read the store, not the cache: the captured score is part of the audit record
	captured := 0.0
	latest, err := s.scores.Latest(ctx, audit.TenantID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		captured = latest.OverallScore
	}

	now := s.now().UTC()
	audit.Status = models.AuditStatusCompleted
	audit.CompletedDate = &now
	audit.Findings = findings
	audit.ComplianceScoreAtTime = &captured
	audit.UpdatedAt = now

	won, err := s.audits.CompleteIfPending(ctx, audit)
	if err != nil {
		s.logger.Error(ctx, "Failed to complete audit", err, logger.String("audit_id", auditID))
		return nil, err
	}
	if !won {
		return nil, errors.ErrInvalidState("audit", auditID, string(models.AuditStatusCompleted))
	}

	s.metrics.RecordAuditCompleted()
	s.events.emit(ctx, constants.EventAuditCompleted, audit.TenantID, audit)
	s.logger.Info(ctx, "Audit completed",
		logger.String("audit_id", auditID),
		logger.String("tenant_id", audit.TenantID),
		logger.Float64("compliance_score_at_time", captured),
	)
	return audit, nil
}

func (s *auditAppServiceImpl) ListAudits(ctx context.Context, tenantID string) ([]*models.ComplianceAudit, error) {
	return s.audits.List(ctx, tenantID)
}
