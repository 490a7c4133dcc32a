package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/compliance/internal/application/dto"
	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/repository"
	"github.com/turtacn/compliance/internal/domain/service"
	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
	"github.com/turtacn/compliance/pkg/utils"
)

// RuleAppService manages compliance rules and turns rule outcomes into regulatory alerts.
// RuleAppService 管理合规规则，并将规则结果转换为监管告警。
type RuleAppService interface {
	// SaveRule creates a rule when its id is empty and overwrites the existing rule otherwise.
	// SaveRule 新建或更新规则。
	SaveRule(ctx context.Context, rule *models.ComplianceRule) (*models.ComplianceRule, error)

	// ListRules returns every rule, newest first.
	// ListRules 返回所有规则，按创建时间倒序。
	ListRules(ctx context.Context) ([]*models.ComplianceRule, error)

	// ImportRules upserts the rules of a YAML seed document.
	// ImportRules 从 YAML 文档导入规则。
	ImportRules(ctx context.Context, data []byte) (*dto.ImportResult, error)

	// EvaluateRules recomputes the tenant's metrics and raises an alert for every active rule that
	// fires, unless an unresolved alert for the same rule is already open. No active rules is a no-op.
	// EvaluateRules 重新计算租户指标，并为触发的每条活动规则生成告警（已存在未解决告警时跳过）。
	EvaluateRules(ctx context.Context, tenantID string) (*dto.EvaluationResult, error)

	// RunBuiltinChecks evaluates the fixed regulator checks with the same deduplication.
	// RunBuiltinChecks 运行内置的监管检查，同样进行去重。
	RunBuiltinChecks(ctx context.Context, tenantID string) (*dto.EvaluationResult, error)

	// ResolveAlert marks an alert resolved. Resolving a resolved alert changes nothing.
	// ResolveAlert 将告警标记为已解决。
	ResolveAlert(ctx context.Context, alertID, resolvedBy string) (*models.RegulatoryAlert, error)

	// ListAlerts returns a tenant's alerts, newest first.
	// ListAlerts 返回租户的告警。
	ListAlerts(ctx context.Context, tenantID string, onlyOpen bool) ([]*models.RegulatoryAlert, error)
}

type ruleAppServiceImpl struct {
	rules     repository.RuleRepository
	alerts    repository.AlertRepository
	sources   MetricSources
	collector *service.MetricCollector
	events    eventEmitter
	metrics   service.Metrics
	logger    logger.Logger
	audit     *logger.AuditTrail
}

// NewRuleAppService creates a new RuleAppService. publisher and metrics may be nil.
func NewRuleAppService(
	rules repository.RuleRepository,
	sources MetricSources,
	collector *service.MetricCollector,
	publisher service.EventPublisher,
	metrics service.Metrics,
	log logger.Logger,
) RuleAppService {
	if metrics == nil {
		metrics = service.NopMetrics{}
	}
	l := log.WithComponent("rule_app_service")
	return &ruleAppServiceImpl{
		rules:     rules,
		alerts:    sources.Alerts,
		sources:   sources,
		collector: collector,
		events:    eventEmitter{publisher: publisher, logger: l},
		metrics:   metrics,
		logger:    l,
		audit:     logger.NewAuditTrail(log),
	}
}

func validateRule(rule *models.ComplianceRule) error {
	var problems []string
	if strings.TrimSpace(rule.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !rule.Metric.IsValid() {
		problems = append(problems, fmt.Sprintf("metric %q is not supported", rule.Metric))
	}
	if !rule.Operator.IsValid() {
		problems = append(problems, fmt.Sprintf("operator %q is not supported", rule.Operator))
	}
	if !rule.Severity.IsValid() {
		problems = append(problems, fmt.Sprintf("severity %q is not supported", rule.Severity))
	}
	if !utils.IsFinitePercent(rule.Threshold) {
		problems = append(problems, "threshold must be between 0 and 100")
	}
	if len(problems) > 0 {
		return errors.ErrInvalidRequest(strings.Join(problems, "; "))
	}
	return nil
}

func (s *ruleAppServiceImpl) SaveRule(ctx context.Context, rule *models.ComplianceRule) (*models.ComplianceRule, error) {
	if rule == nil {
		return nil, errors.ErrInvalidRequest("rule is required")
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
		rule.CreatedAt = now
		rule.UpdatedAt = now
		if err := s.rules.Create(ctx, rule); err != nil {
			s.logger.Error(ctx, "Failed to create rule", err, logger.String("rule_name", rule.Name))
			return nil, err
		}
	} else {
		rule.UpdatedAt = now
		if err := s.rules.Update(ctx, rule); err != nil {
			if !errors.IsNotFound(err) {
				s.logger.Error(ctx, "Failed to update rule", err, logger.String("rule_id", rule.ID))
			}
			return nil, err
		}
	}

	s.audit.Record(ctx, constants.EventRuleSaved,
		logger.String("rule_id", rule.ID),
		logger.String("metric", string(rule.Metric)),
		logger.String("operator", string(rule.Operator)),
		logger.Float64("threshold", rule.Threshold),
		logger.Bool("is_active", rule.IsActive),
	)
	return rule, nil
}

func (s *ruleAppServiceImpl) ListRules(ctx context.Context) ([]*models.ComplianceRule, error) {
	return s.rules.List(ctx)
}

func (s *ruleAppServiceImpl) ImportRules(ctx context.Context, data []byte) (*dto.ImportResult, error) {
	var seed dto.RuleSeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, errors.WrapError(err, constants.ErrCodeInvalidRequest, "invalid rule document")
	}

	result := &dto.ImportResult{}
	for i := range seed.Rules {
		req := &seed.Rules[i]
		if verr := utils.ValidateStruct(req); verr != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("rule %d (%s): %s", i+1, req.Name, verr.Error()))
			continue
		}
		rule := req.ToModel()
		if rule.ID != "" {
			_, err := s.rules.FindByID(ctx, rule.ID)
			if err != nil && !errors.IsNotFound(err) {
				return result, err
			}
			if errors.IsNotFound(err) {
				// seed ids are kept so re-imports update instead of duplicating
				if cerr := s.createWithID(ctx, rule); cerr != nil {
					if !errors.IsInvalidRequest(cerr) {
						return result, cerr
					}
					result.Failed++
					result.Errors = append(result.Errors, fmt.Sprintf("rule %d (%s): %s", i+1, req.Name, cerr.Error()))
					continue
				}
				result.Saved++
				continue
			}
		}
		if _, err := s.SaveRule(ctx, rule); err != nil {
			if errors.IsInvalidRequest(err) {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("rule %d (%s): %s", i+1, req.Name, err.Error()))
				continue
			}
			return result, err
		}
		result.Saved++
	}

	s.logger.Info(ctx, "Rules imported", logger.Int("saved", result.Saved), logger.Int("failed", result.Failed))
	return result, nil
}

func (s *ruleAppServiceImpl) createWithID(ctx context.Context, rule *models.ComplianceRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	now := time.Now().UTC()
	rule.CreatedAt, rule.UpdatedAt = now, now
	return s.rules.Create(ctx, rule)
}

func (s *ruleAppServiceImpl) EvaluateRules(ctx context.Context, tenantID string) (result *dto.EvaluationResult, err error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, errors.ErrInvalidRequest("tenant_id is required")
	}
	ctx, span := startSpan(ctx, "RuleAppService.EvaluateRules", tenantID)
	defer func() {
		s.metrics.RecordRuleEvaluation(err == nil)
		endSpan(span, err)
	}()

	result = &dto.EvaluationResult{TenantID: tenantID, EvaluatedAt: s.collector.Now().UTC()}

	active, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		s.logger.Debug(ctx, "No active rules, skipping evaluation", logger.String("tenant_id", tenantID))
		return result, nil
	}

	set := s.collector.Collect(ctx, tenantID)
	result.Metrics = metricsSnapshot(set)
	result.DegradedMetrics = degradedMetrics(set)
	result.RulesEvaluated = len(active)

	var errs []error
	for _, rule := range active {
		if set.Degraded(rule.Metric) {
			result.Unevaluated++
			s.logger.Warn(ctx, "Metric unavailable, rule not evaluated",
				logger.String("tenant_id", tenantID),
				logger.String("rule_id", rule.ID),
				logger.String("metric", string(rule.Metric)),
			)
			continue
		}
		alert := service.EvaluateRule(rule, set, tenantID)
		if alert == nil {
			if _, known := set.Value(rule.Metric); !known {
				s.logger.Warn(ctx, "Rule targets an unknown metric", logger.String("rule_id", rule.ID), logger.String("metric", string(rule.Metric)))
			}
			continue
		}
		outcome, rerr := s.raise(ctx, alert)
		outcome.RuleID = rule.ID
		result.Record(outcome)
		if rerr != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", rule.ID, rerr))
		}
	}

	s.logger.Info(ctx, "Rules evaluated",
		logger.String("tenant_id", tenantID),
		logger.Int("rules", result.RulesEvaluated),
		logger.Int("triggered", result.Triggered),
		logger.Int("created", result.Created),
		logger.Int("skipped", result.Skipped),
		logger.Int("unevaluated", result.Unevaluated),
	)
	if len(errs) > 0 {
		return result, stderrors.Join(errs...)
	}
	return result, nil
}

func (s *ruleAppServiceImpl) RunBuiltinChecks(ctx context.Context, tenantID string) (result *dto.EvaluationResult, err error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, errors.ErrInvalidRequest("tenant_id is required")
	}
	ctx, span := startSpan(ctx, "RuleAppService.RunBuiltinChecks", tenantID)
	defer func() { endSpan(span, err) }()

	set := s.collector.Collect(ctx, tenantID)
	in := service.BuiltinInputs{Now: s.collector.Now()}

	if n, perr := s.sources.Members.CountPendingKYC(ctx, tenantID); perr != nil {
		s.logger.Warn(ctx, "Pending KYC count unavailable, skipping check", logger.String("tenant_id", tenantID), logger.Err(perr))
	} else {
		in.PendingKYC = n
	}
	if r, berr := s.sources.Bylaws.OldestPending(ctx, tenantID); berr != nil {
		s.logger.Warn(ctx, "Pending bye-law review unavailable, skipping check", logger.String("tenant_id", tenantID), logger.Err(berr))
	} else {
		in.OldestPendingBylaw = r
	}
	if open, ierr := s.sources.Issues.ListOpen(ctx, tenantID); ierr != nil {
		s.logger.Warn(ctx, "Open issues unavailable, skipping check", logger.String("tenant_id", tenantID), logger.Err(ierr))
	} else {
		in.CriticalOpenIssues = service.CountCritical(open)
	}

	result = &dto.EvaluationResult{
		TenantID:        tenantID,
		EvaluatedAt:     in.Now.UTC(),
		Metrics:         metricsSnapshot(set),
		DegradedMetrics: degradedMetrics(set),
	}
	var errs []error
	for _, alert := range service.BuiltinChecks(set, in, tenantID) {
		outcome, rerr := s.raise(ctx, alert)
		if check, ok := alert.Metadata["check"].(string); ok {
			outcome.Check = check
		}
		result.Record(outcome)
		if rerr != nil {
			errs = append(errs, rerr)
		}
	}
	if len(errs) > 0 {
		return result, stderrors.Join(errs...)
	}
	return result, nil
}

// raise persists alert unless an unresolved alert with the same dedup key is open.
func (s *ruleAppServiceImpl) raise(ctx context.Context, alert *models.RegulatoryAlert) (dto.TriggeredRule, error) {
	alert.ID = uuid.NewString()
	alert.CreatedAt = s.collector.Now().UTC()
	outcome := dto.TriggeredRule{Title: alert.Title, Severity: alert.Severity}

	created, err := s.alerts.CreateIfNoneOpen(ctx, alert)
	if err != nil {
		s.logger.Error(ctx, "Failed to persist alert", err,
			logger.String("tenant_id", alert.TenantID),
			logger.String("dedup_key", alert.DedupKey),
		)
		return outcome, err
	}
	if !created {
		s.metrics.RecordAlertDeduplicated()
		s.logger.Debug(ctx, "Unresolved alert already open, skipping",
			logger.String("tenant_id", alert.TenantID),
			logger.String("dedup_key", alert.DedupKey),
		)
		return outcome, nil
	}

	outcome.AlertID = alert.ID
	outcome.Created = true
	s.metrics.RecordAlertRaised(string(alert.Severity), string(alert.Source))
	s.events.emit(ctx, constants.EventAlertRaised, alert.TenantID, alert)
	s.logger.Info(ctx, "Regulatory alert raised",
		logger.String("tenant_id", alert.TenantID),
		logger.String("alert_id", alert.ID),
		logger.String("severity", string(alert.Severity)),
		logger.String("title", alert.Title),
	)
	return outcome, nil
}

func (s *ruleAppServiceImpl) ResolveAlert(ctx context.Context, alertID, resolvedBy string) (*models.RegulatoryAlert, error) {
	if strings.TrimSpace(alertID) == "" {
		return nil, errors.ErrInvalidRequest("alert_id is required")
	}
	if strings.TrimSpace(resolvedBy) == "" {
		return nil, errors.ErrInvalidRequest("resolved_by is required")
	}

	changed, err := s.alerts.Resolve(ctx, alertID, resolvedBy, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	alert, err := s.alerts.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.events.emit(ctx, constants.EventAlertResolved, alert.TenantID, alert)
		s.logger.Info(ctx, "Regulatory alert resolved",
			logger.String("alert_id", alertID),
			logger.String("tenant_id", alert.TenantID),
			logger.String("resolved_by", resolvedBy),
		)
	}
	return alert, nil
}

func (s *ruleAppServiceImpl) ListAlerts(ctx context.Context, tenantID string, onlyOpen bool) ([]*models.RegulatoryAlert, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, errors.ErrInvalidRequest("tenant_id is required")
	}
	return s.alerts.ListByTenant(ctx, tenantID, onlyOpen)
}

func degradedMetrics(set *service.MetricSet) []string {
	var out []string
	for _, m := range set.DegradedMetrics() {
		out = append(out, string(m))
	}
	return out
}

func metricsSnapshot(set *service.MetricSet) map[string]float64 {
	out := make(map[string]float64, len(models.AllMetrics()))
	for _, m := range models.AllMetrics() {
		if v, ok := set.Value(m); ok {
			out[string(m)] = utils.Round2(v)
		}
	}
	return out
}
