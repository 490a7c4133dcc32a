package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/turtacn/compliance/internal/config"
	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	db, err := OpenGorm(ctx, &config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"}, logger.NewNoopLogger())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(ctx, db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newAlert(tenantID, key string) *models.RegulatoryAlert {
	return &models.RegulatoryAlert{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		DedupKey:  key,
		Type:      models.AlertTypeComplianceIssue,
		Source:    models.AlertSourceRule,
		Severity:  models.SeverityHigh,
		Title:     "Automated Alert: KYC below 70",
		Metadata:  datatypes.JSONMap{"rule_id": "r1", "metric": "kyc_rate", "value": 60.0},
		CreatedAt: time.Now().UTC(),
	}
}

func TestScoreRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewScoreRepository(newTestDB(t), logger.NewNoopLogger())

	latest, err := repo.Latest(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	save := func(tenant string, score float64, offset time.Duration) {
		require.NoError(t, repo.Save(ctx, &models.ComplianceScore{
			ID: uuid.NewString(), TenantID: tenant, OverallScore: score,
			Rating: models.RatingGood, CalculatedAt: base.Add(offset),
		}))
	}
	save("t1", 70, 0)
	save("t1", 82, time.Hour)
	save("t1", 78, 2*time.Hour)
	save("t2", 55, 0)
	save("t3", 91, 0)
	save("t3", 30, time.Minute)

	history, err := repo.ListByTenant(ctx, "t1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 78.0, history[0].OverallScore)
	assert.Equal(t, 82.0, history[1].OverallScore)

	latest, err = repo.Latest(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 78.0, latest.OverallScore)

	triage, err := repo.LatestPerTenant(ctx)
	require.NoError(t, err)
	require.Len(t, triage, 3)
	assert.Equal(t, "t3", triage[0].TenantID)
	assert.Equal(t, 30.0, triage[0].OverallScore)
	assert.Equal(t, "t2", triage[1].TenantID)
	assert.Equal(t, "t1", triage[2].TenantID)
}

func TestAlertRepository_DedupAndRetrigger(t *testing.T) {
	ctx := context.Background()
	repo := NewAlertRepository(newTestDB(t), logger.NewNoopLogger())

	first := newAlert("t1", "rule:r1")
	created, err := repo.CreateIfNoneOpen(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfNoneOpen(ctx, newAlert("t1", "rule:r1"))
	require.NoError(t, err)
	assert.False(t, created, "an open alert with the same key already exists")

	created, err = repo.CreateIfNoneOpen(ctx, newAlert("t2", "rule:r1"))
	require.NoError(t, err)
	assert.True(t, created, "dedup is per tenant")

	changed, err := repo.Resolve(ctx, first.ID, "inspector-7", time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Resolve(ctx, first.ID, "inspector-7", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = repo.Resolve(ctx, "missing", "inspector-7", time.Now().UTC())
	assert.True(t, errors.IsNotFound(err))

	created, err = repo.CreateIfNoneOpen(ctx, newAlert("t1", "rule:r1"))
	require.NoError(t, err)
	assert.True(t, created, "resolving frees the key")

	total, resolved, err := repo.CountByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), resolved)

	open, err := repo.ListByTenant(ctx, "t1", true)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "kyc_rate", open[0].Metadata["metric"])

	all, err := repo.ListByTenant(ctx, "t1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	stored, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsResolved)
	assert.Equal(t, "inspector-7", stored.ResolvedBy)
	require.NotNil(t, stored.ResolvedAt)
}

func TestAlertRepository_CountWithoutAlerts(t *testing.T) {
	repo := NewAlertRepository(newTestDB(t), logger.NewNoopLogger())
	total, resolved, err := repo.CountByTenant(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, resolved)
}

func TestAuditRepository_CompleteOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditRepository(newTestDB(t), logger.NewNoopLogger())

	audit := &models.ComplianceAudit{
		ID: uuid.NewString(), TenantID: "t1", AuditorID: "aud-1",
		Status: models.AuditStatusPending, ScheduledDate: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, audit))

	_, err := repo.FindByID(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))

	now := time.Now().UTC()
	score := 78.25
	audit.CompletedDate = &now
	audit.Findings = "Minor KYC gaps"
	audit.ComplianceScoreAtTime = &score
	audit.UpdatedAt = now

	ok, err := repo.CompleteIfPending(ctx, audit)
	require.NoError(t, err)
	assert.True(t, ok)

	second := *audit
	second.Findings = "overwrite attempt"
	ok, err = repo.CompleteIfPending(ctx, &second)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, audit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AuditStatusCompleted, stored.Status)
	assert.Equal(t, "Minor KYC gaps", stored.Findings)
	require.NotNil(t, stored.ComplianceScoreAtTime)
	assert.Equal(t, 78.25, *stored.ComplianceScoreAtTime)

	list, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = repo.List(ctx, "t2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRuleRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository(newTestDB(t), logger.NewNoopLogger())

	rule := &models.ComplianceRule{
		ID: uuid.NewString(), Name: "KYC below 70", Metric: models.MetricKYCRate,
		Operator: models.OperatorLessThan, Threshold: 70, Severity: models.SeverityHigh, IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, rule))

	inactive := &models.ComplianceRule{
		ID: uuid.NewString(), Name: "Overall below 50", Metric: models.MetricComplianceScore,
		Operator: models.OperatorLessThan, Threshold: 50, Severity: models.SeverityCritical, IsActive: false,
	}
	require.NoError(t, repo.Create(ctx, inactive))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, rule.ID, active[0].ID)

	rule.IsActive = false
	rule.Threshold = 65
	require.NoError(t, repo.Update(ctx, rule))
	stored, err := repo.FindByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, 65.0, stored.Threshold)

	err = repo.Update(ctx, &models.ComplianceRule{ID: "missing", Name: "x"})
	assert.True(t, errors.IsNotFound(err))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTenantRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewTenantRepository(db, logger.NewNoopLogger())

	require.NoError(t, db.Create(&models.Tenant{TenantID: "t1", TenantName: "Umoja SACCO", Status: models.TenantStatusActive}).Error)
	require.NoError(t, db.Create(&models.Tenant{TenantID: "t2", TenantName: "Dormant SACCO", Status: models.TenantStatusSuspended}).Error)

	ids, err := repo.ListActiveIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, ids)

	reviewed := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateComplianceProjection(ctx, "t1", models.ComplianceProjection{
		Score: 78.25, Rating: models.RatingGood, ReviewedAt: reviewed,
	}))

	tenant, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, tenant.CurrentComplianceScore)
	assert.Equal(t, 78.25, *tenant.CurrentComplianceScore)
	assert.Equal(t, models.RatingGood, *tenant.ComplianceRating)
	assert.Equal(t, "Umoja SACCO", tenant.TenantName)

	err = repo.UpdateComplianceProjection(ctx, "missing", models.ComplianceProjection{Score: 1})
	assert.True(t, errors.IsNotFound(err))
}

func TestThresholdRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewThresholdRepository(newTestDB(t))

	s, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &models.RegulatorSettings{
		ID: uuid.NewString(), ExcellentThreshold: 90, GoodThreshold: 75, FairThreshold: 60, PoorThreshold: 40, UpdatedAt: old,
	}))
	require.NoError(t, repo.Save(ctx, &models.RegulatorSettings{
		ID: uuid.NewString(), ExcellentThreshold: 95, GoodThreshold: 80, FairThreshold: 65, PoorThreshold: 45, UpdatedAt: old.AddDate(1, 0, 0),
	}))

	s, err = repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 95.0, s.Thresholds().Excellent)
}

func TestMetricSources(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	src := NewMetricSources(db)

	for i := 0; i < 10; i++ {
		id := uuid.NewString()
		require.NoError(t, db.Create(&models.Member{ID: id, TenantID: "t1"}).Error)
		switch {
		case i < 6:
			require.NoError(t, db.Create(&models.MemberKYC{MemberID: id, IdentityVerified: true, ResidenceVerified: true, IncomeVerified: true}).Error)
		case i < 8:
			require.NoError(t, db.Create(&models.MemberKYC{MemberID: id, IdentityVerified: true, ResidenceVerified: true}).Error)
		}
	}
	require.NoError(t, db.Create(&models.Member{ID: uuid.NewString(), TenantID: "t2"}).Error)

	total, err := src.CountMembers(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
	verified, err := src.CountFullyVerified(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), verified)
	pending, err := src.CountPendingKYC(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), pending)

	review, err := src.LatestReview(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, review)

	now := time.Now().UTC()
	approved := now.AddDate(-1, 0, 0)
	require.NoError(t, db.Create(&models.BylawReview{ID: "b1", TenantID: "t1", Status: models.BylawStatusPending, SubmittedAt: now.AddDate(0, -3, 0)}).Error)
	require.NoError(t, db.Create(&models.BylawReview{ID: "b2", TenantID: "t1", Status: models.BylawStatusApproved, SubmittedAt: now.AddDate(0, -1, 0), ApprovalDate: &approved}).Error)

	review, err = src.LatestReview(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "b2", review.ID)
	oldest, err := src.OldestPending(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "b1", oldest.ID)

	require.NoError(t, db.Create(&models.ComplianceIssue{ID: "i1", TenantID: "t1", Severity: models.SeverityCritical, Status: models.IssueStatusOpen}).Error)
	require.NoError(t, db.Create(&models.ComplianceIssue{ID: "i2", TenantID: "t1", Severity: models.SeverityHigh, Status: models.IssueStatusResolved}).Error)
	open, err := src.ListOpen(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "i1", open[0].ID)
}
