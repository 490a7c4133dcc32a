//go:build integration

package postgres

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/compliance/internal/config"
	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/pkg/logger"
)

func startPostgres(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	if os.Getenv("SKIP_DOCKER_TESTS") == "true" {
		t.Skip("Skipping Docker-dependent tests")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("compliance"),
		tcpostgres.WithUsername("compliance"),
		tcpostgres.WithPassword("compliance"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(context.Background()))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return &config.DatabaseConfig{Driver: "postgres", URL: connStr, Database: "compliance", MaxConns: 10}
}

func TestPostgresAlertDedupAndTriage(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()
	log := logger.NewNoopLogger()

	db, err := OpenGorm(ctx, cfg, log)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(ctx, db))
	// a second migration must leave the partial index in place
	require.NoError(t, AutoMigrate(ctx, db))

	alerts := NewAlertRepository(db, log)

	t.Run("concurrent raises create one open alert", func(t *testing.T) {
		var created int32
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < 8; i++ {
			g.Go(func() error {
				ok, err := alerts.CreateIfNoneOpen(gctx, newAlert("umoja", "rule:r1"))
				if ok {
					atomic.AddInt32(&created, 1)
				}
				return err
			})
		}
		require.NoError(t, g.Wait())
		assert.Equal(t, int32(1), created)

		open, err := alerts.ListByTenant(ctx, "umoja", true)
		require.NoError(t, err)
		require.Len(t, open, 1)

		resolved, err := alerts.Resolve(ctx, open[0].ID, "inspector", time.Now().UTC())
		require.NoError(t, err)
		assert.True(t, resolved)

		again, err := alerts.CreateIfNoneOpen(ctx, newAlert("umoja", "rule:r1"))
		require.NoError(t, err)
		assert.True(t, again, "a resolved alert no longer blocks a new one")
	})

	t.Run("triage report orders worst first", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Tenant{TenantID: "umoja", TenantName: "Umoja SACCO", Status: models.TenantStatusActive}).Error)
		require.NoError(t, db.Create(&models.Tenant{TenantID: "tumaini", TenantName: "Tumaini SACCO", Status: models.TenantStatusActive}).Error)

		scores := NewScoreRepository(db, log)
		base := time.Now().UTC().Add(-time.Hour)
		for _, s := range []struct {
			tenant string
			score  float64
			rating models.Rating
			offset time.Duration
		}{
			{"umoja", 91, models.RatingExcellent, 0},
			{"umoja", 55, models.RatingPoor, time.Minute},
			{"tumaini", 78.25, models.RatingGood, 0},
		} {
			require.NoError(t, scores.Save(ctx, &models.ComplianceScore{
				ID: uuid.NewString(), TenantID: s.tenant, OverallScore: s.score,
				Rating: s.rating, CalculatedAt: base.Add(s.offset), CalculatedBy: "system",
			}))
		}

		pool, err := NewDBConnection(ctx, cfg, log)
		require.NoError(t, err)
		defer pool.Close()

		rows, err := pool.TriageReport(ctx, 10)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "umoja", rows[0].TenantID)
		assert.Equal(t, "Umoja SACCO", rows[0].TenantName)
		assert.Equal(t, 55.0, rows[0].OverallScore)
		assert.Equal(t, int64(1), rows[0].OpenAlerts)
		assert.Equal(t, "tumaini", rows[1].TenantID)
		assert.Equal(t, int64(0), rows[1].OpenAlerts)
	})
}
