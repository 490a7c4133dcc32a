package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/compliance/internal/config"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

// DBConnection manages a pgx connection pool used for read-only reporting queries.
type DBConnection struct {
	pool   *pgxpool.Pool
	config *config.DatabaseConfig
	logger logger.Logger
}

// NewDBConnection creates a PostgreSQL connection pool and performs an initial health check.
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfig
	}
	log = log.WithComponent("pgxpool")

	log.Info(ctx, "Initializing PostgreSQL connection pool",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
		logger.Int("max_conns", cfg.MaxConns),
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.GetURL())
	if err != nil {
		return nil, errors.ErrDatabaseOperation("parse connection string", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Minute
	poolConfig.MaxConnIdleTime = time.Duration(cfg.MaxConnIdleTime) * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, errors.ErrDatabaseOperation("create connection pool", err)
	}

	db := &DBConnection{pool: pool, config: cfg, logger: log}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Ping verifies database connectivity and warns on high latency.
func (db *DBConnection) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := db.pool.Ping(pingCtx); err != nil {
		db.logger.Error(ctx, "Database ping failed", err)
		return errors.ErrDatabaseOperation("ping database", err)
	}
	if latency := time.Since(start); latency > 100*time.Millisecond {
		db.logger.Warn(ctx, "High database latency detected", logger.Int64("latency_ms", latency.Milliseconds()))
	}
	return nil
}

// Close shuts down the connection pool.
func (db *DBConnection) Close() {
	db.pool.Close()
	db.logger.Info(context.Background(), "PostgreSQL connection pool closed")
}

// TriageRow is one line of the worst-first compliance report.
type TriageRow struct {
	TenantID     string
	TenantName   string
	OverallScore float64
	Rating       string
	CalculatedAt time.Time
	OpenAlerts   int64
}

const triageQuery = `
SELECT s.tenant_id,
       COALESCE(t.tenant_name, ''),
       s.overall_score,
       s.rating,
       s.calculated_at,
       (SELECT COUNT(*) FROM regulatory_alerts a WHERE a.tenant_id = s.tenant_id AND a.is_resolved = false)
FROM compliance_scores s
JOIN (SELECT tenant_id, MAX(calculated_at) AS max_at FROM compliance_scores GROUP BY tenant_id) m
  ON s.tenant_id = m.tenant_id AND s.calculated_at = m.max_at
LEFT JOIN tenants t ON t.tenant_id = s.tenant_id
ORDER BY s.overall_score ASC
LIMIT $1`

// TriageReport returns the latest score of every tenant, worst first, with its open alert count.
func (db *DBConnection) TriageReport(ctx context.Context, limit int) ([]TriageRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx, triageQuery, limit)
	if err != nil {
		return nil, errors.ErrDatabaseOperation("query triage report", err)
	}
	defer rows.Close()

	var out []TriageRow
	for rows.Next() {
		var r TriageRow
		if err := rows.Scan(&r.TenantID, &r.TenantName, &r.OverallScore, &r.Rating, &r.CalculatedAt, &r.OpenAlerts); err != nil {
			return nil, errors.ErrDatabaseOperation("scan triage row", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triage report: %w", err)
	}
	return out, nil
}
