package postgres

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/compliance/internal/config"
	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

// OpenGorm opens the store selected by cfg.Driver and applies pool settings.
func OpenGorm(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfig
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = gormpostgres.Open(cfg.GetDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", errors.ErrInvalidConfig, cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.ErrDatabaseOperation("open database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.ErrDatabaseOperation("access connection pool", err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY under concurrent sweeps.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConns)
		sqlDB.SetMaxIdleConns(cfg.MinConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxConnLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.MaxConnIdleTime) * time.Minute)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errors.ErrDatabaseOperation("ping database", err)
	}

	log.Info(ctx, "Database connection established",
		logger.String("driver", cfg.Driver),
		logger.String("database", cfg.Database),
	)
	return db, nil
}

// Ping checks that the pool behind db still answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.ErrDatabaseOperation("access connection pool", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return errors.ErrDatabaseOperation("ping database", err)
	}
	return nil
}

// AutoMigrate creates or updates the tables this service reads and writes.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&models.Tenant{},
		&models.ComplianceScore{},
		&models.ComplianceRule{},
		&models.RegulatoryAlert{},
		&models.ComplianceAudit{},
		&models.RegulatorSettings{},
		&models.Member{},
		&models.MemberKYC{},
		&models.BylawReview{},
		&models.ComplianceIssue{},
	)
	if err != nil {
		return errors.ErrDatabaseOperation("auto migrate", err)
	}
	return nil
}

// mapError converts gorm errors to application errors.
func mapError(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if isRecordNotFound(err) {
		return errors.ErrNotFound(resource, id)
	}
	return errors.ErrDatabaseOperation(op, err)
}

func isRecordNotFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}
