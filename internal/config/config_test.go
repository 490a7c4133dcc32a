package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  sqlite_path: /tmp/compliance-test.db
scoring:
  reporting_placeholder: 80
`)

	cfg, err := NewLoader(logger.NewNoopLogger(), path).Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 80.0, cfg.Scoring.ReportingPlaceholder)
	assert.Equal(t, 30*time.Minute, cfg.Scoring.LatestCacheTTL)
	assert.True(t, cfg.Rules.BuiltinChecksEnabled)
	assert.Equal(t, "0 0 2 * * *", cfg.Scheduler.ScoreCron)
	assert.Equal(t, 4, cfg.Scheduler.MaxParallel)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  sqlite_path: /tmp/compliance-test.db
`)
	t.Setenv("COMPLIANCE_SCHEDULER_MAX_PARALLEL", "9")
	t.Setenv("COMPLIANCE_RULES_BUILTIN_CHECKS_ENABLED", "false")

	cfg, err := NewLoader(logger.NewNoopLogger(), path).Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Scheduler.MaxParallel)
	assert.False(t, cfg.Rules.BuiltinChecksEnabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: 8080},
			Database:  DatabaseConfig{Driver: "sqlite", SQLitePath: "x.db"},
			Scoring:   ScoringConfig{ReportingPlaceholder: 85},
			Scheduler: SchedulerConfig{Enabled: true, ScoreCron: "0 0 2 * * *", EvaluateCron: "0 30 2 * * *", MaxParallel: 1},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"placeholder out of range", func(c *Config) { c.Scoring.ReportingPlaceholder = 101 }},
		{"bad cron", func(c *Config) { c.Scheduler.ScoreCron = "every day" }},
		{"no parallelism", func(c *Config) { c.Scheduler.MaxParallel = 0 }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }},
		{"redis without addresses", func(c *Config) { c.Redis.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
		})
	}
}
