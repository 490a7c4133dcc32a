package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/turtacn/compliance/pkg/errors"
)

// Config is the root configuration of the compliance service
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Environment  string        `mapstructure:"environment"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// AllowedOrigins feeds the CORS policy of the HTTP API
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether the service runs in production mode
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres | sqlite
	URL             string `mapstructure:"url"`    // overrides the discrete postgres fields for pgxpool
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime"`  // in minutes
	MaxConnIdleTime int    `mapstructure:"max_conn_idle_time"` // in minutes
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// GetDSN returns the key/value postgres connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// GetURL returns the postgres URL form used by pgxpool
func (c *DatabaseConfig) GetURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Addresses    []string `mapstructure:"addresses"`
	Password     string   `mapstructure:"password"`
	DB           int      `mapstructure:"db"`
	PoolSize     int      `mapstructure:"pool_size"`
	MinIdleConns int      `mapstructure:"min_idle_conns"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SampleRate     float64 `mapstructure:"sample_rate"`
}

// ScoringConfig tunes the score calculator
type ScoringConfig struct {
	// ReportingPlaceholder is the financial reporting sub-score used until submissions are tracked
	ReportingPlaceholder float64       `mapstructure:"reporting_placeholder"`
	LatestCacheTTL       time.Duration `mapstructure:"latest_cache_ttl"`
}

// RulesConfig tunes the rule engine
type RulesConfig struct {
	BuiltinChecksEnabled bool `mapstructure:"builtin_checks_enabled"`
}

// SchedulerConfig drives the periodic scoring and evaluation sweeps
type SchedulerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	ScoreCron     string        `mapstructure:"score_cron"`
	EvaluateCron  string        `mapstructure:"evaluate_cron"`
	MaxParallel   int           `mapstructure:"max_parallel"`
	TenantTimeout time.Duration `mapstructure:"tenant_timeout"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.Database == "" {
			problems = append(problems, "database.host and database.database are required for postgres")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			problems = append(problems, "database.sqlite_path is required for sqlite")
		}
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Redis.Enabled && len(c.Redis.Addresses) == 0 {
		problems = append(problems, "redis.addresses is required when redis is enabled")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		problems = append(problems, "kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	if c.Scoring.ReportingPlaceholder < 0 || c.Scoring.ReportingPlaceholder > 100 {
		problems = append(problems, "scoring.reporting_placeholder must be between 0 and 100")
	}
	if c.Scheduler.MaxParallel < 1 {
		problems = append(problems, "scheduler.max_parallel must be at least 1")
	}
	if c.Scheduler.Enabled {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		for name, spec := range map[string]string{
			"scheduler.score_cron":    c.Scheduler.ScoreCron,
			"scheduler.evaluate_cron": c.Scheduler.EvaluateCron,
		} {
			if _, err := parser.Parse(spec); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errors.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
