// Package redis provides the Redis connection and the compliance score cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/compliance/internal/config"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

// RedisConnection manages the Redis client lifecycle and health monitoring.
// A single address connects standalone; several addresses connect to a cluster.
type RedisConnection struct {
	config *config.RedisConfig
	client redis.UniversalClient
	logger logger.Logger
}

// NewRedisConnection creates a connection manager. Call Connect before use.
func NewRedisConnection(cfg *config.RedisConfig, log logger.Logger) *RedisConnection {
	return &RedisConnection{config: cfg, logger: log.WithComponent("redis")}
}

// NewRedisConnectionWithClient wraps an existing client.
func NewRedisConnectionWithClient(client redis.UniversalClient, log logger.Logger) *RedisConnection {
	return &RedisConnection{config: &config.RedisConfig{}, client: client, logger: log.WithComponent("redis")}
}

// Connect builds the client and validates connectivity.
func (rc *RedisConnection) Connect(ctx context.Context) error {
	if rc.client != nil {
		return nil
	}
	if len(rc.config.Addresses) == 0 {
		return fmt.Errorf("%w: redis.addresses is empty", errors.ErrInvalidConfig)
	}

	poolSize := rc.config.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        rc.config.Addresses,
		Password:     rc.config.Password,
		DB:           rc.config.DB,
		PoolSize:     poolSize,
		MinIdleConns: rc.config.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return errors.ErrCache("connect to redis", err)
	}

	rc.client = client
	rc.logger.Info(ctx, "Redis connection established",
		logger.Any("addresses", rc.config.Addresses),
		logger.Int("pool_size", poolSize),
	)
	return nil
}

// GetClient returns the underlying client.
func (rc *RedisConnection) GetClient() redis.UniversalClient {
	return rc.client
}

// Ping checks Redis server connectivity.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	if rc.client == nil {
		return errors.ErrCache("ping redis", fmt.Errorf("not connected"))
	}
	if err := rc.client.Ping(ctx).Err(); err != nil {
		return errors.ErrCache("ping redis", err)
	}
	return nil
}

// HealthCheck pings Redis and reports pool statistics.
func (rc *RedisConnection) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	start := time.Now()
	if err := rc.Ping(ctx); err != nil {
		return nil, err
	}
	stats := rc.client.PoolStats()
	return map[string]interface{}{
		"status":      "healthy",
		"latency_ms":  time.Since(start).Milliseconds(),
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"hits":        stats.Hits,
		"misses":      stats.Misses,
	}, nil
}

// Close closes the client.
func (rc *RedisConnection) Close() error {
	if rc.client == nil {
		return nil
	}
	return rc.client.Close()
}
