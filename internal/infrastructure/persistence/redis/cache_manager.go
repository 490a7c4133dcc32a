package redis

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/internal/domain/service"
	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/errors"
	"github.com/turtacn/compliance/pkg/logger"
)

const l1ThresholdsKey = "thresholds"

// setIfNewerScript stores a versioned value unless the entry already holds a newer version.
// KEYS[1] entry hash; ARGV[1] version; ARGV[2] encoded value; ARGV[3] ttl in ms.
const setIfNewerScript = `
local current = tonumber(redis.call('HGET', KEYS[1], 'version'))
local incoming = tonumber(ARGV[1])
if current and current > incoming then
  return 0
end
redis.call('HMSET', KEYS[1], 'version', ARGV[1], 'value', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`

type scoreCache struct {
	client        redis.UniversalClient
	latestTTL     time.Duration
	thresholdsTTL time.Duration
	l1            *gocache.Cache
	log           logger.Logger
}

// NewScoreCache creates a Redis-backed ScoreCache. Thresholds are additionally held in an
// in-process cache so rating lookups during sweeps do not hit Redis for every tenant.
func NewScoreCache(conn *RedisConnection, latestTTL time.Duration, log logger.Logger) service.ScoreCache {
	if latestTTL <= 0 {
		latestTTL = constants.LatestScoreCacheTTL
	}
	return &scoreCache{
		client:        conn.GetClient(),
		latestTTL:     latestTTL,
		thresholdsTTL: constants.ThresholdsCacheTTL,
		l1:            gocache.New(constants.ThresholdsL1CacheTTL, 2*constants.ThresholdsL1CacheTTL),
		log:           log.WithComponent("score_cache"),
	}
}

func latestKey(tenantID string) string {
	return constants.CacheKeyLatestScore + tenantID
}

// version orders cache writes by the time the cached row was produced. The zero time sorts first.
func version(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

// setIfNewer reports whether the value was stored.
func (c *scoreCache) setIfNewer(ctx context.Context, key string, ver int64, raw []byte, ttl time.Duration) (bool, error) {
	stored, err := c.client.Eval(ctx, setIfNewerScript, []string{key}, ver, raw, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (c *scoreCache) GetLatest(ctx context.Context, tenantID string) (*models.ComplianceScore, error) {
	raw, err := c.client.HGet(ctx, latestKey(tenantID), "value").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.ErrCache("get latest score", err)
	}
	var score models.ComplianceScore
	if err := json.Unmarshal(raw, &score); err != nil {
		c.log.Warn(ctx, "Discarding undecodable cached score", logger.String("tenant_id", tenantID), logger.Err(err))
		_ = c.client.Del(ctx, latestKey(tenantID)).Err()
		return nil, nil
	}
	return &score, nil
}

func (c *scoreCache) SetLatest(ctx context.Context, score *models.ComplianceScore) error {
	raw, err := json.Marshal(score)
	if err != nil {
		return errors.ErrCache("encode latest score", err)
	}
	stored, err := c.setIfNewer(ctx, latestKey(score.TenantID), version(score.CalculatedAt), raw, c.latestTTL)
	if err != nil {
		return errors.ErrCache("set latest score", err)
	}
	if !stored {
		c.log.Debug(ctx, "Skipped caching an older score", logger.String("tenant_id", score.TenantID))
	}
	return nil
}

func (c *scoreCache) GetThresholds(ctx context.Context) (*models.RatingThresholds, error) {
	if v, ok := c.l1.Get(l1ThresholdsKey); ok {
		t := v.(models.RatingThresholds)
		return &t, nil
	}
	raw, err := c.client.HGet(ctx, constants.CacheKeyThresholds, "value").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.ErrCache("get thresholds", err)
	}
	var t models.RatingThresholds
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, nil
	}
	c.l1.SetDefault(l1ThresholdsKey, t)
	return &t, nil
}

func (c *scoreCache) SetThresholds(ctx context.Context, t models.RatingThresholds, updatedAt time.Time) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return errors.ErrCache("encode thresholds", err)
	}
	stored, err := c.setIfNewer(ctx, constants.CacheKeyThresholds, version(updatedAt), raw, c.thresholdsTTL)
	if err != nil {
		return errors.ErrCache("set thresholds", err)
	}
	if !stored {
		// a newer row is cached; let the next read pick it up
		c.l1.Delete(l1ThresholdsKey)
		return nil
	}
	c.l1.SetDefault(l1ThresholdsKey, t)
	return nil
}

func (c *scoreCache) InvalidateThresholds(ctx context.Context) error {
	c.l1.Delete(l1ThresholdsKey)
	if err := c.client.Del(ctx, constants.CacheKeyThresholds).Err(); err != nil {
		return errors.ErrCache("invalidate thresholds", err)
	}
	return nil
}
