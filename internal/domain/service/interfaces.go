package service

import (
	"context"
	"time"

	"github.com/turtacn/compliance/internal/domain/models"
)

//go:generate mockery --name ScoreCache --output mocks --outpkg mocks
// ScoreCache keeps the latest score per tenant and the rating thresholds close to the API.
// A miss is reported as (nil, nil). Callers treat every cache error as a miss.
// ScoreCache 缓存每个租户的最新分数以及评级阈值。
// 未命中返回 (nil, nil)。调用方将所有缓存错误视为未命中。
type ScoreCache interface {
	// GetLatest returns the cached latest score of a tenant.
	// GetLatest 返回租户缓存的最新分数。
	GetLatest(ctx context.Context, tenantID string) (*models.ComplianceScore, error)

	// SetLatest caches score unless a score calculated later is already cached.
	// SetLatest 缓存分数；若已缓存更晚计算的分数则忽略。
	SetLatest(ctx context.Context, score *models.ComplianceScore) error

	// GetThresholds returns the cached rating thresholds.
	// GetThresholds 返回缓存的评级阈值。
	GetThresholds(ctx context.Context) (*models.RatingThresholds, error)

	// SetThresholds caches the thresholds of the settings row updated at updatedAt (zero for the
	// defaults). A fill carrying an older updatedAt than the cached entry is ignored.
	// SetThresholds 缓存阈值；若缓存中的版本更新则忽略本次写入。
	SetThresholds(ctx context.Context, t models.RatingThresholds, updatedAt time.Time) error

	// InvalidateThresholds drops the cached thresholds.
	// InvalidateThresholds 删除缓存的阈值。
	InvalidateThresholds(ctx context.Context) error
}

//go:generate mockery --name EventPublisher --output mocks --outpkg mocks
// EventPublisher delivers domain events to downstream consumers (notifications, dashboards).
// Delivery is best effort; publishing failures never fail the originating operation.
// EventPublisher 将领域事件投递给下游消费者（通知、仪表盘）。
type EventPublisher interface {
	Publish(ctx context.Context, event *models.DomainEvent) error
}
