package models

import "time"

// TenantStatus indicates whether a SACCO is still supervised.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant represents a SACCO under supervision.
// The record is owned by tenant management; this service only writes the compliance projection columns.
// Tenant 代表受监管的 SACCO。
// 该记录由租户管理模块拥有；本服务仅写入合规投影字段。
type Tenant struct {
	// TenantID is the unique identifier for the tenant.
	// TenantID 是租户的唯一标识符。
	TenantID string `gorm:"primaryKey;column:tenant_id;type:varchar(64)" json:"tenant_id"`

	// TenantName is the display name of the SACCO.
	// TenantName 是 SACCO 的显示名称。
	TenantName string `gorm:"type:varchar(255)" json:"tenant_name"`

	// Status indicates whether the tenant participates in scheduled sweeps.
	// Status 指示租户是否参与定时扫描。
	Status TenantStatus `gorm:"type:varchar(16);not null;default:active" json:"status"`

	// CurrentComplianceScore is the overall score of the latest calculation.
	// CurrentComplianceScore 是最近一次计算的综合分数。
	CurrentComplianceScore *float64 `json:"current_compliance_score,omitempty"`

	// ComplianceRating is the rating of the latest calculation.
	// ComplianceRating 是最近一次计算的评级。
	ComplianceRating *Rating `gorm:"type:varchar(16)" json:"compliance_rating,omitempty"`

	// LastComplianceReviewDate is when the projection was last refreshed.
	// LastComplianceReviewDate 是投影最后一次刷新的时间。
	LastComplianceReviewDate *time.Time `json:"last_compliance_review_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tenant) TableName() string { return "tenants" }

// ComplianceProjection is the subset of Tenant written after each score calculation.
type ComplianceProjection struct {
	Score      float64
	Rating     Rating
	ReviewedAt time.Time
}
