package models

import "time"

// Member is a SACCO member. Only the tenant link is read here.
type Member struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TenantID  string    `gorm:"type:varchar(64);not null;index" json:"tenant_id"`
	FullName  string    `gorm:"type:varchar(255)" json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Member) TableName() string { return "members" }

// MemberKYC holds the three verification flags of a member.
// A member counts as fully verified only when all three are set.
type MemberKYC struct {
	MemberID          string    `gorm:"primaryKey;type:varchar(36)" json:"member_id"`
	IdentityVerified  bool      `gorm:"not null;default:false" json:"identity_verified"`
	ResidenceVerified bool      `gorm:"not null;default:false" json:"residence_verified"`
	IncomeVerified    bool      `gorm:"not null;default:false" json:"income_verified"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (MemberKYC) TableName() string { return "member_kyc" }

// BylawReviewStatus is the review state of a bye-law submission.
type BylawReviewStatus string

const (
	BylawStatusPending          BylawReviewStatus = "PENDING"
	BylawStatusUnderReview      BylawReviewStatus = "UNDER_REVIEW"
	BylawStatusApproved         BylawReviewStatus = "APPROVED"
	BylawStatusRejected         BylawReviewStatus = "REJECTED"
	BylawStatusRevisionRequired BylawReviewStatus = "REVISION_REQUIRED"
)

// BylawReview is a bye-law submission and its regulator review.
type BylawReview struct {
	ID           string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TenantID     string            `gorm:"type:varchar(64);not null;index" json:"tenant_id"`
	Status       BylawReviewStatus `gorm:"type:varchar(32);not null" json:"status"`
	SubmittedAt  time.Time         `gorm:"not null;index" json:"submitted_at"`
	ApprovalDate *time.Time        `json:"approval_date,omitempty"`
}

func (BylawReview) TableName() string { return "bylaw_reviews" }

// IssueStatus is the handling state of a compliance issue.
type IssueStatus string

const (
	IssueStatusOpen          IssueStatus = "open"
	IssueStatusInvestigating IssueStatus = "investigating"
	IssueStatusResolved      IssueStatus = "resolved"
	IssueStatusEscalated     IssueStatus = "escalated"
)

// ComplianceIssue is raised by inspectors. Only open issues affect the score.
type ComplianceIssue struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TenantID  string      `gorm:"type:varchar(64);not null;index" json:"tenant_id"`
	Title     string      `gorm:"type:varchar(255)" json:"title"`
	Severity  Severity    `gorm:"type:varchar(16);not null" json:"severity"`
	Status    IssueStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

func (ComplianceIssue) TableName() string { return "compliance_issues" }
