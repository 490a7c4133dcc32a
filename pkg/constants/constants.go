// Package constants defines system-wide constants for the compliance service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents the logging verbosity
type LogLevel int

const (
	// LogLevelDebug is the most verbose level
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the default level
	LogLevelInfo
	// LogLevelWarn reports degraded but recoverable conditions
	LogLevelWarn
	// LogLevelError reports failed operations
	LogLevelError
	// LogLevelFatal reports unrecoverable conditions
	LogLevelFatal
)

// ParseLogLevel converts a textual level into a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	case "fatal":
		return LogLevelFatal
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type for values stored in a context.Context
type ContextKey string

const (
	// ContextKeyRequestID carries the X-Request-ID of the inbound request
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeyTenantID carries the tenant being operated on
	ContextKeyTenantID ContextKey = "tenant_id"
	// ContextKeyActorID carries the user or system that triggered the operation
	ContextKeyActorID ContextKey = "actor_id"
)

// HeaderRequestID is the HTTP header used to propagate request ids
const HeaderRequestID = "X-Request-ID"

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode identifies a class of application error
type ErrorCode string

const (
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodeNotFound       ErrorCode = "not_found"
	ErrCodeInvalidState   ErrorCode = "invalid_state"
	ErrCodeConflict       ErrorCode = "conflict"
	ErrCodeDatabase       ErrorCode = "database_error"
	ErrCodeCache          ErrorCode = "cache_error"
	ErrCodeInternal       ErrorCode = "internal_error"
	ErrCodeUnavailable    ErrorCode = "temporarily_unavailable"
)

// ================================================================================
// Scoring Constants
// ================================================================================

const (
	// DefaultReportingPlaceholder is the reporting sub-score used until submission tracking exists
	DefaultReportingPlaceholder = 85.0

	// DefaultHistoryLimit is the number of score snapshots returned when no limit is given
	DefaultHistoryLimit = 10

	// MaxHistoryLimit caps history queries
	MaxHistoryLimit = 100

	// BylawApprovalFreshnessYears is how long an approved bye-law stays fully compliant
	BylawApprovalFreshnessYears = 2

	// AutomatedAlertTitlePrefix prefixes alert titles raised by compliance rules
	AutomatedAlertTitlePrefix = "Automated Alert: "
)

// ================================================================================
// Built-in Check Constants
// ================================================================================

const (
	// LowScoreCriticalBelow raises a critical alert when the overall score is below it
	LowScoreCriticalBelow = 40.0
	// LowScoreHighBelow raises a high alert when the overall score is below it
	LowScoreHighBelow = 60.0
	// PendingKYCAlertAbove raises an alert when more members than this have incomplete KYC
	PendingKYCAlertAbove = 50
	// OverdueBylawReviewDays is how many whole days a bye-law review may stay pending
	OverdueBylawReviewDays = 30
)

// ================================================================================
// Cache Constants
// ================================================================================

const (
	// CacheKeyLatestScore is the redis key prefix for a tenant's latest score
	CacheKeyLatestScore = "compliance:score:latest:"
	// CacheKeyThresholds is the redis key for the rating thresholds
	CacheKeyThresholds = "compliance:thresholds"
	// LatestScoreCacheTTL is the default lifetime of a cached latest score
	LatestScoreCacheTTL = 30 * time.Minute
	// ThresholdsCacheTTL bounds how long redis serves thresholds without consulting the store
	ThresholdsCacheTTL = 10 * time.Minute
	// ThresholdsL1CacheTTL is the in-process cache lifetime for rating thresholds
	ThresholdsL1CacheTTL = 1 * time.Minute
)

// ================================================================================
// Event Constants
// ================================================================================

// EventType names a domain event published to the message bus
type EventType string

const (
	EventScoreCalculated EventType = "score.calculated"
	EventAlertRaised     EventType = "alert.raised"
	EventAlertResolved   EventType = "alert.resolved"
	EventAuditScheduled  EventType = "audit.scheduled"
	EventAuditCompleted  EventType = "audit.completed"

	// Audit-trail only, not published
	EventRuleSaved         EventType = "rule.saved"
	EventThresholdsUpdated EventType = "thresholds.updated"
)

// SystemActor is recorded as the calculator for scheduled runs
const SystemActor = "system"
