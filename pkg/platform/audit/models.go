package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Timestamp time.Time
	Action    string
	Subject   string // user ID, entity ID, or rule name the event is about
	UserID    string
	Decision  string // allowed, denied, blocked, failed
	Reason    string
	RequestID string
	Severity  Severity
}

// Severity grades how urgently an operator should look at an event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Store persists audit events. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

type AuditEvent string

const (
	EventDeletionRejected    AuditEvent = "deletion_rejected"
	EventAbuseDetected       AuditEvent = "abuse_detected"
	EventUserBlocked         AuditEvent = "user_blocked"
	EventUserUnblocked       AuditEvent = "user_unblocked"
	EventQuotaRaceRejected   AuditEvent = "quota_consume_rejected"
	EventInvalidationFailed  AuditEvent = "cache_invalidation_failed"
	EventInvalidationPartial AuditEvent = "cache_invalidation_partial"
	EventRulesUpdated        AuditEvent = "rate_limit_rules_updated"
	EventQuotaUpdated        AuditEvent = "user_quota_updated"
	EventGuardDegraded       AuditEvent = "deletion_guard_degraded"
)

// Category groups events by the team that consumes them.
type Category string

const (
	CategorySecurity   Category = "security"
	CategoryOperations Category = "operations"
)

// Category returns the consuming category for an event. Unknown events fall
// back to operations so they are never dropped.
func (e AuditEvent) Category() Category {
	switch e {
	case EventDeletionRejected, EventAbuseDetected, EventUserBlocked, EventUserUnblocked, EventQuotaRaceRejected:
		return CategorySecurity
	default:
		return CategoryOperations
	}
}
