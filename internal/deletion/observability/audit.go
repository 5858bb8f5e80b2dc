// Package observability provides audit logging helpers for the deletion guard.
package observability

import (
	"context"
	"log/slog"

	"deletionguard/pkg/platform/attrs"
	"deletionguard/pkg/platform/audit"
	"deletionguard/pkg/requestcontext"
)

// AuditPublisher is the fire-and-forget notification sink.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit logs a security or operations event and forwards it to the
// publisher. Publisher failures are logged and never returned.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.AuditEvent, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}

	severity := severityFor(event)
	if logger != nil {
		args := append(attrList, "event", string(event), "log_type", "audit", "category", string(event.Category()))
		level := slog.LevelInfo
		if severity != audit.SeverityInfo {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, string(event), args...)
	}

	if publisher == nil {
		return
	}

	if err := publisher.Emit(ctx, audit.Event{
		Action:    string(event),
		Subject:   attrs.FirstString(attrList, "user_id", "entity_id", "rule", "subject"),
		UserID:    attrs.ExtractString(attrList, "user_id"),
		Decision:  attrs.ExtractString(attrList, "decision"),
		Reason:    attrs.ExtractString(attrList, "reason"),
		RequestID: requestID,
		Severity:  severity,
	}); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func severityFor(event audit.AuditEvent) audit.Severity {
	switch event {
	case audit.EventInvalidationFailed, audit.EventUserBlocked, audit.EventAbuseDetected:
		return audit.SeverityCritical
	case audit.EventInvalidationPartial, audit.EventGuardDegraded, audit.EventQuotaRaceRejected, audit.EventDeletionRejected:
		return audit.SeverityWarning
	default:
		return audit.SeverityInfo
	}
}
