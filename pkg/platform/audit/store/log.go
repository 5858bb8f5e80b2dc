package store

import (
	"context"
	"log/slog"

	audit "deletionguard/pkg/platform/audit"
)

// LogStore writes every event to a structured logger and keeps a bounded
// in-memory tail for admin inspection. It is the default notification sink.
type LogStore struct {
	logger *slog.Logger
	tail   *InMemoryStore
}

// NewLogStore creates a LogStore retaining the last tailSize events.
func NewLogStore(logger *slog.Logger, tailSize int) *LogStore {
	return &LogStore{logger: logger, tail: NewInMemoryStore(tailSize)}
}

func (s *LogStore) Append(ctx context.Context, event audit.Event) error {
	level := slog.LevelInfo
	switch event.Severity {
	case audit.SeverityWarning:
		level = slog.LevelWarn
	case audit.SeverityCritical:
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "notification",
		"event_id", event.ID,
		"action", event.Action,
		"subject", event.Subject,
		"user_id", event.UserID,
		"decision", event.Decision,
		"reason", event.Reason,
		"request_id", event.RequestID,
		"category", audit.AuditEvent(event.Action).Category(),
	)
	return s.tail.Append(ctx, event)
}

func (s *LogStore) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return s.tail.ListRecent(ctx, limit)
}
