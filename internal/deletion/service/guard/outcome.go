package guard

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"deletionguard/internal/deletion/models"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/audit"
)

// Outcome reports the result of an admitted deletion.
type Outcome struct {
	UserID    string
	TargetID  string
	Kind      models.RequestKind
	Success   bool
	ErrorCode string
	Metadata  *models.RequestMetadata
}

// OutcomeResult says what RecordOutcome did.
type OutcomeResult struct {
	Recorded      bool
	QuotaConsumed bool
	Quota         *models.UserQuota
}

// RecordOutcome appends one success or failure attempt. Only a success
// consumes quota. A consume refused because a concurrent deletion used the
// last unit is reported, not returned as an error: the deletion already
// happened.
func (s *Service) RecordOutcome(ctx context.Context, in Outcome) (*OutcomeResult, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user_id is required")
	}
	if in.Kind == "" {
		in.Kind = models.KindSingle
	}

	outcome := models.OutcomeFailure
	if in.Success {
		outcome = models.OutcomeSuccess
	}
	attempt := models.DeletionAttempt{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Timestamp: s.clock.Now(),
		TargetID:  in.TargetID,
		Kind:      in.Kind,
		Outcome:   outcome,
		ErrorCode: in.ErrorCode,
	}
	if m := in.Metadata; m != nil {
		attempt.UserAgent = m.UserAgent
		attempt.ClientIP = m.ClientIP
		attempt.SessionID = m.SessionID
		if attempt.TargetID == "" {
			attempt.TargetID = m.TargetID
		}
	}
	if err := s.ledger.Append(ctx, attempt); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record deletion outcome")
	}
	if s.metrics != nil {
		s.metrics.IncrementOutcome(string(outcome))
	}

	result := &OutcomeResult{Recorded: true}
	if !in.Success {
		return result, nil
	}

	q, err := s.quotas.Consume(ctx, in.UserID)
	switch {
	case err == nil:
		result.QuotaConsumed = true
		result.Quota = q
		s.countConsume("consumed")
	case dErrors.HasCode(err, dErrors.CodeQuotaExceeded):
		s.countConsume("refused")
		s.logAudit(ctx, audit.EventQuotaRaceRejected,
			"user_id", in.UserID,
			"decision", "not_consumed",
			"reason", err.Error(),
			"target_id", in.TargetID,
		)
	default:
		s.countConsume("error")
		s.degraded(ctx, stageQuota, in.UserID, err)
	}
	return result, nil
}

func (s *Service) countConsume(result string) {
	if s.metrics != nil {
		s.metrics.IncrementQuotaConsume(result)
	}
}
