package guard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"deletionguard/internal/deletion/models"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/audit"
)

// Admission stages, in evaluation order.
const (
	stageBlock = "block"
	stageRate  = "rate_limit"
	stageQuota = "quota"
	stageAbuse = "abuse"
)

// Admission is one admission query.
type Admission struct {
	UserID   string
	Kind     models.RequestKind
	Metadata *models.RequestMetadata
}

// Admit runs the block, rate-limit, quota, and abuse checks in order and
// stops at the first rejection. A rejected admission is recorded in the
// ledger; an admitted one is recorded later by RecordOutcome.
//
// Block registry failures reject with block_check_unavailable. Failures in
// the later stages skip that stage and mark the decision Degraded.
func (s *Service) Admit(ctx context.Context, in Admission) (*models.Decision, error) {
	start := s.clock.Now()
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user_id is required")
	}
	if in.Kind == "" {
		in.Kind = models.KindSingle
	}
	if !in.Kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown request kind %q", in.Kind))
	}

	decision := s.evaluate(ctx, in, start)
	if !decision.Allowed {
		s.recordRejection(ctx, in, decision)
	}
	if s.metrics != nil {
		s.metrics.ObserveAdmission(decision.Allowed, string(decision.Reason), s.clock.Now().Sub(start))
	}
	return decision, nil
}

func (s *Service) evaluate(ctx context.Context, in Admission, now time.Time) *models.Decision {
	entry, err := s.blocks.Check(ctx, in.UserID)
	if err != nil {
		s.degraded(ctx, stageBlock, in.UserID, err)
		return models.Reject(models.ReasonBlockCheckUnavailable, "",
			"block registry unavailable; deletion refused", time.Time{}, 0)
	}
	if entry != nil {
		return blockedDecision(entry, now)
	}

	degraded := false

	rate, err := s.limiter.Check(ctx, in.UserID, in.Kind)
	if err != nil {
		s.degraded(ctx, stageRate, in.UserID, err)
		degraded = true
		rate = nil
	} else if !rate.Allowed {
		return rate
	}

	quota, err := s.quotas.Check(ctx, in.UserID)
	if err != nil {
		s.degraded(ctx, stageQuota, in.UserID, err)
		degraded = true
		quota = nil
	} else if !quota.Allowed {
		quota.Degraded = degraded
		return quota
	}

	signal, err := s.abuse.Detect(ctx, in.UserID, in.Metadata)
	if err != nil {
		s.degraded(ctx, stageAbuse, in.UserID, err)
		degraded = true
		signal = nil
	}
	if signal != nil {
		if s.metrics != nil {
			s.metrics.ObserveAbuseScore(signal.Score)
		}
		if signal.RecommendedAction == models.ActionBlock {
			d := s.blockForAbuse(ctx, in.UserID, signal, now)
			d.Degraded = degraded
			return d
		}
		if signal.IsAbusive {
			s.logAudit(ctx, audit.EventAbuseDetected,
				"user_id", in.UserID,
				"decision", "allowed",
				"reason", strings.Join(signal.Reasons, ", "),
				"score", signal.Score,
				"action", string(signal.RecommendedAction),
			)
		}
	}

	d := tighter(rate, quota)
	d.Degraded = degraded
	if signal != nil && signal.RecommendedAction != models.ActionNone {
		d.Abuse = signal
	}
	return d
}

func blockedDecision(entry *models.BlockEntry, now time.Time) *models.Decision {
	msg := "user is blocked from deleting content"
	if entry.Reason != "" {
		msg = fmt.Sprintf("user is blocked from deleting content: %s", entry.Reason)
	}
	d := models.Reject(models.ReasonUserBlocked, "", msg, entry.BlockedUntil, entry.Remaining(now))
	d.Block = entry
	return d
}

// blockForAbuse writes a block for the detector's recommendation. The
// admission is rejected even when the write fails.
func (s *Service) blockForAbuse(ctx context.Context, userID string, signal *models.AbuseSignal, now time.Time) *models.Decision {
	reason := "abuse detected: " + strings.Join(signal.Reasons, ", ")
	s.logAudit(ctx, audit.EventAbuseDetected,
		"user_id", userID,
		"decision", "blocked",
		"reason", reason,
		"score", signal.Score,
		"signals", signal.Signals,
	)

	entry, err := s.blocks.Block(ctx, userID, signal.BlockDuration, reason, models.SourceAbuseDetector)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist abuse block", "user_id", userID, "error", err)
		entry = models.NewBlockEntry(userID, now, signal.BlockDuration, reason, models.SourceAbuseDetector)
	} else {
		if s.metrics != nil {
			s.metrics.IncrementBlocksCreated(string(models.SourceAbuseDetector))
		}
		s.logAudit(ctx, audit.EventUserBlocked,
			"user_id", userID,
			"decision", "blocked",
			"reason", reason,
			"source", string(models.SourceAbuseDetector),
			"blocked_until", entry.BlockedUntil,
		)
	}

	d := models.Reject(models.ReasonAbuseDetected, "", reason, entry.BlockedUntil, entry.Remaining(now))
	d.Abuse = signal
	d.Block = entry
	return d
}

// tighter merges the rate and quota allowances into the one with less
// headroom. Either may be nil when its stage was skipped.
func tighter(rate, quota *models.Decision) *models.Decision {
	switch {
	case rate == nil && quota == nil:
		return models.Allow("", 0, 0, time.Time{})
	case rate == nil:
		return quota
	case quota == nil:
		return rate
	case quota.Remaining < rate.Remaining:
		return quota
	default:
		return rate
	}
}

func (s *Service) recordRejection(ctx context.Context, in Admission, d *models.Decision) {
	attempt := models.DeletionAttempt{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Timestamp: s.clock.Now(),
		Kind:      in.Kind,
		Outcome:   models.OutcomeRejected,
		ErrorCode: string(d.Reason),
	}
	if m := in.Metadata; m != nil {
		attempt.TargetID = m.TargetID
		attempt.UserAgent = m.UserAgent
		attempt.ClientIP = m.ClientIP
		attempt.SessionID = m.SessionID
	}
	if err := s.ledger.Append(ctx, attempt); err != nil {
		s.logger.WarnContext(ctx, "failed to record rejected attempt", "user_id", in.UserID, "error", err)
	}

	if s.metrics != nil && d.Rule != "" {
		s.metrics.IncrementRuleRejection(d.Rule)
	}
	s.logAudit(ctx, audit.EventDeletionRejected,
		"user_id", in.UserID,
		"decision", "denied",
		"reason", string(d.Reason),
		"rule", d.Rule,
		"kind", string(in.Kind),
		"retry_after", d.RetryAfter,
	)
}

func (s *Service) degraded(ctx context.Context, stage, userID string, err error) {
	if s.metrics != nil {
		s.metrics.IncrementDegraded(stage)
	}
	s.logAudit(ctx, audit.EventGuardDegraded,
		"user_id", userID,
		"stage", stage,
		"reason", err.Error(),
	)
}
