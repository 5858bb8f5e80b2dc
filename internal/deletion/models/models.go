package models

import (
	"fmt"
	"time"

	dErrors "deletionguard/pkg/domain-errors"
)

// RequestKind selects which rate-limit rules apply to an admission.
type RequestKind string

const (
	KindSingle     RequestKind = "single"
	KindBulk       RequestKind = "bulk"
	KindValidation RequestKind = "validation"
)

// ParseRequestKind maps "" to single and rejects unknown kinds.
func ParseRequestKind(s string) (RequestKind, error) {
	if s == "" {
		return KindSingle, nil
	}
	k := RequestKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "kind must be one of single, bulk, validation")
	}
	return k, nil
}

func (k RequestKind) IsValid() bool {
	switch k {
	case KindSingle, KindBulk, KindValidation:
		return true
	}
	return false
}

// Outcome is the recorded result of one admission.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeRejected Outcome = "rejected"
)

// Completed reports whether the attempt reached the content store.
func (o Outcome) Completed() bool {
	return o == OutcomeSuccess || o == OutcomeFailure
}

// RejectReason explains why an admission was refused.
type RejectReason string

const (
	ReasonUserBlocked           RejectReason = "user_blocked"
	ReasonRateLimitExceeded     RejectReason = "rate_limit_exceeded"
	ReasonQuotaExceeded         RejectReason = "quota_exceeded"
	ReasonAbuseDetected         RejectReason = "abuse_detected"
	ReasonBlockCheckUnavailable RejectReason = "block_check_unavailable"
)

// Code maps the reason to the domain error code callers receive.
func (r RejectReason) Code() dErrors.Code {
	switch r {
	case ReasonRateLimitExceeded:
		return dErrors.CodeRateLimitExceeded
	case ReasonQuotaExceeded:
		return dErrors.CodeQuotaExceeded
	case ReasonUserBlocked, ReasonAbuseDetected:
		return dErrors.CodeUserBlocked
	default:
		return dErrors.CodeInternal
	}
}

// RequestMetadata is the client context the abuse detector inspects.
type RequestMetadata struct {
	UserAgent string
	ClientIP  string
	SessionID string
	TargetID  string
}

// DeletionAttempt is a write-once ledger entry.
type DeletionAttempt struct {
	ID        string
	UserID    string
	Timestamp time.Time
	TargetID  string
	Kind      RequestKind
	Outcome   Outcome
	ErrorCode string
	UserAgent string
	ClientIP  string
	SessionID string
}

// Decision is the result of one admission check. Rejections are values,
// not errors.
type Decision struct {
	Allowed    bool
	Remaining  int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
	Rule       string
	Reason     RejectReason
	Message    string
	// Degraded is set when a non-critical stage failed and was skipped.
	Degraded bool
	Abuse    *AbuseSignal
	Block    *BlockEntry
}

// Allow builds an admitting decision.
func Allow(rule string, limit, remaining int, resetAt time.Time) *Decision {
	return &Decision{Allowed: true, Rule: rule, Limit: limit, Remaining: remaining, ResetAt: resetAt}
}

// Reject builds a refusing decision.
func Reject(reason RejectReason, rule, message string, resetAt time.Time, retryAfter time.Duration) *Decision {
	if retryAfter < 0 {
		retryAfter = 0
	}
	return &Decision{
		Allowed:    false,
		Reason:     reason,
		Rule:       rule,
		Message:    message,
		ResetAt:    resetAt,
		RetryAfter: retryAfter,
	}
}

// Err converts a rejection into a typed domain error. Allowed decisions
// return nil.
func (d *Decision) Err() error {
	if d == nil || d.Allowed {
		return nil
	}
	msg := d.Message
	if msg == "" {
		msg = fmt.Sprintf("deletion rejected: %s", d.Reason)
	}
	return dErrors.New(d.Reason.Code(), msg)
}

// BlockSource records who created a block.
type BlockSource string

const (
	SourceAbuseDetector BlockSource = "abuse_detector"
	SourceOperator      BlockSource = "operator"
)

// BlockEntry denies a user until BlockedUntil. A zero BlockedUntil never
// expires and needs a manual unblock.
type BlockEntry struct {
	UserID       string      `json:"user_id"`
	BlockedAt    time.Time   `json:"blocked_at"`
	BlockedUntil time.Time   `json:"blocked_until,omitzero"`
	Reason       string      `json:"reason"`
	Source       BlockSource `json:"source"`
}

func NewBlockEntry(userID string, now time.Time, duration time.Duration, reason string, source BlockSource) *BlockEntry {
	entry := &BlockEntry{
		UserID:    userID,
		BlockedAt: now,
		Reason:    reason,
		Source:    source,
	}
	if duration > 0 {
		entry.BlockedUntil = now.Add(duration)
	}
	return entry
}

func (b *BlockEntry) Indefinite() bool {
	return b.BlockedUntil.IsZero()
}

// IsExpired reports whether now is past BlockedUntil.
func (b *BlockEntry) IsExpired(now time.Time) bool {
	return !b.Indefinite() && now.After(b.BlockedUntil)
}

// Remaining returns the time left on the block, zero for indefinite or
// expired entries.
func (b *BlockEntry) Remaining(now time.Time) time.Duration {
	if b.Indefinite() || b.IsExpired(now) {
		return 0
	}
	return b.BlockedUntil.Sub(now)
}

// AbuseAction is the detector's recommendation.
type AbuseAction string

const (
	ActionNone     AbuseAction = "none"
	ActionWarn     AbuseAction = "warn"
	ActionReview   AbuseAction = "review"
	ActionThrottle AbuseAction = "throttle"
	ActionBlock    AbuseAction = "block"
)

// AbuseSignal is derived per admission and never stored.
type AbuseSignal struct {
	Score             int           `json:"score"`
	Reasons           []string      `json:"reasons"`
	Signals           []string      `json:"signals"`
	RecommendedAction AbuseAction   `json:"recommended_action"`
	BlockDuration     time.Duration `json:"-"`
	IsAbusive         bool          `json:"is_abusive"`
}
