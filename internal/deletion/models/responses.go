package models

import (
	"math"
	"time"
)

// DecisionResponse is the wire form of a Decision.
type DecisionResponse struct {
	Allowed           bool         `json:"allowed"`
	Remaining         int          `json:"remaining"`
	Limit             int          `json:"limit,omitempty"`
	ResetAt           time.Time    `json:"reset_at,omitzero"`
	RetryAfterSeconds int          `json:"retry_after_seconds,omitempty"`
	Rule              string       `json:"rule,omitempty"`
	Reason            RejectReason `json:"reason,omitempty"`
	Message           string       `json:"message,omitempty"`
	Degraded          bool         `json:"degraded,omitempty"`
	Abuse             *AbuseSignal `json:"abuse,omitempty"`
}

func NewDecisionResponse(d *Decision) *DecisionResponse {
	return &DecisionResponse{
		Allowed:           d.Allowed,
		Remaining:         d.Remaining,
		Limit:             d.Limit,
		ResetAt:           d.ResetAt,
		RetryAfterSeconds: int(math.Ceil(d.RetryAfter.Seconds())),
		Rule:              d.Rule,
		Reason:            d.Reason,
		Message:           d.Message,
		Degraded:          d.Degraded,
		Abuse:             d.Abuse,
	}
}

type OutcomeResponse struct {
	Recorded      bool `json:"recorded"`
	QuotaConsumed bool `json:"quota_consumed"`
}

type BlockListResponse struct {
	Blocks []*BlockEntry `json:"blocks"`
	Total  int           `json:"total"`
}

type UnblockResponse struct {
	UserID    string `json:"user_id"`
	Unblocked bool   `json:"unblocked"`
}
