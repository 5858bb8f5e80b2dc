package handler

import (
	"time"

	"deletionguard/internal/cache/invalidation"
	"deletionguard/internal/deletion/models"
	"deletionguard/internal/deletion/rules"
	"deletionguard/pkg/validation"
)

// InvalidateRequest is the wire form of an invalidation call.
type InvalidateRequest struct {
	invalidation.Request
	SkipVerify    bool  `json:"skip_verify"`
	RetryAttempts int   `json:"retry_attempts" validate:"min=0,max=10"`
	RetryDelayMs  int64 `json:"retry_delay_ms" validate:"min=0,max=60000"`
}

func (r *InvalidateRequest) Validate() error {
	return validation.Validate(r)
}

func (r *InvalidateRequest) Options() invalidation.Options {
	return invalidation.Options{
		SkipVerify:    r.SkipVerify,
		RetryAttempts: r.RetryAttempts,
		RetryDelay:    time.Duration(r.RetryDelayMs) * time.Millisecond,
	}
}

type StatsResponse struct {
	Guard        *models.GuardStats `json:"guard"`
	Invalidation invalidation.Stats `json:"invalidation"`
}

type HistoryResponse struct {
	EntityID string               `json:"entity_id"`
	Events   []invalidation.Event `json:"events"`
	Total    int                  `json:"total"`
}

type RulesResponse struct {
	rules.Document
	Count int `json:"count"`
}
