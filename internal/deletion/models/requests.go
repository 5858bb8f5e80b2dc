package models

import (
	"time"

	dErrors "deletionguard/pkg/domain-errors"
	s "deletionguard/pkg/platform/strings"
	"deletionguard/pkg/validation"
)

// AdmitRequest asks whether a user may delete content now.
type AdmitRequest struct {
	UserID    string `json:"user_id" validate:"userid"`
	Kind      string `json:"kind" validate:"omitempty,oneof=single bulk validation"`
	TargetID  string `json:"target_id" validate:"targetid"`
	SessionID string `json:"session_id" validate:"targetid"`
}

func (r *AdmitRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.UserID, &r.Kind, &r.TargetID, &r.SessionID)
}

func (r *AdmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// OutcomeRequest reports what happened after an admitted deletion.
type OutcomeRequest struct {
	UserID    string `json:"user_id" validate:"userid"`
	TargetID  string `json:"target_id" validate:"required,notblank,targetid"`
	Kind      string `json:"kind" validate:"omitempty,oneof=single bulk validation"`
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code" validate:"max=128"`
	SessionID string `json:"session_id" validate:"targetid"`
}

func (r *OutcomeRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.UserID, &r.TargetID, &r.Kind, &r.ErrorCode, &r.SessionID)
}

func (r *OutcomeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// BlockRequest is an operator block. DurationSeconds of zero blocks
// indefinitely.
type BlockRequest struct {
	UserID          string `json:"user_id" validate:"userid"`
	DurationSeconds int64  `json:"duration_seconds" validate:"min=0"`
	Reason          string `json:"reason" validate:"required,notblank,max=512"`
}

func (r *BlockRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.UserID, &r.Reason)
}

func (r *BlockRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *BlockRequest) Duration() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}

// UpdateQuotaRequest replaces a user's quota limits.
type UpdateQuotaRequest struct {
	Daily   int `json:"daily" validate:"min=1"`
	Weekly  int `json:"weekly" validate:"min=1"`
	Monthly int `json:"monthly" validate:"min=1"`
}

func (r *UpdateQuotaRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *UpdateQuotaRequest) Limits() QuotaLimits {
	return QuotaLimits{Daily: r.Daily, Weekly: r.Weekly, Monthly: r.Monthly}
}
