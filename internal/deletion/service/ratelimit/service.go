// Package ratelimit evaluates sliding-window rules against the attempt
// ledger. It only reads; attempts are recorded by the guard.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"deletionguard/internal/deletion/models"
	"deletionguard/internal/deletion/rules"
	"deletionguard/internal/deletion/store/ledger"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/clock"
)

// Ledger counts attempts inside a window.
type Ledger interface {
	Count(ctx context.Context, q ledger.Query) (ledger.WindowCount, error)
}

type Service struct {
	ledger Ledger
	rules  *rules.Holder
	clock  clock.Clock
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func New(l Ledger, holder *rules.Holder, opts ...Option) (*Service, error) {
	if l == nil {
		return nil, errors.New("ledger is required")
	}
	if holder == nil {
		return nil, errors.New("rules holder is required")
	}
	svc := &Service{
		ledger: l,
		rules:  holder,
		clock:  clock.Real{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check evaluates the rules for kind in declared order. The first rule at
// its cap rejects; otherwise Remaining is the tightest headroom seen.
// Rejected attempts never count toward a rule.
func (s *Service) Check(ctx context.Context, userID string, kind models.RequestKind) (*models.Decision, error) {
	now := s.clock.Now()
	applicable := s.rules.Load().For(kind)
	if len(applicable) == 0 {
		return models.Allow("", 0, math.MaxInt, time.Time{}), nil
	}

	var tightest *models.Decision
	for _, rule := range applicable {
		q := ledger.Query{
			UserID:          userID,
			Global:          rule.Scope == rules.ScopeGlobal,
			Since:           now.Add(-rule.Window),
			OnlyFailures:    rule.CountOnlyFailures,
			ExcludeRejected: true,
		}
		wc, err := s.ledger.Count(ctx, q)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count attempts for rule "+rule.Name)
		}

		resetAt := now.Add(rule.Window)
		if wc.Count > 0 {
			resetAt = wc.Oldest.Add(rule.Window)
		}

		if wc.Count >= rule.MaxRequests {
			d := models.Reject(models.ReasonRateLimitExceeded, rule.Name,
				fmt.Sprintf("rate limit %s exceeded: %d per %s", rule.Name, rule.MaxRequests, rule.Window),
				resetAt, resetAt.Sub(now))
			d.Limit = rule.MaxRequests
			s.logger.DebugContext(ctx, "rate limit rule at cap",
				"user_id", userID,
				"rule", rule.Name,
				"count", wc.Count,
				"retry_after", d.RetryAfter,
			)
			return d, nil
		}

		remaining := rule.MaxRequests - wc.Count
		if tightest == nil || remaining < tightest.Remaining {
			tightest = models.Allow(rule.Name, rule.MaxRequests, remaining, resetAt)
		}
	}
	return tightest, nil
}
