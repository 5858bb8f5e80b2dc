// Package quota enforces daily, weekly, and monthly deletion quotas per user.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"deletionguard/internal/deletion/models"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/clock"
)

// Store persists quota records. Update must run fn atomically per user.
type Store interface {
	Get(ctx context.Context, userID string) (*models.UserQuota, error)
	Update(ctx context.Context, userID string, init func() *models.UserQuota, fn func(q *models.UserQuota) error) (*models.UserQuota, error)
	ListAll(ctx context.Context) ([]*models.UserQuota, error)
}

type Service struct {
	store    Store
	defaults models.QuotaLimits
	loc      *time.Location
	clock    clock.Clock
	logger   *slog.Logger
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

// WithLocation sets the timezone daily and monthly periods roll over in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(store Store, defaults models.QuotaLimits, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("quota store is required")
	}
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	svc := &Service{
		store:    store,
		defaults: defaults,
		loc:      time.UTC,
		clock:    clock.Real{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) newQuota(userID string, now time.Time) func() *models.UserQuota {
	return func() *models.UserQuota {
		return models.NewUserQuota(userID, s.defaults, now)
	}
}

// Check reports whether the user has headroom in every period. It does not
// consume and does not persist the rollover it applies.
func (s *Service) Check(ctx context.Context, userID string) (*models.Decision, error) {
	now := s.clock.Now()
	q, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load quota")
	}
	if q == nil {
		q = models.NewUserQuota(userID, s.defaults, now)
	}
	q.Rollover(now, s.loc)
	return s.decide(q, now), nil
}

func (s *Service) decide(q *models.UserQuota, now time.Time) *models.Decision {
	if exceeded := q.Exceeded(); len(exceeded) > 0 {
		period := exceeded[0]
		resetAt := q.ResetAt(period, s.loc)
		for _, p := range exceeded[1:] {
			if r := q.ResetAt(p, s.loc); r.Before(resetAt) {
				period, resetAt = p, r
			}
		}
		d := models.Reject(models.ReasonQuotaExceeded, period.RuleName(),
			fmt.Sprintf("%s deletion quota of %d reached", period, limitFor(q.Limits, period)),
			resetAt, resetAt.Sub(now))
		d.Limit = limitFor(q.Limits, period)
		return d
	}

	period := models.PeriodDaily
	headroom := q.Limits.Daily - q.DailyUsed
	if h := q.Limits.Weekly - q.WeeklyUsed; h < headroom {
		period, headroom = models.PeriodWeekly, h
	}
	if h := q.Limits.Monthly - q.MonthlyUsed; h < headroom {
		period, headroom = models.PeriodMonthly, h
	}
	return models.Allow(period.RuleName(), limitFor(q.Limits, period), headroom, q.ResetAt(period, s.loc))
}

func limitFor(l models.QuotaLimits, p models.QuotaPeriod) int {
	switch p {
	case models.PeriodDaily:
		return l.Daily
	case models.PeriodWeekly:
		return l.Weekly
	default:
		return l.Monthly
	}
}

// Consume increments all three counters for one successful deletion. The
// check and the increment happen under the user's lock, so concurrent
// callers can never push a counter past its limit.
func (s *Service) Consume(ctx context.Context, userID string) (*models.UserQuota, error) {
	now := s.clock.Now()
	q, err := s.store.Update(ctx, userID, s.newQuota(userID, now), func(q *models.UserQuota) error {
		q.Rollover(now, s.loc)
		if exceeded := q.Exceeded(); len(exceeded) > 0 {
			return dErrors.New(dErrors.CodeQuotaExceeded, fmt.Sprintf("%s deletion quota reached", exceeded[0]))
		}
		q.Increment(now)
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeQuotaExceeded) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume quota")
	}
	return q, nil
}

// UpdateLimits overrides one user's limits. Counters are kept.
func (s *Service) UpdateLimits(ctx context.Context, userID string, limits models.QuotaLimits) (*models.UserQuota, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	q, err := s.store.Update(ctx, userID, s.newQuota(userID, now), func(q *models.UserQuota) error {
		q.Rollover(now, s.loc)
		q.Limits = limits
		q.Override = true
		return nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update quota limits")
	}
	s.logger.InfoContext(ctx, "quota limits updated",
		"user_id", userID,
		"daily", limits.Daily,
		"weekly", limits.Weekly,
		"monthly", limits.Monthly,
	)
	return q, nil
}

// Get returns the user's quota with rollover applied, or defaults when the
// user has no record.
func (s *Service) Get(ctx context.Context, userID string) (*models.UserQuota, error) {
	now := s.clock.Now()
	q, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load quota")
	}
	if q == nil {
		return models.NewUserQuota(userID, s.defaults, now), nil
	}
	q.Rollover(now, s.loc)
	return q, nil
}

func (s *Service) List(ctx context.Context) ([]*models.UserQuota, error) {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list quotas")
	}
	now := s.clock.Now()
	for _, q := range all {
		q.Rollover(now, s.loc)
	}
	return all, nil
}
