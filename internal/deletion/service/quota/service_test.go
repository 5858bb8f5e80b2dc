package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"deletionguard/internal/deletion/models"
	quotastore "deletionguard/internal/deletion/store/quota"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/clock"
	"deletionguard/pkg/testutil"
)

// QuotaServiceSuite covers lazy creation, rollover, and the atomic consume.
//
// Justification: a counter must never exceed its limit, even under
// concurrent consumes, and failed deletions must never consume.
type QuotaServiceSuite struct {
	suite.Suite
	ctx   context.Context
	clock *clock.Fake
	store *quotastore.InMemoryQuotaStore
}

func TestQuotaServiceSuite(t *testing.T) {
	suite.Run(t, new(QuotaServiceSuite))
}

func (s *QuotaServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	s.store = quotastore.NewInMemoryQuotaStore()
}

func (s *QuotaServiceSuite) service(limits models.QuotaLimits, opts ...Option) *Service {
	svc, err := New(s.store, limits, append([]Option{WithClock(s.clock)}, opts...)...)
	s.Require().NoError(err)
	return svc
}

func (s *QuotaServiceSuite) TestNew_Validation() {
	_, err := New(nil, models.QuotaLimits{Daily: 1, Weekly: 1, Monthly: 1})
	s.Error(err)

	_, err = New(s.store, models.QuotaLimits{Daily: 0, Weekly: 1, Monthly: 1})
	s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
}

func (s *QuotaServiceSuite) TestCheck_FreshUserUsesDefaults() {
	svc := s.service(models.QuotaLimits{Daily: 50, Weekly: 200, Monthly: 500})

	d, err := svc.Check(s.ctx, "new-user")
	s.Require().NoError(err)
	s.True(d.Allowed)
	s.Equal(50, d.Remaining)
	s.Equal("daily_quota", d.Rule)

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n, "check must not create records")
}

func (s *QuotaServiceSuite) TestConsume_RefusesAtLimit() {
	svc := s.service(models.QuotaLimits{Daily: 2, Weekly: 10, Monthly: 20})

	for range 2 {
		_, err := svc.Consume(s.ctx, "u1")
		s.Require().NoError(err)
	}
	_, err := svc.Consume(s.ctx, "u1")
	s.True(dErrors.HasCode(err, dErrors.CodeQuotaExceeded))

	q, err := svc.Get(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(2, q.DailyUsed)
	s.Equal(2, q.WeeklyUsed)
	s.Equal(2, q.MonthlyUsed)

	d, err := svc.Check(s.ctx, "u1")
	s.Require().NoError(err)
	s.False(d.Allowed)
	s.Equal(models.ReasonQuotaExceeded, d.Reason)
	s.Equal("daily_quota", d.Rule)
	s.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), d.ResetAt)
	s.Equal(12*time.Hour, d.RetryAfter)
}

func (s *QuotaServiceSuite) TestCheck_ReportsSoonestReset() {
	svc := s.service(models.QuotaLimits{Daily: 2, Weekly: 2, Monthly: 10})
	for range 2 {
		_, err := svc.Consume(s.ctx, "u1")
		s.Require().NoError(err)
	}

	s.Run("daily resets before weekly", func() {
		d, err := svc.Check(s.ctx, "u1")
		s.Require().NoError(err)
		s.Equal("daily_quota", d.Rule)
	})

	s.Run("after midnight only the weekly period is exceeded", func() {
		s.clock.Advance(13 * time.Hour)
		d, err := svc.Check(s.ctx, "u1")
		s.Require().NoError(err)
		s.False(d.Allowed)
		s.Equal("weekly_quota", d.Rule)
		s.Equal(time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC), d.ResetAt)
	})

	s.Run("weekly period rolls seven days after its anchor", func() {
		s.clock.Set(time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC))
		d, err := svc.Check(s.ctx, "u1")
		s.Require().NoError(err)
		s.True(d.Allowed)
	})
}

func (s *QuotaServiceSuite) TestMonthlyRollover() {
	s.clock.Set(time.Date(2026, 3, 31, 20, 0, 0, 0, time.UTC))
	svc := s.service(models.QuotaLimits{Daily: 5, Weekly: 10, Monthly: 1})

	_, err := svc.Consume(s.ctx, "u1")
	s.Require().NoError(err)

	d, err := svc.Check(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("monthly_quota", d.Rule)
	s.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), d.ResetAt)

	s.clock.Advance(4 * time.Hour)
	_, err = svc.Consume(s.ctx, "u1")
	s.Require().NoError(err)
}

func (s *QuotaServiceSuite) TestDailyRolloverUsesConfiguredLocation() {
	est := time.FixedZone("EST", -5*3600)
	// 22:00 local on March 10.
	s.clock.Set(time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC))
	svc := s.service(models.QuotaLimits{Daily: 1, Weekly: 10, Monthly: 20}, WithLocation(est))

	_, err := svc.Consume(s.ctx, "u1")
	s.Require().NoError(err)

	d, err := svc.Check(s.ctx, "u1")
	s.Require().NoError(err)
	s.False(d.Allowed)
	s.Equal(2*time.Hour, d.RetryAfter)

	s.clock.Advance(2 * time.Hour)
	d, err = svc.Check(s.ctx, "u1")
	s.Require().NoError(err)
	s.True(d.Allowed)
}

func (s *QuotaServiceSuite) TestUpdateLimits() {
	svc := s.service(models.QuotaLimits{Daily: 1, Weekly: 10, Monthly: 20})
	_, err := svc.Consume(s.ctx, "u1")
	s.Require().NoError(err)

	s.Run("invalid limits are refused", func() {
		_, err := svc.UpdateLimits(s.ctx, "u1", models.QuotaLimits{Daily: -1, Weekly: 1, Monthly: 1})
		s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	s.Run("raising limits keeps counters", func() {
		q, err := svc.UpdateLimits(s.ctx, "u1", models.QuotaLimits{Daily: 3, Weekly: 10, Monthly: 20})
		s.Require().NoError(err)
		s.Equal(1, q.DailyUsed)

		d, err := svc.Check(s.ctx, "u1")
		s.Require().NoError(err)
		s.True(d.Allowed)
		s.Equal(2, d.Remaining)
	})

	s.Run("list includes overridden users", func() {
		all, err := svc.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 1)
		s.Equal(3, all[0].Limits.Daily)
	})
}

func (s *QuotaServiceSuite) TestOverriddenLimitsSurviveIdleSweep() {
	svc := s.service(models.QuotaLimits{Daily: 50, Weekly: 200, Monthly: 500})
	_, err := svc.Consume(s.ctx, "casual")
	s.Require().NoError(err)
	q, err := svc.UpdateLimits(s.ctx, "restricted", models.QuotaLimits{Daily: 2, Weekly: 5, Monthly: 10})
	s.Require().NoError(err)
	s.True(q.Override)

	s.clock.Advance(33 * 24 * time.Hour)
	pruned, err := s.store.PruneIdle(s.ctx, s.clock.Now().Add(-32*24*time.Hour))
	s.Require().NoError(err)
	s.Equal(1, pruned)

	q, err = svc.Get(s.ctx, "restricted")
	s.Require().NoError(err)
	s.Equal(models.QuotaLimits{Daily: 2, Weekly: 5, Monthly: 10}, q.Limits)
}

func (s *QuotaServiceSuite) TestConsume_Concurrent() {
	svc := s.service(models.QuotaLimits{Daily: 10, Weekly: 100, Monthly: 100})

	result := testutil.RunConcurrent(50, func(int) error {
		_, err := svc.Consume(s.ctx, "hot-user")
		return err
	})

	s.Equal(int32(10), result.Successes)
	s.Equal(int32(40), result.Rejected)
	s.Zero(result.Errors)

	q, err := svc.Get(s.ctx, "hot-user")
	s.Require().NoError(err)
	s.Equal(10, q.DailyUsed)
}
