package abuse

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"deletionguard/internal/deletion/models"
	"deletionguard/internal/deletion/store/ledger"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/clock"
)

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// AbuseSuite drives the heuristic table through the real ledger.
//
// Justification: the score must be the clamped sum of fired weights and
// the action must follow the threshold table exactly.
type AbuseSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Fake
	ledger  *ledger.InMemoryLedger
	service *Service
}

func TestAbuseSuite(t *testing.T) {
	suite.Run(t, new(AbuseSuite))
}

func (s *AbuseSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	s.ledger = ledger.NewInMemoryLedger(1000, 10000)
	svc, err := New(s.ledger, WithClock(s.clock))
	s.Require().NoError(err)
	s.service = svc
}

// seed appends n attempts spread over the last half hour.
func (s *AbuseSuite) seed(userID string, n int, fn func(i int, a *models.DeletionAttempt)) {
	now := s.clock.Now()
	for i := range n {
		a := models.DeletionAttempt{
			UserID:    userID,
			Timestamp: now.Add(-time.Duration(n-i) * time.Second),
			Kind:      models.KindSingle,
			Outcome:   models.OutcomeSuccess,
			TargetID:  fmt.Sprintf("post-%d", i),
			SessionID: "session-1",
		}
		if fn != nil {
			fn(i, &a)
		}
		s.Require().NoError(s.ledger.Append(s.ctx, a))
	}
}

func (s *AbuseSuite) detect(userID, ua string) *models.AbuseSignal {
	sig, err := s.service.Detect(s.ctx, userID, &models.RequestMetadata{UserAgent: ua})
	s.Require().NoError(err)
	return sig
}

func (s *AbuseSuite) TestCleanUser() {
	s.seed("u1", 5, nil)
	sig := s.detect("u1", browserUA)
	s.Zero(sig.Score)
	s.Empty(sig.Signals)
	s.Equal(models.ActionNone, sig.RecommendedAction)
	s.False(sig.IsAbusive)
}

func (s *AbuseSuite) TestUserAgentSignal() {
	cases := []struct {
		name  string
		ua    string
		fires bool
	}{
		{"empty", "", true},
		{"curl", "curl/8.4.0", true},
		{"python requests", "python-requests/2.31", true},
		{"crawler case insensitive", "SomeCRAWLER/1.0", true},
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", true},
		{"browser", browserUA, false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			sig := s.detect("ua-user", tc.ua)
			if tc.fires {
				s.Equal([]string{"bot_user_agent"}, sig.Signals)
				s.Equal(15, sig.Score)
				s.Equal(models.ActionWarn, sig.RecommendedAction)
			} else {
				s.Empty(sig.Signals)
			}
		})
	}

	s.Run("missing metadata skips the signal", func() {
		sig, err := s.service.Detect(s.ctx, "ua-user", nil)
		s.Require().NoError(err)
		s.Zero(sig.Score)
	})
}

func (s *AbuseSuite) TestThresholdTable() {
	s.Run("excessive requests alone warns", func() {
		s.seed("warn", 51, nil)
		sig := s.detect("warn", browserUA)
		s.Equal([]string{"excessive_requests"}, sig.Signals)
		s.Equal(30, sig.Score)
		s.Equal(models.ActionWarn, sig.RecommendedAction)
		s.False(sig.IsAbusive)
	})

	s.Run("excessive plus bot reviews", func() {
		s.seed("review", 51, nil)
		sig := s.detect("review", "curl/8.4.0")
		s.Equal(45, sig.Score)
		s.Equal(models.ActionReview, sig.RecommendedAction)
		s.True(sig.IsAbusive)
	})

	s.Run("repeated target pushes to throttle", func() {
		s.seed("throttle", 51, func(i int, a *models.DeletionAttempt) { a.TargetID = "post-1" })
		sig := s.detect("throttle", "curl/8.4.0")
		s.Equal(65, sig.Score)
		s.Equal(models.ActionThrottle, sig.RecommendedAction)
	})

	s.Run("failing bot hammering one target is blocked", func() {
		s.seed("block", 51, func(i int, a *models.DeletionAttempt) {
			a.TargetID = "post-1"
			a.Outcome = models.OutcomeFailure
		})
		sig := s.detect("block", "")
		s.Equal(90, sig.Score)
		s.Equal(models.ActionBlock, sig.RecommendedAction)
		s.Equal(24*time.Hour, sig.BlockDuration)
		s.True(sig.IsAbusive)
		s.ElementsMatch([]string{"excessive requests", "high failure rate", "repeated target", "suspicious user agent"}, sig.Reasons)
	})

	s.Run("score is clamped to 100", func() {
		s.seed("clamped", 600, func(i int, a *models.DeletionAttempt) {
			a.Timestamp = s.clock.Now().Add(-time.Duration(600-i) * 5 * time.Second)
			a.TargetID = "post-1"
			a.Outcome = models.OutcomeFailure
			a.SessionID = fmt.Sprintf("session-%d", i)
		})
		sig := s.detect("clamped", "")
		s.Len(sig.Signals, 6)
		s.Equal(100, sig.Score)
	})
}

func (s *AbuseSuite) TestHighFailureRateUsesCompletedAttempts() {
	s.seed("u1", 15, func(i int, a *models.DeletionAttempt) { a.Outcome = models.OutcomeRejected })
	sig := s.detect("u1", browserUA)
	s.NotContains(sig.Signals, "high_failure_rate")

	s.seed("u2", 12, func(i int, a *models.DeletionAttempt) {
		if i < 9 {
			a.Outcome = models.OutcomeFailure
		}
	})
	sig = s.detect("u2", browserUA)
	s.NotContains(sig.Signals, "high_failure_rate", "9 failures out of 12 is below the threshold")

	s.seed("u3", 11, func(i int, a *models.DeletionAttempt) { a.Outcome = models.OutcomeFailure })
	sig = s.detect("u3", browserUA)
	s.Contains(sig.Signals, "high_failure_rate")
}

func (s *AbuseSuite) TestMultiSessionAndDailyVolume() {
	s.seed("sessions", 31, func(i int, a *models.DeletionAttempt) { a.SessionID = fmt.Sprintf("s-%d", i%12) })
	sig := s.detect("sessions", browserUA)
	s.Equal([]string{"multi_session"}, sig.Signals)

	s.seed("daily", 501, func(i int, a *models.DeletionAttempt) {
		a.Timestamp = s.clock.Now().Add(-2*time.Hour - time.Duration(i)*time.Minute)
	})
	sig = s.detect("daily", browserUA)
	s.Equal([]string{"extreme_daily_volume"}, sig.Signals)
	s.Equal(35, sig.Score)
}

func (s *AbuseSuite) TestScoreIsMonotonicInAttempts() {
	last := 0
	for i := range 60 {
		s.Require().NoError(s.ledger.Append(s.ctx, models.DeletionAttempt{
			UserID:    "mono",
			Timestamp: s.clock.Now(),
			Outcome:   models.OutcomeFailure,
			TargetID:  "post-1",
		}))
		s.clock.Advance(time.Second)
		sig := s.detect("mono", "curl/8.4.0")
		s.GreaterOrEqual(sig.Score, last, "score dropped after attempt %d", i+1)
		last = sig.Score
	}
	s.Equal(90, last)
}

func (s *AbuseSuite) TestActivity() {
	s.seed("u1", 4, func(i int, a *models.DeletionAttempt) {
		switch i {
		case 0:
			a.Outcome = models.OutcomeFailure
		case 1:
			a.Outcome = models.OutcomeRejected
		}
	})
	act, err := s.service.Activity(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(4, act.AttemptsLastHour)
	s.Equal(1, act.FailuresLastHour)
	s.Equal(1, act.RejectedLastHour)
	s.Equal(4, act.AttemptsLast24h)
	s.Equal(4, act.DistinctTargets1h)
}

type failingLedger struct{}

func (failingLedger) UserAttempts(context.Context, string, time.Time) ([]models.DeletionAttempt, error) {
	return nil, errors.New("boom")
}

func (s *AbuseSuite) TestLedgerError() {
	svc, err := New(failingLedger{})
	s.Require().NoError(err)
	_, err = svc.Detect(s.ctx, "u1", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
