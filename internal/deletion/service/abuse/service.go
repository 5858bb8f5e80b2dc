// Package abuse scores a user's recent deletion activity against a table of
// weighted heuristics and recommends an action.
package abuse

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"deletionguard/internal/deletion/config"
	"deletionguard/internal/deletion/models"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/clock"
)

const (
	shortWindow = time.Hour
	longWindow  = 24 * time.Hour
	maxScore    = 100
)

// Ledger returns a user's attempts newer than since, oldest first.
type Ledger interface {
	UserAttempts(ctx context.Context, userID string, since time.Time) ([]models.DeletionAttempt, error)
}

type Service struct {
	ledger     Ledger
	thresholds config.AbuseConfig
	clock      clock.Clock
	logger     *slog.Logger
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

// WithThresholds overrides the score thresholds.
func WithThresholds(cfg config.AbuseConfig) Option {
	return func(s *Service) {
		s.thresholds = cfg
	}
}

func New(ledger Ledger, opts ...Option) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	svc := &Service{
		ledger:     ledger,
		thresholds: config.DefaultConfig().Abuse,
		clock:      clock.Real{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Detect scores the user's last hour and day of attempts. Metadata is
// optional; without it the user-agent signal never fires.
func (s *Service) Detect(ctx context.Context, userID string, metadata *models.RequestMetadata) (*models.AbuseSignal, error) {
	f, err := s.features(ctx, userID)
	if err != nil {
		return nil, err
	}
	f.metadata = metadata

	out := &models.AbuseSignal{
		Reasons: []string{},
		Signals: []string{},
	}
	for _, sig := range signals {
		if sig.fires(f) {
			out.Score += sig.weight
			out.Reasons = append(out.Reasons, sig.reason)
			out.Signals = append(out.Signals, sig.name)
		}
	}
	out.Score = min(max(out.Score, 0), maxScore)
	s.classify(out)

	if out.RecommendedAction != models.ActionNone {
		s.logger.DebugContext(ctx, "abuse signals fired",
			"user_id", userID,
			"score", out.Score,
			"signals", out.Signals,
			"action", out.RecommendedAction,
		)
	}
	return out, nil
}

func (s *Service) classify(sig *models.AbuseSignal) {
	t := s.thresholds
	switch {
	case sig.Score >= t.BlockThreshold:
		sig.RecommendedAction = models.ActionBlock
		sig.BlockDuration = t.DefaultBlockDuration
	case sig.Score >= t.ThrottleThreshold:
		sig.RecommendedAction = models.ActionThrottle
	case sig.Score >= t.ReviewThreshold:
		sig.RecommendedAction = models.ActionReview
	case len(sig.Signals) > 0:
		sig.RecommendedAction = models.ActionWarn
	default:
		sig.RecommendedAction = models.ActionNone
	}
	sig.IsAbusive = sig.Score >= t.ReviewThreshold
}

// Activity summarizes the user's windowed attempt history.
func (s *Service) Activity(ctx context.Context, userID string) (*models.UserActivity, error) {
	f, err := s.features(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserActivity{
		AttemptsLastHour:  f.attempts1h,
		FailuresLastHour:  f.failures1h,
		RejectedLastHour:  f.attempts1h - f.completed1h,
		AttemptsLast24h:   f.attempts24h,
		DistinctTargets1h: f.distinctTargets1h,
	}, nil
}

func (s *Service) features(ctx context.Context, userID string) (features, error) {
	now := s.clock.Now()
	attempts, err := s.ledger.UserAttempts(ctx, userID, now.Add(-longWindow))
	if err != nil {
		return features{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read attempt history")
	}

	var f features
	hourAgo := now.Add(-shortWindow)
	targets := make(map[string]struct{})
	sessions := make(map[string]struct{})
	for _, a := range attempts {
		f.attempts24h++
		if !a.Timestamp.After(hourAgo) {
			continue
		}
		f.attempts1h++
		if a.Outcome.Completed() {
			f.completed1h++
		}
		if a.Outcome == models.OutcomeFailure {
			f.failures1h++
		}
		if a.TargetID != "" {
			targets[a.TargetID] = struct{}{}
		}
		if a.SessionID != "" {
			sessions[a.SessionID] = struct{}{}
		}
	}
	f.distinctTargets1h = len(targets)
	f.distinctSession1h = len(sessions)
	return f, nil
}
