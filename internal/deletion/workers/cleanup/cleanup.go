// Package cleanup sweeps expired guard state on an interval so memory stays
// bounded between admissions.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"deletionguard/internal/deletion/metrics"
	"deletionguard/pkg/platform/clock"
)

// AttemptLedger drops attempts older than the retention window.
type AttemptLedger interface {
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// QuotaStore drops records idle since before cutoff.
type QuotaStore interface {
	PruneIdle(ctx context.Context, cutoff time.Time) (int, error)
}

// BlockRegistry removes expired blocks.
type BlockRegistry interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// InvalidationHistory drops history events older than cutoff.
type InvalidationHistory interface {
	PruneHistory(cutoff time.Time) int
}

// RuleWindows reports the longest window among the active rate-limit rules.
type RuleWindows interface {
	MaxWindow() time.Duration
}

// Result summarizes the removals performed by a cleanup run.
type Result struct {
	PrunedAttempts      int
	PrunedQuotas        int
	PurgedBlocks        int
	PrunedInvalidations int
}

// Service periodically removes expired deletion guard state.
type Service struct {
	ledger    AttemptLedger
	quotas    QuotaStore
	blocks    BlockRegistry
	history   InvalidationHistory
	windows   RuleWindows
	interval  time.Duration
	maxAge    time.Duration
	quotaIdle time.Duration
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

// WithInterval overrides the cleanup interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithRetention sets how long attempts and invalidation events are kept,
// and how long a quota record may sit idle.
func WithRetention(maxAge, quotaIdle time.Duration) Option {
	return func(s *Service) {
		if maxAge > 0 {
			s.maxAge = maxAge
		}
		if quotaIdle > 0 {
			s.quotaIdle = quotaIdle
		}
	}
}

// WithInvalidationHistory adds invalidation history to the sweep.
func WithInvalidationHistory(h InvalidationHistory) Option {
	return func(s *Service) {
		s.history = h
	}
}

// WithRuleWindows keeps attempts for at least the longest active rule
// window, read again on every sweep so swapped rule sets are honored.
func WithRuleWindows(w RuleWindows) Option {
	return func(s *Service) {
		s.windows = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(ledger AttemptLedger, quotas QuotaStore, blocks BlockRegistry, opts ...Option) (*Service, error) {
	if ledger == nil || quotas == nil || blocks == nil {
		return nil, fmt.Errorf("ledger, quotas, and blocks are required")
	}
	svc := &Service{
		ledger:    ledger,
		quotas:    quotas,
		blocks:    blocks,
		interval:  time.Hour,
		maxAge:    24 * time.Hour,
		quotaIdle: 32 * 24 * time.Hour,
		clock:     clock.Real{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "deletion guard cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Service) attemptRetention() time.Duration {
	if s.windows == nil {
		return s.maxAge
	}
	return max(s.maxAge, s.windows.MaxWindow())
}

// RunOnce performs a single sweep. Each step runs even when an earlier one
// fails; errors are joined.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	start := s.clock.Now()
	var res Result
	var errs []error

	pruned, err := s.ledger.Prune(ctx, start.Add(-s.attemptRetention()))
	if err != nil {
		errs = append(errs, fmt.Errorf("prune attempts: %w", err))
	} else {
		res.PrunedAttempts = pruned
	}

	idle, err := s.quotas.PruneIdle(ctx, start.Add(-s.quotaIdle))
	if err != nil {
		errs = append(errs, fmt.Errorf("prune idle quotas: %w", err))
	} else {
		res.PrunedQuotas = idle
	}

	purged, err := s.blocks.PurgeExpired(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("purge expired blocks: %w", err))
	} else {
		res.PurgedBlocks = purged
	}

	if s.history != nil {
		res.PrunedInvalidations = s.history.PruneHistory(start.Add(-s.maxAge))
	}

	status := "success"
	if len(errs) > 0 {
		status = "error"
	}
	if s.metrics != nil {
		s.metrics.IncrementCleanupRuns(status)
		s.metrics.AddCleanupRemoved("attempts", res.PrunedAttempts)
		s.metrics.AddCleanupRemoved("quotas", res.PrunedQuotas)
		s.metrics.AddCleanupRemoved("blocks", res.PurgedBlocks)
		s.metrics.AddCleanupRemoved("invalidations", res.PrunedInvalidations)
		s.metrics.ObserveCleanupDuration(s.clock.Now().Sub(start))
	}
	s.logger.DebugContext(ctx, "deletion guard cleanup complete",
		"attempts", res.PrunedAttempts,
		"quotas", res.PrunedQuotas,
		"blocks", res.PurgedBlocks,
		"invalidations", res.PrunedInvalidations,
	)

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}
