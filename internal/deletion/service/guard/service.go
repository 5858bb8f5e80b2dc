// Package guard is the single entry point callers consult before deleting
// content. It composes the block registry, rate limiter, quota manager, and
// abuse detector, and records every decision in the attempt ledger.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"deletionguard/internal/deletion/metrics"
	"deletionguard/internal/deletion/models"
	"deletionguard/internal/deletion/observability"
	"deletionguard/internal/deletion/rules"
	"deletionguard/pkg/platform/audit"
	"deletionguard/pkg/platform/clock"
)

type BlockRegistry interface {
	Check(ctx context.Context, userID string) (*models.BlockEntry, error)
	Block(ctx context.Context, userID string, duration time.Duration, reason string, source models.BlockSource) (*models.BlockEntry, error)
	Unblock(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context) ([]*models.BlockEntry, error)
}

type RateLimiter interface {
	Check(ctx context.Context, userID string, kind models.RequestKind) (*models.Decision, error)
}

type QuotaManager interface {
	Check(ctx context.Context, userID string) (*models.Decision, error)
	Consume(ctx context.Context, userID string) (*models.UserQuota, error)
	UpdateLimits(ctx context.Context, userID string, limits models.QuotaLimits) (*models.UserQuota, error)
	Get(ctx context.Context, userID string) (*models.UserQuota, error)
	List(ctx context.Context) ([]*models.UserQuota, error)
}

type AbuseDetector interface {
	Detect(ctx context.Context, userID string, metadata *models.RequestMetadata) (*models.AbuseSignal, error)
	Activity(ctx context.Context, userID string) (*models.UserActivity, error)
}

type AttemptLedger interface {
	Append(ctx context.Context, attempt models.DeletionAttempt) error
	Stats(ctx context.Context) (models.LedgerStats, error)
}

// Deps are the collaborators the guard composes. All are required.
type Deps struct {
	Blocks  BlockRegistry
	Limiter RateLimiter
	Quotas  QuotaManager
	Abuse   AbuseDetector
	Ledger  AttemptLedger
	Rules   *rules.Holder
}

func (d Deps) validate() error {
	switch {
	case d.Blocks == nil:
		return errors.New("block registry is required")
	case d.Limiter == nil:
		return errors.New("rate limiter is required")
	case d.Quotas == nil:
		return errors.New("quota manager is required")
	case d.Abuse == nil:
		return errors.New("abuse detector is required")
	case d.Ledger == nil:
		return errors.New("attempt ledger is required")
	case d.Rules == nil:
		return errors.New("rules holder is required")
	}
	return nil
}

type Service struct {
	blocks         BlockRegistry
	limiter        RateLimiter
	quotas         QuotaManager
	abuse          AbuseDetector
	ledger         AttemptLedger
	rules          *rules.Holder
	clock          clock.Clock
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher observability.AuditPublisher
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher observability.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(deps Deps, opts ...Option) (*Service, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	svc := &Service{
		blocks:  deps.Blocks,
		limiter: deps.Limiter,
		quotas:  deps.Quotas,
		abuse:   deps.Abuse,
		ledger:  deps.Ledger,
		rules:   deps.Rules,
		clock:   clock.Real{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attrs ...any) {
	observability.LogAudit(ctx, s.logger, s.auditPublisher, event, attrs...)
}
