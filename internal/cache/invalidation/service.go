// Package invalidation purges every cache tag and path that can still serve
// a deleted entity, verifies the purge, and retries failed cycles.
package invalidation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"deletionguard/internal/cache/metrics"
	"deletionguard/internal/deletion/observability"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/audit"
	"deletionguard/pkg/platform/clock"
	"deletionguard/pkg/platform/tracer"
)

const (
	defaultRetryAttempts = 3
	maxRetryAttempts     = 10
	defaultRetryDelay    = time.Second
	defaultConcurrency   = 8
)

// Provider purges one cache key.
type Provider interface {
	InvalidateTag(ctx context.Context, tag string) error
	InvalidatePath(ctx context.Context, path string) error
}

// Prober reports whether a key is still served from cache. It must not
// have side effects.
type Prober interface {
	IsCached(ctx context.Context, key Key) (bool, error)
}

type Service struct {
	provider       Provider
	prober         Prober
	history        *History
	retryAttempts  int
	retryDelay     time.Duration
	concurrency    int
	clock          clock.Clock
	tracer         tracer.Tracer
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher observability.AuditPublisher
}

type Option func(*Service)

func WithProber(p Prober) Option {
	return func(s *Service) {
		s.prober = p
	}
}

func WithHistory(h *History) Option {
	return func(s *Service) {
		if h != nil {
			s.history = h
		}
	}
}

// WithRetry sets the default cycle count and backoff base.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.retryAttempts = min(attempts, maxRetryAttempts)
		}
		if delay >= 0 {
			s.retryDelay = delay
		}
	}
}

// WithConcurrency bounds in-flight provider calls per cycle.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
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

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
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

func New(provider Provider, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, errors.New("cache provider is required")
	}
	svc := &Service{
		provider:      provider,
		history:       NewHistory(),
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
		concurrency:   defaultConcurrency,
		clock:         clock.Real{},
		tracer:        tracer.NewNoop(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// keyOutcome is one key's result within a cycle.
type keyOutcome struct {
	key         Key
	err         error
	stillCached bool
}

func (o keyOutcome) ok() bool {
	return o.err == nil && !o.stillCached
}

// Invalidate purges the entity's closure. Each cycle fans out over every
// key; a cycle with any failed key is retried after RetryDelay*attempt, up
// to RetryAttempts cycles in total. Success means at least one key was
// invalidated. Only total failure is reported to the audit publisher.
func (s *Service) Invalidate(ctx context.Context, req Request, opts Options) (*Result, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	attempts, delay := s.resolve(opts)
	verify := !opts.SkipVerify && s.prober != nil

	start := s.clock.Now()
	tags, paths := Closure(req)
	keys := keysOf(tags, paths)

	ctx, span := s.tracer.Start(ctx, tracer.SpanInvalidate,
		tracer.String(tracer.AttrEntityID, req.EntityID),
		tracer.Int64(tracer.AttrKeyCount, int64(len(keys))),
		tracer.Bool(tracer.AttrVerify, verify),
	)

	invalidated := make(map[Key]bool, len(keys))
	lastErr := make(map[Key]string, len(keys))
	var verification *Verification
	var cancelErr error
	cycles := 0

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := delay * time.Duration(attempt-1)
			span.AddEvent(tracer.EventRetryScheduled,
				tracer.Int64(tracer.AttrAttempt, int64(attempt)),
				tracer.Duration("delay_ms", wait),
			)
			if err := sleep(ctx, wait); err != nil {
				cancelErr = err
				span.AddEvent(tracer.EventCancelled)
				break
			}
			if s.metrics != nil {
				s.metrics.IncrementRetry()
			}
		}

		outcomes, v := s.cycle(ctx, req.EntityID, attempt, keys, verify)
		cycles = attempt
		verification = v

		failed := 0
		for _, o := range outcomes {
			if o.ok() {
				invalidated[o.key] = true
				delete(lastErr, o.key)
				continue
			}
			failed++
			if !invalidated[o.key] {
				lastErr[o.key] = failureText(o)
			}
		}
		if failed == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}
	}

	result := s.aggregate(req.EntityID, keys, invalidated, lastErr)
	result.Verification = verification
	result.RetryCount = max(cycles-1, 0)
	result.Duration = s.clock.Now().Sub(start)
	result.DurationMs = result.Duration.Milliseconds()

	span.SetAttributes(
		tracer.Int64(tracer.AttrRetryCount, int64(result.RetryCount)),
		tracer.Int64(tracer.AttrInvalidated, int64(len(result.InvalidatedTags)+len(result.InvalidatedPaths))),
		tracer.Int64(tracer.AttrFailed, int64(len(result.Failures))),
	)

	var spanErr error
	switch {
	case cancelErr != nil:
		result.Error = "invalidation cancelled: " + cancelErr.Error()
		spanErr = dErrors.Wrap(cancelErr, dErrors.CodeTimeout, "invalidation cancelled")
		s.finish(ctx, "cancelled", result)
		span.End(spanErr)
		return result, spanErr
	case !result.Success:
		result.Error = fmt.Sprintf("%s: all %d keys failed", dErrors.CodeInvalidationFailed, len(keys))
		spanErr = dErrors.New(dErrors.CodeInvalidationFailed, result.Error)
		s.finish(ctx, "failed", result)
	case len(result.Failures) > 0:
		s.finish(ctx, "partial", result)
	default:
		s.finish(ctx, "success", result)
	}
	span.End(spanErr)
	return result, nil
}

func (s *Service) resolve(opts Options) (int, time.Duration) {
	attempts := s.retryAttempts
	if opts.RetryAttempts > 0 {
		attempts = min(opts.RetryAttempts, maxRetryAttempts)
	}
	delay := s.retryDelay
	if opts.RetryDelay > 0 {
		delay = opts.RetryDelay
	}
	return attempts, delay
}

// cycle invalidates every key concurrently, then probes the keys that
// reported success. No key's failure stops another.
func (s *Service) cycle(ctx context.Context, entityID string, attempt int, keys []Key, verify bool) ([]keyOutcome, *Verification) {
	started := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanInvalidateAttempt,
		tracer.String(tracer.AttrEntityID, entityID),
		tracer.Int64(tracer.AttrAttempt, int64(attempt)),
	)

	outcomes := make([]keyOutcome, len(keys))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, key := range keys {
		g.Go(func() error {
			outcomes[i] = keyOutcome{key: key, err: s.purge(ctx, key)}
			return nil
		})
	}
	_ = g.Wait()

	var verification *Verification
	if verify {
		verification = s.verify(ctx, outcomes)
	}

	var tags, paths []string
	failed := 0
	for _, o := range outcomes {
		if o.ok() {
			if o.key.Kind == KindTag {
				tags = append(tags, o.key.Value)
			} else {
				paths = append(paths, o.key.Value)
			}
		} else {
			failed++
		}
		if s.metrics != nil {
			result := "success"
			switch {
			case o.err != nil:
				result = "error"
			case o.stillCached:
				result = "still_cached"
			}
			s.metrics.IncrementKeyOutcome(string(o.key.Kind), result)
		}
	}

	event := Event{
		ID:        uuid.NewString(),
		EntityID:  entityID,
		Tags:      tags,
		Paths:     paths,
		Timestamp: started,
		Attempt:   attempt,
		Success:   failed == 0,
		Duration:  s.clock.Now().Sub(started),
	}
	if failed > 0 {
		event.Error = fmt.Sprintf("%d of %d keys failed", failed, len(keys))
	}
	s.history.Record(event)

	span.SetAttributes(
		tracer.Int64(tracer.AttrInvalidated, int64(len(keys)-failed)),
		tracer.Int64(tracer.AttrFailed, int64(failed)),
	)
	var spanErr error
	if failed > 0 {
		spanErr = errors.New(event.Error)
	}
	span.End(spanErr)
	return outcomes, verification
}

func (s *Service) purge(ctx context.Context, key Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key.Kind == KindTag {
		return s.provider.InvalidateTag(ctx, key.Value)
	}
	return s.provider.InvalidatePath(ctx, key.Value)
}

// verify probes successful keys in place. A probe error leaves the key
// counted as invalidated and is reported in ProbeErrors.
func (s *Service) verify(ctx context.Context, outcomes []keyOutcome) *Verification {
	v := &Verification{StillCached: []string{}}
	for i := range outcomes {
		if outcomes[i].err != nil {
			continue
		}
		v.Checked++
		cached, err := s.prober.IsCached(ctx, outcomes[i].key)
		if err != nil {
			v.ProbeErrors++
			s.logger.WarnContext(ctx, "cache probe failed", "key", outcomes[i].key.String(), "error", err)
			continue
		}
		if cached {
			outcomes[i].stillCached = true
			v.StillCached = append(v.StillCached, outcomes[i].key.String())
			if s.metrics != nil {
				s.metrics.IncrementStillCached()
			}
		}
	}
	v.Verified = len(v.StillCached) == 0 && v.ProbeErrors == 0
	return v
}

func failureText(o keyOutcome) string {
	if o.err != nil {
		return o.err.Error()
	}
	return "still cached after invalidation"
}

func (s *Service) aggregate(entityID string, keys []Key, invalidated map[Key]bool, lastErr map[Key]string) *Result {
	r := &Result{
		EntityID:         entityID,
		InvalidatedTags:  []string{},
		InvalidatedPaths: []string{},
		FailedTags:       []string{},
		FailedPaths:      []string{},
	}
	for _, k := range keys {
		if invalidated[k] {
			if k.Kind == KindTag {
				r.InvalidatedTags = append(r.InvalidatedTags, k.Value)
			} else {
				r.InvalidatedPaths = append(r.InvalidatedPaths, k.Value)
			}
			continue
		}
		if k.Kind == KindTag {
			r.FailedTags = append(r.FailedTags, k.Value)
		} else {
			r.FailedPaths = append(r.FailedPaths, k.Value)
		}
		msg, ok := lastErr[k]
		if !ok {
			msg = "not attempted"
		}
		r.Failures = append(r.Failures, KeyFailure{Kind: k.Kind, Key: k.Value, Error: msg})
	}
	r.Success = len(r.InvalidatedTags)+len(r.InvalidatedPaths) > 0
	return r
}

func (s *Service) finish(ctx context.Context, outcome string, r *Result) {
	if s.metrics != nil {
		s.metrics.IncrementInvalidation(outcome)
		s.metrics.ObserveInvalidation(r.Duration)
	}
	switch outcome {
	case "failed":
		observability.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventInvalidationFailed,
			"entity_id", r.EntityID,
			"decision", "failed",
			"reason", r.Error,
			"retry_count", r.RetryCount,
		)
	case "partial", "cancelled":
		s.logger.WarnContext(ctx, "cache invalidation incomplete",
			"entity_id", r.EntityID,
			"outcome", outcome,
			"failed_tags", r.FailedTags,
			"failed_paths", r.FailedPaths,
			"retry_count", r.RetryCount,
		)
		observability.LogAudit(ctx, nil, s.auditPublisher, audit.EventInvalidationPartial,
			"entity_id", r.EntityID,
			"decision", outcome,
			"reason", fmt.Sprintf("%d keys not invalidated", len(r.Failures)),
		)
	default:
		s.logger.InfoContext(ctx, "cache invalidated",
			"entity_id", r.EntityID,
			"tags", len(r.InvalidatedTags),
			"paths", len(r.InvalidatedPaths),
			"retry_count", r.RetryCount,
			"duration_ms", r.DurationMs,
		)
	}
}

// History returns the entity's recorded cycles, oldest first.
func (s *Service) History(entityID string) []Event {
	return s.history.For(entityID)
}

func (s *Service) Stats() Stats {
	return s.history.Stats()
}

// PruneHistory drops history events at or before cutoff.
func (s *Service) PruneHistory(cutoff time.Time) int {
	return s.history.Prune(cutoff)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
