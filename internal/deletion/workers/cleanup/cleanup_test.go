package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deletionguard/internal/cache/invalidation"
	"deletionguard/internal/cache/provider"
	"deletionguard/internal/deletion/metrics"
	"deletionguard/internal/deletion/models"
	"deletionguard/internal/deletion/rules"
	blockservice "deletionguard/internal/deletion/service/block"
	quotaservice "deletionguard/internal/deletion/service/quota"
	"deletionguard/internal/deletion/service/ratelimit"
	blockstore "deletionguard/internal/deletion/store/block"
	"deletionguard/internal/deletion/store/ledger"
	quotastore "deletionguard/internal/deletion/store/quota"
	"deletionguard/pkg/platform/clock"
)

func TestCleanupService_RunOnce_Integration(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)

	attempts := ledger.NewInMemoryLedger(100, 1000)
	quotas := quotastore.NewInMemoryQuotaStore()
	blocks, err := blockservice.New(blockstore.NewInMemoryBlockStore(), blockservice.WithClock(clk))
	require.NoError(t, err)
	cache := provider.NewMemoryProvider()
	invalidator, err := invalidation.New(cache, invalidation.WithClock(clk), invalidation.WithRetry(1, 0))
	require.NoError(t, err)

	for i, at := range []time.Time{start, start.Add(-30 * time.Hour)} {
		require.NoError(t, attempts.Append(ctx, models.DeletionAttempt{
			ID: string(rune('a' + i)), UserID: "u1", Timestamp: at, Kind: models.KindSingle, Outcome: models.OutcomeSuccess,
		}))
	}
	_, err = quotas.Update(ctx, "idle", func() *models.UserQuota {
		return models.NewUserQuota("idle", models.QuotaLimits{Daily: 1, Weekly: 1, Monthly: 1}, start.Add(-40*24*time.Hour))
	}, func(*models.UserQuota) error { return nil })
	require.NoError(t, err)
	_, err = quotas.Update(ctx, "active", func() *models.UserQuota {
		return models.NewUserQuota("active", models.QuotaLimits{Daily: 1, Weekly: 1, Monthly: 1}, start)
	}, func(*models.UserQuota) error { return nil })
	require.NoError(t, err)

	_, err = blocks.Block(ctx, "short", time.Minute, "abuse", models.SourceAbuseDetector)
	require.NoError(t, err)
	_, err = blocks.Block(ctx, "forever", 0, "manual", models.SourceOperator)
	require.NoError(t, err)

	_, err = invalidator.Invalidate(ctx, invalidation.Request{EntityID: "42"}, invalidation.Options{})
	require.NoError(t, err)

	clk.Advance(25 * time.Hour)

	m := metrics.New(prometheus.NewRegistry())
	svc, err := New(attempts, quotas, blocks,
		WithClock(clk),
		WithMetrics(m),
		WithRetention(24*time.Hour, 32*24*time.Hour),
		WithInvalidationHistory(invalidator),
	)
	require.NoError(t, err)

	res, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{PrunedAttempts: 2, PrunedQuotas: 1, PurgedBlocks: 1, PrunedInvalidations: 1}, res)

	remaining, err := blocks.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "forever", remaining[0].UserID)

	active, err := quotas.Get(ctx, "active")
	require.NoError(t, err)
	assert.NotNil(t, active)

	assert.Empty(t, invalidator.History("42"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CleanupRunsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CleanupRemovedTotal.WithLabelValues("attempts")))
}

func TestCleanupService_RunOnce_KeepsEnforcementState(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	attempts := ledger.NewInMemoryLedger(100, 1000)
	store := quotastore.NewInMemoryQuotaStore()
	quotas, err := quotaservice.New(store, models.QuotaLimits{Daily: 50, Weekly: 200, Monthly: 500}, quotaservice.WithClock(clk))
	require.NoError(t, err)
	blocks, err := blockservice.New(blockstore.NewInMemoryBlockStore(), blockservice.WithClock(clk))
	require.NoError(t, err)

	twoDays, err := rules.NewRuleSet([]rules.Rule{
		{Name: "user_per_two_days", Window: 48 * time.Hour, MaxRequests: 3, Scope: rules.ScopeUser},
	})
	require.NoError(t, err)
	holder := rules.NewHolder(twoDays)
	limiter, err := ratelimit.New(attempts, holder, ratelimit.WithClock(clk))
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, attempts.Append(ctx, models.DeletionAttempt{
			UserID: "u1", Timestamp: clk.Now(), Kind: models.KindSingle, Outcome: models.OutcomeSuccess,
		}))
	}
	_, err = quotas.UpdateLimits(ctx, "restricted", models.QuotaLimits{Daily: 2, Weekly: 5, Monthly: 10})
	require.NoError(t, err)

	svc, err := New(attempts, store, blocks,
		WithClock(clk),
		WithRetention(24*time.Hour, 32*24*time.Hour),
		WithRuleWindows(holder),
	)
	require.NoError(t, err)

	t.Run("attempts inside the longest rule window are kept", func(t *testing.T) {
		clk.Advance(25 * time.Hour)
		res, err := svc.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.PrunedAttempts)

		d, err := limiter.Check(ctx, "u1", models.KindSingle)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, "user_per_two_days", d.Rule)
	})

	t.Run("swapping in shorter rules shortens retention", func(t *testing.T) {
		holder.Swap(rules.Default())
		res, err := svc.RunOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, res.PrunedAttempts)
	})

	t.Run("operator quota overrides outlive the idle sweep", func(t *testing.T) {
		clk.Advance(33 * 24 * time.Hour)
		res, err := svc.RunOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.PrunedQuotas)

		q, err := quotas.Get(ctx, "restricted")
		require.NoError(t, err)
		assert.Equal(t, models.QuotaLimits{Daily: 2, Weekly: 5, Monthly: 10}, q.Limits)
	})
}

type failingLedger struct{}

func (failingLedger) Prune(context.Context, time.Time) (int, error) {
	return 0, errors.New("ledger unavailable")
}

func TestCleanupService_RunOnce_ContinuesAfterError(t *testing.T) {
	ctx := context.Background()
	blocks, err := blockservice.New(blockstore.NewInMemoryBlockStore())
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	svc, err := New(failingLedger{}, quotastore.NewInMemoryQuotaStore(), blocks, WithMetrics(m))
	require.NoError(t, err)

	_, err = svc.RunOnce(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prune attempts")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CleanupRunsTotal.WithLabelValues("error")))
}

func TestCleanupService_Start_StopsOnCancel(t *testing.T) {
	blocks, err := blockservice.New(blockstore.NewInMemoryBlockStore())
	require.NoError(t, err)
	svc, err := New(ledger.NewInMemoryLedger(10, 10), quotastore.NewInMemoryQuotaStore(), blocks, WithInterval(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Start(ctx), context.DeadlineExceeded)
}

func TestNew_RequiresStores(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)
}
