package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"deletionguard/internal/cache/invalidation"
	cachemetrics "deletionguard/internal/cache/metrics"
	"deletionguard/internal/cache/provider"
	dconfig "deletionguard/internal/deletion/config"
	"deletionguard/internal/deletion/handler"
	"deletionguard/internal/deletion/metrics"
	"deletionguard/internal/deletion/rules"
	"deletionguard/internal/deletion/service/abuse"
	"deletionguard/internal/deletion/service/block"
	"deletionguard/internal/deletion/service/guard"
	"deletionguard/internal/deletion/service/quota"
	"deletionguard/internal/deletion/service/ratelimit"
	blockstore "deletionguard/internal/deletion/store/block"
	"deletionguard/internal/deletion/store/ledger"
	quotastore "deletionguard/internal/deletion/store/quota"
	"deletionguard/internal/deletion/workers/cleanup"
	"deletionguard/internal/platform/config"
	"deletionguard/internal/platform/health"
	"deletionguard/internal/platform/logger"
	redisclient "deletionguard/internal/platform/redis"
	"deletionguard/pkg/platform/audit/publisher"
	auditstore "deletionguard/pkg/platform/audit/store"
	"deletionguard/pkg/platform/circuit"
	"deletionguard/pkg/platform/middleware/admin"
	"deletionguard/pkg/platform/middleware/metadata"
	"deletionguard/pkg/platform/middleware/request"
	"deletionguard/pkg/platform/tracer"
)

// main wires dependencies, exposes the HTTP router, and keeps the server
// lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("deletion guard stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	domain := dconfig.DefaultConfig()
	domain.Quota.Location = cfg.QuotaLocation
	domain.Cleanup.Interval = cfg.CleanupInterval
	if err := domain.Validate(); err != nil {
		return err
	}

	log.Info("initializing deletion guard",
		"addr", cfg.Addr,
		"block_store", cfg.BlockStore,
		"cache_provider", cfg.CacheProvider,
		"quota_timezone", cfg.QuotaLocation.String(),
		"rules_file", cfg.RulesFile,
	)
	if cfg.BlockStore != config.BackendRedis {
		log.Warn("guard state is per process; with several instances every limit and block applies per instance")
	} else {
		log.Warn("blocks are shared through redis; rate limits and quotas remain per instance")
	}
	if cfg.AdminAPIToken == "" {
		log.Warn("ADMIN_API_TOKEN is empty; admin routes reject every request")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	guardMetrics := metrics.New(reg)

	auditPublisher := publisher.NewPublisher(
		auditstore.NewLogStore(log, 500),
		publisher.WithAsyncBuffer(1000),
		publisher.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	healthHandler := health.New(cfg.Environment)

	var rdb *redisclient.Client
	if cfg.UsesRedis() {
		var err error
		rdb, err = redisclient.New(ctx, cfg.Redis, reg)
		if err != nil {
			return err
		}
		defer rdb.Close() //nolint:errcheck // shutdown path
		go rdb.ReportPoolStats(ctx, 15*time.Second)
		healthHandler.RegisterCheck("redis", rdb.Health)
	}
	onBreakerChange := func(name string, from, to circuit.State) {
		guardMetrics.IncrementBreakerTransition(to.String())
		log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}

	// Attempt ledger and rules.
	attempts := ledger.NewInMemoryLedger(domain.Ledger.PerUserMax, domain.Ledger.GlobalMax)
	ruleSet := rules.Default()
	if cfg.RulesFile != "" {
		loaded, err := rules.LoadFile(cfg.RulesFile)
		if err != nil {
			return err
		}
		ruleSet = loaded
	}
	holder := rules.NewHolder(ruleSet)
	if cfg.RulesFile != "" {
		watcher, err := rules.NewWatcher(cfg.RulesFile, holder, &rules.WatcherConfig{
			Debounce: 500 * time.Millisecond,
			OnChange: func(*rules.RuleSet) { guardMetrics.IncrementRulesReload("file", "success") },
			OnError:  func(error) { guardMetrics.IncrementRulesReload("file", "error") },
		}, log)
		if err != nil {
			return err
		}
		watcher.Start()
		defer watcher.Stop() //nolint:errcheck // shutdown path
	}

	// Guard stages.
	var blocks block.Store = blockstore.NewInMemoryBlockStore()
	if cfg.BlockStore == config.BackendRedis {
		blocks = blockstore.NewRedisBlockStore(rdb.Client,
			blockstore.WithBreaker(circuit.New("block-store-redis", circuit.WithStateChange(onBreakerChange))))
	}
	blockSvc, err := block.New(blocks, block.WithLogger(log))
	if err != nil {
		return err
	}
	limiter, err := ratelimit.New(attempts, holder, ratelimit.WithLogger(log))
	if err != nil {
		return err
	}
	quotas := quotastore.NewInMemoryQuotaStore()
	quotaSvc, err := quota.New(quotas, domain.Quota.Defaults,
		quota.WithLocation(domain.Quota.Location),
		quota.WithLogger(log),
	)
	if err != nil {
		return err
	}
	abuseSvc, err := abuse.New(attempts, abuse.WithThresholds(domain.Abuse), abuse.WithLogger(log))
	if err != nil {
		return err
	}
	guardSvc, err := guard.New(guard.Deps{
		Blocks:  blockSvc,
		Limiter: limiter,
		Quotas:  quotaSvc,
		Abuse:   abuseSvc,
		Ledger:  attempts,
		Rules:   holder,
	},
		guard.WithLogger(log),
		guard.WithMetrics(guardMetrics),
		guard.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}

	// Cache invalidation.
	invalidator, err := newInvalidator(cfg, rdb, log, reg, auditPublisher, onBreakerChange)
	if err != nil {
		return err
	}

	sweeper, err := cleanup.New(attempts, quotas, blockSvc,
		cleanup.WithInterval(domain.Cleanup.Interval),
		cleanup.WithRetention(domain.Ledger.MaxAge, domain.Quota.IdleTTL),
		cleanup.WithInvalidationHistory(invalidator),
		cleanup.WithRuleWindows(holder),
		cleanup.WithMetrics(guardMetrics),
		cleanup.WithLogger(log),
	)
	if err != nil {
		return err
	}
	go func() {
		if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("cleanup worker stopped", "error", err)
		}
	}()

	trustedProxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(request.Latency(request.NewMetrics(reg)))
	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: trustedProxies}).Handler)

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	h := handler.New(guardSvc, invalidator, log)
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminAPIToken, log))
		h.RegisterAdmin(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newInvalidator(
	cfg config.Server,
	rdb *redisclient.Client,
	log *slog.Logger,
	reg prometheus.Registerer,
	pub *publisher.Publisher,
	onBreakerChange func(string, circuit.State, circuit.State),
) (*invalidation.Service, error) {
	opts := []invalidation.Option{
		invalidation.WithRetry(cfg.InvalidationRetryAttempts, cfg.InvalidationRetryDelay),
		invalidation.WithTracer(tracer.NewOTel()),
		invalidation.WithMetrics(cachemetrics.New(reg)),
		invalidation.WithAuditPublisher(pub),
		invalidation.WithLogger(log),
	}
	if cfg.CacheProvider == config.BackendRedis {
		p := provider.NewRedisProvider(rdb.Client,
			provider.WithBreaker(circuit.New("cache-provider-redis", circuit.WithStateChange(onBreakerChange))))
		return invalidation.New(p, append(opts, invalidation.WithProber(p))...)
	}
	p := provider.NewMemoryProvider()
	return invalidation.New(p, append(opts, invalidation.WithProber(p))...)
}
