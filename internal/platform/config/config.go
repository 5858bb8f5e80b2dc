package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by BLOCK_STORE and CACHE_PROVIDER.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	AdminAPIToken  string
	TrustedProxies string

	Redis         RedisConfig
	BlockStore    string
	CacheProvider string

	RulesFile       string
	QuotaLocation   *time.Location
	CleanupInterval time.Duration

	InvalidationRetryAttempts int
	InvalidationRetryDelay    time.Duration

	ShutdownTimeout time.Duration
}

// RedisConfig is only used when a backend is set to redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numbers and durations fall back to defaults; settings that
// would silently change behavior (timezone, backend names) are errors.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:           envOr("DELETION_GUARD_ADDR", ":8080"),
		Environment:    envOr("ENVIRONMENT", "development"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		AdminAPIToken:  os.Getenv("ADMIN_API_TOKEN"),
		TrustedProxies: os.Getenv("TRUSTED_PROXIES"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: intOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		BlockStore:                strings.ToLower(envOr("BLOCK_STORE", BackendMemory)),
		CacheProvider:             strings.ToLower(envOr("CACHE_PROVIDER", BackendMemory)),
		RulesFile:                 os.Getenv("RULES_FILE"),
		CleanupInterval:           durationOr("CLEANUP_INTERVAL", time.Hour),
		InvalidationRetryAttempts: intOr("INVALIDATION_RETRY_ATTEMPTS", 3),
		InvalidationRetryDelay:    durationOr("INVALIDATION_RETRY_DELAY", time.Second),
		ShutdownTimeout:           durationOr("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	loc, err := time.LoadLocation(envOr("QUOTA_TIMEZONE", "UTC"))
	if err != nil {
		return Server{}, fmt.Errorf("invalid QUOTA_TIMEZONE: %w", err)
	}
	cfg.QuotaLocation = loc

	for name, backend := range map[string]string{"BLOCK_STORE": cfg.BlockStore, "CACHE_PROVIDER": cfg.CacheProvider} {
		if backend != BackendMemory && backend != BackendRedis {
			return Server{}, fmt.Errorf("invalid %s %q: want memory or redis", name, backend)
		}
		if backend == BackendRedis && cfg.Redis.URL == "" {
			return Server{}, fmt.Errorf("%s=redis requires REDIS_URL", name)
		}
	}
	return cfg, nil
}

// UsesRedis reports whether any backend needs a Redis connection.
func (s Server) UsesRedis() bool {
	return s.BlockStore == BackendRedis || s.CacheProvider == BackendRedis
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
