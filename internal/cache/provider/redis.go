package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"deletionguard/internal/cache/invalidation"
	"deletionguard/pkg/platform/circuit"
)

const (
	tagKeyPrefix  = "deletionguard:cache:tag:"
	pathKeyPrefix = "deletionguard:cache:path:"
)

// RedisProvider treats one Redis key per cache tag or path as the cache
// index shared by the content servers. Invalidation deletes the key and
// probing checks for its existence.
type RedisProvider struct {
	client  redis.UniversalClient
	breaker *circuit.Breaker
}

type RedisOption func(*RedisProvider)

func WithBreaker(b *circuit.Breaker) RedisOption {
	return func(p *RedisProvider) {
		if b != nil {
			p.breaker = b
		}
	}
}

func NewRedisProvider(client redis.UniversalClient, opts ...RedisOption) *RedisProvider {
	p := &RedisProvider{
		client:  client,
		breaker: circuit.New("cache-provider-redis"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func redisKey(key invalidation.Key) string {
	if key.Kind == invalidation.KindTag {
		return tagKeyPrefix + key.Value
	}
	return pathKeyPrefix + key.Value
}

// Mark records a key as cached for ttl. Zero ttl never expires.
func (p *RedisProvider) Mark(ctx context.Context, key invalidation.Key, ttl time.Duration) error {
	return p.breaker.Do(func() error {
		if err := p.client.Set(ctx, redisKey(key), "1", ttl).Err(); err != nil {
			return fmt.Errorf("redis mark %s: %w", key, err)
		}
		return nil
	})
}

func (p *RedisProvider) InvalidateTag(ctx context.Context, tag string) error {
	return p.del(ctx, invalidation.Key{Kind: invalidation.KindTag, Value: tag})
}

func (p *RedisProvider) InvalidatePath(ctx context.Context, path string) error {
	return p.del(ctx, invalidation.Key{Kind: invalidation.KindPath, Value: path})
}

// IsCached uses EXISTS, which has no side effects on the key.
func (p *RedisProvider) IsCached(ctx context.Context, key invalidation.Key) (bool, error) {
	var n int64
	err := p.breaker.Do(func() error {
		var err error
		n, err = p.client.Exists(ctx, redisKey(key)).Result()
		if err != nil {
			return fmt.Errorf("redis probe %s: %w", key, err)
		}
		return nil
	})
	return n > 0, err
}

func (p *RedisProvider) del(ctx context.Context, key invalidation.Key) error {
	return p.breaker.Do(func() error {
		if err := p.client.Del(ctx, redisKey(key)).Err(); err != nil {
			return fmt.Errorf("redis invalidate %s: %w", key, err)
		}
		return nil
	})
}

var (
	_ invalidation.Provider = (*RedisProvider)(nil)
	_ invalidation.Prober   = (*RedisProvider)(nil)
	_ invalidation.Provider = (*MemoryProvider)(nil)
	_ invalidation.Prober   = (*MemoryProvider)(nil)
)
