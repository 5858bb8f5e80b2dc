package provider

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"deletionguard/internal/cache/invalidation"
	"deletionguard/pkg/platform/circuit"
)

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "deletionguard:cache:tag:post-1", redisKey(invalidation.Key{Kind: invalidation.KindTag, Value: "post-1"}))
	assert.Equal(t, "deletionguard:cache:path:/blog", redisKey(invalidation.Key{Kind: invalidation.KindPath, Value: "/blog"}))
}

func TestRedisProvider_BreakerOpensWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	breaker := circuit.New("test", circuit.WithFailureThreshold(1), circuit.WithCooldown(time.Hour))
	p := NewRedisProvider(client, WithBreaker(breaker))
	ctx := context.Background()

	require.Error(t, p.InvalidateTag(ctx, "post-1"))
	assert.Equal(t, circuit.StateOpen, breaker.State())

	_, err := p.IsCached(ctx, invalidation.Key{Kind: invalidation.KindTag, Value: "post-1"})
	assert.ErrorIs(t, err, circuit.ErrOpen)
}

// RedisProviderSuite runs against a live Redis when REDIS_URL is set.
type RedisProviderSuite struct {
	suite.Suite
	client   *redis.Client
	provider *RedisProvider
	ctx      context.Context
}

func TestRedisProviderSuite(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	suite.Run(t, &RedisProviderSuite{client: redis.NewClient(opts)})
}

func (s *RedisProviderSuite) SetupTest() {
	s.ctx = context.Background()
	s.provider = NewRedisProvider(s.client)
	keys, err := s.client.Keys(s.ctx, "deletionguard:cache:*").Result()
	s.Require().NoError(err)
	if len(keys) > 0 {
		s.Require().NoError(s.client.Del(s.ctx, keys...).Err())
	}
}

func (s *RedisProviderSuite) TearDownSuite() {
	s.client.Close()
}

func (s *RedisProviderSuite) TestMarkInvalidateProbe() {
	key := invalidation.Key{Kind: invalidation.KindPath, Value: "/blog/intro"}
	s.Require().NoError(s.provider.Mark(s.ctx, key, time.Minute))

	cached, err := s.provider.IsCached(s.ctx, key)
	s.Require().NoError(err)
	s.True(cached)

	s.Require().NoError(s.provider.InvalidatePath(s.ctx, "/blog/intro"))
	cached, err = s.provider.IsCached(s.ctx, key)
	s.Require().NoError(err)
	s.False(cached)

	s.Run("invalidating a missing key succeeds", func() {
		s.NoError(s.provider.InvalidateTag(s.ctx, "never-cached"))
	})
}
