package block

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"deletionguard/internal/deletion/models"
	"deletionguard/pkg/platform/circuit"
	"deletionguard/pkg/platform/clock"
)

const (
	blockKeyPrefix = "deletionguard:block:"
	scanBatch      = 100
)

// RedisBlockStore shares the deny list between instances. Timed blocks are
// written with a matching key TTL so Redis drops them on expiry; indefinite
// blocks have no TTL. Every call goes through a circuit breaker.
type RedisBlockStore struct {
	client  redis.UniversalClient
	breaker *circuit.Breaker
	clock   clock.Clock
}

type RedisOption func(*RedisBlockStore)

func WithBreaker(b *circuit.Breaker) RedisOption {
	return func(s *RedisBlockStore) {
		if b != nil {
			s.breaker = b
		}
	}
}

func WithRedisClock(c clock.Clock) RedisOption {
	return func(s *RedisBlockStore) {
		if c != nil {
			s.clock = c
		}
	}
}

func NewRedisBlockStore(client redis.UniversalClient, opts ...RedisOption) *RedisBlockStore {
	s := &RedisBlockStore{
		client:  client,
		breaker: circuit.New("block-store-redis"),
		clock:   clock.Real{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func blockKey(userID string) string {
	return blockKeyPrefix + userID
}

// entryTTL returns the key expiry for an entry. Zero means no expiry.
func entryTTL(entry *models.BlockEntry, now time.Time) (time.Duration, bool) {
	if entry.Indefinite() {
		return 0, true
	}
	ttl := entry.BlockedUntil.Sub(now)
	if ttl <= 0 {
		return 0, false
	}
	return ttl, true
}

func decodeEntry(data string) (*models.BlockEntry, error) {
	var entry models.BlockEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("decode block entry: %w", err)
	}
	return &entry, nil
}

func (s *RedisBlockStore) Get(ctx context.Context, userID string) (*models.BlockEntry, error) {
	var entry *models.BlockEntry
	err := s.breaker.Do(func() error {
		data, err := s.client.Get(ctx, blockKey(userID)).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis get block: %w", err)
		}
		entry, err = decodeEntry(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Put writes the entry. Entries already past BlockedUntil are not written.
func (s *RedisBlockStore) Put(ctx context.Context, entry *models.BlockEntry) error {
	ttl, live := entryTTL(entry, s.clock.Now())
	if !live {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal block entry: %w", err)
	}
	return s.breaker.Do(func() error {
		if err := s.client.Set(ctx, blockKey(entry.UserID), data, ttl).Err(); err != nil {
			return fmt.Errorf("redis set block: %w", err)
		}
		return nil
	})
}

func (s *RedisBlockStore) Delete(ctx context.Context, userID string) (bool, error) {
	var removed int64
	err := s.breaker.Do(func() error {
		n, err := s.client.Del(ctx, blockKey(userID)).Result()
		if err != nil {
			return fmt.Errorf("redis delete block: %w", err)
		}
		removed = n
		return nil
	})
	return removed > 0, err
}

// List walks the key space with SCAN. Keys that vanish between SCAN and GET
// are skipped.
func (s *RedisBlockStore) List(ctx context.Context) ([]*models.BlockEntry, error) {
	var out []*models.BlockEntry
	err := s.breaker.Do(func() error {
		var cursor uint64
		for {
			keys, next, err := s.client.Scan(ctx, cursor, blockKeyPrefix+"*", scanBatch).Result()
			if err != nil {
				return fmt.Errorf("redis scan blocks: %w", err)
			}
			if len(keys) > 0 {
				values, err := s.client.MGet(ctx, keys...).Result()
				if err != nil {
					return fmt.Errorf("redis mget blocks: %w", err)
				}
				for i, v := range values {
					data, ok := v.(string)
					if !ok {
						continue
					}
					entry, err := decodeEntry(data)
					if err != nil {
						return fmt.Errorf("%s: %w", strings.TrimPrefix(keys[i], blockKeyPrefix), err)
					}
					out = append(out, entry)
				}
			}
			cursor = next
			if cursor == 0 {
				return nil
			}
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
