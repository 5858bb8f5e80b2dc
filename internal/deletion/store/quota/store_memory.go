// Package quota keeps per-user quota counters in memory.
package quota

import (
	"context"
	"sort"
	"time"

	"deletionguard/internal/deletion/models"
	psync "deletionguard/pkg/platform/sync"
)

// InMemoryQuotaStore holds one UserQuota per user behind a sharded lock.
// Update runs its callback under the user's shard write lock, which makes
// check-and-increment atomic per user.
type InMemoryQuotaStore struct {
	locks  *psync.ShardedMutex
	shards [psync.NumShards]map[string]*models.UserQuota
}

func NewInMemoryQuotaStore() *InMemoryQuotaStore {
	s := &InMemoryQuotaStore{locks: psync.NewShardedMutex()}
	for i := range s.shards {
		s.shards[i] = make(map[string]*models.UserQuota)
	}
	return s
}

// Get returns a copy of the user's quota, or nil when none exists yet.
func (s *InMemoryQuotaStore) Get(_ context.Context, userID string) (*models.UserQuota, error) {
	shard := psync.ShardFor(userID)
	s.locks.RLockShard(shard)
	defer s.locks.RUnlockShard(shard)
	q, ok := s.shards[shard][userID]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

// Update loads the user's quota, creating it with init when absent, and
// hands it to fn while the shard is locked. Changes are kept only when fn
// returns nil.
func (s *InMemoryQuotaStore) Update(_ context.Context, userID string, init func() *models.UserQuota, fn func(q *models.UserQuota) error) (*models.UserQuota, error) {
	shard := psync.ShardFor(userID)
	s.locks.LockShard(shard)
	defer s.locks.UnlockShard(shard)

	current, ok := s.shards[shard][userID]
	var working models.UserQuota
	if ok {
		working = *current
	} else {
		working = *init()
	}
	if err := fn(&working); err != nil {
		return nil, err
	}
	stored := working
	s.shards[shard][userID] = &stored
	out := working
	return &out, nil
}

// ListAll returns copies of every quota, sorted by user ID.
func (s *InMemoryQuotaStore) ListAll(_ context.Context) ([]*models.UserQuota, error) {
	var out []*models.UserQuota
	for shard := range psync.NumShards {
		s.locks.RLockShard(shard)
		for _, q := range s.shards[shard] {
			cp := *q
			out = append(out, &cp)
		}
		s.locks.RUnlockShard(shard)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Count returns how many users have a quota record.
func (s *InMemoryQuotaStore) Count(_ context.Context) (int, error) {
	n := 0
	for shard := range psync.NumShards {
		s.locks.RLockShard(shard)
		n += len(s.shards[shard])
		s.locks.RUnlockShard(shard)
	}
	return n, nil
}

// PruneIdle drops records whose last activity is at or before cutoff.
// Records carrying an operator override are never dropped.
func (s *InMemoryQuotaStore) PruneIdle(_ context.Context, cutoff time.Time) (int, error) {
	removed := 0
	for shard := range psync.NumShards {
		s.locks.LockShard(shard)
		for userID, q := range s.shards[shard] {
			if !q.Override && !q.LastActivity.After(cutoff) {
				delete(s.shards[shard], userID)
				removed++
			}
		}
		s.locks.UnlockShard(shard)
	}
	return removed, nil
}
