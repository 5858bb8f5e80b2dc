// Package block stores the deny list of blocked users.
package block

import (
	"context"
	"sort"

	"deletionguard/internal/deletion/models"
	psync "deletionguard/pkg/platform/sync"
)

// InMemoryBlockStore keeps blocks in a sharded map. Expiry is the
// service's concern; the store returns whatever it holds.
type InMemoryBlockStore struct {
	locks  *psync.ShardedMutex
	shards [psync.NumShards]map[string]models.BlockEntry
}

func NewInMemoryBlockStore() *InMemoryBlockStore {
	s := &InMemoryBlockStore{locks: psync.NewShardedMutex()}
	for i := range s.shards {
		s.shards[i] = make(map[string]models.BlockEntry)
	}
	return s
}

func (s *InMemoryBlockStore) Get(_ context.Context, userID string) (*models.BlockEntry, error) {
	shard := psync.ShardFor(userID)
	s.locks.RLockShard(shard)
	defer s.locks.RUnlockShard(shard)
	entry, ok := s.shards[shard][userID]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Put replaces any existing block for the user.
func (s *InMemoryBlockStore) Put(_ context.Context, entry *models.BlockEntry) error {
	shard := psync.ShardFor(entry.UserID)
	s.locks.LockShard(shard)
	defer s.locks.UnlockShard(shard)
	s.shards[shard][entry.UserID] = *entry
	return nil
}

// Delete reports whether an entry was removed.
func (s *InMemoryBlockStore) Delete(_ context.Context, userID string) (bool, error) {
	shard := psync.ShardFor(userID)
	s.locks.LockShard(shard)
	defer s.locks.UnlockShard(shard)
	if _, ok := s.shards[shard][userID]; !ok {
		return false, nil
	}
	delete(s.shards[shard], userID)
	return true, nil
}

// List returns every stored entry sorted by user ID.
func (s *InMemoryBlockStore) List(_ context.Context) ([]*models.BlockEntry, error) {
	var out []*models.BlockEntry
	for shard := range psync.NumShards {
		s.locks.RLockShard(shard)
		for _, entry := range s.shards[shard] {
			e := entry
			out = append(out, &e)
		}
		s.locks.RUnlockShard(shard)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
