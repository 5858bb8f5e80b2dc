package sync

import (
	"sync"
)

// NumShards is the fixed shard count used by ShardedMutex.
const NumShards = 32

// ShardedMutex provides fine-grained locking using sharded read/write mutexes.
// Instead of a single global lock, operations are distributed across N shards
// based on a hash of the resource key, reducing contention under concurrent load.
type ShardedMutex struct {
	shards [NumShards]sync.RWMutex
}

// NewShardedMutex creates a new ShardedMutex with 32 shards.
func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

// Lock acquires the write lock for the given key's shard.
// Empty keys default to shard 0.
func (m *ShardedMutex) Lock(key string) {
	m.shards[ShardFor(key)].Lock()
}

// Unlock releases the write lock for the given key's shard.
func (m *ShardedMutex) Unlock(key string) {
	m.shards[ShardFor(key)].Unlock()
}

// RLock acquires the read lock for the given key's shard.
func (m *ShardedMutex) RLock(key string) {
	m.shards[ShardFor(key)].RLock()
}

// RUnlock releases the read lock for the given key's shard.
func (m *ShardedMutex) RUnlock(key string) {
	m.shards[ShardFor(key)].RUnlock()
}

// LockShard acquires the write lock of a shard by index.
// Used by sweepers that walk every shard in turn.
func (m *ShardedMutex) LockShard(i int) {
	m.shards[i].Lock()
}

// UnlockShard releases the write lock of a shard by index.
func (m *ShardedMutex) UnlockShard(i int) {
	m.shards[i].Unlock()
}

// RLockShard acquires the read lock of a shard by index.
func (m *ShardedMutex) RLockShard(i int) {
	m.shards[i].RLock()
}

// RUnlockShard releases the read lock of a shard by index.
func (m *ShardedMutex) RUnlockShard(i int) {
	m.shards[i].RUnlock()
}

// ShardFor returns the shard index for the given key.
func ShardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(hashString(key) % NumShards)
}

// hashString provides a simple hash for shard selection.
// Uses djb2-style hashing for good distribution.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
