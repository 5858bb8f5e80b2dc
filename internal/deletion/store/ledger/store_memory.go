// Package ledger stores deletion attempts in bounded per-user and global
// ring buffers. It is the history the rate limiter and abuse detector read.
package ledger

import (
	"context"
	"slices"
	"sync"
	"time"

	"deletionguard/internal/deletion/models"
	psync "deletionguard/pkg/platform/sync"
)

// Query selects attempts inside the window (Since, now].
type Query struct {
	UserID string
	// Global counts every user's attempts and ignores UserID.
	Global          bool
	Since           time.Time
	OnlyFailures    bool
	ExcludeRejected bool
}

func (q Query) matches(a models.DeletionAttempt) bool {
	if !a.Timestamp.After(q.Since) {
		return false
	}
	if q.OnlyFailures && a.Outcome != models.OutcomeFailure {
		return false
	}
	if q.ExcludeRejected && a.Outcome == models.OutcomeRejected {
		return false
	}
	return true
}

// WindowCount is the number of matching attempts and the oldest one's time.
type WindowCount struct {
	Count  int
	Oldest time.Time
}

// track holds one history. Completed outcomes and rejected admissions live
// in separate rings so a flood of rejections never evicts the successes and
// failures that rate-limit rules count.
type track struct {
	completed *ring
	rejected  *ring
}

func newTrack(capacity int) *track {
	return &track{completed: newRing(capacity), rejected: newRing(capacity)}
}

func (t *track) push(a models.DeletionAttempt) {
	if a.Outcome == models.OutcomeRejected {
		t.rejected.push(a)
		return
	}
	t.completed.push(a)
}

// count visits the completed ring and, unless q excludes them, the rejected
// ring. Oldest is the earliest match across both.
func (t *track) count(q Query) WindowCount {
	var wc WindowCount
	visit := func(a models.DeletionAttempt) bool {
		if !q.matches(a) {
			return true
		}
		if wc.Count == 0 || a.Timestamp.Before(wc.Oldest) {
			wc.Oldest = a.Timestamp
		}
		wc.Count++
		return true
	}
	t.completed.each(visit)
	if !q.ExcludeRejected && !q.OnlyFailures {
		t.rejected.each(visit)
	}
	return wc
}

func (t *track) dropBefore(cutoff time.Time) int {
	return t.completed.dropBefore(cutoff) + t.rejected.dropBefore(cutoff)
}

func (t *track) len() int {
	return t.completed.len() + t.rejected.len()
}

// InMemoryLedger is safe for concurrent use. Per-user tracks are guarded by
// a 32-way sharded lock; the global track has its own mutex.
type InMemoryLedger struct {
	locks      *psync.ShardedMutex
	users      [psync.NumShards]map[string]*track
	perUserMax int

	globalMu sync.RWMutex
	global   *track
}

// NewInMemoryLedger bounds each user's completed and rejected histories to
// perUserMax entries apiece, and the global ones to globalMax.
func NewInMemoryLedger(perUserMax, globalMax int) *InMemoryLedger {
	l := &InMemoryLedger{
		locks:      psync.NewShardedMutex(),
		perUserMax: max(1, perUserMax),
		global:     newTrack(max(1, globalMax)),
	}
	for i := range l.users {
		l.users[i] = make(map[string]*track)
	}
	return l
}

func (l *InMemoryLedger) Append(_ context.Context, attempt models.DeletionAttempt) error {
	shard := psync.ShardFor(attempt.UserID)
	l.locks.LockShard(shard)
	t, ok := l.users[shard][attempt.UserID]
	if !ok {
		t = newTrack(l.perUserMax)
		l.users[shard][attempt.UserID] = t
	}
	t.push(attempt)
	l.locks.UnlockShard(shard)

	l.globalMu.Lock()
	l.global.push(attempt)
	l.globalMu.Unlock()
	return nil
}

// Count returns how many attempts match q and when the oldest happened.
func (l *InMemoryLedger) Count(_ context.Context, q Query) (WindowCount, error) {
	if q.Global {
		l.globalMu.RLock()
		defer l.globalMu.RUnlock()
		return l.global.count(q), nil
	}

	shard := psync.ShardFor(q.UserID)
	l.locks.RLockShard(shard)
	defer l.locks.RUnlockShard(shard)
	if t, ok := l.users[shard][q.UserID]; ok {
		return t.count(q), nil
	}
	return WindowCount{}, nil
}

// UserAttempts returns a user's attempts newer than since, oldest first.
func (l *InMemoryLedger) UserAttempts(_ context.Context, userID string, since time.Time) ([]models.DeletionAttempt, error) {
	shard := psync.ShardFor(userID)
	l.locks.RLockShard(shard)
	defer l.locks.RUnlockShard(shard)

	t, ok := l.users[shard][userID]
	if !ok {
		return nil, nil
	}
	out := make([]models.DeletionAttempt, 0, t.len())
	collect := func(a models.DeletionAttempt) bool {
		if a.Timestamp.After(since) {
			out = append(out, a)
		}
		return true
	}
	t.completed.each(collect)
	t.rejected.each(collect)
	slices.SortStableFunc(out, func(a, b models.DeletionAttempt) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out, nil
}

// Prune drops attempts at or before cutoff and forgets users with nothing
// left. It holds one shard lock at a time.
func (l *InMemoryLedger) Prune(_ context.Context, cutoff time.Time) (int, error) {
	removed := 0
	for shard := range psync.NumShards {
		l.locks.LockShard(shard)
		for userID, t := range l.users[shard] {
			removed += t.dropBefore(cutoff)
			if t.len() == 0 {
				delete(l.users[shard], userID)
			}
		}
		l.locks.UnlockShard(shard)
	}

	l.globalMu.Lock()
	l.global.dropBefore(cutoff)
	l.globalMu.Unlock()
	return removed, nil
}

func (l *InMemoryLedger) Stats(_ context.Context) (models.LedgerStats, error) {
	var st models.LedgerStats
	for shard := range psync.NumShards {
		l.locks.RLockShard(shard)
		st.TrackedUsers += len(l.users[shard])
		for _, t := range l.users[shard] {
			st.UserEntries += t.len()
		}
		l.locks.RUnlockShard(shard)
	}
	l.globalMu.RLock()
	st.GlobalEntries = l.global.len()
	l.globalMu.RUnlock()
	return st, nil
}
