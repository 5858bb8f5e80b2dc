package invalidation

import (
	"slices"
	"sync"
	"time"
)

const (
	defaultPerEntity   = 10
	defaultMaxEntities = 1000
	recentFailureLimit = 10
)

// History keeps the most recent invalidation events per entity. When more
// than maxEntities are tracked, the entity recorded least recently is
// dropped.
type History struct {
	mu          sync.RWMutex
	perEntity   int
	maxEntities int
	events      map[string][]Event
	// order lists entity IDs from least to most recently recorded.
	order []string
}

type HistoryOption func(*History)

func WithPerEntity(n int) HistoryOption {
	return func(h *History) {
		if n > 0 {
			h.perEntity = n
		}
	}
}

func WithMaxEntities(n int) HistoryOption {
	return func(h *History) {
		if n > 0 {
			h.maxEntities = n
		}
	}
}

func NewHistory(opts ...HistoryOption) *History {
	h := &History{
		perEntity:   defaultPerEntity,
		maxEntities: defaultMaxEntities,
		events:      make(map[string][]Event),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *History) Record(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, tracked := h.events[e.EntityID]
	list = append(list, e)
	if len(list) > h.perEntity {
		list = slices.Clone(list[len(list)-h.perEntity:])
	}
	h.events[e.EntityID] = list

	if tracked {
		h.order = slices.DeleteFunc(h.order, func(id string) bool { return id == e.EntityID })
	}
	h.order = append(h.order, e.EntityID)
	for len(h.order) > h.maxEntities {
		delete(h.events, h.order[0])
		h.order = h.order[1:]
	}
}

// For returns the entity's events, oldest first.
func (h *History) For(entityID string) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.events[entityID])
}

// Prune drops events at or before cutoff and returns how many went.
func (h *History) Prune(cutoff time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for id, list := range h.events {
		kept := slices.DeleteFunc(list, func(e Event) bool { return !e.Timestamp.After(cutoff) })
		removed += len(list) - len(kept)
		if len(kept) == 0 {
			delete(h.events, id)
			continue
		}
		h.events[id] = kept
	}
	h.order = slices.DeleteFunc(h.order, func(id string) bool {
		_, ok := h.events[id]
		return !ok
	})
	return removed
}

func (h *History) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var st Stats
	var total time.Duration
	var failures []Event
	for _, list := range h.events {
		for _, e := range list {
			st.TotalEvents++
			total += e.Duration
			if e.Success {
				st.Successful++
			} else {
				st.Failed++
				failures = append(failures, e)
			}
		}
	}
	st.TrackedEntities = len(h.events)
	if st.TotalEvents > 0 {
		st.SuccessRate = float64(st.Successful) / float64(st.TotalEvents)
		st.AverageDuration = total / time.Duration(st.TotalEvents)
	}
	slices.SortFunc(failures, func(a, b Event) int { return b.Timestamp.Compare(a.Timestamp) })
	if len(failures) > recentFailureLimit {
		failures = failures[:recentFailureLimit]
	}
	st.RecentFailures = failures
	if st.RecentFailures == nil {
		st.RecentFailures = []Event{}
	}
	return st
}
