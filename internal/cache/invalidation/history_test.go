package invalidation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var historyBase = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func event(entity string, n int, ok bool) Event {
	return Event{
		ID:        fmt.Sprintf("%s-%d", entity, n),
		EntityID:  entity,
		Timestamp: historyBase.Add(time.Duration(n) * time.Minute),
		Attempt:   1,
		Success:   ok,
		Duration:  10 * time.Millisecond,
	}
}

func TestHistory(t *testing.T) {
	t.Run("keeps the most recent events per entity", func(t *testing.T) {
		h := NewHistory(WithPerEntity(3))
		for i := range 5 {
			h.Record(event("42", i, true))
		}
		got := h.For("42")
		require.Len(t, got, 3)
		assert.Equal(t, "42-2", got[0].ID)
		assert.Equal(t, "42-4", got[2].ID)
	})

	t.Run("evicts the least recently recorded entity", func(t *testing.T) {
		h := NewHistory(WithMaxEntities(2))
		h.Record(event("a", 0, true))
		h.Record(event("b", 1, true))
		h.Record(event("a", 2, true))
		h.Record(event("c", 3, true))

		assert.Empty(t, h.For("b"))
		assert.Len(t, h.For("a"), 2)
		assert.Len(t, h.For("c"), 1)
	})

	t.Run("unknown entity returns empty", func(t *testing.T) {
		assert.Empty(t, NewHistory().For("nope"))
	})

	t.Run("prune drops old events and empty entities", func(t *testing.T) {
		h := NewHistory()
		h.Record(event("a", 0, true))
		h.Record(event("a", 5, true))
		h.Record(event("b", 1, false))

		removed := h.Prune(historyBase.Add(2 * time.Minute))
		assert.Equal(t, 2, removed)
		assert.Len(t, h.For("a"), 1)
		assert.Empty(t, h.For("b"))
		assert.Equal(t, 1, h.Stats().TrackedEntities)
	})

	t.Run("stats", func(t *testing.T) {
		h := NewHistory()
		assert.Equal(t, Stats{RecentFailures: []Event{}}, h.Stats())

		h.Record(event("a", 0, true))
		h.Record(event("a", 1, false))
		h.Record(event("b", 2, false))
		h.Record(event("b", 3, true))

		st := h.Stats()
		assert.Equal(t, 4, st.TotalEvents)
		assert.Equal(t, 2, st.Successful)
		assert.Equal(t, 2, st.Failed)
		assert.InDelta(t, 0.5, st.SuccessRate, 0.0001)
		assert.Equal(t, 10*time.Millisecond, st.AverageDuration)
		assert.Equal(t, 2, st.TrackedEntities)
		require.Len(t, st.RecentFailures, 2)
		assert.Equal(t, "b-2", st.RecentFailures[0].ID)
	})
}
