package rules

import (
	"sync/atomic"
	"time"
)

// Holder publishes the active RuleSet. Readers never block writers; a swap
// is visible to the next Load.
type Holder struct {
	current atomic.Pointer[RuleSet]
}

func NewHolder(initial *RuleSet) *Holder {
	h := &Holder{}
	if initial == nil {
		initial = Default()
	}
	h.current.Store(initial)
	return h
}

func (h *Holder) Load() *RuleSet {
	return h.current.Load()
}

// Swap installs rs and returns the previous set.
func (h *Holder) Swap(rs *RuleSet) *RuleSet {
	return h.current.Swap(rs)
}

// MaxWindow is the longest window of the active set.
func (h *Holder) MaxWindow() time.Duration {
	return h.Load().MaxWindow()
}
