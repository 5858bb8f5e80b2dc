package ledger

import (
	"time"

	"deletionguard/internal/deletion/models"
)

// ring is a fixed-capacity FIFO of attempts. Appending to a full ring
// overwrites the oldest entry.
type ring struct {
	buf  []models.DeletionAttempt
	head int // index of the oldest entry
	size int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]models.DeletionAttempt, capacity)}
}

func (r *ring) push(a models.DeletionAttempt) {
	if r.size < len(r.buf) {
		r.buf[(r.head+r.size)%len(r.buf)] = a
		r.size++
		return
	}
	r.buf[r.head] = a
	r.head = (r.head + 1) % len(r.buf)
}

// each visits entries oldest first until fn returns false.
func (r *ring) each(fn func(models.DeletionAttempt) bool) {
	for i := range r.size {
		if !fn(r.buf[(r.head+i)%len(r.buf)]) {
			return
		}
	}
}

// dropBefore removes leading entries with Timestamp at or before cutoff and
// returns how many were removed. Entries are appended in time order, so the
// scan stops at the first newer one.
func (r *ring) dropBefore(cutoff time.Time) int {
	removed := 0
	for r.size > 0 && !r.buf[r.head].Timestamp.After(cutoff) {
		r.buf[r.head] = models.DeletionAttempt{}
		r.head = (r.head + 1) % len(r.buf)
		r.size--
		removed++
	}
	return removed
}

func (r *ring) len() int {
	return r.size
}
