// Package circuit provides a small consecutive-failure circuit breaker used
// to shed load from an unhealthy Redis before every call times out.
package circuit

import (
	"sync"
	"time"

	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/clock"
)

// State represents the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// ErrOpen is returned by Do while the circuit refuses calls.
var ErrOpen = dErrors.New(dErrors.CodeTimeout, "circuit open")

// Breaker opens after FailureThreshold consecutive failures, refuses calls
// for Cooldown, then lets trial calls through. SuccessThreshold consecutive
// trial successes close it again; any trial failure reopens it.
type Breaker struct {
	mu               sync.Mutex
	name             string
	clock            clock.Clock
	state            State
	openedAt         time.Time
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	onChange         func(name string, from, to State)
}

type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures needed to open. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the trial successes needed to close. Default 2.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// WithCooldown sets how long the circuit stays open. Default 10s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(b *Breaker) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithStateChange registers a callback invoked (outside the lock) on every
// transition.
func WithStateChange(fn func(name string, from, to State)) Option {
	return func(b *Breaker) {
		b.onChange = fn
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		clock:            clock.Real{},
		failureThreshold: 5,
		successThreshold: 2,
		cooldown:         10 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, promoting open to half-open once the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	from := b.state
	b.promoteLocked()
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
	return to
}

// Do runs fn unless the circuit is open. Errors returned by fn count as
// failures.
func (b *Breaker) Do(fn func() error) error {
	if b.State() == StateOpen {
		return ErrOpen
	}
	err := fn()
	if err != nil {
		b.RecordFailure()
	} else {
		b.RecordSuccess()
	}
	return err
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	from := b.state
	b.promoteLocked()
	b.successCount = 0
	b.failureCount++
	if b.state == StateHalfOpen || b.failureCount >= b.failureThreshold {
		b.state = StateOpen
		b.openedAt = b.clock.Now()
	}
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	from := b.state
	b.promoteLocked()
	switch b.state {
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = StateClosed
			b.failureCount = 0
			b.successCount = 0
		}
	case StateClosed:
		b.failureCount = 0
	}
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

// Reset forces the circuit closed with zero counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	from := b.state
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
	b.mu.Unlock()
	b.notify(from, StateClosed)
}

func (b *Breaker) promoteLocked() {
	if b.state == StateOpen && b.clock.Now().Sub(b.openedAt) >= b.cooldown {
		b.state = StateHalfOpen
		b.successCount = 0
	}
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}
