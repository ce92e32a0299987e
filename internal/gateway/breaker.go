package gateway

import (
	"sync"
	"time"
)

const (
	defaultFailureThreshold = 3
	defaultTimeoutThreshold = 2
	defaultCooldown         = 30 * time.Second
)

// Breaker is the client-side circuit breaker. It exists to stop request
// storms against a known-bad downstream: after repeated failures every call
// fails fast without touching the network until the cooldown elapses.
//
// The breaker is an owned object passed into the client constructor, never an
// ambient global, so independent clients (and tests) do not interfere. All
// state is mutex-guarded.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	timeoutThreshold int
	cooldown         time.Duration
	now              func() time.Time

	consecutiveFailures int
	consecutiveTimeouts int
	openUntil           time.Time
}

// BreakerOptions tunes breaker thresholds. Zero values take defaults.
type BreakerOptions struct {
	FailureThreshold int
	TimeoutThreshold int
	Cooldown         time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewBreaker constructs a closed breaker.
func NewBreaker(opts BreakerOptions) *Breaker {
	b := &Breaker{
		failureThreshold: opts.FailureThreshold,
		timeoutThreshold: opts.TimeoutThreshold,
		cooldown:         opts.Cooldown,
		now:              opts.Now,
	}
	if b.failureThreshold <= 0 {
		b.failureThreshold = defaultFailureThreshold
	}
	if b.timeoutThreshold <= 0 {
		b.timeoutThreshold = defaultTimeoutThreshold
	}
	if b.cooldown <= 0 {
		b.cooldown = defaultCooldown
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// Allow reports whether a call may proceed. An open breaker whose cooldown
// has elapsed closes lazily here, clearing both counters.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.openUntil.IsZero() {
		return true
	}
	if b.now().Before(b.openUntil) {
		return false
	}
	b.closeLocked()
	return true
}

// RecordSuccess resets both failure counters after a successful call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
	b.consecutiveTimeouts = 0
}

// RecordTimeout notes one timed-out attempt. It returns true when the timeout
// threshold was reached and the breaker opened, which aborts the remaining
// attempts of the current call.
func (b *Breaker) RecordTimeout() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveTimeouts++
	if b.consecutiveTimeouts >= b.timeoutThreshold {
		b.openLocked()
		return true
	}
	return false
}

// RecordFailure notes one exhausted call sequence that ended in failure. It
// returns true when the failure threshold was reached and the breaker opened.
func (b *Breaker) RecordFailure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures++
	if b.consecutiveFailures >= b.failureThreshold {
		b.openLocked()
		return true
	}
	return false
}

// Trip opens the breaker immediately, regardless of counters. Used on
// rate-limit classifications, which signal a condition retrying cannot fix.
func (b *Breaker) Trip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openLocked()
}

// Reset forces the breaker back to closed, clearing all state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
}

// Open reports whether the breaker currently rejects calls. Unlike Allow it
// does not close a breaker whose cooldown has elapsed.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.openUntil.IsZero() && b.now().Before(b.openUntil)
}

// Snapshot returns the current counters, for logging and tests.
func (b *Breaker) Snapshot() (failures, timeouts int, openUntil time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutiveFailures, b.consecutiveTimeouts, b.openUntil
}

func (b *Breaker) openLocked() {
	b.openUntil = b.now().Add(b.cooldown)
}

func (b *Breaker) closeLocked() {
	b.openUntil = time.Time{}
	b.consecutiveFailures = 0
	b.consecutiveTimeouts = 0
}
