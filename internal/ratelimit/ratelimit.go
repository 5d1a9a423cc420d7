package ratelimit

import (
	"errors"
	"sync"
	"time"
)

// ErrTooManyAttempts is returned by callers when Allow reports a lockout.
var ErrTooManyAttempts = errors.New("too many failed login attempts, please try again later")

const (
	maxAttempts = 5
	window      = 15 * time.Minute
)

type record struct {
	count       int
	lastAttempt time.Time
}

// Limiter tracks failed login attempts per email and enforces a cool-down.
// State is process-lifetime only and not shared between client instances;
// it is a soft, best-effort throttle, not a security boundary.
type Limiter struct {
	mu       sync.Mutex
	attempts map[string]*record
	now      func() time.Time
}

// NewLimiter returns a Limiter on the wall clock.
func NewLimiter() *Limiter {
	return NewLimiterWithClock(time.Now)
}

// NewLimiterWithClock injects the clock; tests use a fake.
func NewLimiterWithClock(now func() time.Time) *Limiter {
	return &Limiter{attempts: make(map[string]*record), now: now}
}

// Allow reports whether a login attempt for email may proceed. A record
// older than the lockout window is cleared on the way through.
func (l *Limiter) Allow(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[email]
	if !ok {
		return true
	}
	if l.now().Sub(rec.lastAttempt) >= window {
		delete(l.attempts, email)
		return true
	}
	return rec.count < maxAttempts
}

// Record books the outcome of an attempt. Success grants amnesty and drops
// the record; failure increments the counter and refreshes the timestamp.
func (l *Limiter) Record(email string, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if success {
		delete(l.attempts, email)
		return
	}
	rec, ok := l.attempts[email]
	if !ok {
		rec = &record{}
		l.attempts[email] = rec
	}
	rec.count++
	rec.lastAttempt = l.now()
}
