// Package ratelimit throttles outbound probes to at most one per interval,
// process-wide. Callers are blocked, never dropped.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between acquisitions, measured from
// the moment each caller passed the gate.
// It is safe for concurrent use.
type Limiter struct {
	interval time.Duration

	// gate admits one waiter at a time; waiters queue on it and can
	// give up when their context ends.
	gate chan struct{}

	mu   sync.Mutex
	last time.Time // zero until the first acquisition
}

// New returns a limiter that spaces acquisitions at least interval apart.
// The first acquisition passes immediately. An interval <= 0 disables
// throttling.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		gate:     make(chan struct{}, 1),
	}
}

// Interval returns the configured minimum interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Delay reports how long an uncontended Acquire would block right now,
// without consuming the slot.
func (l *Limiter) Delay() time.Duration {
	if l.interval <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delayLocked(time.Now())
}

func (l *Limiter) delayLocked(now time.Time) time.Duration {
	if l.last.IsZero() {
		return 0
	}
	if d := l.interval - now.Sub(l.last); d > 0 {
		return d
	}
	return 0
}

// Acquire blocks until the caller may start a probe and returns the time
// it passed the gate. The next acquisition passes no earlier than that
// time plus the interval. It fails only when ctx ends first, in which case
// the slot is not consumed.
func (l *Limiter) Acquire(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if l.interval <= 0 {
		return time.Now(), nil
	}

	select {
	case l.gate <- struct{}{}:
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
	defer func() { <-l.gate }()

	for {
		l.mu.Lock()
		now := time.Now()
		wait := l.delayLocked(now)
		if wait == 0 {
			l.last = now
			l.mu.Unlock()
			return now, nil
		}
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return time.Time{}, ctx.Err()
		}
	}
}
