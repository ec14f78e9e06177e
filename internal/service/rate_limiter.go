package service

import (
	"sync"
	"time"

	"github.com/pawplates/engine/internal/pawerrors"
)

// FixedWindowLimiter enforces a fixed-window rate limit per scope (e.g.
// "embedding_update:user-123"). Hard reset at each window boundary, no
// token leakage across windows: simple and predictable over smoother
// algorithms like leaky bucket.
type FixedWindowLimiter struct {
	maxRequests int
	window      time.Duration

	mu      sync.Mutex
	windows map[string]*windowState
	now     func() time.Time
}

// windowState tracks one scope's current window. count never exceeds
// maxRequests; a rejected attempt does not mutate it.
type windowState struct {
	start time.Time
	count int
}

// LimiterOption configures the limiter.
type LimiterOption func(*FixedWindowLimiter)

// WithClock overrides the time source, letting tests advance simulated
// time deterministically.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *FixedWindowLimiter) {
		l.now = now
	}
}

// NewFixedWindowLimiter creates a limiter allowing maxRequests per window
// for each scope. State per scope is created lazily on first use.
func NewFixedWindowLimiter(maxRequests int, window time.Duration, opts ...LimiterOption) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		maxRequests: maxRequests,
		window:      window,
		windows:     make(map[string]*windowState),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// TryAcquire reports whether an action in scope is allowed. The
// check-and-increment is serialized under the mutex so two concurrent
// callers can't both take the last slot. Returns pawerrors.RateLimitedError
// when the quota for the current window is exhausted.
func (l *FixedWindowLimiter) TryAcquire(scope string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[scope]
	if !ok || now.Sub(w.start) >= l.window {
		w = &windowState{start: now}
		l.windows[scope] = w
	}

	if w.count >= l.maxRequests {
		return pawerrors.NewRateLimitedError(scope)
	}

	w.count++

	return nil
}
