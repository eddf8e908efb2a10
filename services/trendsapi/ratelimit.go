package trendsapi

import (
	"log/slog"
	"sync"
	"time"
)

// RateLimiter is a sliding-window counter over all non-health
// endpoints: timestamps older than the window are pruned before every
// decision.
type RateLimiter struct {
	mu       sync.Mutex
	maxCalls int
	window   time.Duration
	calls    []time.Time

	// overridable for tests
	now func() time.Time
}

func NewRateLimiter(maxCalls int, window time.Duration) *RateLimiter {
	slog.Info(
		"rate limiter initialized",
		"max_calls", maxCalls,
		"window", window,
	)
	return &RateLimiter{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
	}
}

func (l *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	kept := l.calls[:0]
	for _, call := range l.calls {
		if call.After(cutoff) {
			kept = append(kept, call)
		}
	}
	l.calls = kept
}

func (l *RateLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.now())
	allowed := len(l.calls) < l.maxCalls
	if !allowed {
		slog.Warn("rate limit exceeded", "current", len(l.calls), "max", l.maxCalls)
	}
	return allowed
}

func (l *RateLimiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	l.calls = append(l.calls, now)
}

type RateLimitStatus struct {
	MaxCalls             int `json:"max_calls"`
	TimeFrameSeconds     int `json:"time_frame_seconds"`
	CurrentCallsInWindow int `json:"current_calls_in_window"`
}

func (l *RateLimiter) Status() RateLimitStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.now())
	return RateLimitStatus{
		MaxCalls:             l.maxCalls,
		TimeFrameSeconds:     int(l.window / time.Second),
		CurrentCallsInWindow: len(l.calls),
	}
}
