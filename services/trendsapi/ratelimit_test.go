package trendsapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	current := time.Now()
	limiter := NewRateLimiter(2, time.Minute)
	limiter.now = func() time.Time { return current }

	require.True(t, limiter.Allow())
	limiter.Record()
	require.True(t, limiter.Allow())
	limiter.Record()
	require.False(t, limiter.Allow())

	// calls age out of the sliding window
	current = current.Add(time.Second * 61)
	require.True(t, limiter.Allow())
}

func TestRateLimiterStatus(t *testing.T) {
	current := time.Now()
	limiter := NewRateLimiter(100, time.Minute)
	limiter.now = func() time.Time { return current }

	limiter.Record()
	limiter.Record()

	status := limiter.Status()
	require.Equal(t, 100, status.MaxCalls)
	require.Equal(t, 60, status.TimeFrameSeconds)
	require.Equal(t, 2, status.CurrentCallsInWindow)

	current = current.Add(time.Minute * 2)
	require.Equal(t, 0, limiter.Status().CurrentCallsInWindow)
}
