package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	limiter := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow("client"), "request %d", i+1)
	}
	require.False(t, limiter.Allow("client"))
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(1, time.Hour)

	require.True(t, limiter.Allow("a"))
	require.False(t, limiter.Allow("a"))
	require.True(t, limiter.Allow("b"))
}

func TestRateLimiter_WindowExpiryResetsCounter(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)

	require.True(t, limiter.Allow("client"))
	require.False(t, limiter.Allow("client"))

	time.Sleep(40 * time.Millisecond)
	require.True(t, limiter.Allow("client"))
}

func TestRateLimiter_ZeroConfigUsesDefaults(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	require.Equal(t, DefaultLimit, limiter.limit)
	require.Equal(t, DefaultWindow, limiter.window)
}
