package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/clubworks/memberpay/pkg/config"
)

func newLocalLimiter(maxReq, windowSec int) *Limiter {
	cfg := &cfgpkg.Config{RateLimit: cfgpkg.RateLimitConfig{MaxRequests: maxReq, WindowSeconds: windowSec}}
	return New(cfg, zap.NewNop().Sugar())
}

func TestAllowLocal_WithinLimit(t *testing.T) {
	l := newLocalLimiter(3, 60)
	for i := 0; i < 3; i++ {
		require.True(t, l.Allow(context.Background(), "1.2.3.4"))
	}
}

func TestAllowLocal_BlocksOverLimit(t *testing.T) {
	l := newLocalLimiter(3, 60)
	for i := 0; i < 3; i++ {
		require.True(t, l.Allow(context.Background(), "1.2.3.4"))
	}
	require.False(t, l.Allow(context.Background(), "1.2.3.4"))
	require.False(t, l.Allow(context.Background(), "1.2.3.4"))
}

func TestAllowLocal_KeysAreIndependent(t *testing.T) {
	l := newLocalLimiter(1, 60)
	require.True(t, l.Allow(context.Background(), "1.2.3.4"))
	require.False(t, l.Allow(context.Background(), "1.2.3.4"))
	require.True(t, l.Allow(context.Background(), "5.6.7.8"))
}

func TestAllowLocal_WindowResets(t *testing.T) {
	l := newLocalLimiter(1, 60)
	require.True(t, l.Allow(context.Background(), "1.2.3.4"))
	require.False(t, l.Allow(context.Background(), "1.2.3.4"))

	l.mu.Lock()
	l.local["1.2.3.4"].startAt = time.Now().Add(-2 * time.Minute)
	l.mu.Unlock()

	require.True(t, l.Allow(context.Background(), "1.2.3.4"))
}
