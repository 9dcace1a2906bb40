package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenBucketCapacityAndRefill(t *testing.T) {
	now := time.Unix(1000, 0)
	tb := NewTokenBucket(&LimiterConfig{Capacity: 3, RatePS: 2, KeyTTL: time.Minute})
	tb.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, tb.Allow(ctx, "user:1"), "應該允許第 %d 次請求", i+1)
	}
	require.False(t, tb.Allow(ctx, "user:1"))
	// 不同 key 互不影響
	require.True(t, tb.Allow(ctx, "user:2"))

	now = now.Add(500 * time.Millisecond)
	require.True(t, tb.Allow(ctx, "user:1"))
	require.False(t, tb.Allow(ctx, "user:1"))

	// 補充不超過容量
	now = now.Add(time.Hour)
	for i := 0; i < 3; i++ {
		require.True(t, tb.Allow(ctx, "user:1"))
	}
	require.False(t, tb.Allow(ctx, "user:1"))
}

func TestTokenBucketEvictsIdleKeys(t *testing.T) {
	now := time.Unix(1000, 0)
	tb := NewTokenBucket(&LimiterConfig{Capacity: 1, RatePS: 1, KeyTTL: time.Second})
	tb.now = func() time.Time { return now }
	ctx := context.Background()

	tb.Allow(ctx, "a")
	now = now.Add(2 * time.Second)
	tb.Allow(ctx, "b")

	require.NotContains(t, tb.buckets, "a")
	require.Contains(t, tb.buckets, "b")
}

func TestDefaultConfigNormalize(t *testing.T) {
	tb := NewTokenBucket(&LimiterConfig{})
	require.Equal(t, GetDefaultLimiterConfig(), tb.cfg)
}
