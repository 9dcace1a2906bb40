package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

/*
單機版 token bucket
不開背景 goroutine, 每次 Allow 依經過時間補 token
*/
type TokenBucket struct {
	cfg     LimiterConfig
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func NewTokenBucket(config *LimiterConfig) *TokenBucket {
	cfg := GetDefaultLimiterConfig()
	if config != nil {
		cfg = config.normalize()
	}
	return &TokenBucket{
		cfg:     cfg,
		buckets: map[string]*bucket{},
		now:     time.Now,
	}
}

func (t *TokenBucket) Allow(ctx context.Context, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(t.cfg.Capacity), lastRefill: now}
		t.buckets[key] = b
		t.evict(now)
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = math.Min(float64(t.cfg.Capacity), b.tokens+elapsed*t.cfg.RatePS)
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// evict 移除閒置超過 KeyTTL 的桶, 閒置夠久的桶一定是滿的
func (t *TokenBucket) evict(now time.Time) {
	for k, b := range t.buckets {
		if now.Sub(b.lastRefill) > t.cfg.KeyTTL {
			delete(t.buckets, k)
		}
	}
}
