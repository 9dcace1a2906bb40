package ratelimit

import (
	"context"
	"time"
)

// ILimiter 以 key 區分的限流器, 例如每個使用者一個桶
type ILimiter interface {
	Allow(ctx context.Context, key string) bool
}

type LimiterConfig struct {
	Capacity int     // 桶容量, 也是初始 token 數
	RatePS   float64 // tokens/秒
	KeyTTL   time.Duration
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity: 10,
		RatePS:   1,
		KeyTTL:   time.Minute,
	}
}

func (c LimiterConfig) normalize() LimiterConfig {
	d := GetDefaultLimiterConfig()
	if c.Capacity <= 0 {
		c.Capacity = d.Capacity
	}
	if c.RatePS <= 0 {
		c.RatePS = d.RatePS
	}
	if c.KeyTTL <= 0 {
		c.KeyTTL = d.KeyTTL
	}
	return c
}
