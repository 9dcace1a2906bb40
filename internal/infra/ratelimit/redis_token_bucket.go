package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	-- 取得或初始化 bucket 狀態
	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local currentTokens = tonumber(bucket[1])
	local lastRefill = tonumber(bucket[2])
	if currentTokens == nil then
		currentTokens = capacity
		lastRefill = now
	end

	-- 計算需要補充的 tokens
	local elapsedSeconds = (now - lastRefill) / 1000000000
	currentTokens = math.min(capacity, currentTokens + elapsedSeconds * rate)

	local allowed = 0
	if currentTokens >= 1 then
		currentTokens = currentTokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'tokens', currentTokens, 'last_refill', now)
	redis.call('EXPIRE', key, ttl)
	return allowed
`)

// RedisTokenBucket 多個實例共用同一份限流狀態
type RedisTokenBucket struct {
	cfg    LimiterConfig
	client redis.Scripter
	logger *zerolog.Logger
}

func NewRedisTokenBucket(client redis.Scripter, config *LimiterConfig, logger *zerolog.Logger) *RedisTokenBucket {
	cfg := GetDefaultLimiterConfig()
	if config != nil {
		cfg = config.normalize()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &RedisTokenBucket{cfg: cfg, client: client, logger: logger}
}

// Allow redis 出錯時放行, 限流不應擋住結帳
func (r *RedisTokenBucket) Allow(ctx context.Context, key string) bool {
	result, err := tokenBucketScript.Run(ctx, r.client,
		[]string{fmt.Sprintf("ratelimit:%s", key)},
		r.cfg.Capacity,
		r.cfg.RatePS,
		time.Now().UnixNano(),
		int(r.cfg.KeyTTL.Seconds()),
	).Int64()
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
		return true
	}
	return result == 1
}
