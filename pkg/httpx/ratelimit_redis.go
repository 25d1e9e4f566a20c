package httpx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucket refills one token per interval up to capacity and takes one
// token if available. Returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local earned = math.floor(elapsed / interval_ms)
	if earned > 0 then
		tokens = math.min(capacity, tokens + earned)
		last_refill = last_refill + earned * interval_ms
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RedisLimiter is a token bucket shared by every instance pointing at the
// same Redis.
type RedisLimiter struct {
	client   redis.Scripter
	prefix   string
	capacity int
	interval time.Duration
	ttl      time.Duration

	// Now is the clock used for refills. Defaults to time.Now.
	Now func() time.Time
}

// NewRedisLimiter creates a limiter storing buckets under prefix.
func NewRedisLimiter(client redis.Scripter, prefix string, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		prefix:   prefix,
		capacity: max(config.Burst, 1),
		interval: config.interval(),
		ttl:      max(config.Window, time.Second),
		Now:      time.Now,
	}
}

// RedisLimiters is a LimiterFactory whose buckets live under
// "<prefix>:<name>:<key>".
func RedisLimiters(client redis.Scripter, prefix string) LimiterFactory {
	return func(name string, config RateLimitConfig) Limiter {
		return NewRedisLimiter(client, prefix+":"+name, config)
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := tokenBucket.Run(ctx, l.client, []string{l.prefix + ":" + key},
		l.Now().UnixMilli(),
		l.capacity,
		l.interval.Milliseconds(),
		int64(l.ttl/time.Second),
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis: %w", err)
	}
	if len(res) != 3 {
		return false, 0, fmt.Errorf("ratelimit: unexpected script result %v", res)
	}

	return res[0] == 1, time.Duration(res[2]) * time.Millisecond, nil
}
