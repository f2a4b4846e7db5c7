package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Refills KEYS[1] at ARGV[1] tokens/s up to ARGV[2], takes one token when
// available and returns {allowed, tokens_left}.
const bucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])

local t = redis.call("TIME")
local now = (t[1] * 1000) + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now

local elapsed = math.max(0, now - ts)
tokens = math.min(burst, tokens + (elapsed / 1000) * rate)

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", now)
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return {allowed, tostring(tokens)}
`

var (
	errBucketUnset    = errors.New("token bucket not configured")
	errBucketKey      = errors.New("token bucket key is empty")
	errBucketSettings = errors.New("token bucket rate and burst must be positive")
)

// Decision is the outcome of one Take call.
type Decision struct {
	Allowed    bool
	Remaining  float64
	RetryAfter time.Duration
}

// TokenBucket keeps one bucket per key in a redis hash; refill and take run
// atomically server-side.
type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client, script: redis.NewScript(bucketScript)}
}

func (t *TokenBucket) Take(ctx context.Context, key string, rate float64, burst int) (Decision, error) {
	switch {
	case t == nil || t.client == nil:
		return Decision{}, errBucketUnset
	case key == "":
		return Decision{}, errBucketKey
	case rate <= 0 || burst <= 0:
		return Decision{}, errBucketSettings
	}

	ttl := bucketTTL(rate, burst)
	res, err := t.script.Run(ctx, t.client, []string{key}, rate, burst, ttl.Milliseconds()).Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(res) < 2 {
		return Decision{}, errors.New("unexpected token bucket reply")
	}

	d := Decision{
		Allowed:   toInt64(res[0]) == 1,
		Remaining: toFloat64(res[1]),
	}
	if !d.Allowed {
		d.RetryAfter = time.Duration((1 - d.Remaining) / rate * float64(time.Second))
	}
	return d, nil
}

// bucketTTL keeps an idle bucket around for twice its full refill time.
func bucketTTL(rate float64, burst int) time.Duration {
	if rate <= 0 || burst <= 0 {
		return time.Second
	}
	seconds := math.Max(1, math.Ceil(float64(burst)/rate*2))
	return time.Duration(seconds) * time.Second
}

func toInt64(v any) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch val := v.(type) {
	case int64:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
