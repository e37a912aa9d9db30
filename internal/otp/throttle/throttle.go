// Package throttle limits how often a code can be sent to one (contact, purpose) slot
// using a sliding window of send timestamps.
package throttle

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// InMemory keeps one sliding window per key.
type InMemory struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
}

type slidingWindow struct {
	timestamps []time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{windows: make(map[string]*slidingWindow)}
}

// Allow records a send for key at now if fewer than limit sends happened in the window.
func (s *InMemory) Allow(_ context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw := s.windows[key]
	if sw == nil {
		sw = &slidingWindow{}
		s.windows[key] = sw
	}
	sw.cleanup(now, window)

	if len(sw.timestamps) >= limit {
		return Result{Allowed: false, ResetAt: sw.timestamps[0].Add(window)}, nil
	}
	sw.timestamps = append(sw.timestamps, now)
	return Result{
		Allowed:   true,
		Remaining: limit - len(sw.timestamps),
		ResetAt:   sw.timestamps[0].Add(window),
	}, nil
}

// cleanup drops timestamps that have left the window.
func (sw *slidingWindow) cleanup(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

const keyPrefix = "otp:send:"

// allowScript trims the window, then admits and records the send when under limit.
// Returns {allowed, count, oldest_ms}.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestMs = now
if oldest[2] then
	oldestMs = tonumber(oldest[2])
end
return {allowed, count, oldestMs}
`)

// Redis is the shared sliding window, stored as a sorted set of send timestamps.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	vals, err := allowScript.Run(ctx, s.client, []string{keyPrefix + key},
		now.UnixMilli(), window.Milliseconds(), limit, strconv.FormatInt(now.UnixNano(), 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("throttle allow: %w", err)
	}
	resetAt := time.UnixMilli(vals[2]).Add(window)
	if vals[0] == 0 {
		return Result{Allowed: false, ResetAt: resetAt}, nil
	}
	return Result{Allowed: true, Remaining: limit - int(vals[1]), ResetAt: resetAt}, nil
}
