package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit answers 429 once a client IP exceeds the limiter's budget.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.Context(), ClientIP(r)) {
				rateLimited.Inc()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests. Please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP keys on the connection address. Forwarded headers are honoured
// only when the router runs chi's RealIP middleware behind a trusted proxy,
// which rewrites RemoteAddr before this point.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimiter is a per-key fixed window counter held in process memory.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     limit,
		window:    window,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) Allow(_ context.Context, key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, exists := rl.visitors[key]
	if !exists {
		rl.visitors[key] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

// sweep drops idle visitors; it runs inline so the limiter owns no goroutine.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < 10*time.Minute {
		return
	}
	rl.lastSweep = now
	for key, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, key)
		}
	}
}

// RedisRateLimiter shares a sliding window across API replicas.
type RedisRateLimiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	log    zerolog.Logger
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, log zerolog.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{redis: client, limit: limit, window: window, log: log}
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local max_requests = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	if redis.call('ZCARD', key) < max_requests then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms * 2)
		return 1
	end
	return 0
`)

// Allow fails open when Redis is unreachable: the public form must keep
// accepting leads.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	if l.redis == nil {
		return true
	}

	now := time.Now()
	result, err := slidingWindowScript.Run(ctx, l.redis,
		[]string{"ratelimit:leads:" + key},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
		fmt.Sprintf("%d", now.UnixNano()),
	).Int64()
	if err != nil {
		l.log.Warn().Err(err).Msg("redis rate limiter unavailable, allowing request")
		return true
	}

	return result == 1
}
