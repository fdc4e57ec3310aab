// Package ratelimit implements fixed-window request limits keyed by client,
// either shared through Redis or held in process.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	redis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Decision is the outcome of a single Allow call
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter int // seconds, set when not allowed
}

// Limiter decides whether the client identified by key may make another request
type Limiter interface {
	Allow(ctx context.Context, key string, rpm int) (Decision, error)
}

// Manager provides Redis-backed fixed-window rate limiting
type Manager struct {
	redis  *redis.Client
	prefix string
	now    func() time.Time
}

// NewManager connects to Redis at redisURL and verifies the connection
func NewManager(redisURL, prefix string) (*Manager, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Manager{redis: client, prefix: prefix, now: time.Now}, nil
}

func (m *Manager) Close() error { return m.redis.Close() }

// Allow counts the request in the current minute window and rejects it once
// the count exceeds rpm.
func (m *Manager) Allow(ctx context.Context, key string, rpm int) (Decision, error) {
	now := m.now().UTC()
	window := now.Unix() / 60
	rk := fmt.Sprintf("%s:rl:%s:%d", m.prefix, key, window)

	// INCR and set TTL in one round trip
	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	pipe.Expire(ctx, rk, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate window %s: %w", rk, err)
	}

	count := int(incr.Val())
	if count > rpm {
		return Decision{Allowed: false, RetryAfter: 60 - int(now.Unix()%60)}, nil
	}
	return Decision{Allowed: true, Remaining: rpm - count}, nil
}

// Local is an in-process token bucket per key, used when Redis is not configured.
// Idle buckets expire after ten minutes.
type Local struct {
	mu       sync.Mutex
	limiters *gocache.Cache
}

// NewLocal creates an in-process limiter
func NewLocal() *Local {
	return &Local{limiters: gocache.New(10*time.Minute, time.Minute)}
}

// Allow takes a token from key's bucket. The bucket refills at rpm per minute
// with a burst of rpm.
func (l *Local) Allow(ctx context.Context, key string, rpm int) (Decision, error) {
	lim := l.limiter(key, rpm)

	now := time.Now()
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Allowed: false, RetryAfter: 60}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: int(math.Ceil(delay.Seconds()))}, nil
	}
	return Decision{Allowed: true, Remaining: int(lim.TokensAt(now))}, nil
}

func (l *Local) limiter(key string, rpm int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.limiters.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
	l.limiters.SetDefault(key, lim)
	return lim
}
