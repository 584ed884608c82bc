// Package ratelimit guards the login endpoint with fixed-window counters,
// shared across instances when redis is available and per-process otherwise.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is returned once a client identity exhausts its window.
var ErrRateLimited = errors.New("rate limited")

// Limiter allows up to max requests per key per window. The request that
// exceeds the budget fails without touching anything behind the gate.
type Limiter struct {
	redis  redis.UniversalClient
	window time.Duration
	max    int

	mu       sync.Mutex
	counters map[string]*counter

	now func() time.Time
}

type counter struct {
	count   int
	resetAt time.Time
}

// New builds a Limiter. redisClient may be nil, in which case counting is
// per-process only: a known, weaker guarantee behind multiple instances.
func New(redisClient redis.UniversalClient, window time.Duration, max int) *Limiter {
	return &Limiter{
		redis:    redisClient,
		window:   window,
		max:      max,
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// Allow records one request for key and reports whether it is within budget.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	if l.redis != nil {
		return l.allowRedis(ctx, key)
	}
	return l.allowLocal(key)
}

func (l *Limiter) allowRedis(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, l.redisKey(key)).Result()
	if err != nil {
		return fmt.Errorf("ratelimit incr: %w", err)
	}
	// First hit in the window owns the TTL.
	if count == 1 {
		if err := l.redis.Expire(ctx, l.redisKey(key), l.window).Err(); err != nil {
			return fmt.Errorf("ratelimit expire: %w", err)
		}
	}
	if count > int64(l.max) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) allowLocal(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.counters[key]
	if !ok || now.After(c.resetAt) {
		l.counters[key] = &counter{count: 1, resetAt: now.Add(l.window)}
		return nil
	}
	c.count++
	if c.count > l.max {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) redisKey(key string) string {
	return "ratelimit:login:" + key
}
