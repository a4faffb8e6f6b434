package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"tenant-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Limiter admits at most a fixed number of hits per key per window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter shares its counters across API replicas.
type RedisLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRedisLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) (*RedisLimiter, error) {
	if rdb == nil {
		return nil, errors.New("ratelimit: redis client is nil")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("ratelimit: limit and window must be > 0")
	}
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: int64(limit), window: window}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	hits, err := utils.IncrementWindow(ctx, l.rdb, l.prefix+key, l.window)
	if err != nil {
		return false, err
	}
	return hits <= l.limit, nil
}

// MemoryLimiter is a single-process fixed-window limiter for tests and local runs.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clock   func() time.Time
	windows map[string]window
}

type window struct {
	start time.Time
	hits  int
}

func NewMemoryLimiter(limit int, win time.Duration) *MemoryLimiter {
	return &MemoryLimiter{limit: limit, window: win, clock: time.Now, windows: make(map[string]window)}
}

// WithClock overrides the window clock.
func (l *MemoryLimiter) WithClock(clock func() time.Time) *MemoryLimiter {
	l.clock = clock
	return l
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	_ = ctx
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = window{start: now}
	}
	w.hits++
	l.windows[key] = w
	return w.hits <= l.limit, nil
}
