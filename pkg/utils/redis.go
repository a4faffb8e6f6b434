package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig controls the client used for refresh credentials and login
// throttling. Zero fields take the package defaults.
type RedisConfig struct {
	Addr string

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration

	PingTimeout time.Duration
}

var defaultRedis = RedisConfig{
	DialTimeout:     3 * time.Second,
	ReadTimeout:     2 * time.Second,
	WriteTimeout:    2 * time.Second,
	PoolSize:        20,
	PoolTimeout:     4 * time.Second,
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	PingTimeout:     2 * time.Second,
}

func (c RedisConfig) withDefaults() RedisConfig {
	d := defaultRedis
	return RedisConfig{
		Addr:            c.Addr,
		DialTimeout:     positiveOr(c.DialTimeout, d.DialTimeout),
		ReadTimeout:     positiveOr(c.ReadTimeout, d.ReadTimeout),
		WriteTimeout:    positiveOr(c.WriteTimeout, d.WriteTimeout),
		PoolSize:        positiveOr(c.PoolSize, d.PoolSize),
		MinIdleConns:    max(c.MinIdleConns, 0),
		PoolTimeout:     positiveOr(c.PoolTimeout, d.PoolTimeout),
		ConnMaxIdleTime: positiveOr(c.ConnMaxIdleTime, d.ConnMaxIdleTime),
		ConnMaxLifetime: positiveOr(c.ConnMaxLifetime, d.ConnMaxLifetime),
		PingTimeout:     positiveOr(c.PingTimeout, d.PingTimeout),
	}
}

// OpenRedis builds the client and fails fast when PING does not answer.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	cfg = cfg.withDefaults()
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})

	if err := RedisCheck(rdb, cfg.PingTimeout)(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RedisCheck pings rdb with a timeout.
func RedisCheck(rdb *redis.Client, timeout time.Duration) Check {
	return func(ctx context.Context) error {
		if rdb == nil {
			return fmt.Errorf("redis ping failed: client is nil")
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		return nil
	}
}

var windowIncrementScript = redis.NewScript(`
-- KEYS[1] = counter key
-- ARGV[1] = window_ms (int)
--
-- Returns the number of hits in the current window, including this one.
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
else
  -- Ensure TTL exists even if key already existed without TTL
  if redis.call('PTTL', KEYS[1]) < 0 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
  end
end
return current
`)

// IncrementWindow counts one hit against key in a fixed window and returns the
// hit count so far. The counter resets when the window's TTL lapses.
//
// Safety properties:
// - Atomic increment+expire using Lua.
// - TTL prevents counters from living forever after a crash.
func IncrementWindow(ctx context.Context, rdb *redis.Client, key string, window time.Duration) (int64, error) {
	if rdb == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return 0, fmt.Errorf("key is required")
	}
	if window <= 0 {
		return 0, fmt.Errorf("window must be > 0")
	}
	return windowIncrementScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int64()
}
