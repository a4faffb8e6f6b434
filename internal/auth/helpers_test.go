package auth

import (
	"testing"
	"time"

	"tenant-platform/internal/config"
	"tenant-platform/pkg/logger"
)

const testSecret = "test-signing-key-32-characters-long"

var t0 = time.Unix(1700000000, 0).UTC()

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(t *testing.T, ttl, skew time.Duration) (*Manager, *fakeClock) {
	t.Helper()
	m, err := NewManager(config.AuthConfig{JWTSecret: testSecret, AccessTokenTTL: ttl, ClockSkew: skew}, logger.Discard())
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	clk := &fakeClock{now: t0}
	m.clock = clk.Now
	return m, clk
}
