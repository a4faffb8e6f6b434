package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	l := NewMemoryLimiter(2, time.Minute).WithClock(func() time.Time { return now })

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "hit %d", i+1)
	}

	ok, _ := l.Allow(ctx, "b@x.com")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "a@x.com")
	assert.True(t, ok, "new window resets the count")
}

func TestNewRedisLimiter_RejectsInvalidArgs(t *testing.T) {
	_, err := NewRedisLimiter(nil, "login:", 5, time.Minute)
	assert.Error(t, err)
}
