package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowN(t *testing.T, l Limiter, key string, n int) int {
	t.Helper()
	allowed := 0
	for i := 0; i < n; i++ {
		ok, err := l.Allow(context.Background(), key)
		require.NoError(t, err)
		if ok {
			allowed++
		}
	}
	return allowed
}

func TestLocalLimiter(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewLocalLimiter(Config{Limit: 3, Window: time.Second}, clock)

	assert.Equal(t, 3, allowN(t, l, "alice", 5))
	assert.Equal(t, 3, allowN(t, l, "bob", 3), "keys have separate buckets")

	clock.Advance(time.Second / 3)
	assert.Equal(t, 1, allowN(t, l, "alice", 2))

	clock.Advance(time.Second)
	assert.Equal(t, 3, allowN(t, l, "alice", 5))
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC))
	l := NewRedisLimiter(client, Config{Limit: 2, Window: time.Second}, clock)

	assert.Equal(t, 2, allowN(t, l, "alice", 4))
	assert.Equal(t, 2, allowN(t, l, "bob", 2))

	key := l.windowKey("alice", clock.Now().UnixNano()/int64(time.Second))
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 2*time.Second, mr.TTL(key))

	clock.Advance(time.Second)
	assert.Equal(t, 2, allowN(t, l, "alice", 3))
}

func TestRedisLimiterError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	_, err := NewRedisLimiter(client, DefaultConfig(), nil).Allow(context.Background(), "alice")
	assert.Error(t, err)
}

func TestUnlimited(t *testing.T) {
	assert.Equal(t, 10, allowN(t, Unlimited{}, "x", 10))
}
