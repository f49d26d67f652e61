// Package ratelimit caps how often a caller may perform an action such as
// submitting a pick.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter reports whether one more action for key is allowed now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config is a rate of Limit actions per Window.
type Config struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

func DefaultConfig() Config {
	return Config{Limit: 5, Window: time.Second}
}

// LocalLimiter is an in-process token bucket per key.
type LocalLimiter struct {
	clock clockwork.Clock
	every rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewLocalLimiter(cfg Config, clock clockwork.Clock) *LocalLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LocalLimiter{
		clock:    clock,
		every:    rate.Every(cfg.Window / time.Duration(max(cfg.Limit, 1))),
		burst:    max(cfg.Limit, 1),
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.AllowN(l.clock.Now(), 1), nil
}

// RedisLimiter is a fixed window counter shared by every process using the
// same Redis.
type RedisLimiter struct {
	client *redis.Client
	clock  clockwork.Clock
	cfg    Config
	prefix string
}

func NewRedisLimiter(client *redis.Client, cfg Config, clock clockwork.Clock) *RedisLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	return &RedisLimiter{client: client, clock: clock, cfg: cfg, prefix: "ratelimit"}
}

// Key helper
func (l *RedisLimiter) windowKey(key string, window int64) string {
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, window)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := l.clock.Now().UnixNano() / int64(l.cfg.Window)
	k := l.windowKey(key, window)

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", k, err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, 2*l.cfg.Window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	return n <= int64(l.cfg.Limit), nil
}

// Unlimited allows everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }
