package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, "test"), mr
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	limiter, mr := newTestRedisLimiter(t)
	ctx := context.Background()
	policy := Policy{Limit: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		decision, err := limiter.Allow(ctx, "editor", policy)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !decision.Allowed || decision.Remaining != 1-i {
			t.Fatalf("unexpected decision %d: %+v", i, decision)
		}
	}

	decision, err := limiter.Allow(ctx, "editor", policy)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if decision.Allowed || decision.RetryAfter <= 0 || decision.RetryAfter > time.Minute {
		t.Fatalf("expected blocked decision, got %+v", decision)
	}

	if ttl := mr.TTL("test:editor"); ttl != time.Minute {
		t.Fatalf("window must not be extended by later hits, ttl=%v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	decision, err = limiter.Allow(ctx, "editor", policy)
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected new window to allow request, got %+v", decision)
	}
}

func TestRedisLimiterKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestRedisLimiter(t)
	ctx := context.Background()
	policy := Policy{Limit: 1}

	if d, _ := limiter.Allow(ctx, "a", policy); !d.Allowed {
		t.Fatalf("expected a to pass")
	}
	if d, _ := limiter.Allow(ctx, "b", policy); !d.Allowed {
		t.Fatalf("expected b to pass")
	}
	if d, _ := limiter.Allow(ctx, "a", policy); d.Allowed {
		t.Fatalf("expected second a to be blocked")
	}
}

func TestRedisLimiterReportsConnectionErrors(t *testing.T) {
	limiter, mr := newTestRedisLimiter(t)
	mr.Close()

	if _, err := limiter.Allow(context.Background(), "editor", Policy{Limit: 1}); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}

func TestLimitersIgnoreDisabledPolicy(t *testing.T) {
	var nilRedis *RedisLimiter
	for name, limiter := range map[string]Limiter{
		"redis":  nilRedis,
		"memory": NewMemoryLimiter(),
	} {
		decision, err := limiter.Allow(context.Background(), "k", Policy{Limit: 0})
		if err != nil || !decision.Allowed || decision.Remaining != -1 {
			t.Fatalf("%s: unexpected decision %+v err=%v", name, decision, err)
		}
	}
}

func TestMemoryLimiterWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	current := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }
	policy := Policy{Limit: 1, Window: 30 * time.Second}

	if d, _ := limiter.Allow(context.Background(), "editor", policy); !d.Allowed || d.Remaining != 0 {
		t.Fatalf("expected first request to pass, got %+v", d)
	}

	current = current.Add(10 * time.Second)
	d, _ := limiter.Allow(context.Background(), "editor", policy)
	if d.Allowed || d.RetryAfter != 20*time.Second {
		t.Fatalf("expected block with 20s retry, got %+v", d)
	}

	current = current.Add(20 * time.Second)
	if d, _ := limiter.Allow(context.Background(), "editor", policy); !d.Allowed {
		t.Fatalf("expected window reset, got %+v", d)
	}
}
