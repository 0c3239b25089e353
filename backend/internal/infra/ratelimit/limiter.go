/*
 * @Author: NEFU AB-IN
 * @Date: 2026-10-15 13:48:17
 * @FilePath: \cs-news-portal\backend\internal\infra\ratelimit\limiter.go
 * @LastEditTime: 2026-10-15 13:48:21
 */
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Policy 描述固定窗口限流规则，Limit<=0 表示不限流。
type Policy struct {
	Limit  int
	Window time.Duration
}

func (p Policy) window() time.Duration {
	if p.Window <= 0 {
		return time.Minute
	}
	return p.Window
}

// Decision 描述一次限流判定的结果。
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
}

var unlimited = Decision{Allowed: true, Remaining: -1}

// Limiter 定义限流器的通用能力。
type Limiter interface {
	Allow(ctx context.Context, key string, policy Policy) (Decision, error)
}

// RedisLimiter 使用 Redis 计数器实现固定窗口，适用于多实例部署。
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter 根据 Redis 客户端构造限流器，可自定义 key 前缀。
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "newsportal:ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix}
}

// Allow 递增窗口计数，超过上限时返回剩余等待时间。
func (r *RedisLimiter) Allow(ctx context.Context, key string, policy Policy) (Decision, error) {
	if policy.Limit <= 0 || r == nil || r.client == nil {
		return unlimited, nil
	}
	window := policy.window()

	namespaced := r.prefix + ":" + key
	counter, err := r.client.Incr(ctx, namespaced).Result()
	if err != nil {
		return Decision{}, err
	}
	// 仅在窗口内首次计数时设置过期，后续请求不延长窗口。
	if counter == 1 {
		if err := r.client.Expire(ctx, namespaced, window).Err(); err != nil {
			return Decision{}, err
		}
	}

	count := int(counter)
	if count <= policy.Limit {
		return Decision{Allowed: true, Remaining: policy.Limit - count}, nil
	}

	ttl, err := r.client.PTTL(ctx, namespaced).Result()
	if err != nil {
		return Decision{}, err
	}
	if ttl < 0 {
		ttl = window
	}
	return Decision{Allowed: false, RetryAfter: ttl}, nil
}

// MemoryLimiter 是 Redis 不可用时的替代方案，仅在单实例下准确。
type MemoryLimiter struct {
	mu    sync.Mutex
	now   func() time.Time
	store map[string]bucket
}

type bucket struct {
	count   int
	expires time.Time
}

// NewMemoryLimiter 构建内存版限流器，常用于本地模式与单元测试。
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{now: time.Now, store: make(map[string]bucket)}
}

// Allow 通过内存 map 统计请求次数，行为与 RedisLimiter 一致。
func (m *MemoryLimiter) Allow(_ context.Context, key string, policy Policy) (Decision, error) {
	if policy.Limit <= 0 || m == nil {
		return unlimited, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	current, ok := m.store[key]
	if !ok || !now.Before(current.expires) {
		current = bucket{expires: now.Add(policy.window())}
	}
	current.count++
	m.store[key] = current

	if current.count > policy.Limit {
		return Decision{Allowed: false, RetryAfter: current.expires.Sub(now)}, nil
	}
	return Decision{Allowed: true, Remaining: policy.Limit - current.count}, nil
}
