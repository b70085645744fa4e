package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache 取数正文缓存。读写错误一律吞掉：缓存故障最多导致多打一次请求。
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, val string, ttl time.Duration)
}

// RedisCache 跨进程共享的正文缓存，定时预热任务与在线请求共用
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis ping failed", "addr", addr, "err", err)
	}

	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, val string, ttl time.Duration) {
	_ = c.rdb.Set(ctx, key, val, ttl).Err()
}

type memoryEntry struct {
	val     string
	expires time.Time
}

// MemoryCache 进程内 TTL 缓存，未配置 redis 时以及测试中使用
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(e.expires) {
		// 惰性清理过期项
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return e.val, true
}

func (c *MemoryCache) Set(_ context.Context, key, val string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = memoryEntry{val: val, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
}
