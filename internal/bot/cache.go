package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DeliveredCache remembers where a track was uploaded before, keyed by
// track id, so it can be re-sent without downloading again.
type DeliveredCache interface {
	Get(ctx context.Context, id string) (string, bool, error)
	Set(ctx context.Context, id, url string) error
}

type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]string)}
}

func (m *MemoryCache) Get(_ context.Context, id string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.items[id]
	return u, ok, nil
}

func (m *MemoryCache) Set(_ context.Context, id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = url
	return nil
}

const deliveredKeyPrefix = "delivered:"

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (r *RedisCache) Get(ctx context.Context, id string) (string, bool, error) {
	u, err := r.rdb.Get(ctx, deliveredKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return u, true, nil
}

// Set stores without expiry; uploaded attachments stay valid with the message.
func (r *RedisCache) Set(ctx context.Context, id, url string) error {
	return r.rdb.Set(ctx, deliveredKeyPrefix+id, url, 0).Err()
}

// newCache picks Redis when a URL is configured. The returned close func is
// never nil.
func newCache(ctx context.Context, redisURL string) (DeliveredCache, func() error, error) {
	if redisURL == "" {
		return NewMemoryCache(), func() error { return nil }, nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return NewRedisCache(rdb), rdb.Close, nil
}
