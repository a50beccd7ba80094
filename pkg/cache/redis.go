package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces page keys.
const DefaultRedisPrefix = "page"

// Redis stores JSON-encoded pages in Redis.
type Redis struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

// NewRedis creates a Redis-backed store. The client is owned by the caller.
//
//	client, err := redis.Open(ctx, cfg.RedisURL)
//	store := cache.NewRedis(client, "pages")
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, defaultTTL: DefaultTTL}
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (*Page, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return &p, nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key string, page *Page, ttl time.Duration) error {
	data, err := json.Marshal(page)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}
	return r.client.Set(ctx, r.key(key), data, resolveTTL(ttl, r.defaultTTL)).Err()
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Redis) key(key string) string {
	return r.prefix + ":" + key
}

var _ Store = (*Redis)(nil)
