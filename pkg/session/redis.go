package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "session:"

// RedisStore keeps sessions in Redis with the session expiry as key TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store using client. Keys are prefixed with
// "session:" unless prefix is given.
func NewRedisStore(client redis.UniversalClient, prefix ...string) *RedisStore {
	p := defaultRedisPrefix
	if len(prefix) > 0 && prefix[0] != "" {
		p = prefix[0]
	}
	return &RedisStore{client: client, prefix: p}
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: load %q: %w", id, err)
	}
	return decode(raw)
}

// Save implements Store.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	ttl := ttlOf(s)
	if ttl <= 0 {
		return r.Delete(ctx, s.ID)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+s.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("session: save %q: %w", s.ID, err)
	}
	return nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil {
		return fmt.Errorf("session: delete %q: %w", id, err)
	}
	return nil
}
