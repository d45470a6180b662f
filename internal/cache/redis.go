package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis so multiple processes share one result
// cache. Entries carry their write timestamp in the value; the Redis-side
// expiration is only hygiene, set well beyond any caller TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	maxAge time.Duration
}

// NewRedisStore wraps an existing client. maxAge bounds how long stale
// entries linger server-side; it must exceed the caller's TTL.
func NewRedisStore(client *redis.Client, prefix string, maxAge time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "aipredixt:predictions:"
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &RedisStore{client: client, prefix: prefix, maxAge: maxAge}
}

// Get fetches the entry for key. A missing key is a miss, not an error.
func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("redis entry decode %s: %w", key, err)
	}
	return e, true, nil
}

// Put stores the payload under key with the hygiene expiration.
func (s *RedisStore) Put(ctx context.Context, key string, payload []byte) error {
	e := Entry{Key: key, Payload: payload, Timestamp: time.Now()}
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("redis entry encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.maxAge).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
