package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alexanderramin/docket/internal/domain"
)

// DefaultCacheTTL bounds how long a recorded identity is remembered in Redis.
const DefaultCacheTTL = 7 * 24 * time.Hour

// RedisCache remembers recorded identities in Redis so replays are rejected
// without a round trip to the audit store.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a cache with the given key prefix and TTL.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) key(identity string, eventType domain.AuditEventType) string {
	return fmt.Sprintf("%s%s:%s", r.prefix, eventType, identity)
}

// Seen reports whether the identity was marked.
func (r *RedisCache) Seen(ctx context.Context, identity string, eventType domain.AuditEventType) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(identity, eventType)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Mark records the identity. It returns no error when the key already exists.
func (r *RedisCache) Mark(ctx context.Context, identity string, eventType domain.AuditEventType) error {
	return r.client.SetNX(ctx, r.key(identity, eventType), 1, r.ttl).Err()
}
