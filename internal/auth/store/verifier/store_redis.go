package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"supaboard/pkg/platform/sentinel"
)

const keyPrefix = "pkce:flow:"

// RedisStore shares pending flows across instances. Expiry is delegated to
// Redis key TTLs, so an expired flow reads as not found.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed verifier store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, flowID, verifier string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := s.client.Set(ctx, keyPrefix+flowID, verifier, ttl).Err(); err != nil {
		return fmt.Errorf("save pkce flow: %w", err)
	}
	return nil
}

// Consume reads and deletes the verifier atomically with GETDEL.
func (s *RedisStore) Consume(ctx context.Context, flowID string) (string, error) {
	v, err := s.client.GetDel(ctx, keyPrefix+flowID).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("pkce flow %q: %w", flowID, sentinel.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("consume pkce flow: %w", errors.Join(err, sentinel.ErrUnavailable))
	}
	return v, nil
}
