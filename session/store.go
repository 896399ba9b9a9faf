package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level Redis failures. The resolver
// degrades to storage-only reads when it sees this; it must never fail the
// request on the cache tier alone.
var ErrRedisUnavailable = errors.New("redis unavailable")

const minTTL = time.Second

// Store is the Redis-backed session identity cache.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a cache [Store] backed by the given Redis client. prefix
// sets the key namespace; when empty the default "session" is used.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "session"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(token string) string {
	return s.prefix + ":" + token
}

// Save writes the resolved identity for token with the given TTL as one
// atomic SET. TTLs below one second are raised to the minimum so an entry
// can never be written unbounded.
func (s *Store) Save(ctx context.Context, token string, ident *CachedIdentity, ttl time.Duration) error {
	data, err := Encode(ident)
	if err != nil {
		return err
	}

	if ttl < minTTL {
		ttl = minTTL
	}

	if err := s.redis.Set(ctx, s.key(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get retrieves the cached identity for token. A missing key returns
// [redis.Nil]; an undecodable blob returns [ErrCorruptEntry]; transport
// failures return [ErrRedisUnavailable]. Exactly 1 Redis GET.
func (s *Store) Get(ctx context.Context, token string) (*CachedIdentity, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return Decode(data)
}

// Delete removes the cached entry for token. Deleting an absent key is not
// an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// TTL returns the remaining lifetime of the cached entry for token, or
// [redis.Nil] when no entry exists.
func (s *Store) TTL(ctx context.Context, token string) (time.Duration, error) {
	ttl, err := s.redis.TTL(ctx, s.key(token)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if ttl < 0 {
		return 0, redis.Nil
	}
	return ttl, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
