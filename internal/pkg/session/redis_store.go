// internal/pkg/session/redis_store.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned by Get when no marker exists for the user.
var ErrNoSession = errors.New("no refresh session on record")

// compareAndPut swaps the marker only while it still holds the expected
// session id. Running as a script keeps the read and the write inside a
// single Redis command.
var compareAndPutScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed refresh-session store. Markers expire
// with the refresh-token TTL; a marker that outlives its token is harmless
// since token expiry is checked first, but there is no reason to keep it.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(userID int64) string {
	return fmt.Sprintf("refresh_session:%d", userID)
}

func (s *RedisStore) Put(ctx context.Context, userID int64, sessionID string) error {
	if err := s.client.Set(ctx, s.key(userID), sessionID, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session marker: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (string, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session marker: %w", err)
	}
	return val, nil
}

func (s *RedisStore) CompareAndPut(ctx context.Context, userID int64, expected, newSessionID string) (bool, error) {
	res, err := compareAndPutScript.Run(ctx, s.client,
		[]string{s.key(userID)},
		expected, newSessionID, s.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to swap session marker: %w", err)
	}
	return res == 1, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session marker: %w", err)
	}
	return nil
}
