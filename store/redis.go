package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the authentication flow engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	keyIsLoggedIn = "isLoggedIn"
	keyUserPhone  = "userPhone"

	// keyUserMembership is owned by the dashboard, but a fresh login must
	// clear it so the new session cannot see cached membership state.
	keyUserMembership = "userMembership"
)

// Record is the persisted authenticated-session pair.
type Record struct {
	IsLoggedIn bool
	Phone      string
}

// Redis persists the session flag in the shared key/value store.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedis describes the newredis operation and its observable behavior.
//
// NewRedis may return an error when input validation, dependency calls, or security checks fail.
// NewRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "af"
	}
	return &Redis{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Redis) key(name string) string {
	return s.prefix + ":" + name
}

// Persist writes the logged-in marker and phone atomically and removes the
// stale membership cache key in the same transaction.
func (s *Redis) Persist(ctx context.Context, phone string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(keyIsLoggedIn), "true", 0)
		pipe.Set(ctx, s.key(keyUserPhone), phone, 0)
		pipe.Del(ctx, s.key(keyUserMembership))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Redis) Load(ctx context.Context) (Record, error) {
	values, err := s.redis.MGet(ctx, s.key(keyIsLoggedIn), s.key(keyUserPhone)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var record Record
	if flag, ok := values[0].(string); ok && flag == "true" {
		record.IsLoggedIn = true
	}
	if phone, ok := values[1].(string); ok {
		record.Phone = phone
	}
	return record, nil
}

// Clear removes both session keys; used by logout and account deletion.
func (s *Redis) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key(keyIsLoggedIn), s.key(keyUserPhone)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
