package infra

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned by Obtain when another holder owns the key.
var ErrLockHeld = errors.New("lock held by another process")

// RedisLocker hands out short-lived exclusive locks backed by Redis.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedisLocker returns nil when rdb is nil so callers can treat a missing
// Redis as "no distributed lock".
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if rdb == nil {
		return nil
	}
	return &RedisLocker{client: redislock.New(rdb), ttl: ttl}
}

// Obtain acquires key without retrying. The returned func releases it.
// A nil *RedisLocker grants every request.
func (l *RedisLocker) Obtain(ctx context.Context, key string) (func(context.Context) error, error) {
	if l == nil {
		return func(context.Context) error { return nil }, nil
	}
	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockHeld
	}
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			// TTL expired before release; nothing left to free.
			return nil
		}
		return err
	}, nil
}
