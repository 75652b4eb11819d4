package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/pkg/redis"
)

const defaultLockTTL = 30 * time.Minute

// Locker hands out at most one lease per cycle across cron-worker replicas.
// TryLock returns a nil Lease when another replica holds it.
type Locker interface {
	TryLock(ctx context.Context) (Lease, error)
}

type Lease interface {
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLocker leases a single key with SET NX and a TTL, so a worker that dies
// mid-cycle frees the lock when the TTL lapses.
type RedisLocker struct {
	store lockStore
	key   string
	ttl   time.Duration
}

func NewRedisLocker(store lockStore, key string, ttl time.Duration) (*RedisLocker, error) {
	switch {
	case store == nil:
		return nil, errors.New("cron lock: store is nil")
	case key == "":
		return nil, errors.New("cron lock: key is empty")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{store: store, key: key, ttl: ttl}, nil
}

func (l *RedisLocker) TryLock(ctx context.Context) (Lease, error) {
	token := uuid.NewString()
	acquired, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("cron lock %s: %w", l.key, err)
	}
	if !acquired {
		return nil, nil
	}
	return &redisLease{store: l.store, key: l.key, token: token}, nil
}

type redisLease struct {
	store lockStore
	key   string
	token string
}

// Release deletes the key only while it still carries this lease's token; a
// lease that outlived its TTL leaves the next holder alone.
func (l *redisLease) Release(ctx context.Context) error {
	current, err := l.store.Get(ctx, l.key)
	switch {
	case redis.IsMiss(err):
		return nil
	case err != nil:
		return fmt.Errorf("cron lock %s: %w", l.key, err)
	case current != l.token:
		return nil
	}
	return l.store.Del(ctx, l.key)
}
