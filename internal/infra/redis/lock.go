package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"

	"github.com/google/uuid"
)

var _ adapter.Locker = (*RedisLocker)(nil)

// RedisLocker is a single-attempt SET NX lock with a random token, released by a
// compare-and-delete so an expired holder never frees somebody else's lock.
type RedisLocker struct {
	client RedisClient
	prefix string
}

func NewLocker(client RedisClient, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, Key(l.prefix, "lock", key), token, ttl)
	if err != nil {
		return "", fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return "", domain.ErrLockHeld
	}
	return token, nil
}

func (l *RedisLocker) Extend(ctx context.Context, key, token string, ttl time.Duration) error {
	ok, err := l.client.CompareAndExpire(ctx, Key(l.prefix, "lock", key), token, ttl)
	if err != nil {
		return fmt.Errorf("redis extend lock %s: %w", key, err)
	}
	if !ok {
		return domain.ErrLockHeld
	}
	return nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.client.CompareAndDelete(ctx, Key(l.prefix, "lock", key), token)
	return err
}
