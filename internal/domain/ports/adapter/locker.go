package adapter

import (
	"context"
	"time"
)

// Locker guards a critical section across goroutines or replicas.
// TryLock returns domain.ErrLockHeld when somebody else owns the key; so does Extend
// once the holder's token no longer owns it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Extend(ctx context.Context, key, token string, ttl time.Duration) error
	Unlock(ctx context.Context, key, token string) error
}
