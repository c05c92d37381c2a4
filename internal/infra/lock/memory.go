package lock

import (
	"context"
	"sync"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"

	"github.com/google/uuid"
)

var _ adapter.Locker = (*MemoryLocker)(nil)

type held struct {
	token   string
	expires time.Time
}

// MemoryLocker guards a single process. Entries past their TTL are treated as free.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]held
	now   func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]held), now: time.Now}
}

func (l *MemoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if h, ok := l.locks[key]; ok && now.Before(h.expires) {
		return "", domain.ErrLockHeld
	}
	token := uuid.NewString()
	l.locks[key] = held{token: token, expires: now.Add(ttl)}
	return token, nil
}

// Extend resets the expiry to now+ttl while token still holds key.
func (l *MemoryLocker) Extend(ctx context.Context, key, token string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	h, ok := l.locks[key]
	if !ok || h.token != token || !now.Before(h.expires) {
		return domain.ErrLockHeld
	}
	l.locks[key] = held{token: token, expires: now.Add(ttl)}
	return nil
}

func (l *MemoryLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.locks[key]; ok && h.token == token {
		delete(l.locks, key)
	}
	return nil
}
