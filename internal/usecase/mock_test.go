//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

var errBoom = errors.New("boom")

// ---- Mock Messenger ----

type MockMessenger struct {
	mu   sync.Mutex
	Sent []adapter.SendMessageParams

	SendMessageFunc func(ctx context.Context, p adapter.SendMessageParams) error
}

var _ adapter.Messenger = (*MockMessenger)(nil)

func (m *MockMessenger) SendMessage(ctx context.Context, p adapter.SendMessageParams) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, p)
	return nil
}

func (m *MockMessenger) SentTo() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0, len(m.Sent))
	for _, p := range m.Sent {
		out = append(out, p.ChatID)
	}
	return out
}

// ---- Mock StorefrontFetcher ----

type MockFetcher struct {
	mu     sync.Mutex
	Calls  int
	Offers *model.Offers
	Err    error

	FetchOffersFunc func(ctx context.Context) (*model.Offers, error)
}

var _ adapter.StorefrontFetcher = (*MockFetcher)(nil)

func (m *MockFetcher) FetchOffers(ctx context.Context) (*model.Offers, error) {
	m.mu.Lock()
	m.Calls++
	fn := m.FetchOffersFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Offers, nil
}

func freeOffers(titles ...string) *model.Offers {
	end := time.Date(2024, 5, 9, 15, 0, 0, 0, time.UTC)
	o := &model.Offers{FetchedAt: end.Add(-time.Hour)}
	for _, t := range titles {
		o.FreeNow = append(o.FreeNow, model.FreeGame{Title: t, End: end})
	}
	return o
}

// ---- In-memory ChatSetRepository ----

type memChatSet struct {
	mu  sync.Mutex
	ids map[int64]struct{}

	ListErr error
	AddErr  error
}

var _ repository.ChatSetRepository = (*memChatSet)(nil)

func newMemChatSet(ids ...int64) *memChatSet {
	s := &memChatSet{ids: make(map[int64]struct{})}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *memChatSet) Add(ctx context.Context, id int64) (bool, error) {
	if s.AddErr != nil {
		return false, s.AddErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	s.ids[id] = struct{}{}
	return !ok, nil
}

func (s *memChatSet) Remove(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	delete(s.ids, id)
	return ok, nil
}

func (s *memChatSet) Contains(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok, nil
}

func (s *memChatSet) List(ctx context.Context) ([]int64, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *memChatSet) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids), nil
}

// ---- In-memory OfferStateRepository ----

type memOfferState struct {
	mu    sync.Mutex
	state *model.OfferState
	Saves int

	SaveErr error
}

var _ repository.OfferStateRepository = (*memOfferState)(nil)

func (m *memOfferState) Load(ctx context.Context) (*model.OfferState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.state
	return &cp, nil
}

func (m *memOfferState) Save(ctx context.Context, st *model.OfferState) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	cp := *st
	m.state = &cp
	return nil
}

func (m *memOfferState) Titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil
	}
	return m.state.Titles
}

// ---- Renderer ----

type stubRenderer struct{}

func (stubRenderer) Announcement(g model.FreeGame) string { return "NEW: " + g.Title }
func (stubRenderer) Broadcast(text string) string      { return "📢 Announcement\n\n" + text }

// ---- Locker ----

type MockLocker struct {
	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)
	ExtendFunc  func(ctx context.Context, key, token string, ttl time.Duration) error

	mu       sync.Mutex
	Extended int
	Unlocked []string
}

var _ adapter.Locker = (*MockLocker)(nil)

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if l.TryLockFunc != nil {
		return l.TryLockFunc(ctx, key, ttl)
	}
	return fmt.Sprintf("token-%s", key), nil
}

func (l *MockLocker) Extend(ctx context.Context, key, token string, ttl time.Duration) error {
	if l.ExtendFunc != nil {
		if err := l.ExtendFunc(ctx, key, token, ttl); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Extended++
	return nil
}

func (l *MockLocker) Extensions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Extended
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Unlocked = append(l.Unlocked, key)
	return nil
}
