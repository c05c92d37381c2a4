package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"

	mapset "github.com/deckarep/golang-set/v2"
)

var _ repository.ChatSetRepository = (*JSONSet)(nil)

// JSONSet is a set of chat IDs persisted as a flat JSON array, e.g. subscribers.json.
// The file is loaded once; every mutation rewrites it under the mutex.
type JSONSet struct {
	mu   sync.Mutex
	path string
	ids  mapset.Set[int64]
}

// OpenJSONSet loads path, treating a missing file as an empty set.
func OpenJSONSet(path string) (*JSONSet, error) {
	s := &JSONSet{path: path, ids: mapset.NewThreadUnsafeSet[int64]()}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(b) == 0 {
		return s, nil
	}
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	s.ids.Append(ids...)
	return s, nil
}

func (s *JSONSet) Add(ctx context.Context, chatID int64) (added bool, err error) {
	defer metrics.ObserveStorage("file", "add", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids.Contains(chatID) {
		return false, nil
	}
	s.ids.Add(chatID)
	if err := s.flush(); err != nil {
		s.ids.Remove(chatID)
		return false, err
	}
	return true, nil
}

func (s *JSONSet) Remove(ctx context.Context, chatID int64) (removed bool, err error) {
	defer metrics.ObserveStorage("file", "remove", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ids.Contains(chatID) {
		return false, nil
	}
	s.ids.Remove(chatID)
	if err := s.flush(); err != nil {
		s.ids.Add(chatID)
		return false, err
	}
	return true, nil
}

func (s *JSONSet) Contains(ctx context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids.Contains(chatID), nil
}

func (s *JSONSet) List(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(), nil
}

func (s *JSONSet) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids.Cardinality(), nil
}

func (s *JSONSet) sorted() []int64 {
	ids := s.ids.ToSlice()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// flush must be called with mu held.
func (s *JSONSet) flush() error {
	b, err := json.Marshal(s.sorted())
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, b); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
