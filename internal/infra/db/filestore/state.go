package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"
)

var _ repository.OfferStateRepository = (*StateFile)(nil)

// StateFile is last_state.json. Older plain-array files are read and upgraded on the next save.
type StateFile struct {
	mu   sync.Mutex
	path string
}

func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

func (f *StateFile) Load(ctx context.Context) (st *model.OfferState, err error) {
	defer metrics.ObserveStorage("file", "load_state", time.Now(), &err)
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return model.DecodeOfferState(b)
}

func (f *StateFile) Save(ctx context.Context, st *model.OfferState) (err error) {
	defer metrics.ObserveStorage("file", "save_state", time.Now(), &err)
	b, err := model.EncodeOfferState(st)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return writeFileAtomic(f.path, b)
}
