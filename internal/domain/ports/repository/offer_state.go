package repository

import (
	"context"

	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
)

// OfferStateRepository persists the titles seen by the last successful poll.
type OfferStateRepository interface {
	// Load returns domain.ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context) (*model.OfferState, error)
	Save(ctx context.Context, st *model.OfferState) error
}
