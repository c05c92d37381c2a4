package adapter

import (
	"context"

	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
)

// StorefrontFetcher returns the current free and upcoming promotions.
type StorefrontFetcher interface {
	FetchOffers(ctx context.Context) (*model.Offers, error)
}
