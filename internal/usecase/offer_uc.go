package usecase

import (
	"context"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ OfferUseCase = (*offerUC)(nil)

type OfferUseCase interface {
	Current(ctx context.Context) (*model.Offers, error)
}

type offerUC struct {
	fetcher adapter.StorefrontFetcher
	timeout time.Duration
	log     *zerolog.Logger
}

func NewOfferUseCase(fetcher adapter.StorefrontFetcher, timeout time.Duration, logger *zerolog.Logger) *offerUC {
	return &offerUC{fetcher: fetcher, timeout: timeout, log: logger}
}

func (uc *offerUC) Current(ctx context.Context) (*model.Offers, error) {
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}
	offers, err := uc.fetcher.FetchOffers(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("storefront fetch failed")
		return nil, err
	}
	return offers, nil
}
