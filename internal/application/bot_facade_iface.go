package application

import (
	"context"

	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----

type UserUseCaseIface interface {
	Track(ctx context.Context, chatID int64) error
	IsSubscribed(ctx context.Context, chatID int64) (bool, error)
	Subscribe(ctx context.Context, chatID int64) error
	Unsubscribe(ctx context.Context, chatID int64) error
}

type StatsUseCaseIface interface {
	Counts(ctx context.Context) (model.Stats, error)
}

type BroadcastUseCaseIface interface {
	Broadcast(ctx context.Context, text string) (model.BroadcastResult, error)
}

type OfferUseCaseIface interface {
	Current(ctx context.Context) (*model.Offers, error)
}

// Presenter renders texts; implemented by i18n.Formatter.
type Presenter interface {
	T(key string, args ...any) string
	Status(o *model.Offers) string
}
