package usecase

import (
	"context"

	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	Counts(ctx context.Context) (model.Stats, error)
}

type statsUC struct {
	users       repository.ChatSetRepository
	subscribers repository.ChatSetRepository
	log         *zerolog.Logger
}

func NewStatsUseCase(users, subscribers repository.ChatSetRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, subscribers: subscribers, log: logger}
}

// Counts derives unsubscribed as all-users minus subscribers. Subscriber IDs that were never
// tracked are ignored so that Total == Subscribed + Unsubscribed always holds.
func (s *statsUC) Counts(ctx context.Context) (model.Stats, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	subs, err := s.subscribers.List(ctx)
	if err != nil {
		return model.Stats{}, err
	}

	allSet := mapset.NewThreadUnsafeSet(all...)
	subSet := mapset.NewThreadUnsafeSet(subs...)
	unsub := allSet.Difference(subSet).Cardinality()
	if stray := subSet.Difference(allSet).Cardinality(); stray > 0 {
		s.log.Warn().Int("stray", stray).Msg("subscribers missing from all-users set")
	}

	total := allSet.Cardinality()
	return model.Stats{
		Total:        total,
		Subscribed:   total - unsub,
		Unsubscribed: unsub,
	}, nil
}
