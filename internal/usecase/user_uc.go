package usecase

import (
	"context"
	"fmt"

	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/logging"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase owns the all-users and subscriber sets.
type UserUseCase interface {
	// Track records chatID in the all-users set.
	Track(ctx context.Context, chatID int64) error
	IsSubscribed(ctx context.Context, chatID int64) (bool, error)
	// Subscribe also tracks, so subscribers stay a subset of all users.
	Subscribe(ctx context.Context, chatID int64) error
	Unsubscribe(ctx context.Context, chatID int64) error
}

type userUC struct {
	users       repository.ChatSetRepository
	subscribers repository.ChatSetRepository
	log         *zerolog.Logger
}

func NewUserUseCase(users, subscribers repository.ChatSetRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, subscribers: subscribers, log: logger}
}

func (u *userUC) Track(ctx context.Context, chatID int64) error {
	defer logging.TraceDuration(u.log, "UserUC.Track")()
	added, err := u.users.Add(ctx, chatID)
	if err != nil {
		return fmt.Errorf("track user: %w", err)
	}
	if added {
		metrics.IncUsersTracked()
		u.log.Info().Int64("tg_id", chatID).Msg("new user")
	}
	return nil
}

func (u *userUC) IsSubscribed(ctx context.Context, chatID int64) (bool, error) {
	return u.subscribers.Contains(ctx, chatID)
}

func (u *userUC) Subscribe(ctx context.Context, chatID int64) error {
	defer logging.TraceDuration(u.log, "UserUC.Subscribe")()
	if err := u.Track(ctx, chatID); err != nil {
		return err
	}
	if _, err := u.subscribers.Add(ctx, chatID); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func (u *userUC) Unsubscribe(ctx context.Context, chatID int64) error {
	defer logging.TraceDuration(u.log, "UserUC.Unsubscribe")()
	if err := u.Track(ctx, chatID); err != nil {
		return err
	}
	if _, err := u.subscribers.Remove(ctx, chatID); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}
