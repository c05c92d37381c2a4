package usecase

import (
	"context"
	"strings"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ BroadcastUseCase = (*broadcastUC)(nil)

type BroadcastUseCase interface {
	// Broadcast blocks until every known user has been tried.
	Broadcast(ctx context.Context, text string) (model.BroadcastResult, error)
}

type broadcastUC struct {
	users    repository.ChatSetRepository
	notifier Notifier
	render   Renderer
	log      *zerolog.Logger
}

func NewBroadcastUseCase(users repository.ChatSetRepository, notifier Notifier, render Renderer, logger *zerolog.Logger) *broadcastUC {
	return &broadcastUC{users: users, notifier: notifier, render: render, log: logger}
}

func (uc *broadcastUC) Broadcast(ctx context.Context, text string) (model.BroadcastResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.BroadcastResult{}, domain.ErrEmptyBroadcast
	}

	targets, err := uc.users.List(ctx)
	if err != nil {
		uc.log.Error().Err(err).Msg("Failed to list users for broadcast")
		return model.BroadcastResult{}, err
	}

	res := model.BroadcastResult{ID: ulid.Make().String(), Targets: len(targets)}
	log := uc.log.With().Str("broadcast_id", res.ID).Logger()
	log.Info().Int("targets", res.Targets).Msg("broadcast started")

	// plain text: admin input is not Markdown-escaped
	res.Sent, res.Failed = uc.notifier.FanOut(ctx, "broadcast", targets, adapter.SendMessageParams{
		Text:      uc.render.Broadcast(text),
		ParseMode: adapter.ParseModeNone,
	})

	log.Info().Int("sent", res.Sent).Int("failed", res.Failed).Msg("broadcast finished")
	return res, nil
}
