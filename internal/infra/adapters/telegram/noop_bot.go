package telegram

import (
	"context"

	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.Messenger = (*NoopMessenger)(nil)

// NoopMessenger logs outbound messages instead of sending them (dry-run mode).
type NoopMessenger struct {
	log *zerolog.Logger
}

func NewNoopMessenger(logger *zerolog.Logger) *NoopMessenger {
	return &NoopMessenger{log: logger}
}

func (n *NoopMessenger) SendMessage(ctx context.Context, p adapter.SendMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info().Int64("chat_id", p.ChatID).Str("parse_mode", p.ParseMode).Int("rows", len(p.Rows)).Str("text", p.Text).Msg("dry-run message")
	return nil
}
