package usecase

import (
	"context"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ Notifier = (*throttledNotifier)(nil)

// Notifier delivers one message to many chats. Per-recipient failures are counted, never returned.
type Notifier interface {
	FanOut(ctx context.Context, kind string, chatIDs []int64, msg adapter.SendMessageParams) (sent, failed int)
}

type throttledNotifier struct {
	bot      adapter.Messenger
	interval time.Duration
	log      *zerolog.Logger
}

// NewNotifier sends at most perSecond messages per second across one fan-out.
func NewNotifier(bot adapter.Messenger, perSecond int, logger *zerolog.Logger) *throttledNotifier {
	if perSecond <= 0 {
		perSecond = 25
	}
	return &throttledNotifier{bot: bot, interval: time.Second / time.Duration(perSecond), log: logger}
}

func (n *throttledNotifier) FanOut(ctx context.Context, kind string, chatIDs []int64, msg adapter.SendMessageParams) (int, int) {
	if len(chatIDs) == 0 {
		return 0, 0
	}
	throttle := time.NewTicker(n.interval)
	defer throttle.Stop()

	sent, failed := 0, 0
	for i, id := range chatIDs {
		if i > 0 {
			select {
			case <-ctx.Done():
				rest := len(chatIDs) - i
				n.log.Warn().Err(ctx.Err()).Str("kind", kind).Int("remaining", rest).Msg("fan-out cancelled")
				return sent, failed + rest
			case <-throttle.C:
			}
		}

		p := msg
		p.ChatID = id
		if err := n.bot.SendMessage(ctx, p); err != nil {
			failed++
			metrics.IncMessageSent(kind, false)
			n.log.Debug().Err(err).Int64("tg_id", id).Str("kind", kind).Msg("delivery failed")
			continue
		}
		sent++
		metrics.IncMessageSent(kind, true)
	}
	return sent, failed
}
