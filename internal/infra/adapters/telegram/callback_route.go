package telegram

import (
	"context"

	"github.com/scmsohel/epic-loot-bot/internal/application"
	"github.com/scmsohel/epic-loot-bot/internal/infra/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// cbHandler returns the toast shown when the callback is answered.
type cbHandler func(ctx context.Context, q *tgbotapi.CallbackQuery) (string, error)

func (d *Dispatcher) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		application.CallbackSub:    d.membersOnlyCB(d.toggleCBRoute(true)),
		application.CallbackUnsub:  d.membersOnlyCB(d.toggleCBRoute(false)),
		application.CallbackVerify: d.verifyCBRoute,
	}
}

func (d *Dispatcher) toggleCBRoute(subscribe bool) cbHandler {
	return func(ctx context.Context, q *tgbotapi.CallbackQuery) (string, error) {
		chatID := chatOf(q)
		toast, rows, err := d.facade.HandleToggle(ctx, chatID, subscribe)
		if err != nil {
			return d.facade.ErrorReply().Text, err
		}
		if q.Message != nil && q.Message.Chat != nil {
			edit := tgbotapi.NewEditMessageReplyMarkup(chatID, q.Message.MessageID, inlineKeyboard(rows))
			if _, err := d.bot.Request(edit); err != nil && !isNotModified(err) {
				logging.With(ctx, d.log).Warn().Err(err).Msg("toggle markup edit failed")
			}
		}
		return toast, nil
	}
}

// verifyCBRoute only re-checks membership; it never subscribes.
func (d *Dispatcher) verifyCBRoute(ctx context.Context, q *tgbotapi.CallbackQuery) (string, error) {
	if d.gate.IsMember(ctx, q.From.ID) {
		return "", d.editReply(ctx, q, d.facade.VerifySuccess())
	}
	return "", d.editReply(ctx, q, d.facade.JoinWarning())
}
