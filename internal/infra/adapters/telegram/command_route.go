package telegram

import (
	"context"

	"github.com/scmsohel/epic-loot-bot/internal/application"
	"github.com/scmsohel/epic-loot-bot/internal/infra/logging"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type commandHandler func(ctx context.Context, msg *tgbotapi.Message) error

// commandRoutes defines all bot commands. User commands sit behind the channel gate,
// admin commands behind adminOnly.
func (d *Dispatcher) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":       d.membersOnly(d.handleStartCommand),
		"status":      d.membersOnly(d.handleStatusCommand),
		"subscribe":   d.membersOnly(d.handleSubscribeCommand),
		"unsubscribe": d.membersOnly(d.handleUnsubscribeCommand),
		"help":        d.membersOnly(d.handleHelpCommand),

		"stats":      d.adminOnly(d.statsCommand(application.StatsAll)),
		"user":       d.adminOnly(d.statsCommand(application.StatsAll)),
		"total_user": d.adminOnly(d.statsCommand(application.StatsTotal)),
		"sub_user":   d.adminOnly(d.statsCommand(application.StatsSubscribed)),
		"unsub_user": d.adminOnly(d.statsCommand(application.StatsUnsubscribed)),
		"broadcast":  d.adminOnly(d.handleBroadcastCommand),
	}
}

// adminOnly ignores everybody but the configured admin, without replying.
func (d *Dispatcher) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		if msg.From.ID != d.adminID {
			metrics.IncAdminCommand("/"+msg.Command(), "unauthorized")
			logging.With(ctx, d.log).Debug().Str("command", msg.Command()).Msg("admin command from non-admin ignored")
			return nil
		}
		metrics.IncAdminCommand("/"+msg.Command(), "authorized")
		return next(ctx, msg)
	}
}

func (d *Dispatcher) handleStartCommand(ctx context.Context, msg *tgbotapi.Message) error {
	r, err := d.facade.HandleStart(ctx, msg.Chat.ID)
	if err != nil {
		return d.fail(ctx, msg.Chat.ID, "start", err)
	}
	return d.reply(ctx, msg.Chat.ID, r)
}

func (d *Dispatcher) handleStatusCommand(ctx context.Context, msg *tgbotapi.Message) error {
	r, err := d.facade.HandleStatus(ctx, msg.Chat.ID)
	if err != nil {
		return d.fail(ctx, msg.Chat.ID, "status", err)
	}
	return d.reply(ctx, msg.Chat.ID, r)
}

func (d *Dispatcher) handleSubscribeCommand(ctx context.Context, msg *tgbotapi.Message) error {
	r, err := d.facade.HandleSubscribe(ctx, msg.Chat.ID)
	if err != nil {
		return d.fail(ctx, msg.Chat.ID, "subscribe", err)
	}
	return d.reply(ctx, msg.Chat.ID, r)
}

func (d *Dispatcher) handleUnsubscribeCommand(ctx context.Context, msg *tgbotapi.Message) error {
	r, err := d.facade.HandleUnsubscribe(ctx, msg.Chat.ID)
	if err != nil {
		return d.fail(ctx, msg.Chat.ID, "unsubscribe", err)
	}
	return d.reply(ctx, msg.Chat.ID, r)
}

func (d *Dispatcher) handleHelpCommand(ctx context.Context, msg *tgbotapi.Message) error {
	return d.reply(ctx, msg.Chat.ID, d.facade.HandleHelp())
}

func (d *Dispatcher) statsCommand(kind application.StatsKind) commandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		r, err := d.facade.HandleStats(ctx, kind)
		if err != nil {
			return d.fail(ctx, msg.Chat.ID, "stats", err)
		}
		return d.reply(ctx, msg.Chat.ID, r)
	}
}

// handleBroadcastCommand blocks this worker until every user has been tried.
func (d *Dispatcher) handleBroadcastCommand(ctx context.Context, msg *tgbotapi.Message) error {
	r, err := d.facade.HandleBroadcast(ctx, msg.CommandArguments())
	if err != nil {
		return d.fail(ctx, msg.Chat.ID, "broadcast", err)
	}
	return d.reply(ctx, msg.Chat.ID, r)
}
