package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/application"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"
	"github.com/scmsohel/epic-loot-bot/internal/infra/logging"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"
	red "github.com/scmsohel/epic-loot-bot/internal/infra/redis"
	"github.com/scmsohel/epic-loot-bot/internal/infra/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	commandsPerMinute  = 20
	callbacksPerMinute = 30
)

// RateLimiter is satisfied by the Redis fixed-window limiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Dispatcher routes updates from polling or the webhook to the bot facade.
type Dispatcher struct {
	bot       botClient
	messenger *BotMessenger
	facade    *application.BotFacade
	gate      adapter.MembershipChecker
	limiter   RateLimiter
	pool      *worker.Pool
	adminID   int64
	log       *zerolog.Logger

	commands  map[string]commandHandler
	callbacks map[string]cbHandler
}

// NewDispatcher builds the routing tables once. limiter may be nil.
func NewDispatcher(
	bot botClient,
	facade *application.BotFacade,
	gate adapter.MembershipChecker,
	limiter RateLimiter,
	pool *worker.Pool,
	adminID int64,
	logger *zerolog.Logger,
) (*Dispatcher, error) {
	if bot == nil {
		return nil, errors.New("bot client is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if gate == nil {
		return nil, errors.New("membership checker is nil")
	}
	d := &Dispatcher{
		bot:       bot,
		messenger: NewMessenger(bot),
		facade:    facade,
		gate:      gate,
		limiter:   limiter,
		pool:      pool,
		adminID:   adminID,
		log:       logger,
	}
	d.commands = d.commandRoutes()
	d.callbacks = d.cbRoutes()
	return d, nil
}

// Enqueue hands an update to the worker pool without blocking.
func (d *Dispatcher) Enqueue(update tgbotapi.Update) error {
	return d.pool.Submit(func(ctx context.Context) error { return d.HandleUpdate(ctx, update) })
}

// StartPolling long-polls until ctx is cancelled, feeding every update to the pool.
func (d *Dispatcher) StartPolling(ctx context.Context, timeoutSeconds int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSeconds
	updates := d.bot.GetUpdatesChan(u)
	d.log.Info().Int("timeout_s", timeoutSeconds).Msg("polling started")

	for {
		select {
		case <-ctx.Done():
			d.bot.StopReceivingUpdates()
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			update := up
			err := d.pool.SubmitWait(ctx, func(ctx context.Context) error { return d.HandleUpdate(ctx, update) })
			if err != nil && ctx.Err() == nil {
				d.log.Warn().Err(err).Int("update_id", update.UpdateID).Msg("update dropped")
			}
		}
	}
}

// HandleUpdate processes one update synchronously.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ctx = logging.WithTraceID(ctx, logging.NewTraceID())
	switch {
	case update.CallbackQuery != nil:
		return d.handleQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		return d.handleCommand(ctx, update.Message)
	}
	return nil
}

func (d *Dispatcher) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}
	ctx = logging.WithTgID(ctx, msg.From.ID)
	name := strings.ToLower(msg.Command())
	h, ok := d.commands[name]
	if !ok {
		return nil
	}
	metrics.IncTelegramCommand("/" + name)

	if !d.allow(ctx, msg.From.ID, "/"+name, commandsPerMinute) {
		return d.reply(ctx, msg.Chat.ID, d.facade.RateLimited())
	}
	return h(ctx, msg)
}

func (d *Dispatcher) handleQuery(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q.From == nil {
		return errors.New("invalid callback query")
	}
	ctx = logging.WithTgID(ctx, q.From.ID)

	toast := ""
	defer func() {
		if _, err := d.bot.Request(tgbotapi.NewCallback(q.ID, toast)); err != nil {
			logging.With(ctx, d.log).Debug().Err(err).Msg("answer callback failed")
		}
	}()

	data := strings.TrimSpace(q.Data)
	fn, ok := d.callbacks[data]
	if !ok {
		logging.With(ctx, d.log).Debug().Str("data", data).Msg("unknown callback ignored")
		return nil
	}
	metrics.IncTelegramCallback(data)

	if !d.allow(ctx, q.From.ID, "cb:"+data, callbacksPerMinute) {
		toast = d.facade.RateLimited().Text
		return nil
	}
	text, err := fn(ctx, q)
	toast = text
	return err
}

// allow fails open when the limiter errors.
func (d *Dispatcher) allow(ctx context.Context, userID int64, kind string, limit int) bool {
	if d.limiter == nil {
		return true
	}
	ok, err := d.limiter.Allow(ctx, red.UserCommandKey(userID, kind), limit, time.Minute)
	if err != nil {
		logging.With(ctx, d.log).Warn().Err(err).Msg("rate limit check failed")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
	}
	return ok
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, r application.Reply) error {
	return d.messenger.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:    chatID,
		Text:      r.Text,
		ParseMode: r.ParseMode,
		Rows:      r.Rows,
	})
}

// fail logs err and tells the user something went wrong.
func (d *Dispatcher) fail(ctx context.Context, chatID int64, op string, err error) error {
	logging.With(ctx, d.log).Error().Err(err).Str("op", op).Msg("command failed")
	return d.reply(ctx, chatID, d.facade.ErrorReply())
}

// editReply rewrites the message that carried the pressed button.
func (d *Dispatcher) editReply(ctx context.Context, q *tgbotapi.CallbackQuery, r application.Reply) error {
	if q.Message == nil || q.Message.Chat == nil {
		return d.reply(ctx, q.From.ID, r)
	}
	edit := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, r.Text)
	edit.ParseMode = r.ParseMode
	if len(r.Rows) > 0 {
		kb := inlineKeyboard(r.Rows)
		edit.ReplyMarkup = &kb
	}
	if _, err := d.bot.Request(edit); err != nil && !isNotModified(err) {
		return err
	}
	return nil
}

func chatOf(q *tgbotapi.CallbackQuery) int64 {
	if q.Message != nil && q.Message.Chat != nil {
		return q.Message.Chat.ID
	}
	return q.From.ID
}
