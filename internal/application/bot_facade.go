package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// Callback data carried by inline buttons.
const (
	CallbackSub    = "SUB"
	CallbackUnsub  = "UNSUB"
	CallbackVerify = "VERIFY_JOIN"
)

// StatsKind selects which admin counter to report.
type StatsKind int

const (
	StatsAll StatsKind = iota
	StatsTotal
	StatsSubscribed
	StatsUnsubscribed
)

// Reply is a ready-to-send bot message.
type Reply struct {
	Text      string
	ParseMode string
	Rows      [][]adapter.InlineButton
}

// BotFacade composes usecases into high-level bot commands, so the Telegram adapter only
// has to forward replies to the chat.
type BotFacade struct {
	UserUC      UserUseCaseIface
	StatsUC     StatsUseCaseIface
	BroadcastUC BroadcastUseCaseIface
	OfferUC     OfferUseCaseIface
	Texts       Presenter
	ChannelURL  string

	log *zerolog.Logger
}

func NewBotFacade(
	userUC UserUseCaseIface,
	statsUC StatsUseCaseIface,
	broadcastUC BroadcastUseCaseIface,
	offerUC OfferUseCaseIface,
	texts Presenter,
	channelURL string,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		UserUC:      userUC,
		StatsUC:     statsUC,
		BroadcastUC: broadcastUC,
		OfferUC:     offerUC,
		Texts:       texts,
		ChannelURL:  channelURL,
		log:         logger,
	}
}

// HandleStart tracks the user and returns the welcome text with the subscribe toggle.
func (b *BotFacade) HandleStart(ctx context.Context, chatID int64) (Reply, error) {
	if err := b.UserUC.Track(ctx, chatID); err != nil {
		return Reply{}, fmt.Errorf("track user: %w", err)
	}
	rows, err := b.ToggleKeyboard(ctx, chatID)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: b.Texts.T("welcome"), ParseMode: adapter.ParseModeMarkdown, Rows: rows}, nil
}

// HandleStatus falls back to a fixed text when the storefront is down or lists nothing.
func (b *BotFacade) HandleStatus(ctx context.Context, chatID int64) (Reply, error) {
	if err := b.UserUC.Track(ctx, chatID); err != nil {
		return Reply{}, fmt.Errorf("track user: %w", err)
	}
	offers, err := b.OfferUC.Current(ctx)
	if err != nil {
		b.log.Warn().Err(err).Int64("tg_id", chatID).Msg("status without storefront data")
		return Reply{Text: b.Texts.T("status_empty")}, nil
	}
	text := b.Texts.Status(offers)
	if text == "" {
		return Reply{Text: b.Texts.T("status_empty")}, nil
	}
	return Reply{Text: text, ParseMode: adapter.ParseModeMarkdown}, nil
}

func (b *BotFacade) HandleSubscribe(ctx context.Context, chatID int64) (Reply, error) {
	if err := b.UserUC.Subscribe(ctx, chatID); err != nil {
		return Reply{}, err
	}
	return Reply{Text: b.Texts.T("subscribed"), ParseMode: adapter.ParseModeMarkdown, Rows: b.toggleRows(true)}, nil
}

func (b *BotFacade) HandleUnsubscribe(ctx context.Context, chatID int64) (Reply, error) {
	if err := b.UserUC.Unsubscribe(ctx, chatID); err != nil {
		return Reply{}, err
	}
	return Reply{Text: b.Texts.T("unsubscribed"), ParseMode: adapter.ParseModeMarkdown, Rows: b.toggleRows(false)}, nil
}

// HandleToggle applies a SUB/UNSUB button press. It returns the toast text and the
// re-rendered keyboard for the pressed message.
func (b *BotFacade) HandleToggle(ctx context.Context, chatID int64, subscribe bool) (string, [][]adapter.InlineButton, error) {
	if subscribe {
		if err := b.UserUC.Subscribe(ctx, chatID); err != nil {
			return "", nil, err
		}
		return b.Texts.T("toast_subscribed"), b.toggleRows(true), nil
	}
	if err := b.UserUC.Unsubscribe(ctx, chatID); err != nil {
		return "", nil, err
	}
	return b.Texts.T("toast_unsubscribed"), b.toggleRows(false), nil
}

func (b *BotFacade) HandleHelp() Reply {
	return Reply{Text: b.Texts.T("help"), ParseMode: adapter.ParseModeMarkdown}
}

func (b *BotFacade) HandleStats(ctx context.Context, kind StatsKind) (Reply, error) {
	st, err := b.StatsUC.Counts(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("stats: %w", err)
	}
	var text string
	switch kind {
	case StatsTotal:
		text = b.Texts.T("total_users", st.Total)
	case StatsSubscribed:
		text = b.Texts.T("sub_users", st.Subscribed)
	case StatsUnsubscribed:
		text = b.Texts.T("unsub_users", st.Unsubscribed)
	default:
		text = b.Texts.T("stats", st.Total, st.Subscribed, st.Unsubscribed)
	}
	return Reply{Text: text, ParseMode: adapter.ParseModeMarkdown}, nil
}

// HandleBroadcast blocks until the fan-out is done and reports the counts.
func (b *BotFacade) HandleBroadcast(ctx context.Context, text string) (Reply, error) {
	res, err := b.BroadcastUC.Broadcast(ctx, text)
	if errors.Is(err, domain.ErrEmptyBroadcast) {
		return Reply{Text: b.Texts.T("broadcast_usage")}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("broadcast: %w", err)
	}
	return Reply{Text: b.Texts.T("broadcast_done", res.Targets, res.Sent, res.Failed)}, nil
}

// JoinWarning is shown to anyone who is not a member of the required channel.
func (b *BotFacade) JoinWarning() Reply {
	return Reply{
		Text:      b.Texts.T("gate_warning"),
		ParseMode: adapter.ParseModeMarkdown,
		Rows: [][]adapter.InlineButton{
			{{Text: b.Texts.T("btn_join_channel"), URL: b.ChannelURL}},
			{{Text: b.Texts.T("btn_verify"), Data: CallbackVerify}},
		},
	}
}

func (b *BotFacade) VerifySuccess() Reply {
	return Reply{Text: b.Texts.T("verify_success"), ParseMode: adapter.ParseModeMarkdown}
}

func (b *BotFacade) ErrorReply() Reply {
	return Reply{Text: b.Texts.T("error_generic")}
}

func (b *BotFacade) RateLimited() Reply {
	return Reply{Text: b.Texts.T("rate_limited")}
}

// ToggleKeyboard renders the subscribe button matching the current subscription.
func (b *BotFacade) ToggleKeyboard(ctx context.Context, chatID int64) ([][]adapter.InlineButton, error) {
	subscribed, err := b.UserUC.IsSubscribed(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("subscription lookup: %w", err)
	}
	return b.toggleRows(subscribed), nil
}

func (b *BotFacade) toggleRows(subscribed bool) [][]adapter.InlineButton {
	if subscribed {
		return [][]adapter.InlineButton{{{Text: b.Texts.T("btn_unsubscribe"), Data: CallbackUnsub}}}
	}
	return [][]adapter.InlineButton{{{Text: b.Texts.T("btn_subscribe"), Data: CallbackSub}}}
}
