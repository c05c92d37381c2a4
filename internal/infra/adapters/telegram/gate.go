package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var _ adapter.MembershipChecker = (*ChannelMembership)(nil)

// ChannelMembership asks Telegram whether a user belongs to the required channel.
type ChannelMembership struct {
	bot     botClient
	channel string
	log     *zerolog.Logger
}

// NewChannelMembership accepts "@username" or a numeric chat id.
func NewChannelMembership(bot botClient, channel string, logger *zerolog.Logger) *ChannelMembership {
	return &ChannelMembership{bot: bot, channel: strings.TrimSpace(channel), log: logger}
}

func (g *ChannelMembership) IsMember(ctx context.Context, userID int64) bool {
	if ctx.Err() != nil {
		metrics.IncGateCheck(false)
		return false
	}
	cfg := tgbotapi.GetChatMemberConfig{ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID}}
	if id, err := strconv.ParseInt(g.channel, 10, 64); err == nil {
		cfg.ChatID = id
	} else {
		cfg.SuperGroupUsername = g.channel
	}

	member, err := g.bot.GetChatMember(cfg)
	if err != nil {
		g.log.Warn().Err(err).Int64("tg_id", userID).Str("channel", g.channel).Msg("membership lookup failed")
		metrics.IncGateCheck(false)
		return false
	}
	ok := model.MemberStatus(member.Status).IsMember()
	metrics.IncGateCheck(ok)
	return ok
}

// membersOnly wraps a user command so non-members get the join warning instead.
func (d *Dispatcher) membersOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		if !d.gate.IsMember(ctx, msg.From.ID) {
			return d.reply(ctx, msg.Chat.ID, d.facade.JoinWarning())
		}
		return next(ctx, msg)
	}
}

// membersOnlyCB edits the pressed message into the join warning for non-members.
func (d *Dispatcher) membersOnlyCB(next cbHandler) cbHandler {
	return func(ctx context.Context, q *tgbotapi.CallbackQuery) (string, error) {
		if !d.gate.IsMember(ctx, q.From.ID) {
			return "", d.editReply(ctx, q, d.facade.JoinWarning())
		}
		return next(ctx, q)
	}
}
