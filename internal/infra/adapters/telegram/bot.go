package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/config"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// botClient is the slice of *tgbotapi.BotAPI the adapter needs.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ botClient = (*tgbotapi.BotAPI)(nil)

// NewBotAPI authorizes the token. Every Bot API call shares one HTTP client, so
// cfg.Timeout bounds sends, edits and membership lookups alike.
func NewBotAPI(cfg config.BotConfig, logger *zerolog.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	logger.Info().Str("username", api.Self.UserName).Msg("telegram bot authorized")
	return api, nil
}

// SetWebhook points Telegram at baseURL/webhook/secret.
func SetWebhook(bot botClient, baseURL, secret string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(baseURL, "/") + "/webhook/" + secret)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	if _, err := bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook is required before long polling on a bot that had a webhook.
func DeleteWebhook(bot botClient) error {
	_, err := bot.Request(tgbotapi.DeleteWebhookConfig{})
	return err
}

// PollTimeout keeps the long-poll window inside the HTTP client timeout.
func PollTimeout(clientTimeout time.Duration) int {
	s := int((clientTimeout - 5*time.Second) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}

var _ adapter.Messenger = (*BotMessenger)(nil)

type BotMessenger struct {
	bot botClient
}

func NewMessenger(bot botClient) *BotMessenger {
	return &BotMessenger{bot: bot}
}

func (m *BotMessenger) SendMessage(ctx context.Context, p adapter.SendMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(p.ChatID, p.Text)
	msg.ParseMode = p.ParseMode
	if len(p.Rows) > 0 {
		msg.ReplyMarkup = inlineKeyboard(p.Rows)
	}
	_, err := m.bot.Send(msg)
	return err
}

// inlineKeyboard turns port buttons into tgbotapi markup. URL wins over Data.
func inlineKeyboard(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, r)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

// isNotModified reports Telegram's refusal to apply an edit that changes nothing.
func isNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Message, "message is not modified")
	}
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
