//go:build !integration

package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/application"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/infra/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// fakeBot records everything sent through the Bot API.
type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable

	// Status is returned by GetChatMember; MemberErr takes precedence.
	Status    string
	MemberErr error
	LastChat  tgbotapi.GetChatMemberConfig
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastChat = cfg
	if f.MemberErr != nil {
		return tgbotapi.ChatMember{}, f.MemberErr
	}
	return tgbotapi.ChatMember{Status: f.Status}, nil
}

func (f *fakeBot) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeBot) StopReceivingUpdates() {}

func (f *fakeBot) Sent() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func (f *fakeBot) Requests() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.requests...)
}

// answered returns the callback answers in order.
func (f *fakeBot) answered() []tgbotapi.CallbackConfig {
	var out []tgbotapi.CallbackConfig
	for _, r := range f.Requests() {
		if cb, ok := r.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb)
		}
	}
	return out
}

type fakeUsers struct {
	mu    sync.Mutex
	all   map[int64]bool
	subs  map[int64]bool
	calls int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{all: map[int64]bool{}, subs: map[int64]bool{}}
}

func (u *fakeUsers) Track(ctx context.Context, chatID int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.all[chatID] = true
	return nil
}

func (u *fakeUsers) IsSubscribed(ctx context.Context, chatID int64) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	return u.subs[chatID], nil
}

func (u *fakeUsers) Subscribe(ctx context.Context, chatID int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.all[chatID] = true
	u.subs[chatID] = true
	return nil
}

func (u *fakeUsers) Unsubscribe(ctx context.Context, chatID int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.all[chatID] = true
	delete(u.subs, chatID)
	return nil
}

func (u *fakeUsers) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

func (u *fakeUsers) tracked(chatID int64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.all[chatID]
}

type fakeStats struct{ st model.Stats }

func (s fakeStats) Counts(ctx context.Context) (model.Stats, error) { return s.st, nil }

type fakeBroadcast struct {
	BroadcastFunc func(ctx context.Context, text string) (model.BroadcastResult, error)
}

func (b fakeBroadcast) Broadcast(ctx context.Context, text string) (model.BroadcastResult, error) {
	return b.BroadcastFunc(ctx, text)
}

type fakeOffers struct {
	mu    sync.Mutex
	calls int
}

func (o *fakeOffers) Current(ctx context.Context) (*model.Offers, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	return nil, errors.New("offline")
}

func (o *fakeOffers) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

// keyPresenter echoes translation keys so assertions do not depend on wording.
type keyPresenter struct{}

func (keyPresenter) T(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return key + " " + strings.TrimSpace(fmt.Sprintln(args...))
}

func (keyPresenter) Status(o *model.Offers) string { return "" }

type fakeLimiter struct{ allow bool }

func (l fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return l.allow, nil
}

const (
	adminID  = int64(42)
	memberID = int64(1001)
)

type harness struct {
	bot    *fakeBot
	users  *fakeUsers
	offers *fakeOffers
	d      *Dispatcher
}

func newHarness(status string, limiter RateLimiter) *harness {
	bot := &fakeBot{Status: status}
	users := newFakeUsers()
	offers := &fakeOffers{}
	facade := application.NewBotFacade(
		users,
		fakeStats{st: model.Stats{Total: 3, Subscribed: 2, Unsubscribed: 1}},
		fakeBroadcast{BroadcastFunc: func(ctx context.Context, text string) (model.BroadcastResult, error) {
			return model.BroadcastResult{Targets: 3, Sent: 3}, nil
		}},
		offers,
		keyPresenter{},
		"https://t.me/epicloot",
		newTestLogger(),
	)
	gate := NewChannelMembership(bot, "@epicloot", newTestLogger())
	d, err := NewDispatcher(bot, facade, gate, limiter, worker.NewPool(1, nil), adminID, newTestLogger())
	if err != nil {
		panic(err)
	}
	return &harness{bot: bot, users: users, offers: offers, d: d}
}

func command(from int64, text string) tgbotapi.Update {
	name := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from},
		Chat:      &tgbotapi.Chat{ID: from},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}}
}

func callback(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: from},
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 77,
			Chat:      &tgbotapi.Chat{ID: from},
		},
	}}
}
