//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"
	"github.com/scmsohel/epic-loot-bot/internal/usecase"
)

type announceFixture struct {
	fetcher *MockFetcher
	state   *memOfferState
	subs    *memChatSet
	bot     *MockMessenger
	locker  *MockLocker
	uc      usecase.AnnounceUseCase
}

func newAnnounceFixture(subs ...int64) *announceFixture {
	return newTimedAnnounceFixture(time.Minute, time.Minute, 1000, subs...)
}

// newTimedAnnounceFixture sets the per-step timeout, lock TTL and send rate.
func newTimedAnnounceFixture(stepTimeout, lockTTL time.Duration, perSecond int, subs ...int64) *announceFixture {
	f := &announceFixture{
		fetcher: &MockFetcher{},
		state:   &memOfferState{},
		subs:    newMemChatSet(subs...),
		bot:     &MockMessenger{},
		locker:  &MockLocker{},
	}
	logger := newTestLogger()
	notifier := usecase.NewNotifier(f.bot, perSecond, logger)
	f.uc = usecase.NewAnnounceUseCase(f.fetcher, f.state, f.subs, notifier, stubRenderer{}, f.locker, stepTimeout, lockTTL, logger)
	return f
}

func TestAnnounceUseCase_RunCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("should announce only the new title and persist the full list", func(t *testing.T) {
		// Arrange
		f := newAnnounceFixture(100)
		f.state.state = model.NewOfferState([]string{"Game A"}, time.Now())
		f.fetcher.Offers = freeOffers("Game A", "Game B")

		// Act
		res, err := f.uc.RunCycle(ctx)

		// Assert
		if err != nil {
			t.Fatalf("RunCycle failed: %v", err)
		}
		if len(res.NewTitles) != 1 || res.NewTitles[0] != "Game B" {
			t.Fatalf("expected only Game B to be new, got %v", res.NewTitles)
		}
		if len(f.bot.Sent) != 1 || f.bot.Sent[0].Text != "NEW: Game B" || f.bot.Sent[0].ChatID != 100 {
			t.Fatalf("unexpected notifications: %+v", f.bot.Sent)
		}
		if f.bot.Sent[0].ParseMode != adapter.ParseModeMarkdown {
			t.Errorf("announcements should be Markdown, got %q", f.bot.Sent[0].ParseMode)
		}
		titles := f.state.Titles()
		if len(titles) != 2 || titles[0] != "Game A" || titles[1] != "Game B" {
			t.Errorf("expected persisted state [Game A Game B], got %v", titles)
		}
	})

	t.Run("should be idempotent for an unchanged storefront", func(t *testing.T) {
		f := newAnnounceFixture(100, 200)
		f.fetcher.Offers = freeOffers("Game A", "Game B")

		first, err := f.uc.RunCycle(ctx)
		if err != nil {
			t.Fatalf("first cycle failed: %v", err)
		}
		sentAfterFirst := len(f.bot.Sent)
		second, err := f.uc.RunCycle(ctx)
		if err != nil {
			t.Fatalf("second cycle failed: %v", err)
		}

		if len(first.NewTitles) != 2 || sentAfterFirst != 4 {
			t.Fatalf("first run should announce both titles to both subscribers, got %v / %d sends", first.NewTitles, sentAfterFirst)
		}
		if len(second.NewTitles) != 0 || len(f.bot.Sent) != sentAfterFirst {
			t.Fatalf("second run should send nothing, got %v", second.NewTitles)
		}
	})

	t.Run("should persist even when every delivery fails", func(t *testing.T) {
		f := newAnnounceFixture(1, 2, 3)
		f.bot.SendMessageFunc = func(ctx context.Context, p adapter.SendMessageParams) error { return errBoom }
		f.fetcher.Offers = freeOffers("Game A")

		res, err := f.uc.RunCycle(ctx)
		if err != nil {
			t.Fatalf("RunCycle should not fail on delivery errors: %v", err)
		}
		if res.Sent != 0 || res.Failed != 3 {
			t.Errorf("expected 0 sent / 3 failed, got %d / %d", res.Sent, res.Failed)
		}
		if titles := f.state.Titles(); len(titles) != 1 || titles[0] != "Game A" {
			t.Errorf("state not persisted: %v", titles)
		}

		// no retry next cycle
		f.bot.SendMessageFunc = nil
		res, _ = f.uc.RunCycle(ctx)
		if len(res.NewTitles) != 0 {
			t.Errorf("failed deliveries must not re-trigger, got %v", res.NewTitles)
		}
	})

	t.Run("should not touch state when the fetch fails", func(t *testing.T) {
		f := newAnnounceFixture(1)
		f.state.state = model.NewOfferState([]string{"Old"}, time.Now())
		f.fetcher.Err = domain.ErrStorefrontUnavailable

		_, err := f.uc.RunCycle(ctx)
		if !errors.Is(err, domain.ErrStorefrontUnavailable) {
			t.Fatalf("expected storefront error, got %v", err)
		}
		if f.state.Saves != 0 || f.state.Titles()[0] != "Old" {
			t.Error("state must not change on fetch failure")
		}
		if len(f.bot.Sent) != 0 {
			t.Error("nothing should be sent on fetch failure")
		}
	})

	t.Run("should save an empty list when nothing is free", func(t *testing.T) {
		f := newAnnounceFixture(1)
		f.state.state = model.NewOfferState([]string{"Game A"}, time.Now())
		f.fetcher.Offers = &model.Offers{}

		res, err := f.uc.RunCycle(ctx)
		if err != nil {
			t.Fatalf("RunCycle failed: %v", err)
		}
		if len(res.NewTitles) != 0 || len(f.state.Titles()) != 0 {
			t.Errorf("expected empty state and no announcements, got %v / %v", res.NewTitles, f.state.Titles())
		}
	})

	t.Run("should skip the cycle when another instance holds the lock", func(t *testing.T) {
		f := newAnnounceFixture(1)
		f.fetcher.Offers = freeOffers("Game A")
		f.locker.TryLockFunc = func(ctx context.Context, key string, ttl time.Duration) (string, error) {
			return "", domain.ErrLockHeld
		}

		res, err := f.uc.RunCycle(ctx)
		if err != nil {
			t.Fatalf("a held lock is not an error: %v", err)
		}
		if !res.Skipped || f.fetcher.Calls != 0 {
			t.Errorf("expected a skipped cycle without fetching, got %+v after %d fetches", res, f.fetcher.Calls)
		}
	})

	t.Run("should release the lock after a cycle", func(t *testing.T) {
		f := newAnnounceFixture()
		f.fetcher.Offers = freeOffers()
		if _, err := f.uc.RunCycle(ctx); err != nil {
			t.Fatalf("RunCycle failed: %v", err)
		}
		if len(f.locker.Unlocked) != 1 {
			t.Errorf("expected one unlock, got %v", f.locker.Unlocked)
		}
	})

	t.Run("should report a persist failure", func(t *testing.T) {
		f := newAnnounceFixture(1)
		f.fetcher.Offers = freeOffers("Game A")
		f.state.SaveErr = errBoom

		res, err := f.uc.RunCycle(ctx)
		if !errors.Is(err, errBoom) {
			t.Fatalf("expected save error, got %v", err)
		}
		if res.Sent != 1 {
			t.Errorf("deliveries happen before persisting, got %d sent", res.Sent)
		}
	})

	t.Run("should reach every subscriber when the fan-out outlasts the step timeout", func(t *testing.T) {
		// Arrange: 10 sends at 100/s take ~90ms, four times the step budget
		subs := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
		f := newTimedAnnounceFixture(20*time.Millisecond, time.Minute, 100, subs...)
		f.fetcher.Offers = freeOffers("Game A")

		// Act
		res, err := f.uc.RunCycle(ctx)

		// Assert
		if err != nil {
			t.Fatalf("RunCycle failed: %v", err)
		}
		if res.Sent != len(subs) || res.Failed != 0 {
			t.Fatalf("expected %d sent / 0 failed, got %d / %d", len(subs), res.Sent, res.Failed)
		}
		if got := f.bot.SentTo(); len(got) != len(subs) {
			t.Fatalf("expected every subscriber to be tried, got %v", got)
		}
		if titles := f.state.Titles(); len(titles) != 1 || titles[0] != "Game A" {
			t.Errorf("state not persisted: %v", titles)
		}
	})

	t.Run("should bound the storefront fetch by the step timeout", func(t *testing.T) {
		f := newTimedAnnounceFixture(20*time.Millisecond, time.Minute, 1000, 1)
		f.fetcher.FetchOffersFunc = func(ctx context.Context) (*model.Offers, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}

		_, err := f.uc.RunCycle(ctx)

		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected the fetch to time out, got %v", err)
		}
		if f.state.Saves != 0 {
			t.Error("state must not change when the fetch times out")
		}
	})

	t.Run("should renew the lock while a long fan-out runs", func(t *testing.T) {
		// Arrange: renewals every 10ms during a ~90ms fan-out
		f := newTimedAnnounceFixture(time.Second, 30*time.Millisecond, 100, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
		f.fetcher.Offers = freeOffers("Game A")

		// Act
		if _, err := f.uc.RunCycle(ctx); err != nil {
			t.Fatalf("RunCycle failed: %v", err)
		}

		// Assert
		if f.locker.Extensions() == 0 {
			t.Fatal("expected the lock to be extended during the fan-out")
		}
		if len(f.locker.Unlocked) != 1 {
			t.Errorf("expected one unlock, got %v", f.locker.Unlocked)
		}
	})

	t.Run("should finish the cycle when the lock renewal is refused", func(t *testing.T) {
		f := newTimedAnnounceFixture(time.Second, 30*time.Millisecond, 100, 1, 2, 3, 4, 5)
		f.fetcher.Offers = freeOffers("Game A")
		f.locker.ExtendFunc = func(ctx context.Context, key, token string, ttl time.Duration) error {
			return domain.ErrLockHeld
		}

		res, err := f.uc.RunCycle(ctx)

		if err != nil || res.Sent != 5 {
			t.Fatalf("expected a completed cycle, got %+v / %v", res, err)
		}
	})
}
