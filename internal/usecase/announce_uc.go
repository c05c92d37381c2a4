package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog"
)

const (
	announceLockKey = "announce"
	persistTimeout  = 10 * time.Second
)

// Compile-time check
var _ AnnounceUseCase = (*announceUC)(nil)

// CycleResult describes one poll of the storefront.
type CycleResult struct {
	NewTitles []string
	Sent      int
	Failed    int
	// Skipped is set when another instance held the announce lock.
	Skipped bool
}

type AnnounceUseCase interface {
	RunCycle(ctx context.Context) (CycleResult, error)
}

type announceUC struct {
	fetcher     adapter.StorefrontFetcher
	state       repository.OfferStateRepository
	subscribers repository.ChatSetRepository
	notifier    Notifier
	render      Renderer
	locker      adapter.Locker
	stepTimeout time.Duration
	lockTTL     time.Duration
	now         func() time.Time
	log         *zerolog.Logger
}

// NewAnnounceUseCase bounds every storefront and storage call by stepTimeout. The
// fan-out has no deadline of its own: each send is bounded by the messenger and the
// whole batch stops only when ctx is cancelled. The lock is held for lockTTL and
// renewed while the cycle runs.
func NewAnnounceUseCase(
	fetcher adapter.StorefrontFetcher,
	state repository.OfferStateRepository,
	subscribers repository.ChatSetRepository,
	notifier Notifier,
	render Renderer,
	locker adapter.Locker,
	stepTimeout, lockTTL time.Duration,
	logger *zerolog.Logger,
) *announceUC {
	return &announceUC{
		fetcher:     fetcher,
		state:       state,
		subscribers: subscribers,
		notifier:    notifier,
		render:      render,
		locker:      locker,
		stepTimeout: stepTimeout,
		lockTTL:     lockTTL,
		now:         time.Now,
		log:         logger,
	}
}

// RunCycle fetches, diffs by title, notifies subscribers of every new title and then
// persists the full current title list. Delivery failures do not prevent persisting.
func (uc *announceUC) RunCycle(ctx context.Context) (CycleResult, error) {
	if uc.locker != nil {
		lctx, cancel := uc.step(ctx)
		token, err := uc.locker.TryLock(lctx, announceLockKey, uc.lockTTL)
		cancel()
		if errors.Is(err, domain.ErrLockHeld) {
			metrics.IncAnnouncerCycle("skipped")
			return CycleResult{Skipped: true}, nil
		}
		if err != nil {
			return CycleResult{}, fmt.Errorf("announce lock: %w", err)
		}
		stopRenew := uc.keepLock(ctx, token)
		defer func() {
			stopRenew()
			uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
			defer cancel()
			if err := uc.locker.Unlock(uctx, announceLockKey, token); err != nil {
				uc.log.Warn().Err(err).Msg("failed to release announce lock")
			}
		}()
	}

	fctx, cancel := uc.step(ctx)
	offers, err := uc.fetcher.FetchOffers(fctx)
	cancel()
	if err != nil {
		metrics.IncAnnouncerCycle("fetch_failed")
		return CycleResult{}, fmt.Errorf("fetch offers: %w", err)
	}
	current := offers.FreeTitles()

	previous, err := uc.loadPrevious(ctx)
	if err != nil {
		metrics.IncAnnouncerCycle("persist_failed")
		return CycleResult{}, err
	}

	res := CycleResult{NewTitles: newTitles(previous, current)}
	if len(res.NewTitles) > 0 {
		sctx, cancel := uc.step(ctx)
		subs, err := uc.subscribers.List(sctx)
		cancel()
		if err != nil {
			metrics.IncAnnouncerCycle("persist_failed")
			return CycleResult{}, fmt.Errorf("list subscribers: %w", err)
		}
		for _, title := range res.NewTitles {
			game, _ := offers.FreeByTitle(title)
			sent, failed := uc.notifier.FanOut(ctx, "announce", subs, adapter.SendMessageParams{
				Text:      uc.render.Announcement(game),
				ParseMode: adapter.ParseModeMarkdown,
			})
			res.Sent += sent
			res.Failed += failed
			uc.log.Info().Str("title", title).Int("sent", sent).Int("failed", failed).Msg("announced new free game")
		}
		metrics.AddNewOffers(len(res.NewTitles))
	}

	// shutdown may have cancelled ctx during fan-out; the state still has to be written
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := uc.state.Save(saveCtx, model.NewOfferState(current, uc.now())); err != nil {
		metrics.IncAnnouncerCycle("persist_failed")
		return res, fmt.Errorf("save offer state: %w", err)
	}

	metrics.IncAnnouncerCycle("ok")
	return res, nil
}

func (uc *announceUC) step(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.stepTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.stepTimeout)
}

// keepLock extends the announce lock every third of its TTL until the returned
// func is called. A lost lock is logged; the cycle still finishes.
func (uc *announceUC) keepLock(ctx context.Context, token string) func() {
	every := uc.lockTTL / 3
	if every <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), every)
				err := uc.locker.Extend(ectx, announceLockKey, token, uc.lockTTL)
				cancel()
				if err != nil {
					uc.log.Warn().Err(err).Msg("announce lock not renewed")
					return
				}
			}
		}
	}()
	return func() {
		close(done)
		<-stopped
	}
}

func (uc *announceUC) loadPrevious(ctx context.Context) ([]string, error) {
	ctx, cancel := uc.step(ctx)
	defer cancel()
	st, err := uc.state.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		uc.log.Info().Msg("no previous offer state, every free title counts as new")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load offer state: %w", err)
	}
	return st.Titles, nil
}

// newTitles keeps the order of current and drops duplicates.
func newTitles(previous, current []string) []string {
	seen := mapset.NewThreadUnsafeSet(previous...)
	var out []string
	for _, t := range current {
		if seen.Contains(t) {
			continue
		}
		seen.Add(t)
		out = append(out, t)
	}
	return out
}
