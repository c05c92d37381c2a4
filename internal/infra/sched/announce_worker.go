package sched

import (
	"context"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/infra/logging"
	"github.com/scmsohel/epic-loot-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// AnnounceWorker polls the storefront on a fixed interval. There is no jitter and no
// backoff; a failed cycle is logged and the next tick tries again. A cycle that runs
// past the interval delays the next tick instead of overlapping it.
type AnnounceWorker struct {
	interval time.Duration
	uc       usecase.AnnounceUseCase
	log      *zerolog.Logger
}

func NewAnnounceWorker(interval time.Duration, uc usecase.AnnounceUseCase, logger *zerolog.Logger) *AnnounceWorker {
	if interval <= 0 {
		interval = 90 * time.Second
	}
	wlog := logger.With().Str("component", "AnnounceWorker").Logger()
	return &AnnounceWorker{
		interval: interval,
		uc:       uc,
		log:      &wlog,
	}
}

// Run executes one cycle immediately and then one per tick until ctx is cancelled.
// It returns only after the running cycle has finished.
func (w *AnnounceWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting announce worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping announce worker")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *AnnounceWorker) runOnce(ctx context.Context) {
	// step deadlines live in the use case; a long fan-out must not be cut short here
	cctx := logging.WithTraceID(ctx, logging.NewTraceID())
	l := logging.With(cctx, w.log)
	defer logging.TraceDuration(l, "AnnounceWorker.cycle")()

	res, err := w.uc.RunCycle(cctx)
	switch {
	case err != nil:
		l.Error().Err(err).Msg("announce cycle failed")
	case res.Skipped:
		l.Debug().Msg("announce cycle skipped, lock held elsewhere")
	case len(res.NewTitles) > 0:
		l.Info().Strs("titles", res.NewTitles).Int("sent", res.Sent).Int("failed", res.Failed).Msg("new offers announced")
	default:
		l.Debug().Msg("no new offers")
	}
}
