package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/application"
	"github.com/scmsohel/epic-loot-bot/internal/config"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"
	"github.com/scmsohel/epic-loot-bot/internal/infra/adapters/epic"
	"github.com/scmsohel/epic-loot-bot/internal/infra/adapters/telegram"
	"github.com/scmsohel/epic-loot-bot/internal/infra/api"
	"github.com/scmsohel/epic-loot-bot/internal/infra/db"
	"github.com/scmsohel/epic-loot-bot/internal/infra/i18n"
	"github.com/scmsohel/epic-loot-bot/internal/infra/logging"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"
	"github.com/scmsohel/epic-loot-bot/internal/infra/sched"
	"github.com/scmsohel/epic-loot-bot/internal/infra/web"
	"github.com/scmsohel/epic-loot-bot/internal/infra/worker"
	"github.com/scmsohel/epic-loot-bot/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// set via -ldflags
var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "console logs and unredacted secrets")
	dryRun := flag.Bool("dry-run", false, "run only the announcer and log messages instead of sending them")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	if err := run(cfg, *dryRun, logger); err != nil {
		logger.Fatal().Err(err).Msg("epicloot stopped")
	}
}

func run(cfg *config.Config, dryRun bool, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	logger.Info().
		Str("version", version).
		Str("mode", cfg.Bot.Mode).
		Str("storage", cfg.Storage.Driver).
		Str("token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).
		Msg("starting epicloot")

	// ---- Storage ----
	stores, err := db.Open(ctx, cfg, logging.Component(logger, "storage"))
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn().Err(err).Msg("storage close")
		}
	}()
	stores.Start(ctx)

	// ---- Texts & storefront ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		return err
	}
	texts := i18n.NewFormatter(tr)

	fetcher, err := epic.NewClient(cfg.Storefront, logging.Component(logger, "storefront"))
	if err != nil {
		return err
	}

	// ---- Outbound messages ----
	var (
		bot       *tgbotapi.BotAPI
		messenger adapter.Messenger
	)
	if dryRun {
		messenger = telegram.NewNoopMessenger(logging.Component(logger, "dry_run"))
	} else {
		bot, err = telegram.NewBotAPI(cfg.Bot, logger)
		if err != nil {
			return err
		}
		messenger = telegram.NewMessenger(bot)
	}

	// ---- Use cases ----
	notifier := usecase.NewNotifier(messenger, cfg.Bot.SendRate, logging.Component(logger, "notifier"))
	userUC := usecase.NewUserUseCase(stores.Users, stores.Subscribers, logging.Component(logger, "UserUC"))
	statsUC := usecase.NewStatsUseCase(stores.Users, stores.Subscribers, logging.Component(logger, "StatsUC"))
	broadcastUC := usecase.NewBroadcastUseCase(stores.Users, notifier, texts, logging.Component(logger, "BroadcastUC"))
	offerUC := usecase.NewOfferUseCase(fetcher, cfg.Storefront.Timeout, logging.Component(logger, "OfferUC"))
	announceUC := usecase.NewAnnounceUseCase(
		fetcher, stores.State, stores.Subscribers, notifier, texts,
		stores.Locker, cfg.Announcer.StepTimeout, cfg.Announcer.LockTTL,
		logging.Component(logger, "AnnounceUC"),
	)
	announcer := sched.NewAnnounceWorker(cfg.Announcer.Interval, announceUC, logger)

	if dryRun {
		logger.Info().Msg("dry run: announcer only, nothing is sent")
		if err := announcer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	// ---- Telegram intake ----
	facade := application.NewBotFacade(userUC, statsUC, broadcastUC, offerUC, texts, cfg.Channel.URL, logging.Component(logger, "BotFacade"))
	pool := worker.NewPool(cfg.Bot.Workers, logger)
	pool.Start(ctx)
	defer pool.Stop()

	gate := telegram.NewChannelMembership(bot, cfg.Channel.Username, logging.Component(logger, "gate"))
	dispatcher, err := telegram.NewDispatcher(bot, facade, gate, stores.Limiter, pool, cfg.Admin.ID, logging.Component(logger, "telegram"))
	if err != nil {
		return err
	}

	// ---- HTTP ----
	deps := api.Deps{Storage: stores}
	if cfg.AdminAPI.JWTSecret != "" {
		deps.Admin = web.NewServer(statsUC, broadcastUC, web.NewAuthManager(cfg.AdminAPI.JWTSecret, 0), logging.Component(logger, "admin_api"))
	}
	if cfg.Bot.Mode == config.ModeWebhook {
		if err := telegram.SetWebhook(bot, cfg.Bot.Webhook.URL, cfg.Bot.Webhook.Secret); err != nil {
			return err
		}
		deps.Webhook = dispatcher.WebhookHandler(cfg.Bot.Webhook.Secret)
		logger.Info().Str("url", cfg.Bot.Webhook.URL).Msg("webhook registered")
	}
	server := api.NewServer(cfg.HTTP.Port, api.NewRouter(deps, logging.Component(logger, "http")), logger)

	errc := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errc <- fmt.Errorf("http server: %w", err)
		}
	}()
	announcerDone := make(chan struct{})
	go func() {
		defer close(announcerDone)
		_ = announcer.Run(ctx)
	}()

	if cfg.Bot.Mode == config.ModePolling {
		if err := telegram.DeleteWebhook(bot); err != nil {
			logger.Warn().Err(err).Msg("delete webhook before polling")
		}
		go func() {
			if err := dispatcher.StartPolling(ctx, telegram.PollTimeout(cfg.Bot.Timeout)); err != nil {
				logger.Error().Err(err).Msg("polling stopped")
			}
		}()
	}

	// ---- Graceful shutdown ----
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case runErr = <-errc:
		stop()
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	// the announcer may still be saving state; storage closes only after it returns
	<-announcerDone
	return runErr
}
