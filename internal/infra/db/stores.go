package db

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/config"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/db/filestore"
	"github.com/scmsohel/epic-loot-bot/internal/infra/db/postgres"
	"github.com/scmsohel/epic-loot-bot/internal/infra/db/sqlite"
	"github.com/scmsohel/epic-loot-bot/internal/infra/lock"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"
	"github.com/scmsohel/epic-loot-bot/internal/infra/redis"

	"github.com/rs/zerolog"
)

const (
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	SubscribersSet = "subscribers"
	AllUsersSet    = "all_users"

	setSizeEvery = time.Minute
)

// Limiter is the fixed-window limiter offered by backends that can share counters.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Stores bundles the repositories of the selected backend.
type Stores struct {
	Driver      string
	Users       repository.ChatSetRepository
	Subscribers repository.ChatSetRepository
	State       repository.OfferStateRepository
	Locker      adapter.Locker
	// Limiter is nil when the backend cannot share counters.
	Limiter Limiter

	ping    func(ctx context.Context) error
	closers []func() error
	bg      []func(ctx context.Context)
}

// Open builds the stores for cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (*Stores, error) {
	s := &Stores{Driver: cfg.Storage.Driver, Locker: lock.NewMemoryLocker()}

	switch cfg.Storage.Driver {
	case DriverFile:
		users, err := filestore.OpenJSONSet(filepath.Join(cfg.Storage.Dir, AllUsersSet+".json"))
		if err != nil {
			return nil, err
		}
		subs, err := filestore.OpenJSONSet(filepath.Join(cfg.Storage.Dir, SubscribersSet+".json"))
		if err != nil {
			return nil, err
		}
		s.Users, s.Subscribers = users, subs
		s.State = filestore.NewStateFile(filepath.Join(cfg.Storage.Dir, "last_state.json"))

	case DriverRedis:
		cli, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		prefix := cfg.Redis.KeyPrefix
		s.Users = redis.NewChatSetRepo(cli, redis.Key(prefix, AllUsersSet))
		s.Subscribers = redis.NewChatSetRepo(cli, redis.Key(prefix, SubscribersSet))
		s.State = redis.NewOfferStateRepo(cli, redis.Key(prefix, "last_state"))
		s.Locker = redis.NewLocker(cli, prefix)
		s.Limiter = redis.NewRateLimiter(cli, prefix)
		s.ping = cli.Ping
		s.closers = append(s.closers, cli.Close)

	case DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s.Users = postgres.NewChatSetRepo(pool, AllUsersSet)
		s.Subscribers = postgres.NewChatSetRepo(pool, SubscribersSet)
		s.State = postgres.NewOfferStateRepo(pool)
		s.ping = func(ctx context.Context) error { return pool.Ping(ctx) }
		s.closers = append(s.closers, func() error { pool.Close(); return nil })
		plog := log.With().Str("component", "pgpool").Logger()
		s.bg = append(s.bg, func(ctx context.Context) {
			postgres.ReportPoolStats(ctx, pool, 15*time.Second, &plog)
		})

	case DriverSQLite:
		sdb, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		s.Users = sqlite.NewChatSetRepo(sdb, AllUsersSet)
		s.Subscribers = sqlite.NewChatSetRepo(sdb, SubscribersSet)
		s.State = sqlite.NewOfferStateRepo(sdb)
		s.ping = sdb.PingContext
		s.closers = append(s.closers, sdb.Close)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	slog := log.With().Str("component", "set_sizes").Logger()
	s.bg = append(s.bg, func(ctx context.Context) {
		s.reportSetSizes(ctx, setSizeEvery, &slog)
	})

	log.Info().Str("driver", s.Driver).Bool("rate_limit", s.Limiter != nil).Msg("storage ready")
	return s, nil
}

// Start launches backend housekeeping goroutines bound to ctx.
func (s *Stores) Start(ctx context.Context) {
	for _, fn := range s.bg {
		go fn(ctx)
	}
}

// PublishSetSizes counts both chat sets into the chat_set_members gauge.
func (s *Stores) PublishSetSizes(ctx context.Context) error {
	for name, set := range map[string]repository.ChatSetRepository{AllUsersSet: s.Users, SubscribersSet: s.Subscribers} {
		n, err := set.Count(ctx)
		if err != nil {
			return fmt.Errorf("count %s: %w", name, err)
		}
		metrics.SetChatSetSize(name, n)
	}
	return nil
}

func (s *Stores) reportSetSizes(ctx context.Context, every time.Duration, log *zerolog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if err := s.PublishSetSizes(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("set size report failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Ping reports backend reachability; the file backend is always up.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Stores) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
