//go:build !integration

package db

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/scmsohel/epic-loot-bot/internal/config"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// setSizeGauge reads chat_set_members{set=name} from the default registry.
func setSizeGauge(t *testing.T, name string) float64 {
	t.Helper()
	metrics.MustRegister()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "chat_set_members" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "set" && l.GetValue() == name {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("chat_set_members{set=%q} not found", name)
	return 0
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("should lay out the file backend in the storage dir", func(t *testing.T) {
		// Arrange
		cfg := &config.Config{}
		cfg.Storage.Driver = DriverFile
		cfg.Storage.Dir = t.TempDir()

		// Act
		s, err := Open(ctx, cfg, newTestLogger())
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer s.Close()
		_, _ = s.Subscribers.Add(ctx, 10)
		_, _ = s.Users.Add(ctx, 10)

		// Assert
		for _, name := range []string{"subscribers.json", "all_users.json"} {
			if _, err := os.Stat(filepath.Join(cfg.Storage.Dir, name)); err != nil {
				t.Errorf("expected %s to exist: %v", name, err)
			}
		}
		if s.Limiter != nil {
			t.Error("file backend should not offer a rate limiter")
		}
		if s.Locker == nil {
			t.Error("expected an in-process locker")
		}
		if err := s.Ping(ctx); err != nil {
			t.Errorf("file backend ping: %v", err)
		}
	})

	t.Run("should open the sqlite backend", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = DriverSQLite
		cfg.SQLite.Path = filepath.Join(t.TempDir(), "bot.db")

		s, err := Open(ctx, cfg, newTestLogger())
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer s.Close()
		if added, err := s.Users.Add(ctx, 5); err != nil || !added {
			t.Fatalf("add: %v %v", added, err)
		}
		if n, _ := s.Subscribers.Count(ctx); n != 0 {
			t.Errorf("sets should be independent, got %d subscribers", n)
		}
	})

	t.Run("should reject an unknown driver", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = "mongo"
		if _, err := Open(ctx, cfg, newTestLogger()); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("should publish the size of both chat sets", func(t *testing.T) {
		// Arrange
		cfg := &config.Config{}
		cfg.Storage.Driver = DriverFile
		cfg.Storage.Dir = t.TempDir()
		s, err := Open(ctx, cfg, newTestLogger())
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer s.Close()
		_, _ = s.Users.Add(ctx, 1)
		_, _ = s.Users.Add(ctx, 2)
		_, _ = s.Subscribers.Add(ctx, 2)

		// Act
		err = s.PublishSetSizes(ctx)

		// Assert
		if err != nil {
			t.Fatalf("PublishSetSizes failed: %v", err)
		}
		if got := setSizeGauge(t, "all_users"); got != 2 {
			t.Errorf("expected 2 users, got %v", got)
		}
		if got := setSizeGauge(t, "subscribers"); got != 1 {
			t.Errorf("expected 1 subscriber, got %v", got)
		}
	})
}
