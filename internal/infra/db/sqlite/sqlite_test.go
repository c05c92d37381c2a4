//go:build !integration

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "epicloot.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestChatSetRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("should keep named sets apart", func(t *testing.T) {
		db := openTestDB(t)
		subs := NewChatSetRepo(db, "subscribers")
		users := NewChatSetRepo(db, "all_users")

		if added, err := subs.Add(ctx, 42); err != nil || !added {
			t.Fatalf("Add: %v %v", added, err)
		}
		if added, _ := subs.Add(ctx, 42); added {
			t.Error("duplicate add should report no change")
		}
		_, _ = users.Add(ctx, 42)
		_, _ = users.Add(ctx, 7)

		ids, err := users.List(ctx)
		if err != nil || len(ids) != 2 || ids[0] != 7 {
			t.Errorf("unexpected users %v (%v)", ids, err)
		}
		if n, _ := subs.Count(ctx); n != 1 {
			t.Errorf("expected 1 subscriber, got %d", n)
		}
		if removed, _ := subs.Remove(ctx, 42); !removed {
			t.Error("expected remove to report a change")
		}
		if ok, _ := subs.Contains(ctx, 42); ok {
			t.Error("42 should be gone from subscribers")
		}
		if ok, _ := users.Contains(ctx, 42); !ok {
			t.Error("42 must stay in all_users")
		}
	})

	t.Run("should serialize concurrent writers", func(t *testing.T) {
		db := openTestDB(t)
		repo := NewChatSetRepo(db, "all_users")

		var wg sync.WaitGroup
		for i := int64(0); i < 50; i++ {
			wg.Add(1)
			go func(id int64) {
				defer wg.Done()
				if _, err := repo.Add(ctx, id%10); err != nil {
					t.Errorf("Add failed: %v", err)
				}
			}(i)
		}
		wg.Wait()
		if n, _ := repo.Count(ctx); n != 10 {
			t.Errorf("expected 10 distinct ids, got %d", n)
		}
	})
}

func TestOfferStateRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewOfferStateRepo(openTestDB(t))

	if _, err := repo.Load(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Save(ctx, model.NewOfferState([]string{"Game A"}, time.Now())); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.Save(ctx, model.NewOfferState([]string{"Game A", "Game B"}, time.Now())); err != nil {
		t.Fatalf("second save: %v", err)
	}
	st, err := repo.Load(ctx)
	if err != nil || len(st.Titles) != 2 {
		t.Fatalf("unexpected state %+v (%v)", st, err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epicloot.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	_, _ = NewChatSetRepo(db, "subscribers").Add(ctx, 1)
	_ = db.Close()

	db, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("migrations must be re-runnable: %v", err)
	}
	defer db.Close()
	if ok, _ := NewChatSetRepo(db, "subscribers").Contains(ctx, 1); !ok {
		t.Error("data lost across reopen")
	}
}
