package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"
)

var _ repository.ChatSetRepository = (*ChatSetRepo)(nil)

type ChatSetRepo struct {
	db   *sql.DB
	name string
}

func NewChatSetRepo(db *sql.DB, name string) *ChatSetRepo {
	return &ChatSetRepo{db: db, name: name}
}

func (r *ChatSetRepo) Add(ctx context.Context, chatID int64) (added bool, err error) {
	defer metrics.ObserveStorage("sqlite", "add", time.Now(), &err)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_sets(set_name, chat_id, added_at) VALUES(?, ?, ?) ON CONFLICT(set_name, chat_id) DO NOTHING`,
		r.name, chatID, time.Now().UTC().Unix())
	if err != nil {
		return false, fmt.Errorf("sqlite add %s: %w", r.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *ChatSetRepo) Remove(ctx context.Context, chatID int64) (removed bool, err error) {
	defer metrics.ObserveStorage("sqlite", "remove", time.Now(), &err)
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_sets WHERE set_name = ? AND chat_id = ?`, r.name, chatID)
	if err != nil {
		return false, fmt.Errorf("sqlite remove %s: %w", r.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *ChatSetRepo) Contains(ctx context.Context, chatID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM chat_sets WHERE set_name = ? AND chat_id = ?`, r.name, chatID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite contains %s: %w", r.name, err)
	}
	return true, nil
}

func (r *ChatSetRepo) List(ctx context.Context) (ids []int64, err error) {
	defer metrics.ObserveStorage("sqlite", "list", time.Now(), &err)
	rows, err := r.db.QueryContext(ctx, `SELECT chat_id FROM chat_sets WHERE set_name = ? ORDER BY chat_id`, r.name)
	if err != nil {
		return nil, fmt.Errorf("sqlite list %s: %w", r.name, err)
	}
	defer rows.Close()

	ids = make([]int64, 0, 128)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ChatSetRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_sets WHERE set_name = ?`, r.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite count %s: %w", r.name, err)
	}
	return n, nil
}
