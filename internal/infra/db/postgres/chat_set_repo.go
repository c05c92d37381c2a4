package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"
)

var _ repository.ChatSetRepository = (*ChatSetRepo)(nil)

// ChatSetRepo keeps several named sets in one table, keyed by (set_name, chat_id).
type ChatSetRepo struct {
	pool *pgxpool.Pool
	name string
}

func NewChatSetRepo(pool *pgxpool.Pool, name string) *ChatSetRepo {
	return &ChatSetRepo{pool: pool, name: name}
}

func (r *ChatSetRepo) Add(ctx context.Context, chatID int64) (added bool, err error) {
	defer metrics.ObserveStorage("postgres", "add", time.Now(), &err)
	const q = `INSERT INTO chat_sets (set_name, chat_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`
	tag, err := r.pool.Exec(ctx, q, r.name, chatID)
	if err != nil {
		return false, wrap("add", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ChatSetRepo) Remove(ctx context.Context, chatID int64) (removed bool, err error) {
	defer metrics.ObserveStorage("postgres", "remove", time.Now(), &err)
	const q = `DELETE FROM chat_sets WHERE set_name=$1 AND chat_id=$2;`
	tag, err := r.pool.Exec(ctx, q, r.name, chatID)
	if err != nil {
		return false, wrap("remove", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ChatSetRepo) Contains(ctx context.Context, chatID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM chat_sets WHERE set_name=$1 AND chat_id=$2);`
	var ok bool
	if err := r.pool.QueryRow(ctx, q, r.name, chatID).Scan(&ok); err != nil {
		return false, wrap("contains", err)
	}
	return ok, nil
}

func (r *ChatSetRepo) List(ctx context.Context) (ids []int64, err error) {
	defer metrics.ObserveStorage("postgres", "list", time.Now(), &err)
	const q = `SELECT chat_id FROM chat_sets WHERE set_name=$1 ORDER BY chat_id;`
	rows, err := r.pool.Query(ctx, q, r.name)
	if err != nil {
		return nil, wrap("list", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrap("list", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", err)
	}
	return ids, nil
}

func (r *ChatSetRepo) Count(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM chat_sets WHERE set_name=$1;`
	var n int
	if err := r.pool.QueryRow(ctx, q, r.name).Scan(&n); err != nil {
		return 0, wrap("count", err)
	}
	return n, nil
}

// wrap adds a hint when the schema was never applied.
func wrap(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		return fmt.Errorf("postgres %s: schema missing, apply deploy/postgres/init.sql: %w", op, err)
	}
	return fmt.Errorf("postgres %s: %w", op, err)
}
