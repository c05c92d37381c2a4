package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"
)

var _ repository.OfferStateRepository = (*OfferStateRepo)(nil)

// OfferStateRepo stores the single last-announced state row (id = 1).
type OfferStateRepo struct {
	pool *pgxpool.Pool
}

func NewOfferStateRepo(pool *pgxpool.Pool) *OfferStateRepo {
	return &OfferStateRepo{pool: pool}
}

func (r *OfferStateRepo) Load(ctx context.Context) (st *model.OfferState, err error) {
	defer metrics.ObserveStorage("postgres", "load_state", time.Now(), &err)
	const q = `SELECT payload FROM offer_state WHERE id = 1;`
	var payload []byte
	if err := r.pool.QueryRow(ctx, q).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, wrap("load state", err)
	}
	return model.DecodeOfferState(payload)
}

func (r *OfferStateRepo) Save(ctx context.Context, st *model.OfferState) (err error) {
	defer metrics.ObserveStorage("postgres", "save_state", time.Now(), &err)
	b, err := model.EncodeOfferState(st)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO offer_state (id, payload, updated_at) VALUES (1, $1, $2)
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at;`
	if _, err := r.pool.Exec(ctx, q, string(b), st.UpdatedAt); err != nil {
		return wrap("save state", err)
	}
	return nil
}
