package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"
)

var _ repository.OfferStateRepository = (*OfferStateRepo)(nil)

type OfferStateRepo struct {
	db *sql.DB
}

func NewOfferStateRepo(db *sql.DB) *OfferStateRepo {
	return &OfferStateRepo{db: db}
}

func (r *OfferStateRepo) Load(ctx context.Context) (st *model.OfferState, err error) {
	defer metrics.ObserveStorage("sqlite", "load_state", time.Now(), &err)
	var payload string
	err = r.db.QueryRowContext(ctx, `SELECT payload FROM offer_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite load state: %w", err)
	}
	return model.DecodeOfferState([]byte(payload))
}

func (r *OfferStateRepo) Save(ctx context.Context, st *model.OfferState) (err error) {
	defer metrics.ObserveStorage("sqlite", "save_state", time.Now(), &err)
	b, err := model.EncodeOfferState(st)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO offer_state(id, payload, updated_at) VALUES(1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(b), st.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("sqlite save state: %w", err)
	}
	return nil
}
