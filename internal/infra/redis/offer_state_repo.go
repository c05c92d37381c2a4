package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"

	"github.com/go-redis/redis/v8"
)

var _ repository.OfferStateRepository = (*OfferStateRepo)(nil)

// OfferStateRepo keeps the last-announced state as one JSON string without expiry.
type OfferStateRepo struct {
	client RedisClient
	key    string
}

func NewOfferStateRepo(client RedisClient, key string) *OfferStateRepo {
	return &OfferStateRepo{client: client, key: key}
}

func (r *OfferStateRepo) Load(ctx context.Context) (st *model.OfferState, err error) {
	defer metrics.ObserveStorage("redis", "load_state", time.Now(), &err)
	raw, err := r.client.Get(ctx, r.key)
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return model.DecodeOfferState([]byte(raw))
}

func (r *OfferStateRepo) Save(ctx context.Context, st *model.OfferState) (err error) {
	defer metrics.ObserveStorage("redis", "save_state", time.Now(), &err)
	b, err := model.EncodeOfferState(st)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, b, 0); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}
