package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/repository"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"
)

var _ repository.ChatSetRepository = (*ChatSetRepo)(nil)

// ChatSetRepo stores chat IDs in a Redis set. SADD/SREM are atomic, so several
// replicas can share the same set.
type ChatSetRepo struct {
	client RedisClient
	key    string
}

func NewChatSetRepo(client RedisClient, key string) *ChatSetRepo {
	return &ChatSetRepo{client: client, key: key}
}

func (r *ChatSetRepo) Add(ctx context.Context, chatID int64) (added bool, err error) {
	defer metrics.ObserveStorage("redis", "add", time.Now(), &err)
	n, err := r.client.SAdd(ctx, r.key, chatID)
	if err != nil {
		return false, fmt.Errorf("redis sadd %s: %w", r.key, err)
	}
	return n == 1, nil
}

func (r *ChatSetRepo) Remove(ctx context.Context, chatID int64) (removed bool, err error) {
	defer metrics.ObserveStorage("redis", "remove", time.Now(), &err)
	n, err := r.client.SRem(ctx, r.key, chatID)
	if err != nil {
		return false, fmt.Errorf("redis srem %s: %w", r.key, err)
	}
	return n == 1, nil
}

func (r *ChatSetRepo) Contains(ctx context.Context, chatID int64) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.key, chatID)
	if err != nil {
		return false, fmt.Errorf("redis sismember %s: %w", r.key, err)
	}
	return ok, nil
}

func (r *ChatSetRepo) List(ctx context.Context) (ids []int64, err error) {
	defer metrics.ObserveStorage("redis", "list", time.Now(), &err)
	members, err := r.client.SMembers(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("redis smembers %s: %w", r.key, err)
	}
	ids = make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis set %s holds non-numeric member %q: %w", r.key, m, err)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *ChatSetRepo) Count(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, r.key)
	if err != nil {
		return 0, fmt.Errorf("redis scard %s: %w", r.key, err)
	}
	return int(n), nil
}
