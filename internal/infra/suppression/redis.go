package suppression

import (
	"context"
	"errors"
	"strconv"
	"time"

	"riskrouter/internal/domain/tickets"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedis returns a Suppressor whose windows live in a shared redis sorted
// set per key, so several intake replicas see one fatigue history. Scores
// are unix milliseconds; reads trim the set to the retention count.
func NewRedis(addr, password string, db int, now func() time.Time) (Suppressor, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	if now == nil {
		now = time.Now
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisStore{client: client, now: now}, nil
}

func (r *redisStore) ShouldSuppress(ctx context.Context, entityID string, alertType tickets.RiskType) (bool, error) {
	now := r.now()
	k := "suppress:" + key(entityID, alertType)
	cutoff := now.Add(-windowSpan).UnixMilli()

	raw, err := r.client.ZRangeByScore(ctx, k, &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return false, err
	}
	recent := make([]time.Time, 0, len(raw))
	for _, member := range raw {
		millis, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		recent = append(recent, time.UnixMilli(millis))
	}
	return decide(recent, now, alertType), nil
}

func (r *redisStore) Record(ctx context.Context, entityID string, alertType tickets.RiskType) error {
	now := r.now()
	k := "suppress:" + key(entityID, alertType)
	member := strconv.FormatInt(now.UnixMilli(), 10)

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	pipe.ZRemRangeByRank(ctx, k, 0, int64(-keepPerKey-1))
	pipe.Expire(ctx, k, windowSpan)
	_, err := pipe.Exec(ctx)
	return err
}
