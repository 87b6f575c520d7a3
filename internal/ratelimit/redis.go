package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rate_limit:"

// RedisStore keeps one sorted set per key, scored by hit time, so every
// instance of the app shares the same window.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	redisKey := keyPrefix + key
	nowMs := now.UnixMilli()
	cutoff := now.Add(-window).UnixMilli()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowMs), Member: uuid.NewString()})
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.PExpire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	oldest := now
	if z := oldestCmd.Val(); len(z) > 0 {
		oldest = time.UnixMilli(int64(z[0].Score))
	}

	return int(countCmd.Val()), oldest, nil
}
