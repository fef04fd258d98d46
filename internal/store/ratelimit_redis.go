package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRedis implements ratelimit.Store on a Redis sorted set per key,
// scored by request time, so counts survive restarts and are shared between
// replicas.
type RateLimitRedis struct {
	client *redis.Client
	prefix string
}

// NewRateLimitRedis creates a Redis-backed rate limit store.
func NewRateLimitRedis(client *redis.Client) *RateLimitRedis {
	return &RateLimitRedis{
		client: client,
		prefix: "ratelimit:",
	}
}

func (s *RateLimitRedis) Record(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	cutoff := now.Add(-window).UnixNano()
	redisKey := s.prefix + key

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	count := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return count.Val(), nil
}
