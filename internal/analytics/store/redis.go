package store

import (
	"context"

	"github.com/bylanglois/views-api/internal/analytics"
	"github.com/redis/go-redis/v9"
)

const (
	dailyViewsPrefix  = "analytics:views:"
	flushOutcomeKey   = "analytics:flushes"
	flushStreamMaxLen = 1000
)

// Redis persists analytics in Redis: per-day view tallies in hashes and a
// capped stream of flush outcomes.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed analytics store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) SaveViewRecorded(ctx context.Context, event *analytics.ViewRecordedEvent) error {
	day := event.RecordedAt.UTC().Format("2006-01-02")

	return r.client.HIncrBy(ctx, dailyViewsPrefix+day, event.PostID, 1).Err()
}

func (r *Redis) SaveFlushCompleted(ctx context.Context, event *analytics.FlushCompletedEvent) error {
	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: flushOutcomeKey,
		MaxLen: flushStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"cycleId":    event.CycleID,
			"processed":  event.Processed,
			"skipped":    event.Skipped,
			"errors":     event.Errors,
			"durationMs": event.DurationMS,
		},
	}).Err()
}

var _ analytics.Store = (*Redis)(nil)
