package store

import (
	"context"

	"github.com/bylanglois/views-api/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveViewRecorded(_ context.Context, event *analytics.ViewRecordedEvent) error {
	n.logger.Info("view recorded event received",
		zap.String("postId", event.PostID),
		zap.Time("recordedAt", event.RecordedAt),
		zap.String("clientIp", event.ClientIP),
	)

	return nil
}

func (n *Noop) SaveFlushCompleted(_ context.Context, event *analytics.FlushCompletedEvent) error {
	n.logger.Info("flush completed event received",
		zap.String("cycleId", event.CycleID),
		zap.Int("processed", event.Processed),
		zap.Int("skipped", event.Skipped),
		zap.Int("errors", event.Errors),
		zap.Int64("durationMs", event.DurationMS),
	)

	return nil
}

var _ analytics.Store = (*Noop)(nil)
