package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/bylanglois/views-api/internal/analytics"
	"github.com/bylanglois/views-api/internal/analytics/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNoop_SaveViewRecorded(t *testing.T) {
	noop := store.NewNoop(zap.NewNop())

	err := noop.SaveViewRecorded(context.Background(), &analytics.ViewRecordedEvent{
		PostID:     "post-1",
		RecordedAt: time.Now(),
		ClientIP:   "127.0.0.1",
		UserAgent:  "TestAgent/1.0",
	})

	require.NoError(t, err)
}

func TestNoop_SaveFlushCompleted(t *testing.T) {
	noop := store.NewNoop(zap.NewNop())

	err := noop.SaveFlushCompleted(context.Background(), &analytics.FlushCompletedEvent{
		CycleID:     "cycle-1",
		Processed:   3,
		Skipped:     1,
		DurationMS:  120,
		CompletedAt: time.Now(),
	})

	require.NoError(t, err)
}
