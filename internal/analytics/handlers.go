package analytics

import (
	"context"

	"github.com/bylanglois/views-api/internal/messaging"
)

// NewViewRecordedHandler persists view events through the store.
func NewViewRecordedHandler(store Store) messaging.Handler[ViewRecordedEvent] {
	return func(ctx context.Context, event *ViewRecordedEvent) error {
		return store.SaveViewRecorded(ctx, event)
	}
}

// NewFlushCompletedHandler persists flush outcomes through the store.
func NewFlushCompletedHandler(store Store) messaging.Handler[FlushCompletedEvent] {
	return func(ctx context.Context, event *FlushCompletedEvent) error {
		return store.SaveFlushCompleted(ctx, event)
	}
}
