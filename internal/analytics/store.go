package analytics

import "context"

// Store persists analytics events.
type Store interface {
	SaveViewRecorded(ctx context.Context, event *ViewRecordedEvent) error
	SaveFlushCompleted(ctx context.Context, event *FlushCompletedEvent) error
}
