package analytics

import "time"

// Topics for the analytics event stream.
const (
	TopicViewRecorded   = "view.recorded"
	TopicFlushCompleted = "flush.completed"
)

// ViewRecordedEvent is emitted for every accepted increment, before the view
// reaches the catalog.
type ViewRecordedEvent struct {
	PostID     string    `json:"postId"`
	RecordedAt time.Time `json:"recordedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
}

// FlushCompletedEvent is emitted after each flush cycle that had work to do,
// successful or not.
type FlushCompletedEvent struct {
	CycleID     string    `json:"cycleId"`
	Processed   int       `json:"processed"`
	Skipped     int       `json:"skipped"`
	Errors      int       `json:"errors"`
	DurationMS  int64     `json:"durationMs"`
	CompletedAt time.Time `json:"completedAt"`
}
