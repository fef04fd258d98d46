package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/bylanglois/views-api/internal/catalog"
	"go.uber.org/zap"
)

// ErrEmptyKey is returned when an increment or lookup names no post.
var ErrEmptyKey = errors.New("post id must not be empty")

// Service is the view-count façade. Increments go to the in-memory buffer and
// return immediately; reads combine the catalog's stored totals with whatever
// is still pending in the buffer.
type Service struct {
	buffer     *Buffer
	resolver   *catalog.Resolver
	recordType string
	logger     *zap.Logger
}

// NewService creates the façade around a shared buffer and resolver.
func NewService(buffer *Buffer, resolver *catalog.Resolver, recordType string, logger *zap.Logger) *Service {
	if recordType == "" {
		recordType = catalog.DefaultRecordType
	}

	return &Service{
		buffer:     buffer,
		resolver:   resolver,
		recordType: recordType,
		logger:     logger,
	}
}

// Increment records one view for the post. Fire and forget: the call never
// touches the catalog and acceptance says nothing about eventual persistence.
// Returns the pending delta for the key after the add.
func (s *Service) Increment(key string) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	s.buffer.Add(key, 1)

	return s.buffer.Pending(key), nil
}

// Count returns the current total for a post: the stored counter plus any
// pending buffered delta. A post with no record but a pending delta reports
// the pending value; with neither, catalog.ErrNotFound.
func (s *Service) Count(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	pending := s.buffer.Pending(key)

	record, err := s.resolver.FindByField(ctx, s.recordType, catalog.FieldPostID, key)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) && pending > 0 {
			return pending, nil
		}

		return 0, err
	}

	return record.CounterValue() + pending, nil
}

// AllCounts returns totals for every post in one paginated scan, with pending
// buffered deltas folded in. Posts that only exist in the buffer are included
// so a dashboard sees what increment already accepted.
func (s *Service) AllCounts(ctx context.Context) (map[string]int64, error) {
	records, err := s.resolver.ListAll(ctx, s.recordType)
	if err != nil {
		return nil, fmt.Errorf("list counts: %w", err)
	}

	counts := make(map[string]int64, len(records))

	for i := range records {
		key := records[i].Field(catalog.FieldPostID)
		if key == "" {
			s.logger.Warn("record without post id skipped", zap.String("recordId", records[i].ID))

			continue
		}

		if _, seen := counts[key]; seen {
			// Duplicate identifying values violate the catalog's uniqueness
			// assumption; first in page order wins.
			continue
		}

		counts[key] = records[i].CounterValue()
	}

	for key, pending := range s.buffer.Snapshot() {
		counts[key] += pending
	}

	return counts, nil
}
