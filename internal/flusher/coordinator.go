// Package flusher drains the aggregation buffer and persists the coalesced
// deltas to the backing catalog in one batch round trip per cycle.
package flusher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bylanglois/views-api/internal/analytics"
	"github.com/bylanglois/views-api/internal/catalog"
	"github.com/bylanglois/views-api/internal/messaging"
	"github.com/bylanglois/views-api/internal/views"
	"github.com/jaevor/go-nanoid"
	"go.uber.org/zap"
)

// ErrFlushInProgress is returned when a flush is triggered while a previous
// cycle is still running. Two concurrent drains over the same buffer would
// not compose, so the second trigger is rejected rather than queued.
var ErrFlushInProgress = errors.New("flush already in progress")

// Result summarizes one flush cycle.
type Result struct {
	CycleID   string
	Processed int
	Skipped   int
	Errors    int
}

// Coordinator runs the drain → resolve → merge → submit cycle. Delivery from
// buffer to catalog is at most once: a transport failure drops the drained
// snapshot, bounding the loss to one flush interval's worth of increments on
// a catalog outage.
type Coordinator struct {
	buffer     *views.Buffer
	resolver   *catalog.Resolver
	client     catalog.Client
	recordType string
	publish    messaging.Publish[analytics.FlushCompletedEvent]
	logger     *zap.Logger
	newCycleID func() string
	running    atomic.Bool
}

// NewCoordinator wires a coordinator to the shared buffer and catalog.
// publish may be nil when no analytics pipeline is configured.
func NewCoordinator(
	buffer *views.Buffer,
	resolver *catalog.Resolver,
	client catalog.Client,
	recordType string,
	publish messaging.Publish[analytics.FlushCompletedEvent],
	logger *zap.Logger,
) *Coordinator {
	if recordType == "" {
		recordType = catalog.DefaultRecordType
	}

	gen, err := nanoid.Standard(12)
	if err != nil {
		// Only reachable with an invalid length constant.
		panic(err)
	}

	return &Coordinator{
		buffer:     buffer,
		resolver:   resolver,
		client:     client,
		recordType: recordType,
		publish:    publish,
		logger:     logger,
		newCycleID: gen,
	}
}

// Flush runs one cycle. Concurrent triggers get ErrFlushInProgress while a
// cycle holds the guard; the buffer is never drained twice for overlapping
// cycles. A transport-level failure aborts the cycle and the drained snapshot
// is lost.
func (c *Coordinator) Flush(ctx context.Context) (*Result, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrFlushInProgress
	}
	defer c.running.Store(false)

	start := time.Now()
	result := &Result{CycleID: c.newCycleID()}
	log := c.logger.With(zap.String("cycleId", result.CycleID))

	batch := c.buffer.Drain()
	if len(batch) == 0 {
		log.Debug("nothing to flush")

		return result, nil
	}

	records, err := c.resolver.ListAll(ctx, c.recordType)
	if err != nil {
		log.Error("record listing failed, batch dropped",
			zap.Int("keys", len(batch)),
			zap.Error(err),
		)

		return nil, fmt.Errorf("resolve batch: %w", err)
	}

	updates := c.merge(batch, records, result, log)
	if len(updates) == 0 {
		c.report(result, start, log)

		return result, nil
	}

	outcomes, err := c.client.UpdateRecords(ctx, updates)
	if err != nil {
		log.Error("batch update failed, batch dropped",
			zap.Int("updates", len(updates)),
			zap.Error(err),
		)

		return nil, fmt.Errorf("submit batch: %w", err)
	}

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			result.Errors++

			log.Warn("update sub-operation failed",
				zap.String("recordId", outcome.ID),
				zap.Error(outcome.Err),
			)

			continue
		}

		result.Processed++
	}

	c.report(result, start, log)

	return result, nil
}

// merge resolves each drained key against the listed records and computes the
// new totals. Keys with no matching record are dropped: re-queuing them would
// need the persistent buffering this design deliberately omits.
func (c *Coordinator) merge(
	batch map[string]int64,
	records []catalog.Record,
	result *Result,
	log *zap.Logger,
) []catalog.Update {
	index := make(map[string]*catalog.Record, len(records))

	for i := range records {
		key := records[i].Field(catalog.FieldPostID)
		if key == "" {
			continue
		}

		// First record in page order wins on duplicate post ids.
		if _, ok := index[key]; !ok {
			index[key] = &records[i]
		}
	}

	updates := make([]catalog.Update, 0, len(batch))

	for key, delta := range batch {
		record, ok := index[key]
		if !ok {
			result.Skipped++

			log.Warn("no record for buffered key, delta dropped",
				zap.String("postId", key),
				zap.Int64("delta", delta),
			)

			continue
		}

		fields := make(map[string]string, len(record.Fields))
		for k, v := range record.Fields {
			fields[k] = v
		}

		fields[catalog.FieldViewCount] = catalog.FormatCount(record.CounterValue() + delta)

		updates = append(updates, catalog.Update{ID: record.ID, Fields: fields})
	}

	return updates
}

func (c *Coordinator) report(result *Result, start time.Time, log *zap.Logger) {
	duration := time.Since(start)

	log.Info("flush cycle completed",
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
		zap.Duration("duration", duration),
	)

	if c.publish == nil {
		return
	}

	event := &analytics.FlushCompletedEvent{
		CycleID:     result.CycleID,
		Processed:   result.Processed,
		Skipped:     result.Skipped,
		Errors:      result.Errors,
		DurationMS:  duration.Milliseconds(),
		CompletedAt: time.Now(),
	}

	if err := c.publish(event); err != nil {
		log.Error("failed to publish flush event", zap.Error(err))
	}
}
