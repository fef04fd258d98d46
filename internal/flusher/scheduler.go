package flusher

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Scheduler triggers a flush cycle on a fixed interval. It is one of the two
// flush triggers (the other is the HTTP endpoint); both go through the
// coordinator's guard, so overlapping triggers are harmless.
type Scheduler struct {
	coordinator *Coordinator
	interval    time.Duration
	logger      *zap.Logger
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewScheduler creates a scheduler ticking at the given interval.
func NewScheduler(coordinator *Coordinator, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		coordinator: coordinator,
		interval:    interval,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Start begins ticking in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	go s.run(ctx)

	s.logger.Info("flush scheduler started", zap.Duration("interval", s.interval))

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

func (s *Scheduler) flush(ctx context.Context) {
	result, err := s.coordinator.Flush(ctx)
	if err != nil {
		if errors.Is(err, ErrFlushInProgress) {
			s.logger.Debug("previous flush still running, tick skipped")

			return
		}

		// The lost batch is gone; the next tick flushes whatever has
		// accumulated since.
		s.logger.Error("scheduled flush failed", zap.Error(err))

		return
	}

	if result.Processed+result.Skipped+result.Errors > 0 {
		s.logger.Info("scheduled flush done",
			zap.String("cycleId", result.CycleID),
			zap.Int("processed", result.Processed),
			zap.Int("skipped", result.Skipped),
			zap.Int("errors", result.Errors),
		)
	}
}

// Shutdown stops the ticker and waits for an in-flight tick to finish.
func (s *Scheduler) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}

	<-s.done

	return nil
}
