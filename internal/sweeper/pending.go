package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/apflow/invoice-pipeline/internal/adapter"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/messaging"
	"github.com/apflow/invoice-pipeline/internal/store"
)

// PendingSweeperConfig holds configuration for the pending-request sweeper
type PendingSweeperConfig struct {
	Interval       time.Duration // Time to sleep between sweep cycles
	OlderThan      time.Duration // Only re-announce requests stuck longer than this
	BatchSize      int           // Requests to re-announce per cycle
	WorkerPoolSize int           // Concurrent publishers
}

// pendingSweeper re-announces requests that are still PENDING long after
// ingestion. This closes the gap left by an ingest-time publish failure:
// the row is durable but no document-ingested event ever reached the
// broker, so no worker will pick the request up. Re-publishing is safe
// because every downstream stage is idempotent.
type pendingSweeper struct {
	config    *PendingSweeperConfig
	store     store.Store
	publisher messaging.Publisher
	pool      pond.Pool
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewPendingSweeper creates a new pending-request sweeper
func NewPendingSweeper(
	config *PendingSweeperConfig,
	st store.Store,
	publisher messaging.Publisher,
	clock adapter.Clock,
) Sweeper {
	return &pendingSweeper{
		config:    config,
		store:     st,
		publisher: publisher,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *pendingSweeper) Name() string {
	return "pending-request-sweeper"
}

// Start begins the sweeper's main loop
func (s *pendingSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting pending-request sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("older_than", s.config.OlderThan),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
	)

	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Pending-request sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			s.cleanup()
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Pending-request sweeper stop requested")
			s.cleanup()
			return nil
		default:
			if err := s.runSweepCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

// cleanup stops the worker pool and waits for tasks to complete
func (s *pendingSweeper) cleanup() {
	if s.pool != nil {
		s.pool.StopAndWait()
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *pendingSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping pending-request sweeper")

	close(s.stopChan)

	// Wait for main loop to exit, but respect context cancellation
	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Pending-request sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Pending-request sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle runs a single sweep cycle
func (s *pendingSweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()
	cutoff := startTime.Add(-s.config.OlderThan)

	requests, err := s.store.ListPendingOlderThan(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list stuck requests: %w", err)
	}

	if len(requests) == 0 {
		if !s.sleep(ctx, s.config.Interval) {
			return ctx.Err() // Context canceled during sleep
		}
		return nil
	}

	logger.InfoCtx(ctx, "Found stuck pending requests", zap.Int("count", len(requests)))

	var republished, failed atomic.Int32
	for _, req := range requests {
		s.pool.Submit(func() {
			event := &domain.DocumentIngestedEvent{
				EventID:   ulid.Make().String(),
				RequestID: req.RequestID,
				BlobKey:   req.BlobKey,
			}
			if err := s.publisher.PublishDocumentIngested(ctx, event); err != nil {
				logger.ErrorCtx(ctx, err,
					zap.String("message", "Failed to re-announce pending request"),
					zap.String("requestID", req.RequestID))
				failed.Add(1)
				return
			}
			republished.Add(1)
		})
	}

	// Wait for all publishes to complete, then recreate the pool for the
	// next cycle
	s.pool.StopAndWait()
	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	logger.InfoCtx(ctx, "Sweep cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("total", len(requests)),
		zap.Int32("republished", republished.Load()),
		zap.Int32("failed", failed.Load()),
	)

	if !s.sleep(ctx, s.config.Interval) {
		return ctx.Err() // Context canceled during sleep
	}

	return nil
}

// sleep sleeps for the given duration but can be interrupted by context cancellation
// Returns true if sleep completed normally, false if interrupted by context
func (s *pendingSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true // Sleep completed
	case <-ctx.Done():
		return false // Interrupted by context cancellation
	}
}
