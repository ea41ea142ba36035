package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/commerce/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StaleOrderCanceller cancels unpaid orders older than maxAge.
// Implementations return the number of orders cancelled in the pass.
type StaleOrderCanceller interface {
	CancelStaleOrders(ctx context.Context, maxAge time.Duration, batchSize int) (int, error)
}

// AutoCancelSweeper periodically cancels orders that stayed unpaid past
// the configured age. Each pass is independent; cancelled orders are
// terminal, so a pass never picks up work a previous pass completed.
type AutoCancelSweeper struct {
	config    config.AutoCancelConfig
	canceller StaleOrderCanceller
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewAutoCancelSweeper creates a new sweeper
func NewAutoCancelSweeper(cfg config.AutoCancelConfig, canceller StaleOrderCanceller, logger *zap.Logger) *AutoCancelSweeper {
	return &AutoCancelSweeper{
		config:    cfg,
		canceller: canceller,
		logger:    logger,
	}
}

// Start starts the sweep loop. Returns immediately when the sweeper is
// disabled by configuration or already running.
func (s *AutoCancelSweeper) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Auto-cancel sweeper disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Auto-cancel sweeper started",
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Duration("max_unpaid_age", s.config.MaxUnpaidAge),
		zap.Int("batch_size", s.config.BatchSize),
	)

	return nil
}

// Stop stops the sweep loop and waits for an in-flight pass to finish
func (s *AutoCancelSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Auto-cancel sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AutoCancelSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// RunOnce executes a single sweep pass immediately
func (s *AutoCancelSweeper) RunOnce(ctx context.Context) (int, error) {
	return s.canceller.CancelStaleOrders(ctx, s.config.MaxUnpaidAge, s.config.BatchSize)
}

func (s *AutoCancelSweeper) sweep(ctx context.Context) {
	cancelled, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("Auto-cancel sweep failed", zap.Error(err))
		return
	}
	if cancelled > 0 {
		s.logger.Info("Auto-cancel sweep completed",
			zap.Int("cancelled_orders", cancelled),
		)
	}
}
