package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	catalogapp "github.com/menusync/backend/internal/application/catalog"
	"github.com/menusync/backend/internal/domain/merchant"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/menusync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MerchantLister lists the merchants to resync
type MerchantLister interface {
	ListActive(ctx context.Context) ([]*merchant.Merchant, error)
}

// CatalogSynchronizer runs one full sync for a merchant
type CatalogSynchronizer interface {
	Synchronize(ctx context.Context, merchantID uuid.UUID) (*catalogapp.SyncResult, error)
}

// CatalogSyncSchedulerConfig holds configuration for periodic resync
type CatalogSyncSchedulerConfig struct {
	Interval time.Duration
}

// PassSummary is the outcome of one resync pass over all merchants
type PassSummary struct {
	Merchants  int
	Succeeded  int
	Skipped    int // sync already in progress
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// CatalogSyncScheduler periodically resyncs every active merchant, one at a time
type CatalogSyncScheduler struct {
	config    CatalogSyncSchedulerConfig
	merchants MerchantLister
	syncer    CatalogSynchronizer
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewCatalogSyncScheduler creates a periodic resync scheduler
func NewCatalogSyncScheduler(
	cfg CatalogSyncSchedulerConfig,
	merchants MerchantLister,
	syncer CatalogSynchronizer,
	logger *zap.Logger,
) (*CatalogSyncScheduler, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: sync interval must be positive", ErrInvalidConfig)
	}
	return &CatalogSyncScheduler{
		config:    cfg,
		merchants: merchants,
		syncer:    syncer,
		logger:    logger.Named("catalog_sync_scheduler"),
	}, nil
}

// Start starts the interval loop; starting twice is a no-op
func (s *CatalogSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Catalog sync scheduler started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop cancels the loop and waits for the current pass, bounded by ctx
func (s *CatalogSyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	if err := waitGroupWithContext(ctx, &s.wg); err != nil {
		s.logger.Warn("Catalog sync scheduler stop timed out", zap.Error(err))
		return err
	}
	s.logger.Info("Catalog sync scheduler stopped")
	return nil
}

func (s *CatalogSyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.RunPass(ctx)
		}
	}
}

// RunPass resyncs every active merchant sequentially. A merchant's failure is
// logged and the pass moves on; a cancelled ctx ends the pass early.
func (s *CatalogSyncScheduler) RunPass(ctx context.Context) PassSummary {
	summary := PassSummary{StartedAt: time.Now()}
	ctx = telemetry.WithTrigger(ctx, telemetry.TriggerScheduled)

	merchants, err := s.merchants.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list merchants for scheduled sync", zap.Error(err))
		summary.FinishedAt = time.Now()
		return summary
	}
	summary.Merchants = len(merchants)

	for _, m := range merchants {
		if ctx.Err() != nil {
			break
		}
		switch err := s.syncOne(ctx, m.ID); {
		case err == nil:
			summary.Succeeded++
		case errors.Is(err, shared.ErrSyncInProgress):
			summary.Skipped++
			s.logger.Info("Scheduled sync skipped, sync already in progress",
				zap.String("merchant_id", m.ID.String()))
		default:
			summary.Failed++
			s.logger.Error("Scheduled sync failed",
				zap.String("merchant_id", m.ID.String()),
				zap.Error(err))
		}
	}

	summary.FinishedAt = time.Now()
	s.logger.Info("Scheduled sync pass completed",
		zap.Int("merchants", summary.Merchants),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	return summary
}

func (s *CatalogSyncScheduler) syncOne(ctx context.Context, merchantID uuid.UUID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync panicked: %v", r)
		}
	}()
	_, err = s.syncer.Synchronize(ctx, merchantID)
	return err
}
