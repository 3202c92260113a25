package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	merchantapp "github.com/menusync/backend/internal/application/merchant"
	"go.uber.org/zap"
)

// TokenRefresher refreshes every credential about to expire
type TokenRefresher interface {
	RefreshExpiring(ctx context.Context, now time.Time) (*merchantapp.RefreshReport, error)
}

// TokenRefreshScheduler runs the token refresh pass once a day
type TokenRefreshScheduler struct {
	refresher TokenRefresher
	trigger   *dailyTrigger
	logger    *zap.Logger

	passMu sync.Mutex // one pass at a time, scheduled or manual
}

// NewTokenRefreshScheduler creates a scheduler firing at cfg.Hour:cfg.Minute
func NewTokenRefreshScheduler(cfg DailyTriggerConfig, refresher TokenRefresher, logger *zap.Logger) (*TokenRefreshScheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &TokenRefreshScheduler{
		refresher: refresher,
		logger:    logger.Named("token_refresh_scheduler"),
	}
	s.trigger = newDailyTrigger("token_refresh", cfg, func(ctx context.Context) {
		_, _ = s.runPass(ctx)
	}, s.logger)
	return s, nil
}

// Start starts the daily trigger; starting twice is a no-op
func (s *TokenRefreshScheduler) Start(ctx context.Context) error {
	s.trigger.start(ctx)
	return nil
}

// Stop cancels the trigger and waits for an in-flight pass, bounded by ctx
func (s *TokenRefreshScheduler) Stop(ctx context.Context) error {
	if err := s.trigger.stop(ctx); err != nil {
		s.logger.Warn("Token refresh scheduler stop timed out", zap.Error(err))
		return err
	}
	s.logger.Info("Token refresh scheduler stopped")
	return nil
}

// RunNow runs a pass immediately outside the daily schedule
func (s *TokenRefreshScheduler) RunNow(ctx context.Context) (*merchantapp.RefreshReport, error) {
	if !s.trigger.running() {
		return nil, ErrSchedulerNotRunning
	}
	return s.runPass(ctx)
}

func (s *TokenRefreshScheduler) runPass(ctx context.Context) (report *merchantapp.RefreshReport, err error) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("token refresh pass panicked: %v", r)
			s.logger.Error("Token refresh pass panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	start := time.Now()
	report, err = s.refresher.RefreshExpiring(ctx, s.trigger.now())
	if err != nil {
		s.logger.Error("Token refresh pass failed", zap.Error(err))
		return nil, err
	}

	for _, f := range report.Failures {
		s.logger.Warn("Token refresh failed for merchant",
			zap.String("merchant_id", f.MerchantID.String()),
			zap.Error(f.Err),
		)
	}
	s.logger.Info("Token refresh pass completed",
		zap.Int("checked", report.Checked),
		zap.Int("refreshed", report.Refreshed),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}
