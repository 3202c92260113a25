package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DailyTriggerConfig holds configuration for a once-a-day trigger
type DailyTriggerConfig struct {
	// Hour and Minute are the local wall-clock time to fire (24h)
	Hour   int
	Minute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// Validate checks the configured time of day
func (c DailyTriggerConfig) Validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("%w: hour %d out of range", ErrInvalidConfig, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: minute %d out of range", ErrInvalidConfig, c.Minute)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// dailyTrigger calls run once per calendar day when the clock reaches hour:minute
type dailyTrigger struct {
	name   string
	config DailyTriggerConfig
	run    func(ctx context.Context)
	now    func() time.Time
	logger *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string // date we last fired for
}

func newDailyTrigger(name string, cfg DailyTriggerConfig, run func(ctx context.Context), logger *zap.Logger) *dailyTrigger {
	return &dailyTrigger{
		name:   name,
		config: cfg,
		run:    run,
		now:    time.Now,
		logger: logger,
	}
}

func (d *dailyTrigger) start(ctx context.Context) {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return
	}
	d.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go d.runLoop(ctx)

	d.logger.Info("Daily trigger started",
		zap.String("trigger", d.name),
		zap.Int("hour", d.config.Hour),
		zap.Int("minute", d.config.Minute),
		zap.Duration("check_interval", d.config.CheckInterval),
	)
}

func (d *dailyTrigger) stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	cancel := d.cancel
	d.mu.Unlock()

	cancel()
	return waitGroupWithContext(ctx, &d.wg)
}

func (d *dailyTrigger) running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isRunning
}

func (d *dailyTrigger) runLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger fires when the current minute matches and today has not fired yet.
// It reports whether it fired.
func (d *dailyTrigger) checkAndTrigger(ctx context.Context) bool {
	now := d.now()
	if now.Hour() != d.config.Hour || now.Minute() != d.config.Minute {
		return false
	}

	currentDate := now.Format("2006-01-02")
	d.mu.Lock()
	if d.lastRunDate == currentDate {
		d.mu.Unlock()
		return false
	}
	d.lastRunDate = currentDate
	d.mu.Unlock()

	d.logger.Info("Daily trigger fired", zap.String("trigger", d.name), zap.String("date", currentDate))
	d.run(ctx)
	return true
}

// waitGroupWithContext waits for wg or gives up when ctx ends
func waitGroupWithContext(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
