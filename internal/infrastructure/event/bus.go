package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/menusync/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	// ErrBusNotRunning is returned by Publish before Start or after Stop
	ErrBusNotRunning = errors.New("event: bus is not running")
	// ErrQueueFull is returned by Publish when the dispatch queue has no room
	ErrQueueFull = errors.New("event: dispatch queue is full")
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

// Config sizes the dispatch worker pool
type Config struct {
	Workers   int
	QueueSize int
}

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus delivers events to subscribers on a pool of worker goroutines.
// Publish only enqueues; handler errors and panics are logged and never reach the publisher.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	cfg      Config

	mu      sync.RWMutex
	queue   chan envelope
	running bool
	wg      sync.WaitGroup
}

// NewInMemoryEventBus creates a stopped bus
func NewInMemoryEventBus(logger *zap.Logger, cfg Config) *InMemoryEventBus {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		cfg:      cfg,
	}
}

// Publish enqueues events for asynchronous delivery.
// Events with no subscriber are dropped. The first event that cannot be enqueued
// stops the call and its error is returned.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running {
		return ErrBusNotRunning
	}
	// handlers outlive the publishing request
	detached := context.WithoutCancel(ctx)
	for _, event := range events {
		if !b.registry.HasHandlers(event.EventType()) {
			b.logger.Debug("no handler for event", zap.String("event_type", event.EventType()))
			continue
		}
		select {
		case b.queue <- envelope{ctx: detached, event: event}:
		default:
			return fmt.Errorf("%w: dropping %s %s", ErrQueueFull, event.EventType(), event.EventID())
		}
	}
	return nil
}

// Subscribe registers a handler; without explicit types the handler's own EventTypes are used
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start launches the workers
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}
	b.queue = make(chan envelope, b.cfg.QueueSize)
	b.running = true
	for i := range b.cfg.Workers {
		b.wg.Add(1)
		go b.worker(i, b.queue)
	}
	b.logger.Info("event bus started", zap.Int("workers", b.cfg.Workers), zap.Int("queue_size", b.cfg.QueueSize))
	return nil
}

// Stop closes the queue and waits for queued events to be delivered or ctx to end
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stop timed out with events still in flight")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) worker(id int, queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		for _, handler := range b.registry.GetHandlers(env.event.EventType()) {
			if err := b.dispatchToHandler(env.ctx, handler, env.event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.Int("worker", id),
					zap.String("event_type", env.event.EventType()),
					zap.String("event_id", env.event.EventID().String()),
					zap.String("merchant_id", env.event.MerchantID().String()),
					zap.Error(err),
				)
			}
		}
	}
}

// dispatchToHandler runs one handler and turns a panic into an error
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
