package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New())}
}

// testHandler records what it receives
type testHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	block      chan struct{}
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	h.handled = append(h.handled, event)
	err, p := h.err, h.panicWith
	h.mu.Unlock()
	if p != nil {
		panic(p)
	}
	return err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func startedBus(t *testing.T, cfg Config) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop(), cfg)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Stop(ctx)
	})
	return bus
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := startedBus(t, Config{Workers: 2})

	catalogHandler := newTestHandler("catalog.version.updated")
	locationHandler := newTestHandler("location.updated")
	wildcard := newTestHandler()
	bus.Subscribe(catalogHandler)
	bus.Subscribe(locationHandler)
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("catalog.version.updated"),
		newTestEvent("location.updated"),
		newTestEvent("location.updated"),
	))

	assert.Eventually(t, func() bool {
		return catalogHandler.count() == 1 && locationHandler.count() == 2 && wildcard.count() == 3
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryEventBus_PublishDoesNotWait(t *testing.T) {
	bus := startedBus(t, Config{Workers: 1})

	handler := newTestHandler("slow")
	handler.block = make(chan struct{})
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("slow")))
	assert.Equal(t, 0, handler.count())

	close(handler.block)
	assert.Eventually(t, func() bool { return handler.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	bus := startedBus(t, Config{Workers: 1})

	failing := newTestHandler("evt")
	failing.err = errors.New("handler error")
	panicking := newTestHandler("evt")
	panicking.panicWith = "boom"
	healthy := newTestHandler("evt")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("evt"), newTestEvent("evt")))

	assert.Eventually(t, func() bool { return healthy.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, failing.count())
	assert.Equal(t, 2, panicking.count())
}

func TestInMemoryEventBus_HandlerSeesLiveContextAfterPublisherCancels(t *testing.T) {
	bus := startedBus(t, Config{Workers: 1})

	var gotErr error
	var mu sync.Mutex
	handler := &ctxHandler{fn: func(ctx context.Context) {
		mu.Lock()
		gotErr = ctx.Err()
		mu.Unlock()
	}}
	bus.Subscribe(handler, "evt")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newTestEvent("evt")))
	cancel()

	assert.Eventually(t, func() bool { return handler.called() }, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.NoError(t, gotErr)
}

type ctxHandler struct {
	mu   sync.Mutex
	done bool
	fn   func(ctx context.Context)
}

func (h *ctxHandler) Handle(ctx context.Context, _ shared.DomainEvent) error {
	h.fn(ctx)
	h.mu.Lock()
	h.done = true
	h.mu.Unlock()
	return nil
}

func (h *ctxHandler) EventTypes() []string { return nil }

func (h *ctxHandler) called() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

func TestInMemoryEventBus_QueueFull(t *testing.T) {
	bus := startedBus(t, Config{Workers: 1, QueueSize: 1})

	handler := newTestHandler("evt")
	handler.block = make(chan struct{})
	defer close(handler.block)
	bus.Subscribe(handler)

	var err error
	for range 5 {
		if err = bus.Publish(context.Background(), newTestEvent("evt")); err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestInMemoryEventBus_Lifecycle(t *testing.T) {
	bus := NewInMemoryEventBus(nil, Config{})
	handler := newTestHandler("evt")
	bus.Subscribe(handler)

	assert.ErrorIs(t, bus.Publish(context.Background(), newTestEvent("evt")), ErrBusNotRunning)

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("evt")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	assert.Equal(t, 1, handler.count(), "stop drains queued events")
	require.NoError(t, bus.Stop(ctx))

	assert.ErrorIs(t, bus.Publish(context.Background(), newTestEvent("evt")), ErrBusNotRunning)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t, Config{Workers: 1})

	handler := newTestHandler("evt")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("evt")))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, handler.count())
}
