package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/shared"
)

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	h.events = append(h.events, evt)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) received() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func newStatusChangedEvent() shared.DomainEvent {
	o, _ := order.NewOrder("ORD-1", uuid.New())
	return order.NewOrderStatusChangedEvent(o, order.OrderStatusPlaced, order.OrderStatusConfirmed, "confirmed")
}

func TestInMemoryEventBus_PublishToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{order.EventTypeOrderStatusChanged}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newStatusChangedEvent())
	require.NoError(t, err)
	assert.Equal(t, 1, handler.received())
}

func TestInMemoryEventBus_TypeFiltering(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	statusHandler := &recordingHandler{types: []string{order.EventTypeOrderStatusChanged}}
	placedHandler := &recordingHandler{types: []string{order.EventTypeOrderPlaced}}
	wildcardHandler := &recordingHandler{}

	bus.Subscribe(statusHandler)
	bus.Subscribe(placedHandler)
	bus.Subscribe(wildcardHandler)

	err := bus.Publish(context.Background(), newStatusChangedEvent())
	require.NoError(t, err)

	assert.Equal(t, 1, statusHandler.received())
	assert.Equal(t, 0, placedHandler.received())
	assert.Equal(t, 1, wildcardHandler.received())
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{
		types: []string{order.EventTypeOrderStatusChanged},
		err:   errors.New("send failed"),
	}
	healthy := &recordingHandler{types: []string{order.EventTypeOrderStatusChanged}}

	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newStatusChangedEvent())
	require.NoError(t, err)
	assert.Equal(t, 1, healthy.received())
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &recordingHandler{
		types:  []string{order.EventTypeOrderStatusChanged},
		panics: true,
	}
	healthy := &recordingHandler{types: []string{order.EventTypeOrderStatusChanged}}

	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newStatusChangedEvent())
	})
	assert.Equal(t, 1, healthy.received())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{order.EventTypeOrderStatusChanged}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newStatusChangedEvent())
	require.NoError(t, err)
	assert.Equal(t, 0, handler.received())
}

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	inner := &recordingHandler{types: []string{order.EventTypeOrderStatusChanged}}
	store := newFakeStore()
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	evt := newStatusChangedEvent()

	require.NoError(t, handler.Handle(context.Background(), evt))
	require.NoError(t, handler.Handle(context.Background(), evt))

	assert.Equal(t, 1, inner.received())
}

func TestIdempotentHandler_StoreErrorSurfaces(t *testing.T) {
	inner := &recordingHandler{types: []string{order.EventTypeOrderStatusChanged}}
	store := newFakeStore()
	store.err = errors.New("redis down")
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	err := handler.Handle(context.Background(), newStatusChangedEvent())
	require.Error(t, err)
	assert.Equal(t, 0, inner.received())
}

type fakeStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{seen: make(map[string]bool)}
}

func (s *fakeStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[key], s.err
}

func (s *fakeStore) Close() error { return nil }
