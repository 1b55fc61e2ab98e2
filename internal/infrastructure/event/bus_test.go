package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	appstock "github.com/resto/backend/internal/application/stock"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	mu       sync.Mutex
	types    []string
	received []shared.DomainEvent
	fail     error
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.mu.Lock()
	h.received = append(h.received, event)
	h.mu.Unlock()
	return h.fail
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Order", uuid.New())
	return &e
}

func TestInMemoryEventBusPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	opened := &recordingHandler{types: []string{"order.opened"}}
	cancelled := &recordingHandler{types: []string{"order.cancelled"}}
	bus.Subscribe(opened)
	bus.Subscribe(cancelled)

	require.NoError(t, bus.Publish(ctx, newTestEvent("order.opened")))
	require.NoError(t, bus.Publish(ctx, newTestEvent("order.opened"), newTestEvent("order.cancelled")))

	assert.Equal(t, 2, opened.count())
	assert.Equal(t, 1, cancelled.count())
}

func TestInMemoryEventBusWildcard(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	all := &recordingHandler{}
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("order.opened"),
		newTestEvent("stock.allocated"),
		newTestEvent("payment.registered"),
	))

	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBusHandlerFailureDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"order.opened"}, fail: errors.New("downstream unavailable")}
	healthy := &recordingHandler{types: []string{"order.opened"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.opened")))

	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBusRecoversFromPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &recordingHandler{types: []string{"order.opened"}, panics: true}
	healthy := &recordingHandler{types: []string{"order.opened"}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("order.opened"))
	})
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBusUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := &recordingHandler{types: []string{"order.opened"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.opened")))
	assert.Equal(t, 0, handler.count())
}

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()

	typed := &recordingHandler{types: []string{"order.opened"}}
	wildcard := &recordingHandler{}
	registry.Register(typed, "order.opened")
	registry.Register(wildcard)

	assert.Len(t, registry.GetHandlers("order.opened"), 2)
	assert.Len(t, registry.GetHandlers("order.cancelled"), 1)

	registry.Unregister(typed)
	assert.Len(t, registry.GetHandlers("order.opened"), 1)
}

type productCacheStub struct {
	mu          sync.Mutex
	invalidated []uuid.UUID
}

func (c *productCacheStub) GetProductChain(_ context.Context, _ uuid.UUID) ([]appstock.AssignmentResponse, bool) {
	return nil, false
}

func (c *productCacheStub) SetProductChain(_ context.Context, _ uuid.UUID, _ []appstock.AssignmentResponse) {
}

func (c *productCacheStub) InvalidateProduct(_ context.Context, productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, productID)
}

func TestInMemoryEventBusDeliversAllocationToCacheHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	cache := &productCacheStub{}
	bus.Subscribe(appstock.NewCacheInvalidationHandler(cache, zap.NewNop()))

	productID := uuid.New()
	plan := []stock.PlannedDeduction{
		{AssignmentID: uuid.New(), StationID: uuid.New(), Quantity: decimal.NewFromInt(2)},
	}
	ledger := stock.NewAllocationLedger(uuid.New(), uuid.New(), productID, decimal.NewFromInt(2), plan)

	require.NoError(t, bus.Publish(ctx, stock.NewStockAllocatedEvent(ledger)))

	require.Len(t, cache.invalidated, 1)
	assert.Equal(t, productID, cache.invalidated[0])

	require.NoError(t, bus.Publish(ctx, stock.NewStockReversedEvent(ledger)))
	require.Len(t, cache.invalidated, 2)
}
