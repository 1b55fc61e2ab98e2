package event

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/infrastructure/logger"
)

// InMemoryEventBus implements shared.EventBus with in-process pub/sub.
// Application services publish after their transaction commits and the
// bus dispatches synchronously to every registered handler. A failing
// or panicking handler is logged and never blocks the publisher or the
// remaining handlers.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	log      *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		log:      log,
	}
}

// Publish dispatches events to all registered handlers. Dispatch logs
// ride on the publisher's context so handler failures correlate back
// to the originating request and trace.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	log := logger.WithLogger(ctx, b.log)

	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				log.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. With no explicit event types the
// handler's own EventTypes subscription is used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.log.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.log.Debug("handler unsubscribed")
}

// Start is a lifecycle marker; dispatch needs no background workers
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.log.Info("event bus started")
	return nil
}

// Stop is a lifecycle marker. Dispatch is synchronous, so once the
// publishers have returned no handler is still running.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.log.Info("event bus stopped")
	return nil
}

// dispatch invokes one handler, converting a panic into an error
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
