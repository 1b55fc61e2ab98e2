package ordering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderEventsCarryAggregateIdentity(t *testing.T) {
	order := newTestOrder(t)
	item := addTestItem(t, order, "Espresso", 2, "3.50")

	tests := []struct {
		name  string
		event interface {
			EventID() uuid.UUID
			EventType() string
			AggregateID() uuid.UUID
			AggregateType() string
		}
		eventType string
	}{
		{"opened", NewOrderOpenedEvent(order), EventOrderOpened},
		{"item added", NewOrderItemAddedEvent(order, item), EventOrderItemAdded},
		{"sent to kitchen", NewOrderSentToKitchenEvent(order), EventOrderSentToKitchen},
		{"bill requested", NewOrderBillRequestedEvent(order), EventOrderBillRequested},
		{"completed", NewOrderCompletedEvent(order), EventOrderCompleted},
		{"cancelled", NewOrderCancelledEvent(order, "customer left"), EventOrderCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotEqual(t, uuid.Nil, tt.event.EventID())
			assert.Equal(t, tt.eventType, tt.event.EventType())
			assert.Equal(t, order.ID, tt.event.AggregateID())
			assert.Equal(t, "Order", tt.event.AggregateType())
		})
	}
}
