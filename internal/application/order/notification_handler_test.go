package order

import (
	"context"
	"errors"
	"testing"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingDispatcher struct {
	sent []Notification
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.sent = append(d.sent, n)
	return d.err
}

func TestNotificationHandler_EventTypes(t *testing.T) {
	handler := NewNotificationHandler(&recordingDispatcher{}, zap.NewNop())
	assert.ElementsMatch(t, []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
	}, handler.EventTypes())
}

func TestNotificationHandler_Handle(t *testing.T) {
	t.Run("dispatches on order placed", func(t *testing.T) {
		dispatcher := &recordingDispatcher{}
		handler := NewNotificationHandler(dispatcher, zap.NewNop())

		o, err := order.NewOrder("ORD-2026-00010", uuid.New())
		require.NoError(t, err)
		events := o.GetDomainEvents()
		require.Len(t, events, 1)

		require.NoError(t, handler.Handle(context.Background(), events[0]))
		require.Len(t, dispatcher.sent, 1)
		assert.Equal(t, order.OrderStatusPlaced, dispatcher.sent[0].Status)
		assert.Contains(t, dispatcher.sent[0].Message, "ORD-2026-00010")
	})

	t.Run("dispatches on status change with tracking details", func(t *testing.T) {
		dispatcher := &recordingDispatcher{}
		handler := NewNotificationHandler(dispatcher, zap.NewNop())

		o, err := order.NewOrder("ORD-2026-00011", uuid.New())
		require.NoError(t, err)
		o.ClearDomainEvents()
		require.NoError(t, o.Transition(order.OrderStatusConfirmed, order.TransitionMetadata{}))
		require.NoError(t, o.Transition(order.OrderStatusProcessing, order.TransitionMetadata{}))
		require.NoError(t, o.Transition(order.OrderStatusPacked, order.TransitionMetadata{}))
		o.ClearDomainEvents()
		require.NoError(t, o.Transition(order.OrderStatusShipped, order.TransitionMetadata{
			TrackingNumber: "AWB123",
			CourierService: "BlueDart",
		}))

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		require.NoError(t, handler.Handle(context.Background(), events[0]))

		require.Len(t, dispatcher.sent, 1)
		sent := dispatcher.sent[0]
		assert.Equal(t, order.OrderStatusShipped, sent.Status)
		assert.Equal(t, "AWB123", sent.TrackingNumber)
		assert.Equal(t, "BlueDart", sent.CourierService)
		assert.Contains(t, sent.Message, "shipped")
	})

	t.Run("swallows dispatch failures", func(t *testing.T) {
		dispatcher := &recordingDispatcher{err: errors.New("smtp down")}
		handler := NewNotificationHandler(dispatcher, zap.NewNop())

		o, err := order.NewOrder("ORD-2026-00012", uuid.New())
		require.NoError(t, err)
		events := o.GetDomainEvents()

		assert.NoError(t, handler.Handle(context.Background(), events[0]))
	})

	t.Run("ignores unrelated events", func(t *testing.T) {
		dispatcher := &recordingDispatcher{}
		handler := NewNotificationHandler(dispatcher, zap.NewNop())

		evt := &unrelatedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent("Unrelated", "Other", uuid.New()),
		}
		assert.NoError(t, handler.Handle(context.Background(), evt))
		assert.Empty(t, dispatcher.sent)
	})
}

type unrelatedEvent struct {
	shared.BaseDomainEvent
}
