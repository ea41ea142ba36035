package order

import (
	"context"
	"fmt"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// statusMessages maps each status to the customer-facing message template
var statusMessages = map[order.OrderStatus]string{
	order.OrderStatusPlaced:         "Your order %s has been placed.",
	order.OrderStatusConfirmed:      "Your order %s has been confirmed.",
	order.OrderStatusProcessing:     "Your order %s is being processed.",
	order.OrderStatusPacked:         "Your order %s has been packed.",
	order.OrderStatusShipped:        "Your order %s has been shipped.",
	order.OrderStatusOutForDelivery: "Your order %s is out for delivery.",
	order.OrderStatusDelivered:      "Your order %s has been delivered.",
	order.OrderStatusCancelled:      "Your order %s has been cancelled.",
	order.OrderStatusReturned:       "Your order %s return has been registered.",
	order.OrderStatusRefunded:       "Your order %s has been refunded.",
}

// NotificationHandler dispatches customer notifications for order events.
// It subscribes to the event bus after the transition committed, so the
// state machine itself carries no notification dependency. Dispatch
// failures are logged and swallowed.
type NotificationHandler struct {
	dispatcher NotificationDispatcher
	logger     *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(dispatcher NotificationDispatcher, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
	}
}

// Handle processes an order event by dispatching the matching notification
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var n Notification

	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		n = Notification{
			OrderID:     e.OrderID,
			OrderNumber: e.OrderNumber,
			CustomerID:  e.CustomerID,
			Status:      order.OrderStatusPlaced,
			Message:     fmt.Sprintf(statusMessages[order.OrderStatusPlaced], e.OrderNumber),
		}
	case *order.OrderStatusChangedEvent:
		n = Notification{
			OrderID:        e.OrderID,
			OrderNumber:    e.OrderNumber,
			CustomerID:     e.CustomerID,
			Status:         e.ToStatus,
			Message:        fmt.Sprintf(statusMessages[e.ToStatus], e.OrderNumber),
			TrackingNumber: e.TrackingNumber,
			CourierService: e.CourierService,
		}
	default:
		return nil
	}

	if err := h.dispatcher.Dispatch(ctx, n); err != nil {
		h.logger.Error("Failed to dispatch order notification",
			zap.String("order_number", n.OrderNumber),
			zap.String("status", n.Status.String()),
			zap.Error(err),
		)
	}

	return nil
}

// LogNotificationDispatcher logs notifications instead of delivering them.
// It stands in for a real channel until one is wired up.
type LogNotificationDispatcher struct {
	logger *zap.Logger
}

// NewLogNotificationDispatcher creates a new LogNotificationDispatcher
func NewLogNotificationDispatcher(logger *zap.Logger) *LogNotificationDispatcher {
	return &LogNotificationDispatcher{logger: logger}
}

// Dispatch logs the notification
func (d *LogNotificationDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.logger.Info("Order notification",
		zap.String("order_number", n.OrderNumber),
		zap.String("customer_id", n.CustomerID.String()),
		zap.String("status", n.Status.String()),
		zap.String("message", n.Message),
	)
	return nil
}
