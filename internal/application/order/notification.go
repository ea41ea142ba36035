package order

import (
	"context"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/google/uuid"
)

// Notification describes a customer-facing message about an order
type Notification struct {
	OrderID        uuid.UUID
	OrderNumber    string
	CustomerID     uuid.UUID
	Status         order.OrderStatus
	Message        string
	TrackingNumber string
	CourierService string
}

// NotificationDispatcher sends order notifications to customers.
// Implementations deliver over email, SMS or push; delivery failures
// never affect the order transition that triggered them.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}
