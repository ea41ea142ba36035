package order

import (
	"context"
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByStatus finds orders by status with pagination
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]Order, error)

	// CountByStatus counts orders in the given status
	CountByStatus(ctx context.Context, status OrderStatus) (int64, error)

	// FindStaleUnpaid finds orders still placed with payment pending that
	// were created before the cutoff. Terminal orders never match, so
	// repeated sweeps produce no duplicate work.
	FindStaleUnpaid(ctx context.Context, before time.Time) ([]Order, error)

	// Save creates or updates an order together with its items and history
	Save(ctx context.Context, o *Order) error

	// SaveWithLock saves with optimistic locking (version check).
	// Returns shared.ErrConcurrencyConflict when the stored version differs.
	SaveWithLock(ctx context.Context, o *Order) error

	// GenerateOrderNumber generates a unique order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
