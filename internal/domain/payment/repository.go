package payment

import (
	"context"

	"github.com/google/uuid"
)

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByGatewayOrderID finds a transaction by its gateway order reference
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Transaction, error)

	// FindByOrderID finds all transactions recorded for an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]Transaction, error)

	// Save creates or updates a transaction
	Save(ctx context.Context, tx *Transaction) error
}

// RefundRepository defines the interface for refund persistence
type RefundRepository interface {
	// FindByID finds a refund by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Refund, error)

	// FindByTransactionID finds refunds issued against a transaction
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]Refund, error)

	// Save creates or updates a refund
	Save(ctx context.Context, r *Refund) error
}
