package payment

import (
	"errors"
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrTransactionFinalized     = errors.New("payment: transaction already in a terminal status")
	ErrTransactionInvalidOrder  = errors.New("payment: transaction requires an order reference")
	ErrTransactionInvalidAmount = errors.New("payment: transaction amount must be positive")
)

// TransactionStatus represents the lifecycle status of a gateway transaction
type TransactionStatus string

const (
	// TransactionStatusCreated indicates the gateway order was initiated
	TransactionStatusCreated TransactionStatus = "created"
	// TransactionStatusSuccess indicates the payment completed
	TransactionStatusSuccess TransactionStatus = "success"
	// TransactionStatusFailed indicates the payment failed
	TransactionStatusFailed TransactionStatus = "failed"
)

// IsValid returns true if the status is valid
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusCreated, TransactionStatusSuccess, TransactionStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// IsTerminal returns true for success and failed
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed
}

// Transaction records a single gateway payment attempt for an order.
// It references the order by ID only and becomes immutable once a
// terminal status is recorded.
type Transaction struct {
	shared.BaseEntity
	OrderID              uuid.UUID
	GatewayOrderID       string
	GatewayTransactionID string
	GatewayType          GatewayType
	Amount               decimal.Decimal
	Currency             string
	Status               TransactionStatus
	Checksum             string
	IsMock               bool
	CompletedAt          *time.Time
}

// NewTransaction creates a transaction in created status
func NewTransaction(orderID uuid.UUID, gatewayOrderID string, gatewayType GatewayType, amount decimal.Decimal, currency string) (*Transaction, error) {
	if orderID == uuid.Nil {
		return nil, ErrTransactionInvalidOrder
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrTransactionInvalidAmount
	}
	if currency == "" {
		currency = "INR"
	}

	return &Transaction{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        orderID,
		GatewayOrderID: gatewayOrderID,
		GatewayType:    gatewayType,
		Amount:         amount,
		Currency:       currency,
		Status:         TransactionStatusCreated,
	}, nil
}

// IsTerminal returns true once the transaction reached success or failed
func (t *Transaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// MarkSuccess records the transaction as completed.
// Calling it on a terminal transaction returns ErrTransactionFinalized.
func (t *Transaction) MarkSuccess(gatewayTransactionID string) error {
	if t.IsTerminal() {
		return ErrTransactionFinalized
	}
	now := time.Now()
	t.Status = TransactionStatusSuccess
	t.GatewayTransactionID = gatewayTransactionID
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

// MarkFailed records the transaction as failed
func (t *Transaction) MarkFailed() error {
	if t.IsTerminal() {
		return ErrTransactionFinalized
	}
	now := time.Now()
	t.Status = TransactionStatusFailed
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

// RefundStatus represents the status of a refund
type RefundStatus string

const (
	// RefundStatusPending indicates the refund is being processed
	RefundStatusPending RefundStatus = "pending"
	// RefundStatusSuccess indicates the refund completed
	RefundStatusSuccess RefundStatus = "success"
	// RefundStatusFailed indicates the refund failed
	RefundStatusFailed RefundStatus = "failed"
)

// IsValid returns true if the refund status is valid
func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusPending, RefundStatusSuccess, RefundStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of RefundStatus
func (s RefundStatus) String() string {
	return string(s)
}

// Refund records a refund issued against a terminal transaction.
// Written once by the payment layer, then treated as immutable except for
// the pending-to-terminal status settlement.
type Refund struct {
	shared.BaseEntity
	TransactionID   uuid.UUID
	OrderID         uuid.UUID
	GatewayRefundID string
	Amount          decimal.Decimal
	Reason          string
	Status          RefundStatus
}

// NewRefund creates a refund in pending status.
// The amount must not exceed the original transaction amount.
func NewRefund(tx *Transaction, amount decimal.Decimal, reason string) (*Refund, error) {
	if tx == nil {
		return nil, ErrRefundInvalidOriginalPayment
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrRefundInvalidAmount
	}
	if amount.GreaterThan(tx.Amount) {
		return nil, ErrRefundAmountExceedsTotal
	}

	return &Refund{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: tx.ID,
		OrderID:       tx.OrderID,
		Amount:        amount,
		Reason:        reason,
		Status:        RefundStatusPending,
	}, nil
}

// Settle records the gateway's answer for the refund
func (r *Refund) Settle(gatewayRefundID string, status RefundStatus) {
	r.GatewayRefundID = gatewayRefundID
	r.Status = status
	r.UpdatedAt = time.Now()
}
