package payment

import (
	"time"

	"github.com/commerce/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InitiatePaymentRequest represents a request to open a payment for an order
type InitiatePaymentRequest struct {
	OrderID       uuid.UUID           `json:"order_id" binding:"required"`
	GatewayType   payment.GatewayType `json:"gateway_type" binding:"required"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone string              `json:"customer_phone"`
}

// InitiatePaymentResponse represents the opened payment
type InitiatePaymentResponse struct {
	TransactionID  uuid.UUID           `json:"transaction_id"`
	GatewayOrderID string              `json:"gateway_order_id"`
	GatewayType    payment.GatewayType `json:"gateway_type"`
	PaymentURL     string              `json:"payment_url"`
	Amount         decimal.Decimal     `json:"amount"`
	Currency       string              `json:"currency"`
	IsMock         bool                `json:"is_mock"`
}

// WebhookResult describes the outcome of processing a gateway notification
type WebhookResult struct {
	TransactionID  uuid.UUID                 `json:"transaction_id"`
	GatewayOrderID string                    `json:"gateway_order_id"`
	Status         payment.TransactionStatus `json:"status"`
	Duplicate      bool                      `json:"duplicate"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                   uuid.UUID                 `json:"id"`
	OrderID              uuid.UUID                 `json:"order_id"`
	GatewayOrderID       string                    `json:"gateway_order_id"`
	GatewayTransactionID string                    `json:"gateway_transaction_id,omitempty"`
	GatewayType          payment.GatewayType       `json:"gateway_type"`
	Amount               decimal.Decimal           `json:"amount"`
	Currency             string                    `json:"currency"`
	Status               payment.TransactionStatus `json:"status"`
	IsMock               bool                      `json:"is_mock"`
	CompletedAt          *time.Time                `json:"completed_at,omitempty"`
	CreatedAt            time.Time                 `json:"created_at"`
}

// RefundOrderRequest represents a request to refund a paid order
type RefundOrderRequest struct {
	TransactionID uuid.UUID       `json:"transaction_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Reason        string          `json:"reason"`
}

// RefundResponse represents a refund in API responses
type RefundResponse struct {
	ID              uuid.UUID            `json:"id"`
	TransactionID   uuid.UUID            `json:"transaction_id"`
	OrderID         uuid.UUID            `json:"order_id"`
	GatewayRefundID string               `json:"gateway_refund_id,omitempty"`
	Amount          decimal.Decimal      `json:"amount"`
	Reason          string               `json:"reason,omitempty"`
	Status          payment.RefundStatus `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
}

// ToTransactionResponse converts a domain transaction to its API response
func ToTransactionResponse(tx *payment.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                   tx.ID,
		OrderID:              tx.OrderID,
		GatewayOrderID:       tx.GatewayOrderID,
		GatewayTransactionID: tx.GatewayTransactionID,
		GatewayType:          tx.GatewayType,
		Amount:               tx.Amount,
		Currency:             tx.Currency,
		Status:               tx.Status,
		IsMock:               tx.IsMock,
		CompletedAt:          tx.CompletedAt,
		CreatedAt:            tx.CreatedAt,
	}
}

// ToRefundResponse converts a domain refund to its API response
func ToRefundResponse(r *payment.Refund) RefundResponse {
	return RefundResponse{
		ID:              r.ID,
		TransactionID:   r.TransactionID,
		OrderID:         r.OrderID,
		GatewayRefundID: r.GatewayRefundID,
		Amount:          r.Amount,
		Reason:          r.Reason,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
	}
}
