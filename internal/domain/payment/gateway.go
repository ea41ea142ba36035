package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Payment Gateway Errors
// ---------------------------------------------------------------------------

var (
	// Payment creation errors
	ErrPaymentInvalidOrderID     = errors.New("payment: invalid order ID")
	ErrPaymentInvalidOrderNumber = errors.New("payment: invalid order number")
	ErrPaymentInvalidAmount      = errors.New("payment: invalid payment amount")
	ErrPaymentInvalidCallbackURL = errors.New("payment: invalid callback URL")

	// Refund errors
	ErrRefundInvalidOriginalPayment = errors.New("refund: invalid original payment reference")
	ErrRefundInvalidRefundID        = errors.New("refund: invalid refund ID")
	ErrRefundInvalidTotalAmount     = errors.New("refund: invalid total amount")
	ErrRefundInvalidAmount          = errors.New("refund: invalid refund amount")
	ErrRefundAmountExceedsTotal     = errors.New("refund: refund amount exceeds original transaction amount")

	// Gateway errors
	ErrGatewayNotConfigured   = errors.New("payment: gateway not configured")
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
	ErrChecksumMismatch       = errors.New("payment: checksum verification failed")
	ErrMissingSigningSecret   = errors.New("payment: signing secret is not configured")
)

// WebhookValidationError is returned when a mandated webhook field is absent
type WebhookValidationError struct {
	Field string
}

// Error implements the error interface
func (e *WebhookValidationError) Error() string {
	return fmt.Sprintf("payment: webhook payload missing required field %q", e.Field)
}

// ---------------------------------------------------------------------------
// Gateway types and statuses
// ---------------------------------------------------------------------------

// GatewayType represents the type of payment gateway
type GatewayType string

const (
	// GatewayTypePaytm represents the Paytm gateway
	GatewayTypePaytm GatewayType = "PAYTM"
	// GatewayTypeRazorpay represents the Razorpay gateway
	GatewayTypeRazorpay GatewayType = "RAZORPAY"
)

// IsValid returns true if the gateway type is valid
func (t GatewayType) IsValid() bool {
	switch t {
	case GatewayTypePaytm, GatewayTypeRazorpay:
		return true
	default:
		return false
	}
}

// String returns the string representation of GatewayType
func (t GatewayType) String() string {
	return string(t)
}

// ---------------------------------------------------------------------------
// Request/Response DTOs
// ---------------------------------------------------------------------------

// CustomerInfo identifies the paying customer to the gateway
type CustomerInfo struct {
	CustomerID string
	Name       string
	Email      string
	Mobile     string
}

// CreatePaymentRequest represents a request to open a payment with a gateway
type CreatePaymentRequest struct {
	// OrderID is our internal order ID
	OrderID uuid.UUID
	// OrderNumber is our internal order number, used as the gateway reference
	OrderNumber string
	// Amount is the payment amount in major units
	Amount decimal.Decimal
	// Currency is the ISO currency code (default INR)
	Currency string
	// Customer identifies the payer
	Customer CustomerInfo
	// CallbackURL receives the gateway redirect/notification
	CallbackURL string
}

// Validate validates the create payment request
func (r *CreatePaymentRequest) Validate() error {
	if r.OrderID == uuid.Nil {
		return ErrPaymentInvalidOrderID
	}
	if r.OrderNumber == "" {
		return ErrPaymentInvalidOrderNumber
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrPaymentInvalidAmount
	}
	if r.CallbackURL == "" {
		return ErrPaymentInvalidCallbackURL
	}
	return nil
}

// CreatePaymentResponse represents the gateway's answer to a payment creation
type CreatePaymentResponse struct {
	// GatewayOrderID is the payment order ID in the gateway
	GatewayOrderID string
	// GatewayType identifies which gateway processed this
	GatewayType GatewayType
	// PaymentURL is where the customer completes the payment
	PaymentURL string
	// Amount echoes the requested amount
	Amount decimal.Decimal
	// Currency echoes the requested currency
	Currency string
	// Checksum is the signature embedded in the outbound request
	Checksum string
	// IsMock is true when the response was produced by the mock backend
	IsMock bool
	// RawResponse is the original gateway response (JSON)
	RawResponse string
}

// VerifyPaymentResponse represents the result of a status poll
type VerifyPaymentResponse struct {
	// Success is true when the gateway reports the transaction completed
	Success bool
	// Status is the gateway's status, normalized per adapter
	Status TransactionStatus
	// GatewayTransactionID is the transaction ID assigned by the gateway
	GatewayTransactionID string
	// Amount is the transacted amount
	Amount decimal.Decimal
	// IsMock is true when the response was produced by the mock backend
	IsMock bool
	// RawResponse is the original gateway response (JSON)
	RawResponse string
}

// RefundRequest represents a request to refund a captured payment
type RefundRequest struct {
	// RefundID is our internal refund reference
	RefundID uuid.UUID
	// GatewayOrderID is the original payment order ID in the gateway
	GatewayOrderID string
	// GatewayTransactionID is the original transaction ID
	GatewayTransactionID string
	// TotalAmount is the original transaction amount
	TotalAmount decimal.Decimal
	// RefundAmount is the amount to refund, never exceeding TotalAmount
	RefundAmount decimal.Decimal
	// Reason is the operator-supplied refund reason
	Reason string
}

// Validate validates the refund request
func (r *RefundRequest) Validate() error {
	if r.RefundID == uuid.Nil {
		return ErrRefundInvalidRefundID
	}
	if r.GatewayOrderID == "" && r.GatewayTransactionID == "" {
		return ErrRefundInvalidOriginalPayment
	}
	if r.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrRefundInvalidTotalAmount
	}
	if r.RefundAmount.LessThanOrEqual(decimal.Zero) {
		return ErrRefundInvalidAmount
	}
	if r.RefundAmount.GreaterThan(r.TotalAmount) {
		return ErrRefundAmountExceedsTotal
	}
	return nil
}

// RefundResponse represents the gateway's answer to a refund request
type RefundResponse struct {
	// Success is true when the refund was accepted
	Success bool
	// GatewayRefundID is the refund ID in the gateway
	GatewayRefundID string
	// Status is the refund status string, normalized per adapter
	Status RefundStatus
	// IsMock is true when the response was produced by the mock backend
	IsMock bool
	// RawResponse is the original gateway response (JSON)
	RawResponse string
}

// WebhookEvent represents a verified, parsed gateway notification
type WebhookEvent struct {
	// GatewayType identifies which gateway sent this notification
	GatewayType GatewayType
	// GatewayOrderID is the payment order ID in the gateway
	GatewayOrderID string
	// GatewayTransactionID is the transaction ID from the gateway
	GatewayTransactionID string
	// Success is true when the notification reports a completed payment
	Success bool
	// Status is the provider's status, normalized per adapter
	Status TransactionStatus
	// Amount is the transacted amount
	Amount decimal.Decimal
	// IsMock is true when the event was produced by the mock backend
	IsMock bool
	// RawPayload is the original notification payload
	RawPayload string
}

// ---------------------------------------------------------------------------
// Gateway Port Interface
// ---------------------------------------------------------------------------

// Gateway defines the port interface for external payment gateways.
// The interface lives in the domain layer; concrete adapters (Paytm,
// Razorpay, mock) are in the infrastructure layer. Mode selection between a
// live adapter and the mock backend happens once at construction time.
type Gateway interface {
	// GatewayType returns the type of this payment gateway
	GatewayType() GatewayType

	// CreatePayment opens a payment with the gateway and returns the URL
	// where the customer completes it
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error)

	// VerifyPayment polls the gateway's status endpoint with a signed request
	VerifyPayment(ctx context.Context, gatewayOrderID string) (*VerifyPaymentResponse, error)

	// CreateRefund initiates a refund for a completed payment
	CreateRefund(ctx context.Context, req *RefundRequest) (*RefundResponse, error)

	// ValidateWebhook checks that all provider-mandated fields are present
	// and parses the payload into a normalized event. Absent fields return
	// a WebhookValidationError.
	ValidateWebhook(payload []byte) (*WebhookEvent, error)

	// VerifyWebhook verifies the notification signature over the payload.
	// Signature mismatch returns ErrChecksumMismatch.
	VerifyWebhook(payload []byte, signature string) error
}
