package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/commerce/backend/internal/domain/payment"
)

// SuccessSource decides the outcome of a simulated payment
type SuccessSource interface {
	Succeed() bool
}

// RateSource succeeds with the configured probability
type RateSource struct {
	Rate float64
}

// NewRateSource creates a source that succeeds at the given rate
func NewRateSource(rate float64) *RateSource {
	return &RateSource{Rate: rate}
}

func (s *RateSource) Succeed() bool {
	return rand.Float64() < s.Rate
}

// AlwaysSucceed makes every simulated payment succeed
type AlwaysSucceed struct{}

func (AlwaysSucceed) Succeed() bool { return true }

// AlwaysFail makes every simulated payment fail
type AlwaysFail struct{}

func (AlwaysFail) Succeed() bool { return false }

const mockSigningSecret = "mock-gateway-secret"

// MockBackend simulates a payment gateway when live credentials are absent.
// Created payments are held in memory so verification and refunds resolve
// against earlier calls.
type MockBackend struct {
	gatewayType payment.GatewayType
	source      SuccessSource
	signer      *ChecksumSigner

	mu       sync.RWMutex
	payments map[string]*mockPayment
}

type mockPayment struct {
	gatewayOrderID string
	transactionID  string
	amount         decimal.Decimal
	currency       string
	success        bool
	verified       bool
}

var _ payment.Gateway = (*MockBackend)(nil)

// MockOption configures a MockBackend
type MockOption func(*MockBackend)

// WithSuccessSource overrides the outcome source
func WithSuccessSource(source SuccessSource) MockOption {
	return func(m *MockBackend) {
		m.source = source
	}
}

// NewMockBackend creates a simulated gateway of the given type. The default
// outcome source approves roughly nine payments in ten.
func NewMockBackend(gatewayType payment.GatewayType, opts ...MockOption) *MockBackend {
	signer, _ := NewChecksumSigner(mockSigningSecret)
	m := &MockBackend{
		gatewayType: gatewayType,
		source:      NewRateSource(0.9),
		signer:      signer,
		payments:    make(map[string]*mockPayment),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GatewayType returns the simulated gateway type
func (m *MockBackend) GatewayType() payment.GatewayType {
	return m.gatewayType
}

// CreatePayment records a simulated payment. The outcome is drawn once at
// creation so later verification calls stay consistent.
func (m *MockBackend) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gatewayOrderID := fmt.Sprintf("MOCK_ORDER_%s", uuid.New().String())
	p := &mockPayment{
		gatewayOrderID: gatewayOrderID,
		transactionID:  fmt.Sprintf("MOCK_TXN_%s", uuid.New().String()),
		amount:         req.Amount,
		currency:       req.Currency,
		success:        m.source.Succeed(),
	}

	m.mu.Lock()
	m.payments[gatewayOrderID] = p
	m.mu.Unlock()

	checksum := m.signer.Sign(map[string]string{
		"ORDER_ID":   req.OrderNumber,
		"TXN_AMOUNT": req.Amount.StringFixed(2),
	})

	return &payment.CreatePaymentResponse{
		GatewayOrderID: gatewayOrderID,
		GatewayType:    m.gatewayType,
		PaymentURL:     fmt.Sprintf("https://mock.gateway.local/pay/%s", gatewayOrderID),
		Amount:         req.Amount,
		Currency:       req.Currency,
		Checksum:       checksum,
		IsMock:         true,
	}, nil
}

// VerifyPayment resolves a simulated payment to its drawn outcome
func (m *MockBackend) VerifyPayment(ctx context.Context, gatewayOrderID string) (*payment.VerifyPaymentResponse, error) {
	if gatewayOrderID == "" {
		return nil, payment.ErrPaymentInvalidOrderID
	}

	m.mu.Lock()
	p, ok := m.payments[gatewayOrderID]
	if ok {
		p.verified = true
	}
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: unknown order %s", payment.ErrGatewayRequestFailed, gatewayOrderID)
	}

	status := payment.TransactionStatusSuccess
	if !p.success {
		status = payment.TransactionStatusFailed
	}

	return &payment.VerifyPaymentResponse{
		Success:              p.success,
		Status:               status,
		GatewayTransactionID: p.transactionID,
		Amount:               p.amount,
		IsMock:               true,
	}, nil
}

// CreateRefund always approves simulated refunds
func (m *MockBackend) CreateRefund(ctx context.Context, req *payment.RefundRequest) (*payment.RefundResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &payment.RefundResponse{
		Success:         true,
		GatewayRefundID: fmt.Sprintf("MOCK_REFUND_%s", uuid.New().String()),
		Status:          payment.RefundStatusSuccess,
		IsMock:          true,
	}, nil
}

// ValidateWebhook parses a simulated webhook payload
func (m *MockBackend) ValidateWebhook(payload []byte) (*payment.WebhookEvent, error) {
	var body struct {
		GatewayOrderID       string `json:"gateway_order_id"`
		GatewayTransactionID string `json:"gateway_transaction_id"`
		Status               string `json:"status"`
		Amount               string `json:"amount"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, &payment.WebhookValidationError{Field: "payload"}
	}
	if body.GatewayOrderID == "" {
		return nil, &payment.WebhookValidationError{Field: "gateway_order_id"}
	}
	if body.Status == "" {
		return nil, &payment.WebhookValidationError{Field: "status"}
	}

	amount := decimal.Zero
	if body.Amount != "" {
		parsed, err := decimal.NewFromString(body.Amount)
		if err != nil {
			return nil, &payment.WebhookValidationError{Field: "amount"}
		}
		amount = parsed
	}

	status := mapMockStatus(body.Status)
	return &payment.WebhookEvent{
		GatewayType:          m.gatewayType,
		GatewayOrderID:       body.GatewayOrderID,
		GatewayTransactionID: body.GatewayTransactionID,
		Success:              status == payment.TransactionStatusSuccess,
		Status:               status,
		Amount:               amount,
		IsMock:               true,
		RawPayload:           string(payload),
	}, nil
}

// VerifyWebhook verifies the simulated webhook signature
func (m *MockBackend) VerifyWebhook(payload []byte, signature string) error {
	if signature == "" {
		return &payment.WebhookValidationError{Field: "signature"}
	}
	if !m.signer.VerifyPayload(payload, signature) {
		return payment.ErrChecksumMismatch
	}
	return nil
}

func mapMockStatus(status string) payment.TransactionStatus {
	switch strings.ToUpper(status) {
	case "SUCCESS", "TXN_SUCCESS", "CAPTURED":
		return payment.TransactionStatusSuccess
	case "CREATED", "PENDING":
		return payment.TransactionStatusCreated
	default:
		return payment.TransactionStatusFailed
	}
}

// SignWebhook signs a simulated webhook payload so tests and local tooling
// can produce payloads VerifyWebhook accepts.
func (m *MockBackend) SignWebhook(payload []byte) string {
	return m.signer.SignPayload(payload)
}
