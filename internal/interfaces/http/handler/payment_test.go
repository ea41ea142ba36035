package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	paymentapp "github.com/commerce/backend/internal/application/payment"
	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockTransactionRepository implements payment.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*payment.Transaction, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]payment.Transaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *payment.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockRefundRepository implements payment.RefundRepository
type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Refund, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Refund), args.Error(1)
}

func (m *MockRefundRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]payment.Refund, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Refund), args.Error(1)
}

func (m *MockRefundRepository) Save(ctx context.Context, r *payment.Refund) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// stubGateway is a scriptable payment.Gateway
type stubGateway struct {
	gatewayType   payment.GatewayType
	createResp    *payment.CreatePaymentResponse
	createErr     error
	validateEvent *payment.WebhookEvent
	validateErr   error
	verifySigErr  error
}

func (g *stubGateway) GatewayType() payment.GatewayType { return g.gatewayType }

func (g *stubGateway) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	return g.createResp, g.createErr
}

func (g *stubGateway) VerifyPayment(ctx context.Context, gatewayOrderID string) (*payment.VerifyPaymentResponse, error) {
	return nil, payment.ErrGatewayUnavailable
}

func (g *stubGateway) CreateRefund(ctx context.Context, req *payment.RefundRequest) (*payment.RefundResponse, error) {
	return nil, payment.ErrGatewayUnavailable
}

func (g *stubGateway) ValidateWebhook(payload []byte) (*payment.WebhookEvent, error) {
	return g.validateEvent, g.validateErr
}

func (g *stubGateway) VerifyWebhook(payload []byte, signature string) error {
	return g.verifySigErr
}

// stubProvider resolves every gateway type to the same stub
type stubProvider struct {
	gateway payment.Gateway
}

func (p *stubProvider) Get(gatewayType payment.GatewayType) (payment.Gateway, error) {
	return p.gateway, nil
}

// memoryIdempotencyStore claims each key exactly once
type memoryIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{seen: make(map[string]bool)}
}

func (s *memoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *memoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[eventID], nil
}

func (s *memoryIdempotencyStore) Close() error { return nil }

type paymentTestEnv struct {
	txRepo    *MockTransactionRepository
	refunds   *MockRefundRepository
	orderRepo *MockOrderRepository
	gateway   *stubGateway
	engine    *gin.Engine
}

func newPaymentTestRouter(t *testing.T, gatewayType payment.GatewayType) *paymentTestEnv {
	t.Helper()
	env := &paymentTestEnv{
		txRepo:    new(MockTransactionRepository),
		refunds:   new(MockRefundRepository),
		orderRepo: new(MockOrderRepository),
		gateway:   &stubGateway{gatewayType: gatewayType},
	}

	service := paymentapp.NewService(
		env.txRepo,
		env.refunds,
		env.orderRepo,
		&stubProvider{gateway: env.gateway},
		newMemoryIdempotencyStore(),
		"https://shop.example.com/payments/callback",
		zap.NewNop(),
	)
	h := NewPaymentHandler(service)

	env.engine = gin.New()
	api := env.engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return env
}

func newPayableTestOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder("ORD-2026-00100", uuid.New())
	assert.NoError(t, err)
	_, err = o.AddItem(uuid.New(), 1, decimal.NewFromInt(2500))
	assert.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestPaymentHandler_Initiate(t *testing.T) {
	o := newPayableTestOrder(t)
	env := newPaymentTestRouter(t, payment.GatewayTypePaytm)
	env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	env.txRepo.On("Save", mock.Anything, mock.AnythingOfType("*payment.Transaction")).Return(nil)
	env.gateway.createResp = &payment.CreatePaymentResponse{
		GatewayOrderID: "GW_ORDER_1",
		GatewayType:    payment.GatewayTypePaytm,
		PaymentURL:     "https://securegw.paytm.in/order/process?ORDER_ID=GW_ORDER_1",
		Amount:         decimal.NewFromInt(2500),
		Currency:       "INR",
	}

	body, _ := json.Marshal(map[string]interface{}{
		"order_id":     o.ID.String(),
		"gateway_type": "PAYTM",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initiate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "GW_ORDER_1", data["gateway_order_id"])
	assert.NotEmpty(t, data["payment_url"])
}

func TestPaymentHandler_InitiateNotPayable(t *testing.T) {
	o := newPayableTestOrder(t)
	assert.NoError(t, o.Transition(order.OrderStatusCancelled, order.TransitionMetadata{CancelReason: "Changed my mind"}))
	o.ClearDomainEvents()

	env := newPaymentTestRouter(t, payment.GatewayTypePaytm)
	env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"order_id":     o.ID.String(),
		"gateway_type": "PAYTM",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initiate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "ERR_ORDER_NOT_PAYABLE", errObj["code"])
	env.txRepo.AssertNotCalled(t, "Save")
}

func TestPaymentHandler_RazorpayWebhookSuccess(t *testing.T) {
	o := newPayableTestOrder(t)
	tx, err := payment.NewTransaction(o.ID, "GW_ORDER_1", payment.GatewayTypeRazorpay, decimal.NewFromInt(2500), "INR")
	assert.NoError(t, err)

	env := newPaymentTestRouter(t, payment.GatewayTypeRazorpay)
	env.gateway.validateEvent = &payment.WebhookEvent{
		GatewayType:          payment.GatewayTypeRazorpay,
		GatewayOrderID:       "GW_ORDER_1",
		GatewayTransactionID: "pay_TXN1",
		Success:              true,
		Status:               payment.TransactionStatusSuccess,
		Amount:               decimal.NewFromInt(2500),
	}
	env.txRepo.On("FindByGatewayOrderID", mock.Anything, "GW_ORDER_1").Return(tx, nil)
	env.txRepo.On("Save", mock.Anything, tx).Return(nil)
	env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	env.orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhooks/razorpay", bytes.NewReader([]byte(`{"event":"payment.captured"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Signature", "valid-signature")
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payment.TransactionStatusSuccess, tx.Status)
	assert.Equal(t, order.OrderStatusConfirmed, o.Status)
	assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
}

func TestPaymentHandler_RazorpayWebhookBadSignature(t *testing.T) {
	env := newPaymentTestRouter(t, payment.GatewayTypeRazorpay)
	env.gateway.validateEvent = &payment.WebhookEvent{
		GatewayType:    payment.GatewayTypeRazorpay,
		GatewayOrderID: "GW_ORDER_1",
		Status:         payment.TransactionStatusSuccess,
	}
	env.gateway.verifySigErr = payment.ErrChecksumMismatch

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhooks/razorpay", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("X-Razorpay-Signature", "tampered")
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "ERR_CHECKSUM_MISMATCH", errObj["code"])
	env.txRepo.AssertNotCalled(t, "Save")
}

func TestPaymentHandler_PaytmWebhookInvalidPayload(t *testing.T) {
	env := newPaymentTestRouter(t, payment.GatewayTypePaytm)
	env.gateway.validateErr = &payment.WebhookValidationError{Field: "ORDERID"}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhooks/paytm", bytes.NewReader([]byte(`ORDERID=`)))
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "ERR_WEBHOOK_INVALID", errObj["code"])
}

func TestPaymentHandler_ReconcileNotFound(t *testing.T) {
	env := newPaymentTestRouter(t, payment.GatewayTypePaytm)
	env.txRepo.On("FindByGatewayOrderID", mock.Anything, "GW_MISSING").Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/reconcile/GW_MISSING", nil)
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandler_RefundUnfinishedTransaction(t *testing.T) {
	o := newPayableTestOrder(t)
	tx, err := payment.NewTransaction(o.ID, "GW_ORDER_1", payment.GatewayTypePaytm, decimal.NewFromInt(2500), "INR")
	assert.NoError(t, err)

	env := newPaymentTestRouter(t, payment.GatewayTypePaytm)
	env.txRepo.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"transaction_id": tx.ID.String(),
		"amount":         "2500",
		"reason":         "Damaged item",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/refunds", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "ERR_NOT_REFUNDABLE", errObj["code"])
}

func TestPaymentHandler_ListByOrder(t *testing.T) {
	o := newPayableTestOrder(t)
	tx, err := payment.NewTransaction(o.ID, "GW_ORDER_1", payment.GatewayTypePaytm, decimal.NewFromInt(2500), "INR")
	assert.NoError(t, err)

	env := newPaymentTestRouter(t, payment.GatewayTypePaytm)
	env.txRepo.On("FindByOrderID", mock.Anything, o.ID).Return([]payment.Transaction{*tx}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+o.ID.String()+"/payments", nil)
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	assert.Len(t, data, 1)
}
