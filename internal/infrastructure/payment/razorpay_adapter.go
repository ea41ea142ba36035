package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/commerce/backend/internal/domain/payment"
)

// RazorpayAdapter implements the Gateway interface for Razorpay
type RazorpayAdapter struct {
	config        *RazorpayConfig
	webhookSigner *ChecksumSigner
	httpClient    *http.Client
}

var _ payment.Gateway = (*RazorpayAdapter)(nil)

// NewRazorpayAdapter creates a new Razorpay adapter
func NewRazorpayAdapter(config *RazorpayConfig) (*RazorpayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	signer, err := NewChecksumSigner(config.WebhookSecret)
	if err != nil {
		return nil, err
	}

	return &RazorpayAdapter{
		config:        config,
		webhookSigner: signer,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// GatewayType returns the gateway type
func (a *RazorpayAdapter) GatewayType() payment.GatewayType {
	return payment.GatewayTypeRazorpay
}

// CreatePayment creates an order in Razorpay
func (a *RazorpayAdapter) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := razorpayCreateOrderRequest{
		Amount:   toPaise(req.Amount),
		Currency: req.Currency,
		Receipt:  req.OrderNumber,
		Notes: map[string]string{
			"order_id":       req.OrderID.String(),
			"customer_id":    req.Customer.CustomerID,
			"customer_email": req.Customer.Email,
			"customer_phone": req.Customer.Mobile,
		},
		Customer: &razorpayCustomer{
			Name:    req.Customer.Name,
			Email:   req.Customer.Email,
			Contact: req.Customer.Mobile,
		},
		CallbackURL: req.CallbackURL,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, razorpayOrdersPath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var order razorpayOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: missing order id", payment.ErrGatewayInvalidResponse)
	}

	return &payment.CreatePaymentResponse{
		GatewayOrderID: order.ID,
		GatewayType:    payment.GatewayTypeRazorpay,
		Amount:         fromPaise(order.Amount),
		Currency:       order.Currency,
		RawResponse:    string(respBody),
	}, nil
}

// VerifyPayment fetches the order's payments and reports the settled state
func (a *RazorpayAdapter) VerifyPayment(ctx context.Context, gatewayOrderID string) (*payment.VerifyPaymentResponse, error) {
	if gatewayOrderID == "" {
		return nil, payment.ErrPaymentInvalidOrderID
	}

	path := fmt.Sprintf(razorpayOrderPaymentsPath, gatewayOrderID)
	respBody, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var payments razorpayPaymentCollection
	if err := json.Unmarshal(respBody, &payments); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}

	result := &payment.VerifyPaymentResponse{
		Status:      payment.TransactionStatusCreated,
		RawResponse: string(respBody),
	}

	// The most recent captured payment wins; a failed payment only counts
	// when nothing succeeded.
	for _, p := range payments.Items {
		switch p.Status {
		case razorpayPaymentCaptured:
			result.Success = true
			result.Status = payment.TransactionStatusSuccess
			result.GatewayTransactionID = p.ID
			result.Amount = fromPaise(p.Amount)
			return result, nil
		case razorpayPaymentFailed:
			result.Status = payment.TransactionStatusFailed
			result.GatewayTransactionID = p.ID
			result.Amount = fromPaise(p.Amount)
		}
	}

	return result, nil
}

// CreateRefund issues a refund against a captured payment
func (a *RazorpayAdapter) CreateRefund(ctx context.Context, req *payment.RefundRequest) (*payment.RefundResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := razorpayRefundRequest{
		Amount: toPaise(req.RefundAmount),
		Notes:  map[string]string{"refund_id": req.RefundID.String(), "reason": req.Reason},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to marshal request: %w", err)
	}

	path := fmt.Sprintf(razorpayRefundPath, req.GatewayTransactionID)
	respBody, err := a.doRequest(ctx, http.MethodPost, path, bodyBytes)
	if err != nil {
		return nil, err
	}

	var refund razorpayRefund
	if err := json.Unmarshal(respBody, &refund); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}

	status := payment.RefundStatusPending
	switch refund.Status {
	case razorpayRefundProcessed:
		status = payment.RefundStatusSuccess
	case razorpayRefundPending:
		status = payment.RefundStatusPending
	default:
		status = payment.RefundStatusFailed
	}

	return &payment.RefundResponse{
		Success:         status != payment.RefundStatusFailed,
		GatewayRefundID: refund.ID,
		Status:          status,
		RawResponse:     string(respBody),
	}, nil
}

// ValidateWebhook parses a Razorpay webhook payload and checks required fields
func (a *RazorpayAdapter) ValidateWebhook(payload []byte) (*payment.WebhookEvent, error) {
	var envelope razorpayWebhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, &payment.WebhookValidationError{Field: "payload"}
	}
	if envelope.Event == "" {
		return nil, &payment.WebhookValidationError{Field: "event"}
	}

	entity := envelope.Payload.Payment.Entity
	if entity.ID == "" {
		return nil, &payment.WebhookValidationError{Field: "payload.payment.entity.id"}
	}
	if entity.OrderID == "" {
		return nil, &payment.WebhookValidationError{Field: "payload.payment.entity.order_id"}
	}
	if entity.Status == "" {
		return nil, &payment.WebhookValidationError{Field: "payload.payment.entity.status"}
	}

	status := mapRazorpayPaymentStatus(entity.Status)
	return &payment.WebhookEvent{
		GatewayType:          payment.GatewayTypeRazorpay,
		GatewayOrderID:       entity.OrderID,
		GatewayTransactionID: entity.ID,
		Success:              envelope.Event == razorpayEventPaymentCaptured && status == payment.TransactionStatusSuccess,
		Status:               status,
		Amount:               fromPaise(entity.Amount),
		RawPayload:           string(payload),
	}, nil
}

// VerifyWebhook checks the HMAC signature over the raw payload. Razorpay
// delivers the hex digest in the X-Razorpay-Signature header.
func (a *RazorpayAdapter) VerifyWebhook(payload []byte, signature string) error {
	if signature == "" {
		return &payment.WebhookValidationError{Field: "signature"}
	}
	if !a.webhookSigner.VerifyPayload(payload, signature) {
		return payment.ErrChecksumMismatch
	}
	return nil
}

func mapRazorpayPaymentStatus(status string) payment.TransactionStatus {
	switch status {
	case razorpayPaymentCaptured:
		return payment.TransactionStatusSuccess
	case razorpayPaymentFailed:
		return payment.TransactionStatusFailed
	default:
		return payment.TransactionStatusCreated
	}
}

// toPaise converts a rupee amount to Razorpay's integer paise representation
func toPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

func fromPaise(paise int64) decimal.Decimal {
	return decimal.NewFromInt(paise).Div(decimal.NewFromInt(100))
}

func (a *RazorpayAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	base := razorpayBaseURL
	if a.config.BaseURL != "" {
		base = a.config.BaseURL
	}
	url := base + path

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(a.config.KeyID, a.config.KeySecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp razorpayErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return nil, fmt.Errorf("%w: %s - %s", payment.ErrGatewayRequestFailed,
				errResp.Error.Code, errResp.Error.Description)
		}
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}
