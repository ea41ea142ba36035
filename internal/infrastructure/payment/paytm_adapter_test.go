package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commerce/backend/internal/domain/payment"
)

func createTestPaytmConfig() *PaytmConfig {
	return &PaytmConfig{
		MerchantID:   "MERCHANT01",
		MerchantKey:  "test-merchant-key",
		Website:      "DEFAULT",
		IndustryType: "Retail",
		ChannelID:    "WEB",
		CallbackURL:  "https://example.com/webhooks/paytm",
		Timeout:      5 * time.Second,
	}
}

func TestPaytmConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *PaytmConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  createTestPaytmConfig(),
			wantErr: nil,
		},
		{
			name: "missing merchant ID",
			config: &PaytmConfig{
				MerchantKey: "key",
				CallbackURL: "https://example.com/cb",
			},
			wantErr: ErrPaytmMissingMerchantID,
		},
		{
			name: "missing merchant key",
			config: &PaytmConfig{
				MerchantID:  "MERCHANT01",
				CallbackURL: "https://example.com/cb",
			},
			wantErr: ErrPaytmMissingMerchantKey,
		},
		{
			name: "missing callback URL",
			config: &PaytmConfig{
				MerchantID:  "MERCHANT01",
				MerchantKey: "key",
			},
			wantErr: ErrPaytmMissingCallbackURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPaytmConfig_HasLiveCredentials(t *testing.T) {
	tests := []struct {
		name        string
		merchantID  string
		merchantKey string
		want        bool
	}{
		{"real credentials", "MERCHANT01", "real-key", true},
		{"empty merchant ID", "", "real-key", false},
		{"empty merchant key", "MERCHANT01", "", false},
		{"placeholder merchant ID", "YOUR_PAYTM_MID", "real-key", false},
		{"placeholder merchant key", "MERCHANT01", "YOUR_PAYTM_KEY", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &PaytmConfig{MerchantID: tt.merchantID, MerchantKey: tt.merchantKey}
			assert.Equal(t, tt.want, config.HasLiveCredentials())
		})
	}
}

func TestPaytmAdapter_CreatePayment(t *testing.T) {
	var captured paytmInitiateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := paytmInitiateResponse{}
		resp.Body.ResultInfo.ResultStatus = paytmResultSuccess
		resp.Body.ResultInfo.ResultCode = "0000"
		resp.Body.TxnToken = "token-abc"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := createTestPaytmConfig()
	config.BaseURL = server.URL
	adapter, err := NewPaytmAdapter(config)
	require.NoError(t, err)

	req := &payment.CreatePaymentRequest{
		OrderID:     uuid.New(),
		OrderNumber: "ORD-2500",
		Amount:      decimal.NewFromInt(2500),
		Currency:    "INR",
		Customer: payment.CustomerInfo{
			CustomerID: "CUST-42",
			Email:      "buyer@example.com",
			Mobile:     "9999999999",
		},
		CallbackURL: config.CallbackURL,
	}

	resp, err := adapter.CreatePayment(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "ORD-2500", resp.GatewayOrderID)
	assert.Equal(t, payment.GatewayTypePaytm, resp.GatewayType)
	assert.Contains(t, resp.PaymentURL, "txnToken=token-abc")
	assert.False(t, resp.IsMock)
	assert.Equal(t, "2500.00", captured.Body.TxnAmount.Value)

	// The checksum must be independently recomputable from the signed
	// parameters with the merchant key.
	signer, err := NewChecksumSigner(config.MerchantKey)
	require.NoError(t, err)
	expected := signer.Sign(adapter.buildCreateParams(req))
	assert.Equal(t, expected, resp.Checksum)
	assert.Equal(t, expected, captured.Head.Signature)
}

func TestPaytmAdapter_CreatePayment_GatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := paytmInitiateResponse{}
		resp.Body.ResultInfo.ResultStatus = "F"
		resp.Body.ResultInfo.ResultCode = "501"
		resp.Body.ResultInfo.ResultMsg = "System error"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := createTestPaytmConfig()
	config.BaseURL = server.URL
	adapter, err := NewPaytmAdapter(config)
	require.NoError(t, err)

	req := &payment.CreatePaymentRequest{
		OrderID:     uuid.New(),
		OrderNumber: "ORD-2501",
		Amount:      decimal.NewFromInt(100),
		Currency:    "INR",
		Customer:    payment.CustomerInfo{CustomerID: "CUST-42"},
		CallbackURL: config.CallbackURL,
	}

	_, err = adapter.CreatePayment(context.Background(), req)
	assert.ErrorIs(t, err, payment.ErrGatewayRequestFailed)
}

func TestPaytmAdapter_VerifyPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := paytmStatusResponse{}
		resp.Body.ResultInfo.ResultStatus = paytmTxnSuccess
		resp.Body.TxnID = "TXN-777"
		resp.Body.OrderID = "ORD-2500"
		resp.Body.TxnAmount = "2500.00"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := createTestPaytmConfig()
	config.BaseURL = server.URL
	adapter, err := NewPaytmAdapter(config)
	require.NoError(t, err)

	resp, err := adapter.VerifyPayment(context.Background(), "ORD-2500")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, payment.TransactionStatusSuccess, resp.Status)
	assert.Equal(t, "TXN-777", resp.GatewayTransactionID)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(2500)))
}

func TestPaytmAdapter_VerifyPayment_EmptyOrderID(t *testing.T) {
	adapter, err := NewPaytmAdapter(createTestPaytmConfig())
	require.NoError(t, err)

	_, err = adapter.VerifyPayment(context.Background(), "")
	assert.ErrorIs(t, err, payment.ErrPaymentInvalidOrderID)
}

func TestPaytmAdapter_ValidateWebhook(t *testing.T) {
	adapter, err := NewPaytmAdapter(createTestPaytmConfig())
	require.NoError(t, err)

	tests := []struct {
		name      string
		payload   map[string]string
		wantField string
	}{
		{
			name: "valid payload",
			payload: map[string]string{
				"ORDERID":      "ORD-2500",
				"TXNID":        "TXN-777",
				"TXNAMOUNT":    "2500.00",
				"STATUS":       "TXN_SUCCESS",
				"CHECKSUMHASH": "abc",
			},
		},
		{
			name: "missing order ID",
			payload: map[string]string{
				"TXNID":        "TXN-777",
				"TXNAMOUNT":    "2500.00",
				"STATUS":       "TXN_SUCCESS",
				"CHECKSUMHASH": "abc",
			},
			wantField: "ORDERID",
		},
		{
			name: "missing transaction ID",
			payload: map[string]string{
				"ORDERID":      "ORD-2500",
				"TXNAMOUNT":    "2500.00",
				"STATUS":       "TXN_SUCCESS",
				"CHECKSUMHASH": "abc",
			},
			wantField: "TXNID",
		},
		{
			name: "missing checksum",
			payload: map[string]string{
				"ORDERID":   "ORD-2500",
				"TXNID":     "TXN-777",
				"TXNAMOUNT": "2500.00",
				"STATUS":    "TXN_SUCCESS",
			},
			wantField: "CHECKSUMHASH",
		},
		{
			name: "unparseable amount",
			payload: map[string]string{
				"ORDERID":      "ORD-2500",
				"TXNID":        "TXN-777",
				"TXNAMOUNT":    "two thousand",
				"STATUS":       "TXN_SUCCESS",
				"CHECKSUMHASH": "abc",
			},
			wantField: "TXNAMOUNT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			event, err := adapter.ValidateWebhook(raw)
			if tt.wantField != "" {
				var vErr *payment.WebhookValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ORD-2500", event.GatewayOrderID)
			assert.Equal(t, "TXN-777", event.GatewayTransactionID)
			assert.True(t, event.Success)
		})
	}
}

func TestPaytmAdapter_VerifyWebhook(t *testing.T) {
	config := createTestPaytmConfig()
	adapter, err := NewPaytmAdapter(config)
	require.NoError(t, err)

	signer, err := NewChecksumSigner(config.MerchantKey)
	require.NoError(t, err)

	params := map[string]string{
		"ORDERID":   "ORD-2500",
		"TXNID":     "TXN-777",
		"TXNAMOUNT": "2500.00",
		"STATUS":    "TXN_SUCCESS",
	}
	checksum := signer.Sign(params)
	params["CHECKSUMHASH"] = checksum
	raw, err := json.Marshal(params)
	require.NoError(t, err)

	assert.NoError(t, adapter.VerifyWebhook(raw, ""))
	assert.NoError(t, adapter.VerifyWebhook(raw, checksum))

	// Altering any signed field must break verification.
	tampered := map[string]string{
		"ORDERID":      "ORD-2500",
		"TXNID":        "TXN-777",
		"TXNAMOUNT":    "1.00",
		"STATUS":       "TXN_SUCCESS",
		"CHECKSUMHASH": checksum,
	}
	tamperedRaw, err := json.Marshal(tampered)
	require.NoError(t, err)
	assert.ErrorIs(t, adapter.VerifyWebhook(tamperedRaw, ""), payment.ErrChecksumMismatch)
}

func TestPaytmAdapter_CreateRefund(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req paytmRefundRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "REFUND", req.Body.TxnType)
		assert.Equal(t, "500.00", req.Body.RefundAmt)

		resp := paytmRefundResponse{}
		resp.Body.ResultInfo.ResultStatus = paytmResultPending
		resp.Body.RefundID = "REF-123"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := createTestPaytmConfig()
	config.BaseURL = server.URL
	adapter, err := NewPaytmAdapter(config)
	require.NoError(t, err)

	resp, err := adapter.CreateRefund(context.Background(), &payment.RefundRequest{
		RefundID:             uuid.New(),
		GatewayOrderID:       "ORD-2500",
		GatewayTransactionID: "TXN-777",
		TotalAmount:          decimal.NewFromInt(2500),
		RefundAmount:         decimal.NewFromInt(500),
		Reason:               "damaged item",
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "REF-123", resp.GatewayRefundID)
	assert.Equal(t, payment.RefundStatusPending, resp.Status)
}

func TestPaytmAdapter_CreateRefund_ExceedsTotal(t *testing.T) {
	adapter, err := NewPaytmAdapter(createTestPaytmConfig())
	require.NoError(t, err)

	_, err = adapter.CreateRefund(context.Background(), &payment.RefundRequest{
		RefundID:             uuid.New(),
		GatewayOrderID:       "ORD-2500",
		GatewayTransactionID: "TXN-777",
		TotalAmount:          decimal.NewFromInt(100),
		RefundAmount:         decimal.NewFromInt(500),
		Reason:               "damaged item",
	})
	assert.ErrorIs(t, err, payment.ErrRefundAmountExceedsTotal)
}
