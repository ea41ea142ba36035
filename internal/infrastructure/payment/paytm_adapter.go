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

// PaytmAdapter implements the Gateway interface for Paytm
type PaytmAdapter struct {
	config     *PaytmConfig
	signer     *ChecksumSigner
	httpClient *http.Client
}

var _ payment.Gateway = (*PaytmAdapter)(nil)

// NewPaytmAdapter creates a new Paytm adapter
func NewPaytmAdapter(config *PaytmConfig) (*PaytmAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	signer, err := NewChecksumSigner(config.MerchantKey)
	if err != nil {
		return nil, err
	}

	return &PaytmAdapter{
		config: config,
		signer: signer,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// GatewayType returns the gateway type
func (a *PaytmAdapter) GatewayType() payment.GatewayType {
	return payment.GatewayTypePaytm
}

// CreatePayment initiates a transaction with Paytm
func (a *PaytmAdapter) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest) (*payment.CreatePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := a.buildCreateParams(req)
	checksum := a.signer.Sign(params)

	body := paytmInitiateRequest{
		Body: paytmInitiateBody{
			RequestType: "Payment",
			MID:         a.config.MerchantID,
			WebsiteName: a.config.Website,
			OrderID:     req.OrderNumber,
			CallbackURL: a.config.CallbackURL,
			TxnAmount: paytmTxnAmount{
				Value:    req.Amount.StringFixed(2),
				Currency: req.Currency,
			},
			UserInfo: paytmUserInfo{
				CustID: req.Customer.CustomerID,
				Email:  req.Customer.Email,
				Mobile: req.Customer.Mobile,
			},
			IndustryType: a.config.IndustryType,
			ChannelID:    a.config.ChannelID,
		},
		Head: paytmRequestHead{Signature: checksum},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("paytm: failed to marshal request: %w", err)
	}

	path := fmt.Sprintf("%s?mid=%s&orderId=%s", paytmInitiatePath, a.config.MerchantID, req.OrderNumber)
	respBody, err := a.doRequest(ctx, http.MethodPost, path, bodyBytes)
	if err != nil {
		return nil, err
	}

	var resp paytmInitiateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}
	if resp.Body.ResultInfo.ResultStatus != paytmResultSuccess {
		return nil, fmt.Errorf("%w: %s - %s", payment.ErrGatewayRequestFailed,
			resp.Body.ResultInfo.ResultCode, resp.Body.ResultInfo.ResultMsg)
	}

	paymentURL := fmt.Sprintf("%s%s?mid=%s&orderId=%s&txnToken=%s",
		a.config.baseURL(), paytmShowPagePath, a.config.MerchantID, req.OrderNumber, resp.Body.TxnToken)

	return &payment.CreatePaymentResponse{
		GatewayOrderID: req.OrderNumber,
		GatewayType:    payment.GatewayTypePaytm,
		PaymentURL:     paymentURL,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Checksum:       checksum,
		RawResponse:    string(respBody),
	}, nil
}

// VerifyPayment queries the transaction status from Paytm
func (a *PaytmAdapter) VerifyPayment(ctx context.Context, gatewayOrderID string) (*payment.VerifyPaymentResponse, error) {
	if gatewayOrderID == "" {
		return nil, payment.ErrPaymentInvalidOrderID
	}

	statusBody := paytmStatusBody{
		MID:     a.config.MerchantID,
		OrderID: gatewayOrderID,
	}
	bodyBytes, err := json.Marshal(statusBody)
	if err != nil {
		return nil, fmt.Errorf("paytm: failed to marshal request: %w", err)
	}

	reqPayload := paytmStatusRequest{
		Body: statusBody,
		Head: paytmRequestHead{Signature: a.signer.SignPayload(bodyBytes)},
	}
	reqBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("paytm: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, paytmStatusPath, reqBytes)
	if err != nil {
		return nil, err
	}

	var resp paytmStatusResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}

	amount := decimal.Zero
	if resp.Body.TxnAmount != "" {
		if parsed, perr := decimal.NewFromString(resp.Body.TxnAmount); perr == nil {
			amount = parsed
		}
	}

	status := mapPaytmTxnStatus(resp.Body.ResultInfo.ResultStatus)
	return &payment.VerifyPaymentResponse{
		Success:              status == payment.TransactionStatusSuccess,
		Status:               status,
		GatewayTransactionID: resp.Body.TxnID,
		Amount:               amount,
		RawResponse:          string(respBody),
	}, nil
}

// CreateRefund requests a refund from Paytm
func (a *PaytmAdapter) CreateRefund(ctx context.Context, req *payment.RefundRequest) (*payment.RefundResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	refundBody := paytmRefundBody{
		MID:       a.config.MerchantID,
		TxnType:   "REFUND",
		OrderID:   req.GatewayOrderID,
		TxnID:     req.GatewayTransactionID,
		RefID:     req.RefundID.String(),
		RefundAmt: req.RefundAmount.StringFixed(2),
	}
	bodyBytes, err := json.Marshal(refundBody)
	if err != nil {
		return nil, fmt.Errorf("paytm: failed to marshal request: %w", err)
	}

	reqPayload := paytmRefundRequest{
		Body: refundBody,
		Head: paytmRequestHead{Signature: a.signer.SignPayload(bodyBytes)},
	}
	reqBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("paytm: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, paytmRefundPath, reqBytes)
	if err != nil {
		return nil, err
	}

	var resp paytmRefundResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}

	success := resp.Body.ResultInfo.ResultStatus == paytmResultSuccess ||
		resp.Body.ResultInfo.ResultStatus == paytmResultPending
	if !success {
		return &payment.RefundResponse{
			Success:     false,
			Status:      payment.RefundStatusFailed,
			RawResponse: string(respBody),
		}, nil
	}

	status := payment.RefundStatusSuccess
	if resp.Body.ResultInfo.ResultStatus == paytmResultPending {
		status = payment.RefundStatusPending
	}

	return &payment.RefundResponse{
		Success:         true,
		GatewayRefundID: resp.Body.RefundID,
		Status:          status,
		RawResponse:     string(respBody),
	}, nil
}

// ValidateWebhook parses a Paytm callback payload and checks required fields
func (a *PaytmAdapter) ValidateWebhook(payload []byte) (*payment.WebhookEvent, error) {
	params, err := parsePaytmWebhook(payload)
	if err != nil {
		return nil, err
	}

	for _, field := range []string{"ORDERID", "STATUS", "TXNID", "TXNAMOUNT", "CHECKSUMHASH"} {
		if params[field] == "" {
			return nil, &payment.WebhookValidationError{Field: field}
		}
	}

	amount, err := decimal.NewFromString(params["TXNAMOUNT"])
	if err != nil {
		return nil, &payment.WebhookValidationError{Field: "TXNAMOUNT"}
	}

	status := mapPaytmTxnStatus(params["STATUS"])
	return &payment.WebhookEvent{
		GatewayType:          payment.GatewayTypePaytm,
		GatewayOrderID:       params["ORDERID"],
		GatewayTransactionID: params["TXNID"],
		Success:              status == payment.TransactionStatusSuccess,
		Status:               status,
		Amount:               amount,
		RawPayload:           string(payload),
	}, nil
}

// VerifyWebhook verifies the checksum embedded in a Paytm callback. Paytm
// carries the signature inside the payload as CHECKSUMHASH; an explicit
// signature argument, when present, overrides it.
func (a *PaytmAdapter) VerifyWebhook(payload []byte, signature string) error {
	params, err := parsePaytmWebhook(payload)
	if err != nil {
		return err
	}

	checksum := signature
	if checksum == "" {
		checksum = params["CHECKSUMHASH"]
	}
	if checksum == "" {
		return &payment.WebhookValidationError{Field: "CHECKSUMHASH"}
	}
	delete(params, "CHECKSUMHASH")

	if !a.signer.Verify(params, checksum) {
		return payment.ErrChecksumMismatch
	}
	return nil
}

// buildCreateParams assembles the flat parameter map the checksum covers
func (a *PaytmAdapter) buildCreateParams(req *payment.CreatePaymentRequest) map[string]string {
	params := map[string]string{
		"MID":              a.config.MerchantID,
		"ORDER_ID":         req.OrderNumber,
		"TXN_AMOUNT":       req.Amount.StringFixed(2),
		"CUST_ID":          req.Customer.CustomerID,
		"WEBSITE":          a.config.Website,
		"INDUSTRY_TYPE_ID": a.config.IndustryType,
		"CHANNEL_ID":       a.config.ChannelID,
		"CALLBACK_URL":     a.config.CallbackURL,
	}
	if req.Customer.Email != "" {
		params["EMAIL"] = req.Customer.Email
	}
	if req.Customer.Mobile != "" {
		params["MOBILE_NO"] = req.Customer.Mobile
	}
	return params
}

func parsePaytmWebhook(payload []byte) (map[string]string, error) {
	var params map[string]string
	if err := json.Unmarshal(payload, &params); err != nil {
		return nil, &payment.WebhookValidationError{Field: "payload"}
	}
	return params, nil
}

func mapPaytmTxnStatus(status string) payment.TransactionStatus {
	switch status {
	case paytmTxnSuccess:
		return payment.TransactionStatusSuccess
	case paytmTxnPending:
		return payment.TransactionStatusCreated
	default:
		return payment.TransactionStatusFailed
	}
}

func (a *PaytmAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	url := a.config.baseURL() + path

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("paytm: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paytm: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp paytmInitiateResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Body.ResultInfo.ResultCode != "" {
			return nil, fmt.Errorf("%w: %s - %s", payment.ErrGatewayRequestFailed,
				errResp.Body.ResultInfo.ResultCode, errResp.Body.ResultInfo.ResultMsg)
		}
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}
