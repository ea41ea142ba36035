package payment

// Wire types for the Paytm gateway API. Requests carry a body plus a head
// holding the checksum over the serialized body.

type paytmRequestHead struct {
	Signature string `json:"signature"`
}

type paytmResponseHead struct {
	ResponseTimestamp string `json:"responseTimestamp,omitempty"`
	Version           string `json:"version,omitempty"`
	Signature         string `json:"signature,omitempty"`
}

type paytmResultInfo struct {
	ResultStatus string `json:"resultStatus"`
	ResultCode   string `json:"resultCode"`
	ResultMsg    string `json:"resultMsg"`
}

type paytmTxnAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type paytmUserInfo struct {
	CustID string `json:"custId"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
}

type paytmInitiateBody struct {
	RequestType  string         `json:"requestType"`
	MID          string         `json:"mid"`
	WebsiteName  string         `json:"websiteName"`
	OrderID      string         `json:"orderId"`
	CallbackURL  string         `json:"callbackUrl"`
	TxnAmount    paytmTxnAmount `json:"txnAmount"`
	UserInfo     paytmUserInfo  `json:"userInfo"`
	IndustryType string         `json:"industryTypeId,omitempty"`
	ChannelID    string         `json:"channelId,omitempty"`
}

type paytmInitiateRequest struct {
	Body paytmInitiateBody `json:"body"`
	Head paytmRequestHead  `json:"head"`
}

type paytmInitiateResponseBody struct {
	ResultInfo paytmResultInfo `json:"resultInfo"`
	TxnToken   string          `json:"txnToken"`
}

type paytmInitiateResponse struct {
	Body paytmInitiateResponseBody `json:"body"`
	Head paytmResponseHead         `json:"head"`
}

type paytmStatusBody struct {
	MID     string `json:"mid"`
	OrderID string `json:"orderId"`
}

type paytmStatusRequest struct {
	Body paytmStatusBody  `json:"body"`
	Head paytmRequestHead `json:"head"`
}

type paytmStatusResponseBody struct {
	ResultInfo paytmResultInfo `json:"resultInfo"`
	TxnID      string          `json:"txnId"`
	OrderID    string          `json:"orderId"`
	TxnAmount  string          `json:"txnAmount"`
	Status     string          `json:"resultStatus,omitempty"`
}

type paytmStatusResponse struct {
	Body paytmStatusResponseBody `json:"body"`
	Head paytmResponseHead       `json:"head"`
}

type paytmRefundBody struct {
	MID       string `json:"mid"`
	TxnType   string `json:"txnType"`
	OrderID   string `json:"orderId"`
	TxnID     string `json:"txnId"`
	RefID     string `json:"refId"`
	RefundAmt string `json:"refundAmount"`
}

type paytmRefundRequest struct {
	Body paytmRefundBody  `json:"body"`
	Head paytmRequestHead `json:"head"`
}

type paytmRefundResponseBody struct {
	ResultInfo paytmResultInfo `json:"resultInfo"`
	RefundID   string          `json:"refundId"`
	RefID      string          `json:"refId"`
}

type paytmRefundResponse struct {
	Body paytmRefundResponseBody `json:"body"`
	Head paytmResponseHead       `json:"head"`
}

// Paytm result statuses
const (
	paytmResultSuccess = "S"
	paytmResultPending = "PENDING"

	paytmTxnSuccess = "TXN_SUCCESS"
	paytmTxnFailure = "TXN_FAILURE"
	paytmTxnPending = "PENDING"
)
