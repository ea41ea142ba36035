package payment

// Wire types for the Razorpay gateway API. Amounts travel as integer paise.

type razorpayCreateOrderRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Receipt     string            `json:"receipt"`
	Notes       map[string]string `json:"notes,omitempty"`
	Customer    *razorpayCustomer `json:"customer,omitempty"`
	CallbackURL string            `json:"callback_url,omitempty"`
}

type razorpayCustomer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type razorpayOrder struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

type razorpayPayment struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	OrderID   string `json:"order_id"`
	Method    string `json:"method"`
	Captured  bool   `json:"captured"`
	Email     string `json:"email"`
	Contact   string `json:"contact"`
	ErrorCode string `json:"error_code"`
	CreatedAt int64  `json:"created_at"`
}

type razorpayPaymentCollection struct {
	Count int               `json:"count"`
	Items []razorpayPayment `json:"items"`
}

type razorpayRefundRequest struct {
	Amount int64             `json:"amount,omitempty"`
	Notes  map[string]string `json:"notes,omitempty"`
}

type razorpayRefund struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

type razorpayErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type razorpayErrorResponse struct {
	Error razorpayErrorBody `json:"error"`
}

type razorpayWebhookPaymentEntity struct {
	Entity razorpayPayment `json:"entity"`
}

type razorpayWebhookPayload struct {
	Payment razorpayWebhookPaymentEntity `json:"payment"`
}

type razorpayWebhookEnvelope struct {
	Entity  string                 `json:"entity"`
	Event   string                 `json:"event"`
	Payload razorpayWebhookPayload `json:"payload"`
}

// Razorpay statuses
const (
	razorpayOrderPaid = "paid"

	razorpayPaymentAuthorized = "authorized"
	razorpayPaymentCaptured   = "captured"
	razorpayPaymentFailed     = "failed"
	razorpayPaymentCreated    = "created"

	razorpayRefundProcessed = "processed"
	razorpayRefundPending   = "pending"

	razorpayEventPaymentCaptured = "payment.captured"
	razorpayEventPaymentFailed   = "payment.failed"
)
