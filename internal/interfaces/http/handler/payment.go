package handler

import (
	"io"

	paymentapp "github.com/commerce/backend/internal/application/payment"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// razorpaySignatureHeader carries the webhook signature for Razorpay
// notifications. Paytm embeds the checksum inside the payload instead.
const razorpaySignatureHeader = "X-Razorpay-Signature"

// PaymentHandler handles payment-related API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.Service
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.Service) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	payments.POST("/initiate", h.Initiate)
	payments.POST("/webhooks/paytm", h.PaytmWebhook)
	payments.POST("/webhooks/razorpay", h.RazorpayWebhook)
	payments.POST("/reconcile/:gatewayOrderID", h.Reconcile)
	payments.POST("/refunds", h.RequestRefund)

	rg.GET("/orders/:id/payments", h.ListByOrder)
}

// Initiate handles POST /payments/initiate
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req paymentapp.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.paymentService.InitiatePayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// PaytmWebhook handles POST /payments/webhooks/paytm
func (h *PaymentHandler) PaytmWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read webhook body")
		return
	}

	// Paytm carries the checksum inside the payload
	result, err := h.paymentService.HandleWebhook(c.Request.Context(), payment.GatewayTypePaytm, payload, "")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RazorpayWebhook handles POST /payments/webhooks/razorpay
func (h *PaymentHandler) RazorpayWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read webhook body")
		return
	}

	signature := c.GetHeader(razorpaySignatureHeader)
	result, err := h.paymentService.HandleWebhook(c.Request.Context(), payment.GatewayTypeRazorpay, payload, signature)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Reconcile handles POST /payments/reconcile/:gatewayOrderID
func (h *PaymentHandler) Reconcile(c *gin.Context) {
	gatewayOrderID := c.Param("gatewayOrderID")
	if gatewayOrderID == "" {
		h.BadRequest(c, "Gateway order ID is required")
		return
	}

	resp, err := h.paymentService.ReconcilePayment(c.Request.Context(), gatewayOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RequestRefund handles POST /payments/refunds
func (h *PaymentHandler) RequestRefund(c *gin.Context) {
	var req paymentapp.RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.paymentService.RequestRefund(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListByOrder handles GET /orders/:id/payments
func (h *PaymentHandler) ListByOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.paymentService.GetTransactionsByOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
