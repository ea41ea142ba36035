package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	h := &BaseHandler{}
	engine := gin.New()
	engine.GET("/test", func(c *gin.Context) {
		h.HandleError(c, err)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	engine.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["error"].(map[string]interface{})["code"].(string)
}

func TestHandleError_NotFound(t *testing.T) {
	w := performWithError(t, shared.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_NOT_FOUND", errorCode(t, w))
}

func TestHandleError_ConcurrencyConflict(t *testing.T) {
	w := performWithError(t, shared.ErrConcurrencyConflict)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ERR_CONCURRENCY_CONFLICT", errorCode(t, w))
}

func TestHandleError_InvalidTransition(t *testing.T) {
	err := &order.InvalidTransitionError{From: order.OrderStatusPlaced, To: order.OrderStatusDelivered}
	w := performWithError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_INVALID_TRANSITION", errorCode(t, w))
}

func TestHandleError_ChecksumMismatch(t *testing.T) {
	w := performWithError(t, payment.ErrChecksumMismatch)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ERR_CHECKSUM_MISMATCH", errorCode(t, w))
}

func TestHandleError_WebhookValidation(t *testing.T) {
	w := performWithError(t, &payment.WebhookValidationError{Field: "ORDERID"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_WEBHOOK_INVALID", errorCode(t, w))
}

func TestHandleError_GatewayUnavailable(t *testing.T) {
	w := performWithError(t, payment.ErrGatewayUnavailable)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "ERR_GATEWAY_UNAVAILABLE", errorCode(t, w))
}

func TestHandleError_RefundExceedsTotal(t *testing.T) {
	w := performWithError(t, payment.ErrRefundAmountExceedsTotal)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "ERR_REFUND_EXCEEDS_TOTAL", errorCode(t, w))
}

func TestHandleError_UnknownError(t *testing.T) {
	w := performWithError(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ERR_INTERNAL", errorCode(t, w))
}
