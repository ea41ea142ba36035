package handler

import (
	"errors"
	"net/http"

	"github.com/commerce/backend/internal/domain/order"
	"github.com/commerce/backend/internal/domain/payment"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "request_id"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return ""
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain and gateway errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var transitionErr *order.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		h.ErrorWithCode(c, dto.ErrCodeInvalidTransition, transitionErr.Error())
		return
	}

	var webhookErr *payment.WebhookValidationError
	if errors.As(err, &webhookErr) {
		h.ErrorWithCode(c, dto.ErrCodeWebhookInvalid, webhookErr.Error())
		return
	}

	switch {
	case errors.Is(err, payment.ErrChecksumMismatch):
		h.ErrorWithCode(c, dto.ErrCodeChecksumMismatch, err.Error())
		return
	case errors.Is(err, payment.ErrGatewayNotConfigured):
		h.ErrorWithCode(c, dto.ErrCodeGatewayNotConfigured, err.Error())
		return
	case errors.Is(err, payment.ErrGatewayUnavailable),
		errors.Is(err, payment.ErrGatewayRequestFailed),
		errors.Is(err, payment.ErrGatewayInvalidResponse):
		h.ErrorWithCode(c, dto.ErrCodeGatewayUnavailable, err.Error())
		return
	case errors.Is(err, payment.ErrRefundAmountExceedsTotal):
		h.ErrorWithCode(c, dto.ErrCodeRefundExceedsTotal, err.Error())
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.ErrorWithCode(c, code, domainErr.Message)
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
