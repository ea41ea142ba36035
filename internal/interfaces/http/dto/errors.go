package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInvalidTransition is used when an order status change is not allowed
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	// ErrCodeOrderNotPayable is used when payment is initiated for an unpayable order
	ErrCodeOrderNotPayable = "ERR_ORDER_NOT_PAYABLE"
	// ErrCodeNotRefundable is used when a refund is requested for an unfinished transaction
	ErrCodeNotRefundable = "ERR_NOT_REFUNDABLE"
	// ErrCodeRefundExceedsTotal is used when a refund amount exceeds the captured amount
	ErrCodeRefundExceedsTotal = "ERR_REFUND_EXCEEDS_TOTAL"
)

// Payment gateway error codes
const (
	// ErrCodeChecksumMismatch is used when webhook signature verification fails
	ErrCodeChecksumMismatch = "ERR_CHECKSUM_MISMATCH"
	// ErrCodeWebhookInvalid is used when a webhook payload cannot be parsed
	ErrCodeWebhookInvalid = "ERR_WEBHOOK_INVALID"
	// ErrCodeGatewayNotConfigured is used when the requested gateway has no adapter
	ErrCodeGatewayNotConfigured = "ERR_GATEWAY_NOT_CONFIGURED"
	// ErrCodeGatewayUnavailable is used when the gateway is temporarily unreachable
	ErrCodeGatewayUnavailable = "ERR_GATEWAY_UNAVAILABLE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationFormat: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition:  http.StatusUnprocessableEntity,
	ErrCodeOrderNotPayable:    http.StatusUnprocessableEntity,
	ErrCodeNotRefundable:      http.StatusUnprocessableEntity,
	ErrCodeRefundExceedsTotal: http.StatusUnprocessableEntity,

	// Gateway errors
	ErrCodeChecksumMismatch:     http.StatusUnauthorized,
	ErrCodeWebhookInvalid:       http.StatusBadRequest,
	ErrCodeGatewayNotConfigured: http.StatusBadRequest,
	ErrCodeGatewayUnavailable:   http.StatusBadGateway,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                  ErrCodeNotFound,
	"ALREADY_EXISTS":             ErrCodeAlreadyExists,
	"INVALID_INPUT":              ErrCodeInvalidInput,
	"INVALID_STATE":              ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":       ErrCodeConcurrencyConflict,
	"INVALID_STATUS":             ErrCodeInvalidInput,
	"ORDER_NOT_PAYABLE":          ErrCodeOrderNotPayable,
	"TRANSACTION_NOT_REFUNDABLE": ErrCodeNotRefundable,
	"VALIDATION_ERROR":           ErrCodeValidation,
	"BAD_REQUEST":                ErrCodeBadRequest,
	"INTERNAL_ERROR":             ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
