package payment

import (
	"errors"
	"time"
)

const (
	razorpayPlaceholderKeyID     = "YOUR_RAZORPAY_KEY_ID"
	razorpayPlaceholderKeySecret = "YOUR_RAZORPAY_KEY_SECRET"
)

const (
	razorpayBaseURL = "https://api.razorpay.com"

	razorpayOrdersPath        = "/v1/orders"
	razorpayOrderPath         = "/v1/orders/%s"
	razorpayOrderPaymentsPath = "/v1/orders/%s/payments"
	razorpayRefundPath        = "/v1/payments/%s/refund"
)

// RazorpayConfig contains configuration for the Razorpay gateway
type RazorpayConfig struct {
	// KeyID is the API key ID used for basic auth
	KeyID string
	// KeySecret is the API key secret used for basic auth
	KeySecret string
	// WebhookSecret signs webhook payloads
	WebhookSecret string
	// CallbackURL receives payment notifications
	CallbackURL string
	// BaseURL overrides the default API base when set
	BaseURL string
	// Timeout bounds every outbound HTTP call
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrRazorpayMissingKeyID         = errors.New("razorpay: missing key ID")
	ErrRazorpayMissingKeySecret     = errors.New("razorpay: missing key secret")
	ErrRazorpayMissingWebhookSecret = errors.New("razorpay: missing webhook secret")
)

// Validate validates the configuration for live use
func (c *RazorpayConfig) Validate() error {
	if c.KeyID == "" {
		return ErrRazorpayMissingKeyID
	}
	if c.KeySecret == "" {
		return ErrRazorpayMissingKeySecret
	}
	if c.WebhookSecret == "" {
		return ErrRazorpayMissingWebhookSecret
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// HasLiveCredentials reports whether real API credentials are present.
// Absent or placeholder values route the gateway to the mock backend.
func (c *RazorpayConfig) HasLiveCredentials() bool {
	if c.KeyID == "" || c.KeySecret == "" {
		return false
	}
	if c.KeyID == razorpayPlaceholderKeyID || c.KeySecret == razorpayPlaceholderKeySecret {
		return false
	}
	return true
}
