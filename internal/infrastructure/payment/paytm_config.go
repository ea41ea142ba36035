package payment

import (
	"errors"
	"time"
)

// Placeholder credentials shipped in sample configs. Matching values mean the
// merchant never configured the gateway, so the adapter runs in mock mode.
const (
	paytmPlaceholderMerchantID  = "YOUR_PAYTM_MID"
	paytmPlaceholderMerchantKey = "YOUR_PAYTM_KEY"
)

const (
	paytmDefaultBaseURL = "https://securegw.paytm.in"
	paytmSandboxBaseURL = "https://securegw-stage.paytm.in"

	paytmInitiatePath = "/theia/api/v1/initiateTransaction"
	paytmShowPagePath = "/theia/api/v1/showPaymentPage"
	paytmStatusPath   = "/v3/order/status"
	paytmRefundPath   = "/refund/apply"
)

// PaytmConfig contains configuration for the Paytm gateway
type PaytmConfig struct {
	// MerchantID is the Paytm merchant ID (mid)
	MerchantID string
	// MerchantKey is the shared secret used for checksum signing
	MerchantKey string
	// Website is the Paytm website label
	Website string
	// IndustryType classifies the merchant (e.g. "Retail")
	IndustryType string
	// ChannelID is the payment channel (e.g. "WEB")
	ChannelID string
	// CallbackURL receives payment notifications
	CallbackURL string
	// IsSandbox selects the staging environment
	IsSandbox bool
	// BaseURL overrides the environment-derived API base when set
	BaseURL string
	// Timeout bounds every outbound HTTP call
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrPaytmMissingMerchantID  = errors.New("paytm: missing merchant ID")
	ErrPaytmMissingMerchantKey = errors.New("paytm: missing merchant key")
	ErrPaytmMissingCallbackURL = errors.New("paytm: missing callback URL")
)

// Validate validates the configuration for live use
func (c *PaytmConfig) Validate() error {
	if c.MerchantID == "" {
		return ErrPaytmMissingMerchantID
	}
	if c.MerchantKey == "" {
		return ErrPaytmMissingMerchantKey
	}
	if c.CallbackURL == "" {
		return ErrPaytmMissingCallbackURL
	}
	if c.ChannelID == "" {
		c.ChannelID = "WEB"
	}
	if c.IndustryType == "" {
		c.IndustryType = "Retail"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// HasLiveCredentials reports whether real merchant credentials are present.
// Absent or placeholder values route the gateway to the mock backend.
func (c *PaytmConfig) HasLiveCredentials() bool {
	if c.MerchantID == "" || c.MerchantKey == "" {
		return false
	}
	if c.MerchantID == paytmPlaceholderMerchantID || c.MerchantKey == paytmPlaceholderMerchantKey {
		return false
	}
	return true
}

// baseURL returns the API base for the configured environment
func (c *PaytmConfig) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.IsSandbox {
		return paytmSandboxBaseURL
	}
	return paytmDefaultBaseURL
}
