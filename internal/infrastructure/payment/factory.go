package payment

import (
	"go.uber.org/zap"

	"github.com/commerce/backend/internal/domain/payment"
)

// NewPaytmGateway returns a live Paytm adapter when real credentials are
// configured, otherwise a mock backend of the same gateway type. The choice
// is made once at construction.
func NewPaytmGateway(config *PaytmConfig, logger *zap.Logger) (payment.Gateway, error) {
	if !config.HasLiveCredentials() {
		logger.Warn("paytm credentials absent or placeholder, using mock gateway backend")
		return NewMockBackend(payment.GatewayTypePaytm), nil
	}
	return NewPaytmAdapter(config)
}

// NewRazorpayGateway returns a live Razorpay adapter when real credentials
// are configured, otherwise a mock backend of the same gateway type.
func NewRazorpayGateway(config *RazorpayConfig, logger *zap.Logger) (payment.Gateway, error) {
	if !config.HasLiveCredentials() {
		logger.Warn("razorpay credentials absent or placeholder, using mock gateway backend")
		return NewMockBackend(payment.GatewayTypeRazorpay), nil
	}
	return NewRazorpayAdapter(config)
}

// Registry resolves gateways by type
type Registry struct {
	gateways map[payment.GatewayType]payment.Gateway
}

// NewRegistry creates a registry over the given gateways
func NewRegistry(gateways ...payment.Gateway) *Registry {
	r := &Registry{gateways: make(map[payment.GatewayType]payment.Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.GatewayType()] = g
	}
	return r
}

// Get returns the gateway for the given type
func (r *Registry) Get(gatewayType payment.GatewayType) (payment.Gateway, error) {
	g, ok := r.gateways[gatewayType]
	if !ok {
		return nil, payment.ErrGatewayNotConfigured
	}
	return g, nil
}
