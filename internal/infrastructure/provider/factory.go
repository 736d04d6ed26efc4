package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
	mockProvider "github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/provider/mock"
	razorpayProvider "github.com/Ponna-create/ai-agent-vs-script-validator/internal/infrastructure/provider/razorpay"
)

// Factory creates the payment gateway selected in config
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// GetGateway returns the configured payment gateway
func (f *Factory) GetGateway() (provider.PaymentGateway, error) {
	switch f.config.Gateway.Provider {
	case config.GatewayRazorpay, "":
		return f.createRazorpayProvider()
	case config.GatewayMock:
		if f.config.IsProduction() {
			return nil, fmt.Errorf("mock gateway is not allowed in production")
		}
		f.logger.Warn("Using mock payment gateway")
		return mockProvider.NewGateway(f.config.Razorpay, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported gateway: %s", f.config.Gateway.Provider)
	}
}

func (f *Factory) createRazorpayProvider() (provider.PaymentGateway, error) {
	if f.config.Razorpay.KeyID == "" || f.config.Razorpay.KeySecret == "" {
		return nil, fmt.Errorf("Razorpay credentials not configured")
	}

	return razorpayProvider.NewRazorpayProvider(f.config.Razorpay, f.logger), nil
}
