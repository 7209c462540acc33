package gateway

import (
	"context"
	"fmt"

	"turf-booking/internal/services/gateway/hostpay"
)

// Factory implements GatewayFactory interface
type Factory struct{}

// NewFactory creates a new gateway factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateGateway creates a gateway instance based on provider type and configuration
func (f *Factory) CreateGateway(ctx context.Context, provider Provider, config any) (PaymentGateway, error) {
	switch provider {
	case ProviderHostpay:
		hpConfig, ok := config.(*hostpay.Config)
		if !ok {
			return nil, fmt.Errorf("invalid Hostpay config type, expected *hostpay.Config")
		}
		return NewHostpayGateway(ctx, hpConfig)

	case ProviderSandbox:
		sbConfig, ok := config.(*SandboxConfig)
		if !ok {
			return nil, fmt.Errorf("invalid sandbox config type, expected *SandboxConfig")
		}
		return NewSandboxGateway(sbConfig), nil

	default:
		return nil, fmt.Errorf("unsupported gateway provider: %s", provider)
	}
}

// GetSupportedProviders returns list of supported gateway providers
func (f *Factory) GetSupportedProviders() []Provider {
	return []Provider{
		ProviderHostpay,
		ProviderSandbox,
	}
}

// Registry manages multiple gateway instances
type Registry struct {
	gateways map[Provider]PaymentGateway
	factory  GatewayFactory
	primary  Provider
}

// NewRegistry creates a new gateway registry
func NewRegistry(factory GatewayFactory) *Registry {
	return &Registry{
		gateways: make(map[Provider]PaymentGateway),
		factory:  factory,
	}
}

// Register creates and registers a gateway instance. The first registered
// provider becomes the primary.
func (r *Registry) Register(ctx context.Context, provider Provider, config any) error {
	gw, err := r.factory.CreateGateway(ctx, provider, config)
	if err != nil {
		return fmt.Errorf("failed to create %s gateway: %w", provider, err)
	}

	r.gateways[provider] = gw

	if r.primary == "" {
		r.primary = provider
	}

	return nil
}

// Get returns a gateway instance by provider
func (r *Registry) Get(provider Provider) (PaymentGateway, error) {
	gw, exists := r.gateways[provider]
	if !exists {
		return nil, fmt.Errorf("gateway provider %s not registered", provider)
	}
	return gw, nil
}

// GetPrimary returns the primary gateway instance
func (r *Registry) GetPrimary() (PaymentGateway, error) {
	if r.primary == "" {
		return nil, fmt.Errorf("no primary gateway configured")
	}
	return r.Get(r.primary)
}

// SetPrimary sets the primary gateway provider
func (r *Registry) SetPrimary(provider Provider) error {
	if _, exists := r.gateways[provider]; !exists {
		return fmt.Errorf("gateway provider %s not registered", provider)
	}
	r.primary = provider
	return nil
}

// Close gracefully closes all gateway connections
func (r *Registry) Close(ctx context.Context) error {
	for provider, gw := range r.gateways {
		if err := gw.Close(ctx); err != nil {
			fmt.Printf("Error closing %s gateway: %v\n", provider, err)
		}
	}
	return nil
}
