package gateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"turf-booking/internal/status"
)

// Provider identifies a payment gateway implementation.
type Provider string

const (
	ProviderHostpay Provider = "hostpay"
	ProviderSandbox Provider = "sandbox"
)

// SessionRequest describes the hosted checkout session to create.
// Amount is in major currency units (decimal rupees), converted from the
// core's paise at the boundary.
type SessionRequest struct {
	Amount    decimal.Decimal   `json:"amount"`
	Currency  string            `json:"currency"`
	Reference string            `json:"reference"` // booking id
	Metadata  map[string]string `json:"metadata"`

	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`

	ExpiryMinutes int `json:"expiry_minutes,omitempty"`
}

// Session is the gateway's handle for a created checkout session.
type Session struct {
	ID          string    `json:"id"`
	CheckoutURL string    `json:"checkout_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// EventKind is the gateway-neutral classification of a webhook event.
type EventKind string

const (
	EventSessionCompleted EventKind = "session.completed"
	EventSessionExpired   EventKind = "session.expired"
	EventUnknown          EventKind = "unknown"
)

// Event is a verified, parsed webhook notification.
type Event struct {
	ID        string            `json:"id"`
	Kind      EventKind         `json:"kind"`
	SessionID string            `json:"session_id"`
	Metadata  map[string]string `json:"metadata"`
}

// PaymentGateway is the narrow capability the booking core holds on a
// payment provider. Vendor types never cross this boundary.
type PaymentGateway interface {
	// GetProvider returns the gateway provider type.
	GetProvider() Provider

	// CreateSession creates a hosted checkout session for the request.
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)

	// VerifyEvent authenticates a raw webhook delivery and parses it.
	// An event whose signature does not verify is rejected with
	// status.ErrUnverifiedEvent and must never be acted upon.
	VerifyEvent(payload []byte, signature string) (*Event, error)

	// SetTransactionChannel sets the channel for provider-push payment
	// notices, for gateways that deliver over a realtime channel in
	// addition to the HTTP webhook.
	SetTransactionChannel(ch chan *status.Transaction)

	// Close gracefully closes any connections.
	Close(ctx context.Context) error
}

// GatewayFactory creates gateway instances based on provider type.
type GatewayFactory interface {
	CreateGateway(ctx context.Context, provider Provider, config any) (PaymentGateway, error)
	GetSupportedProviders() []Provider
}
