package gateway

import (
	"context"
	"fmt"
	"time"

	"turf-booking/internal/services/gateway/hostpay"
	"turf-booking/internal/status"
)

// HostpayAdapter adapts the Hostpay vendor client to the PaymentGateway
// interface.
type HostpayAdapter struct {
	hp *hostpay.Hostpay
}

// NewHostpayGateway creates a Hostpay-backed payment gateway.
func NewHostpayGateway(ctx context.Context, cfg *hostpay.Config) (*HostpayAdapter, error) {
	hp, err := hostpay.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("NewHostpayGateway: %v", err)
	}
	return &HostpayAdapter{hp: hp}, nil
}

func (a *HostpayAdapter) GetProvider() Provider {
	return ProviderHostpay
}

func (a *HostpayAdapter) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	reply, err := a.hp.CreateCheckoutSession(ctx, &hostpay.CheckoutForm{
		Amount:        req.Amount,
		Currency:      req.Currency,
		Reference:     req.Reference,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		ExpiryMinutes: req.ExpiryMinutes,
		Metadata:      req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("hostpay: CreateSession: %v", err)
	}

	expiresAt, err := time.Parse(time.RFC3339, reply.ExpiresAt)
	if err != nil {
		expiresAt = time.Time{}
	}

	return &Session{
		ID:          reply.SessionID,
		CheckoutURL: reply.CheckoutURL,
		ExpiresAt:   expiresAt,
	}, nil
}

func (a *HostpayAdapter) VerifyEvent(payload []byte, signature string) (*Event, error) {
	ev, err := a.hp.VerifyWebhook(payload, signature)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        ev.EventID,
		Kind:      eventKindFromHostpay(ev.Type),
		SessionID: ev.Data.SessionID,
		Metadata:  ev.Data.Metadata,
	}, nil
}

func (a *HostpayAdapter) SetTransactionChannel(ch chan *status.Transaction) {
	a.hp.SetTranChannel(ch)
}

func (a *HostpayAdapter) Close(_ context.Context) error {
	a.hp.Close()
	return nil
}

func eventKindFromHostpay(t string) EventKind {
	switch t {
	case "checkout.session.completed":
		return EventSessionCompleted
	case "checkout.session.expired", "checkout.session.cancelled":
		return EventSessionExpired
	default:
		return EventUnknown
	}
}
