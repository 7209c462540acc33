package gateway

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turf-booking/internal/status"
)

func TestSandboxCreateSession(t *testing.T) {
	sandbox := NewSandboxGateway(&SandboxConfig{WebhookSecret: "s"})

	session, err := sandbox.CreateSession(context.Background(), &SessionRequest{
		Amount:    decimal.NewFromInt(500),
		Currency:  "INR",
		Reference: "booking_1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Contains(t, session.CheckoutURL, session.ID)
	assert.Contains(t, session.CheckoutURL, "ref=booking_1")
	assert.False(t, session.ExpiresAt.IsZero())
}

func TestSandboxSignAndVerifyRoundTrip(t *testing.T) {
	sandbox := NewSandboxGateway(&SandboxConfig{WebhookSecret: "s"})

	payload, sig, err := sandbox.SignEvent("checkout.session.completed", "sess_1")
	require.NoError(t, err)

	event, err := sandbox.VerifyEvent(payload, sig)
	require.NoError(t, err)

	assert.Equal(t, EventSessionCompleted, event.Kind)
	assert.Equal(t, "sess_1", event.SessionID)
	assert.NotEmpty(t, event.ID)
}

func TestSandboxVerifyRejectsTampering(t *testing.T) {
	sandbox := NewSandboxGateway(&SandboxConfig{WebhookSecret: "s"})

	payload, sig, err := sandbox.SignEvent("checkout.session.completed", "sess_1")
	require.NoError(t, err)

	// flipped body
	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] ^= 0xff
	_, err = sandbox.VerifyEvent(tampered, sig)
	assert.ErrorIs(t, err, status.ErrUnverifiedEvent)

	// wrong signature
	_, err = sandbox.VerifyEvent(payload, "deadbeef")
	assert.ErrorIs(t, err, status.ErrUnverifiedEvent)

	// wrong secret
	other := NewSandboxGateway(&SandboxConfig{WebhookSecret: "different"})
	_, err = other.VerifyEvent(payload, sig)
	assert.ErrorIs(t, err, status.ErrUnverifiedEvent)
}

func TestSandboxEventKindMapping(t *testing.T) {
	sandbox := NewSandboxGateway(&SandboxConfig{WebhookSecret: "s"})

	cases := map[string]EventKind{
		"checkout.session.completed": EventSessionCompleted,
		"checkout.session.expired":   EventSessionExpired,
		"checkout.session.cancelled": EventSessionExpired,
		"checkout.session.refunded":  EventUnknown,
	}

	for wire, want := range cases {
		payload, sig, err := sandbox.SignEvent(wire, "sess_1")
		require.NoError(t, err)

		event, err := sandbox.VerifyEvent(payload, sig)
		require.NoError(t, err)
		assert.Equal(t, want, event.Kind, "wire type %s", wire)
	}
}
