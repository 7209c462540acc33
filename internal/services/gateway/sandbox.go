package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"turf-booking/internal/services/gateway/hostpay"
	"turf-booking/internal/status"
	"turf-booking/utils"
)

type SandboxConfig struct {
	// WebhookSecret signs and verifies sandbox webhook deliveries.
	WebhookSecret string `json:"webhookSecret" mapstructure:"webhook_secret"`

	// CheckoutBaseURL is prefixed to generated checkout urls.
	CheckoutBaseURL string `json:"checkoutBaseUrl" mapstructure:"checkout_base_url"`

	// SessionTTL bounds how long a sandbox session stays payable.
	SessionTTL time.Duration `json:"sessionTtl" mapstructure:"session_ttl"`
}

// Sandbox is an in-memory payment gateway for development and tests. It
// creates sessions without any network call and exposes SignEvent so a
// caller can hand-craft verifiable webhook deliveries.
type Sandbox struct {
	secret          string
	checkoutBaseURL string
	sessionTTL      time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	tranChan chan *status.Transaction
}

// NewSandboxGateway creates a sandbox payment gateway.
func NewSandboxGateway(cfg *SandboxConfig) *Sandbox {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	base := cfg.CheckoutBaseURL
	if base == "" {
		base = "https://sandbox.invalid/checkout"
	}
	return &Sandbox{
		secret:          cfg.WebhookSecret,
		checkoutBaseURL: base,
		sessionTTL:      ttl,
		sessions:        make(map[string]*Session),
	}
}

func (s *Sandbox) GetProvider() Provider {
	return ProviderSandbox
}

func (s *Sandbox) CreateSession(_ context.Context, req *SessionRequest) (*Session, error) {
	id := "sbx_" + utils.RandomString(20)
	sess := &Session{
		ID:          id,
		CheckoutURL: fmt.Sprintf("%s/%s?ref=%s", s.checkoutBaseURL, id, url.QueryEscape(req.Reference)),
		ExpiresAt:   time.Now().Add(s.sessionTTL),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return sess, nil
}

// sandboxEvent is the sandbox webhook wire format.
type sandboxEvent struct {
	EventID   string            `json:"eventId"`
	Type      string            `json:"type"`
	SessionID string            `json:"sessionId"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (s *Sandbox) VerifyEvent(payload []byte, signature string) (*Event, error) {
	if !hostpay.VerifyHMAC(payload, signature, []byte(s.secret)) {
		return nil, status.ErrUnverifiedEvent
	}

	var ev sandboxEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("sandbox: VerifyEvent: json.Unmarshal: %v", err)
	}

	kind := EventUnknown
	switch ev.Type {
	case "checkout.session.completed":
		kind = EventSessionCompleted
	case "checkout.session.expired", "checkout.session.cancelled":
		kind = EventSessionExpired
	}

	return &Event{
		ID:        ev.EventID,
		Kind:      kind,
		SessionID: ev.SessionID,
		Metadata:  ev.Metadata,
	}, nil
}

// SignEvent builds a signed webhook delivery for the given event type and
// session. It returns the payload and its signature.
func (s *Sandbox) SignEvent(eventType, sessionID string) ([]byte, string, error) {
	ev := sandboxEvent{
		EventID:   "evt_" + utils.RandomString(16),
		Type:      eventType,
		SessionID: sessionID,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, "", fmt.Errorf("sandbox: SignEvent: %v", err)
	}
	return payload, hostpay.Hmac256(payload, []byte(s.secret)), nil
}

func (s *Sandbox) SetTransactionChannel(ch chan *status.Transaction) {
	s.tranChan = ch
}

func (s *Sandbox) Close(_ context.Context) error {
	return nil
}
