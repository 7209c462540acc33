package hostpay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	pubnub "github.com/pubnub/go/v7"
	"github.com/shopspring/decimal"

	"turf-booking/internal/status"
)

type Config struct {
	ClientConfig `mapstructure:",squash"`

	// WebhookSecret verifies the signature on webhook deliveries.
	WebhookSecret string `json:"webhookSecret" mapstructure:"webhook_secret"`

	// PNSubscribeKey is the pubnub subscribe key for payment pushes.
	PNSubscribeKey string `json:"pnSubscribeKey" mapstructure:"pn_subscribe_key"`

	// PNUserID is the pubnub uuid for this subscriber.
	PNUserID string `json:"pnUserId" mapstructure:"pn_user_id"`

	// PNChannel is the pubnub channel the backend pushes settlements to.
	PNChannel string `json:"pnChannel" mapstructure:"pn_channel"`
}

type Hostpay struct {
	client        *Client
	webhookSecret string

	pn        *pubnub.PubNub
	pnChannel string
	listener  *pubnub.Listener

	// tranChan receives settled transactions from the pubnub push.
	tranChan chan *status.Transaction

	cancel context.CancelFunc
}

// CheckoutForm is the request body for creating a hosted checkout session.
type CheckoutForm struct {
	Amount        decimal.Decimal
	Currency      string
	Reference     string
	SuccessURL    string
	CancelURL     string
	ExpiryMinutes int
	Metadata      map[string]string
}

// SessionReply is the session payload inside the Hostpay reply envelope.
type SessionReply struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
	State       string `json:"state"`
	ExpiresAt   string `json:"expiresAt"`
}

// WebhookEvent is the wire form of a webhook delivery.
type WebhookEvent struct {
	EventID string `json:"eventId"`
	Type    string `json:"type"`
	Data    struct {
		SessionID string            `json:"sessionId"`
		Metadata  map[string]string `json:"metadata"`
	} `json:"data"`
}

// New creates a Hostpay gateway backend, starts the token refresher and
// subscribes to the settlement push channel when configured.
func New(ctx context.Context, cfg *Config) (*Hostpay, error) {
	ctx, cancel := context.WithCancel(ctx)

	h := &Hostpay{
		client:        newClient(ctx, &cfg.ClientConfig),
		webhookSecret: cfg.WebhookSecret,
		pnChannel:     cfg.PNChannel,
		cancel:        cancel,
	}

	token, err := h.client.connect(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("hostpay.New: %v", err)
	}
	h.client.setAccessToken(token)

	go h.client.notifyAccessTokenExpired(ctx)

	if cfg.PNSubscribeKey != "" {
		if err := h.newSubscription(ctx, cfg); err != nil {
			cancel()
			return nil, fmt.Errorf("hostpay.New: %v", err)
		}
	}

	return h, nil
}

func (h *Hostpay) newSubscription(ctx context.Context, cfg *Config) error {
	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PNUserID))
	pnCfg.SubscribeKey = cfg.PNSubscribeKey

	h.pn = pubnub.NewPubNub(pnCfg)
	h.listener = pubnub.NewListener()
	h.pn.AddListener(h.listener)

	go h.processSubscription(ctx)

	h.pn.Subscribe().Channels([]string{h.pnChannel}).Execute()

	return nil
}

// processSubscription drains the pubnub listener and forwards settled
// transactions to the registered channel.
func (h *Hostpay) processSubscription(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case st := <-h.listener.Status:
			switch st.Category {
			case pubnub.PNConnectedCategory:
				log.Println("hostpay: pubnub connected")
			case pubnub.PNReconnectedCategory:
				log.Println("hostpay: pubnub reconnected")
			case pubnub.PNDisconnectedCategory:
				log.Println("hostpay: pubnub disconnected")
			default:
				log.Printf("hostpay: pubnub status: %v", st.Category)
			}

		case msg := <-h.listener.Message:
			raw, err := json.Marshal(msg.Message)
			if err != nil {
				log.Printf("processSubscription: marshal message: %v", err)
				continue
			}

			var p settlementPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				log.Printf("processSubscription: unmarshal payload: %v", err)
				continue
			}

			if h.tranChan == nil {
				continue
			}

			tx, err := p.toTransaction()
			if err != nil {
				log.Printf("processSubscription: %v", err)
				continue
			}
			h.tranChan <- tx

		case <-h.listener.Presence:
			// ignore presence events
		}
	}
}

// settlementPayload is the pubnub push body for a settled payment.
type settlementPayload struct {
	RefID     string `json:"refId"`
	SessionID string `json:"sessionId"`
	Payer     string `json:"payerName"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Timestamp string `json:"timestamp"`
}

func (p *settlementPayload) toTransaction() (*status.Transaction, error) {
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return nil, fmt.Errorf("toTransaction: parse amount %q: %v", p.Amount, err)
	}

	createdAt, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		createdAt = time.Now()
	}

	return &status.Transaction{
		RefID:     p.RefID,
		SessionID: p.SessionID,
		Payer:     p.Payer,
		Amount:    amount,
		Currency:  p.Currency,
		CreatedAt: createdAt,
	}, nil
}

// CreateCheckoutSession starts a hosted checkout session.
func (h *Hostpay) CreateCheckoutSession(ctx context.Context, f *CheckoutForm) (*SessionReply, error) {
	return h.client.createSession(ctx, f)
}

// RetrieveSession fetches the current state of a session.
func (h *Hostpay) RetrieveSession(ctx context.Context, sessionID string) (*SessionReply, error) {
	return h.client.retrieveSession(ctx, sessionID)
}

// VerifyWebhook checks the delivery signature against the webhook secret
// and decodes the event. An invalid signature fails before any decode.
func (h *Hostpay) VerifyWebhook(body []byte, signature string) (*WebhookEvent, error) {
	if !VerifyHMAC(body, signature, []byte(h.webhookSecret)) {
		return nil, status.ErrUnverifiedEvent
	}

	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("VerifyWebhook: json.Unmarshal: %v", err)
	}
	return &ev, nil
}

// SetTranChannel registers the channel settled transactions are pushed to.
func (h *Hostpay) SetTranChannel(ch chan *status.Transaction) {
	h.tranChan = ch
}

// Close stops the token refresher and unsubscribes from pubnub.
func (h *Hostpay) Close() {
	if h.pn != nil {
		h.pn.Unsubscribe().Channels([]string{h.pnChannel}).Execute()
	}
	h.cancel()
}
