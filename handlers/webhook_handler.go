package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"turf-booking/internal/services"
	"turf-booking/internal/status"
)

// SignatureHeader carries the HMAC of the raw webhook body.
const SignatureHeader = "X-Webhook-Signature"

// maxWebhookBody bounds the raw delivery size.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	app      *pocketbase.PocketBase
	webhooks *services.WebhookService
}

func NewWebhookHandler(app *pocketbase.PocketBase, webhooks *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		app:      app,
		webhooks: webhooks,
	}
}

// HandlePaymentWebhook - entry point for gateway deliveries. The
// gateway retries on anything but 2xx, so a consumed delivery always
// acks 200 even when it changed nothing.
func (h *WebhookHandler) HandlePaymentWebhook(e *core.RequestEvent) error {
	payload, err := io.ReadAll(io.LimitReader(e.Request.Body, maxWebhookBody))
	if err != nil {
		return apis.NewBadRequestError("Unreadable body", err)
	}

	signature := e.Request.Header.Get(SignatureHeader)

	err = h.webhooks.HandleDelivery(e.Request.Context(), payload, signature)
	switch {
	case err == nil:
		return e.JSON(http.StatusOK, map[string]any{"received": true})

	case errors.Is(err, status.ErrUnverifiedEvent):
		return apis.NewBadRequestError("Signature verification failed", nil)

	default:
		// 500 asks the gateway to redeliver
		return apis.NewApiError(500, "Delivery not processed", err)
	}
}
