package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"turf-booking/internal/services/gateway"
	"turf-booking/internal/status"
	"turf-booking/monitoring"
)

const dedupeTTL = 24 * time.Hour

// WebhookService is the reconciliation pipeline for payment gateway
// deliveries. Deliveries are at-least-once and unordered, so every step
// downstream of signature verification is idempotent: a replayed event
// either short-circuits on the redis dedupe key or lands as a no-op on
// the booking state machine.
type WebhookService struct {
	gateway      gateway.PaymentGateway
	reservations *ReservationService
	redis        *redis.Client
}

func NewWebhookService(gw gateway.PaymentGateway, reservations *ReservationService, redisClient *redis.Client) *WebhookService {
	return &WebhookService{
		gateway:      gw,
		reservations: reservations,
		redis:        redisClient,
	}
}

// HandleDelivery verifies, dedupes and applies one webhook delivery.
//
// status.ErrUnverifiedEvent means the delivery must be rejected with no
// state change. Any other return of nil means the delivery is consumed
// and the gateway should not retry; errors ask for a retry.
func (s *WebhookService) HandleDelivery(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyEvent(payload, signature)
	if err != nil {
		if errors.Is(err, status.ErrUnverifiedEvent) {
			monitoring.TrackWebhookEvent("unknown", "unverified")
		}
		return err
	}

	if !s.claimEvent(ctx, event.ID) {
		monitoring.TrackWebhookEvent(string(event.Kind), "duplicate")
		return nil
	}

	switch event.Kind {
	case gateway.EventSessionCompleted:
		err = s.reservations.ConfirmBySession(ctx, event.SessionID)
	case gateway.EventSessionExpired:
		err = s.reservations.ReleaseBySession(ctx, event.SessionID)
	default:
		// unrecognized kinds are consumed so the gateway stops retrying
		log.Printf("webhook: ignoring event %s of kind %q", event.ID, event.Kind)
		monitoring.TrackWebhookEvent(string(event.Kind), "ignored")
		return nil
	}

	switch {
	case err == nil:
		monitoring.TrackWebhookEvent(string(event.Kind), "applied")
		return nil

	case errors.Is(err, status.ErrBookingNotFound):
		// a session this service never issued; drop it
		log.Printf("webhook: no booking for session %s (event %s)", event.SessionID, event.ID)
		monitoring.TrackWebhookEvent(string(event.Kind), "unmatched")
		return nil

	case errors.Is(err, status.ErrBookingConflict):
		// the booking already settled the other way; the delivery is
		// stale, not retryable
		log.Printf("webhook: conflicting event %s for session %s", event.ID, event.SessionID)
		monitoring.TrackWebhookEvent(string(event.Kind), "conflict")
		return nil

	default:
		// retryable failure: give the claim back so the gateway's
		// redelivery of this event id is not swallowed as a duplicate
		s.releaseClaim(ctx, event.ID)
		monitoring.TrackWebhookEvent(string(event.Kind), "error")
		return err
	}
}

// claimEvent takes the dedupe claim for an event id. Redis here is a
// fast path only: with redis down or absent every delivery proceeds and
// the state machine's idempotency absorbs the duplicates.
func (s *WebhookService) claimEvent(ctx context.Context, eventID string) bool {
	if s.redis == nil || eventID == "" {
		return true
	}

	ok, err := s.redis.SetNX(ctx, "webhook:event:"+eventID, 1, dedupeTTL).Result()
	if err != nil {
		log.Printf("webhook: dedupe claim failed, proceeding: %v", err)
		return true
	}
	return ok
}

// releaseClaim drops the dedupe claim so a retried delivery of the same
// event id reaches the state machine again.
func (s *WebhookService) releaseClaim(ctx context.Context, eventID string) {
	if s.redis == nil || eventID == "" {
		return
	}
	if err := s.redis.Del(ctx, "webhook:event:"+eventID).Err(); err != nil {
		log.Printf("webhook: dedupe claim release failed: %v", err)
	}
}

// ProcessTransactions consumes realtime settlement pushes from the
// gateway's provider channel and confirms the matching bookings. It is
// a second delivery path next to the HTTP webhook and shares its
// idempotency.
func (s *WebhookService) ProcessTransactions(ctx context.Context, ch <-chan *status.Transaction) {
	for {
		select {
		case <-ctx.Done():
			return

		case tx, ok := <-ch:
			if !ok {
				return
			}
			if err := s.reservations.ConfirmBySession(ctx, tx.SessionID); err != nil {
				switch {
				case errors.Is(err, status.ErrBookingNotFound):
					log.Printf("settlement push: no booking for session %s", tx.SessionID)
				case errors.Is(err, status.ErrBookingConflict):
					log.Printf("settlement push: stale settlement for session %s", tx.SessionID)
				default:
					log.Printf("settlement push: confirm session %s: %v", tx.SessionID, err)
				}
			}
		}
	}
}
