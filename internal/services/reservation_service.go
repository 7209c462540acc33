package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"turf-booking/internal/services/gateway"
	"turf-booking/internal/status"
	"turf-booking/internal/store"
	"turf-booking/models"
	"turf-booking/monitoring"
	"turf-booking/utils"
)

// ReservationConfig carries the checkout-facing settings of the
// reservation service.
type ReservationConfig struct {
	Currency      string
	SuccessURL    string
	CancelURL     string
	ExpiryMinutes int
}

// ReservationService owns the booking state machine: it takes holds,
// creates checkout sessions and applies the terminal confirm/release
// transitions. All slot/booking writes are conditional on the current
// status, so concurrent callers race safely and the loser observes a
// conflict instead of a double write.
type ReservationService struct {
	store    store.ReservationStore
	gateway  gateway.PaymentGateway
	breaker  *utils.CircuitBreaker
	notifier Notifier
	cfg      ReservationConfig
}

func NewReservationService(st store.ReservationStore, gw gateway.PaymentGateway, notifier Notifier, cfg ReservationConfig) *ReservationService {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.ExpiryMinutes <= 0 {
		cfg.ExpiryMinutes = 15
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ReservationService{
		store:    st,
		gateway:  gw,
		breaker:  utils.NewCircuitBreaker("payment-gateway"),
		notifier: notifier,
		cfg:      cfg,
	}
}

// ReserveResult is what a successful checkout start hands back to the
// caller.
type ReserveResult struct {
	Booking     *models.Booking `json:"booking"`
	CheckoutURL string          `json:"checkout_url"`
	SessionID   string          `json:"session_id"`
}

// Reserve claims the slot for the user and opens a hosted checkout
// session for it. Exactly one of any number of concurrent callers gets
// the hold; the rest fail with status.ErrSlotUnavailable. If session
// creation fails after the hold was taken, the hold is released before
// returning so no slot is left stranded behind a dead checkout.
func (s *ReservationService) Reserve(ctx context.Context, slotID, userID string) (*ReserveResult, error) {
	secret, err := utils.NewProofToken()
	if err != nil {
		return nil, fmt.Errorf("reserve: mint proof token: %w", err)
	}

	booking, err := s.store.CreateHold(ctx, slotID, userID, secret)
	if err != nil {
		monitoring.TrackBookingOperation("reserve", "rejected")
		return nil, err
	}

	started := time.Now()
	result, err := s.breaker.Execute(ctx, func() (any, error) {
		return s.gateway.CreateSession(ctx, &gateway.SessionRequest{
			Amount:    decimal.NewFromInt(booking.Amount).Shift(-2),
			Currency:  s.cfg.Currency,
			Reference: booking.ID,
			Metadata: map[string]string{
				"booking_id": booking.ID,
				"slot_id":    booking.SlotID,
				"user_id":    booking.UserID,
			},
			SuccessURL:    s.cfg.SuccessURL,
			CancelURL:     s.cfg.CancelURL,
			ExpiryMinutes: s.cfg.ExpiryMinutes,
		})
	})
	monitoring.TrackCheckoutDuration(time.Since(started))
	if err != nil {
		// compensate: the hold must not outlive a checkout that never
		// came into existence
		if relErr := s.Release(ctx, booking.ID); relErr != nil {
			log.Printf("reserve: release after gateway failure: booking=%s: %v", booking.ID, relErr)
		}
		monitoring.TrackBookingOperation("reserve", "gateway_error")
		return nil, fmt.Errorf("reserve: create checkout session: %w", err)
	}
	session := result.(*gateway.Session)

	if err := s.store.AttachSession(ctx, booking.ID, session.ID); err != nil {
		if relErr := s.Release(ctx, booking.ID); relErr != nil {
			log.Printf("reserve: release after attach failure: booking=%s: %v", booking.ID, relErr)
		}
		return nil, fmt.Errorf("reserve: attach session: %w", err)
	}
	booking.GatewaySessionID = session.ID

	monitoring.TrackBookingOperation("reserve", "held")

	return &ReserveResult{
		Booking:     booking,
		CheckoutURL: session.CheckoutURL,
		SessionID:   session.ID,
	}, nil
}

// Confirm moves a booking to confirmed and its slot to booked. Calling
// it again on an already confirmed booking is a no-op; calling it on a
// cancelled booking is a conflict. Confirmed and cancelled never flip.
func (s *ReservationService) Confirm(ctx context.Context, bookingID string) error {
	return s.finalize(ctx, bookingID, models.BookingConfirmed, models.SlotBooked)
}

// Release moves a booking to cancelled and frees its slot back to
// available. Idempotent on repeat; conflicts with a prior confirm.
func (s *ReservationService) Release(ctx context.Context, bookingID string) error {
	return s.finalize(ctx, bookingID, models.BookingCancelled, models.SlotAvailable)
}

// ConfirmBySession confirms the booking attached to a gateway session.
func (s *ReservationService) ConfirmBySession(ctx context.Context, sessionID string) error {
	booking, err := s.store.GetBookingBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.Confirm(ctx, booking.ID)
}

// ReleaseBySession releases the booking attached to a gateway session.
func (s *ReservationService) ReleaseBySession(ctx context.Context, sessionID string) error {
	booking, err := s.store.GetBookingBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.Release(ctx, booking.ID)
}

func (s *ReservationService) finalize(ctx context.Context, bookingID string, to models.BookingStatus, slotTo models.SlotStatus) error {
	op := "confirm"
	if to == models.BookingCancelled {
		op = "release"
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	switch booking.Status {
	case to:
		// already there, at-least-once delivery makes this normal
		monitoring.TrackBookingOperation(op, "noop")
		return nil
	case models.BookingPending:
		// fall through to the conditional transition
	default:
		monitoring.TrackBookingOperation(op, "conflict")
		return status.ErrBookingConflict
	}

	err = s.store.FinalizeBooking(ctx, bookingID, to, slotTo)
	if errors.Is(err, status.ErrTransitionNotApplied) {
		// lost the race; re-read to see who won
		booking, rerr := s.store.GetBooking(ctx, bookingID)
		if rerr != nil {
			return rerr
		}
		if booking.Status == to {
			monitoring.TrackBookingOperation(op, "noop")
			return nil
		}
		monitoring.TrackBookingOperation(op, "conflict")
		return status.ErrBookingConflict
	}
	if err != nil {
		return err
	}

	monitoring.TrackBookingOperation(op, "applied")

	booking.Status = to
	switch to {
	case models.BookingConfirmed:
		s.notifier.BookingConfirmed(ctx, booking)
	case models.BookingCancelled:
		s.notifier.BookingReleased(ctx, booking)
	}

	return nil
}

// Booking returns a booking by id.
func (s *ReservationService) Booking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.store.GetBooking(ctx, bookingID)
}

// BookingBySession returns the booking attached to a checkout session,
// for the post-payment status page.
func (s *ReservationService) BookingBySession(ctx context.Context, sessionID string) (*models.Booking, error) {
	return s.store.GetBookingBySession(ctx, sessionID)
}
