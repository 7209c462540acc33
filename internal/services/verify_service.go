package services

import (
	"context"
	"errors"
	"time"

	"turf-booking/internal/status"
	"turf-booking/internal/store"
	"turf-booking/models"
)

// VerifyResult is the gate-side verdict on a presented proof token.
type VerifyResult string

const (
	VerifyValid        VerifyResult = "valid"
	VerifyExpired      VerifyResult = "expired"
	VerifyNotConfirmed VerifyResult = "not_confirmed"
	VerifyUnknown      VerifyResult = "unknown"
)

// Verdict is what the gate device renders: the result plus enough of a
// snapshot to show who and what was booked. Snapshot fields are only
// set when the token resolved to a booking.
type Verdict struct {
	Result  VerifyResult    `json:"result"`
	Booking *models.Booking `json:"booking,omitempty"`
	Slot    *models.Slot    `json:"slot,omitempty"`
	Turf    *models.Turf    `json:"turf,omitempty"`
}

// VerifyService resolves entry proof tokens presented at the gate.
type VerifyService struct {
	store store.ReservationStore

	// now is swappable for tests.
	now func() time.Time
}

func NewVerifyService(st store.ReservationStore) *VerifyService {
	return &VerifyService{store: st, now: time.Now}
}

// Verify checks a proof token and classifies it. The checks are layered:
// an unknown token resolves first, then an unpaid or cancelled booking,
// then an outdated slot, and only a confirmed booking for a slot that
// has not ended is valid. Verification never mutates anything, so a
// token can be scanned any number of times.
func (s *VerifyService) Verify(ctx context.Context, token string) (*Verdict, error) {
	booking, err := s.store.GetBookingByProofToken(ctx, token)
	if err != nil {
		if errors.Is(err, status.ErrBookingNotFound) {
			return &Verdict{Result: VerifyUnknown}, nil
		}
		return nil, err
	}

	// the slot carries the expiry boundary; a failed read surfaces
	// instead of producing a verdict without it
	slot, err := s.store.GetSlot(ctx, booking.SlotID)
	if err != nil {
		return nil, err
	}

	verdict := &Verdict{Booking: booking, Slot: slot}
	if turf, terr := s.store.GetTurf(ctx, slot.TurfID); terr == nil {
		verdict.Turf = turf
	}

	if booking.Status != models.BookingConfirmed {
		verdict.Result = VerifyNotConfirmed
		return verdict, nil
	}

	if slot.EndTime.Before(s.now()) {
		verdict.Result = VerifyExpired
		return verdict, nil
	}

	verdict.Result = VerifyValid
	return verdict, nil
}
