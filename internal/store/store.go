package store

import (
	"context"
	"time"

	"turf-booking/models"
)

// ReservationStore is the persistence contract for the booking core.
//
// Every transition that touches both a slot and its booking is applied
// as a single conditional unit keyed on the current status, so the
// store's transactional guarantees are the only concurrency control the
// service needs. Methods return status.ErrTransitionNotApplied when the
// conditional update matched nothing; the caller re-reads to classify.
type ReservationStore interface {
	GetTurf(ctx context.Context, id string) (*models.Turf, error)
	GetTurfBySlug(ctx context.Context, slug string) (*models.Turf, error)
	ListSlotsByTurf(ctx context.Context, turfID string, from time.Time) ([]models.Slot, error)

	GetSlot(ctx context.Context, id string) (*models.Slot, error)

	// SetSlotStatus is the owner block/unblock path: a CAS on the slot
	// status alone, no booking involved.
	SetSlotStatus(ctx context.Context, slotID string, from, to models.SlotStatus) error

	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingBySession(ctx context.Context, sessionID string) (*models.Booking, error)
	GetBookingByProofToken(ctx context.Context, token string) (*models.Booking, error)

	// CreateHold atomically claims an available slot (available -> held)
	// and inserts the paired pending booking with the slot's current
	// price. Returns ErrSlotNotFound or ErrSlotUnavailable when the
	// claim cannot be taken.
	CreateHold(ctx context.Context, slotID, userID, qrSecret string) (*models.Booking, error)

	// AttachSession records the gateway session id on a booking after
	// session creation succeeded.
	AttachSession(ctx context.Context, bookingID, sessionID string) error

	// FinalizeBooking applies the terminal pair transition in one unit:
	// booking pending -> to, slot held -> slotTo.
	FinalizeBooking(ctx context.Context, bookingID string, to models.BookingStatus, slotTo models.SlotStatus) error

	// ListStalePending returns pending bookings created before cutoff,
	// oldest first, for the hold sweeper.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error)

	CountSlotsByStatus(ctx context.Context) (map[models.SlotStatus]int64, error)
	CountBookingsByStatus(ctx context.Context) (map[models.BookingStatus]int64, error)

	UpsertReview(ctx context.Context, bookingID string, rating int, comment string) (*models.Review, error)
	GetReviewByBooking(ctx context.Context, bookingID string) (*models.Review, error)

	Ping(ctx context.Context) error
}
