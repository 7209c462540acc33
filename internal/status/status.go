package status

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Error taxonomy for the booking core. Handlers map these onto HTTP
// codes; everything else is treated as internal.
var (
	ErrTurfNotFound    = errors.New("turf: turf not found")
	ErrSlotNotFound    = errors.New("slot: slot not found")
	ErrSlotUnavailable = errors.New("slot: slot not available")

	ErrBookingNotFound = errors.New("booking: booking not found")
	ErrBookingConflict = errors.New("booking: booking already finalized")

	ErrReviewNotFound = errors.New("review: review not found")
	ErrInvalidRating  = errors.New("review: rating out of range")

	ErrNotOwner = errors.New("turf: actor is not the turf owner")

	ErrUnverifiedEvent = errors.New("webhook: event signature verification failed")

	// ErrTransitionNotApplied reports a conditional update that matched
	// zero rows. Callers re-read and classify it as an idempotent no-op
	// or a real conflict.
	ErrTransitionNotApplied = errors.New("store: conditional transition not applied")
)

// Transaction is a provider-push payment notice, delivered over the
// gateway's realtime channel as an alternative to the HTTP webhook.
type Transaction struct {
	RefID     string          `json:"ref_id"`
	SessionID string          `json:"session_id"`
	Payer     string          `json:"payer"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
}
