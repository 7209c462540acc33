package models

import (
	"time"
)

// Review is optional feedback attached to a booking, at most one per
// booking. Resubmitting overwrites the existing review.
type Review struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment,omitempty"`
	Created   time.Time `json:"created"`
}
