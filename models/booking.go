package models

import (
	"time"
)

// BookingStatus transitions are monotonic: pending may move to confirmed
// or cancelled, and both of those are terminal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking links a user to one slot for one payment attempt.
//
// Amount is the slot price at reservation time, in paise, and never
// changes afterward. GatewaySessionID is the hosted-checkout session the
// payment gateway issued for it (at most one booking per session).
// QRSecret is a separate unguessable token used at the venue gate, so
// that booking IDs never have to double as entry credentials.
type Booking struct {
	ID               string        `json:"id"`
	SlotID           string        `json:"slot_id"`
	UserID           string        `json:"user_id"`
	GatewaySessionID string        `json:"gateway_session_id"`
	Amount           int64         `json:"amount"`
	Status           BookingStatus `json:"status"`
	QRSecret         string        `json:"qr_secret"`
	Created          time.Time     `json:"created"`
}
