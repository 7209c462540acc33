package models

import (
	"time"
)

// SlotStatus is the lifecycle status of a bookable time slot.
//
// "held" is a temporary claim taken while a payment is in flight; it is
// only ever set by the reservation flow and only ever cleared by
// confirm/release (or the hold sweeper). "blocked" is an owner action
// from the venue dashboard. Keeping them separate lets the dashboard and
// the gate verifier tell "payment pending" from "owner closed".
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotHeld      SlotStatus = "held"
	SlotBooked    SlotStatus = "booked"
	SlotBlocked   SlotStatus = "blocked"
)

// Slot is a bookable time interval on a turf. The interval is half-open:
// StartTime inclusive, EndTime exclusive. Price is in paise.
type Slot struct {
	ID        string     `json:"id"`
	TurfID    string     `json:"turf_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Price     int64      `json:"price"`
	Status    SlotStatus `json:"status"`
	Created   time.Time  `json:"created"`
}
