package services

import (
	"context"

	pubnub "github.com/pubnub/go"

	"turf-booking/models"
)

// Notifier pushes booking state changes to interested clients. The
// booking core never blocks on it; implementations are fire and forget.
type Notifier interface {
	BookingConfirmed(ctx context.Context, booking *models.Booking)
	BookingReleased(ctx context.Context, booking *models.Booking)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) BookingConfirmed(context.Context, *models.Booking) {}
func (NopNotifier) BookingReleased(context.Context, *models.Booking)  {}

// PubNubNotifier publishes booking updates on a per-user channel so the
// status page flips without polling.
type PubNubNotifier struct {
	pn *pubnub.PubNub
}

func NewPubNubNotifier(pn *pubnub.PubNub) *PubNubNotifier {
	return &PubNubNotifier{pn: pn}
}

func (n *PubNubNotifier) BookingConfirmed(_ context.Context, booking *models.Booking) {
	n.publish(booking, "booking_confirmed")
}

func (n *PubNubNotifier) BookingReleased(_ context.Context, booking *models.Booking) {
	n.publish(booking, "booking_released")
}

func (n *PubNubNotifier) publish(booking *models.Booking, kind string) {
	go n.pn.Publish().
		Channel("booking-updates." + booking.UserID).
		Message(map[string]any{
			"type":       kind,
			"booking_id": booking.ID,
			"slot_id":    booking.SlotID,
			"status":     string(booking.Status),
		}).
		Execute()
}
