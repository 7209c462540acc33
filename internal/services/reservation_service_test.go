package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turf-booking/internal/status"
	"turf-booking/models"
)

func setupReservationService() (*ReservationService, *fakeStore, *fakeGateway, *recordingNotifier) {
	st := newFakeStore()
	gw := &fakeGateway{}
	notifier := &recordingNotifier{}
	svc := NewReservationService(st, gw, notifier, ReservationConfig{
		Currency:   "INR",
		SuccessURL: "https://app.test/success",
		CancelURL:  "https://app.test/cancel",
	})
	return svc, st, gw, notifier
}

func TestReserveCreatesHoldAndSession(t *testing.T) {
	svc, st, gw, _ := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")
	slot := st.addSlot(turf.ID, 80000, models.SlotAvailable)

	result, err := svc.Reserve(context.Background(), slot.ID, "user1")
	require.NoError(t, err)

	assert.Equal(t, models.BookingPending, result.Booking.Status)
	assert.Equal(t, int64(80000), result.Booking.Amount)
	assert.NotEmpty(t, result.Booking.QRSecret)
	assert.NotEmpty(t, result.CheckoutURL)
	assert.Equal(t, result.SessionID, result.Booking.GatewaySessionID)

	// the gateway saw rupees, not paise
	require.Len(t, gw.created, 1)
	assert.Equal(t, "800", gw.created[0].Amount.String())

	// session metadata links back to the booking, slot and user
	assert.Equal(t, map[string]string{
		"booking_id": result.Booking.ID,
		"slot_id":    slot.ID,
		"user_id":    "user1",
	}, gw.created[0].Metadata)

	got, err := st.GetSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotHeld, got.Status)
}

func TestReserveUnavailableSlot(t *testing.T) {
	svc, st, _, _ := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")

	for _, blocked := range []models.SlotStatus{models.SlotHeld, models.SlotBooked, models.SlotBlocked} {
		slot := st.addSlot(turf.ID, 50000, blocked)
		_, err := svc.Reserve(context.Background(), slot.ID, "user1")
		assert.ErrorIs(t, err, status.ErrSlotUnavailable, "status %s", blocked)
	}

	_, err := svc.Reserve(context.Background(), "missing", "user1")
	assert.ErrorIs(t, err, status.ErrSlotNotFound)
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	svc, st, _, _ := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")
	slot := st.addSlot(turf.ID, 50000, models.SlotAvailable)

	const callers = 20
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), slot.ID, "user1")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, status.ErrSlotUnavailable)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestReserveGatewayFailureReleasesHold(t *testing.T) {
	svc, st, gw, _ := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")
	slot := st.addSlot(turf.ID, 50000, models.SlotAvailable)

	gw.failCreate = errors.New("gateway down")

	_, err := svc.Reserve(context.Background(), slot.ID, "user1")
	require.Error(t, err)

	// the hold must not survive a checkout that never existed
	got, err := st.GetSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotAvailable, got.Status)

	// and the slot is immediately reservable again
	gw.failCreate = nil
	_, err = svc.Reserve(context.Background(), slot.ID, "user2")
	assert.NoError(t, err)
}

func TestConfirmIsIdempotent(t *testing.T) {
	svc, st, _, notifier := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")
	slot := st.addSlot(turf.ID, 50000, models.SlotAvailable)

	result, err := svc.Reserve(context.Background(), slot.ID, "user1")
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(context.Background(), result.Booking.ID))
	require.NoError(t, svc.Confirm(context.Background(), result.Booking.ID))

	booking, err := st.GetBooking(context.Background(), result.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)

	got, err := st.GetSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotBooked, got.Status)

	// the duplicate confirm did not notify twice
	assert.Equal(t, []string{result.Booking.ID}, notifier.confirmed)
}

func TestReleaseIsIdempotent(t *testing.T) {
	svc, st, _, _ := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")
	slot := st.addSlot(turf.ID, 50000, models.SlotAvailable)

	result, err := svc.Reserve(context.Background(), slot.ID, "user1")
	require.NoError(t, err)

	require.NoError(t, svc.Release(context.Background(), result.Booking.ID))
	require.NoError(t, svc.Release(context.Background(), result.Booking.ID))

	got, err := st.GetSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotAvailable, got.Status)
}

func TestTerminalStatesNeverFlip(t *testing.T) {
	svc, st, _, _ := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")

	// confirmed stays confirmed
	slotA := st.addSlot(turf.ID, 50000, models.SlotAvailable)
	a, err := svc.Reserve(context.Background(), slotA.ID, "user1")
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(context.Background(), a.Booking.ID))
	assert.ErrorIs(t, svc.Release(context.Background(), a.Booking.ID), status.ErrBookingConflict)

	gotA, _ := st.GetSlot(context.Background(), slotA.ID)
	assert.Equal(t, models.SlotBooked, gotA.Status)

	// cancelled stays cancelled
	slotB := st.addSlot(turf.ID, 50000, models.SlotAvailable)
	b, err := svc.Reserve(context.Background(), slotB.ID, "user1")
	require.NoError(t, err)
	require.NoError(t, svc.Release(context.Background(), b.Booking.ID))
	assert.ErrorIs(t, svc.Confirm(context.Background(), b.Booking.ID), status.ErrBookingConflict)

	gotB, _ := st.GetSlot(context.Background(), slotB.ID)
	assert.Equal(t, models.SlotAvailable, gotB.Status)
}

func TestAmountFixedAtHoldTime(t *testing.T) {
	svc, st, _, _ := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")
	slot := st.addSlot(turf.ID, 50000, models.SlotAvailable)

	result, err := svc.Reserve(context.Background(), slot.ID, "user1")
	require.NoError(t, err)

	// a price change after the hold does not move the booked amount
	st.mu.Lock()
	st.slots[slot.ID].Price = 99900
	st.mu.Unlock()

	require.NoError(t, svc.Confirm(context.Background(), result.Booking.ID))

	booking, err := st.GetBooking(context.Background(), result.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), booking.Amount)
}

func TestConfirmBySession(t *testing.T) {
	svc, st, _, _ := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")
	slot := st.addSlot(turf.ID, 50000, models.SlotAvailable)

	result, err := svc.Reserve(context.Background(), slot.ID, "user1")
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmBySession(context.Background(), result.SessionID))

	booking, err := st.GetBooking(context.Background(), result.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)

	err = svc.ConfirmBySession(context.Background(), "sess_unknown")
	assert.ErrorIs(t, err, status.ErrBookingNotFound)
}

func TestEmptySessionIDMatchesNothing(t *testing.T) {
	svc, st, _, _ := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")
	slot := st.addSlot(turf.ID, 50000, models.SlotAvailable)

	// a hold that never got its session attached stores "" there; an
	// empty lookup must not confirm it
	booking, err := st.CreateHold(context.Background(), slot.ID, "user1", "tok_unattached")
	require.NoError(t, err)
	require.Empty(t, booking.GatewaySessionID)

	err = svc.ConfirmBySession(context.Background(), "")
	assert.ErrorIs(t, err, status.ErrBookingNotFound)

	got, err := st.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, got.Status)
}

func TestReleasedSlotCanBeRebooked(t *testing.T) {
	svc, st, _, _ := setupReservationService()
	turf := st.addTurf("green-arena", "owner1")
	slot := st.addSlot(turf.ID, 50000, models.SlotAvailable)

	first, err := svc.Reserve(context.Background(), slot.ID, "user1")
	require.NoError(t, err)
	require.NoError(t, svc.Release(context.Background(), first.Booking.ID))

	second, err := svc.Reserve(context.Background(), slot.ID, "user2")
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(context.Background(), second.Booking.ID))

	// the first booking's proof token is dead, the second one lives
	assert.NotEqual(t, first.Booking.QRSecret, second.Booking.QRSecret)

	booking, err := st.GetBookingByProofToken(context.Background(), second.Booking.QRSecret)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
}
