package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"turf-booking/internal/services"
)

type BookingHandler struct {
	app          *pocketbase.PocketBase
	reservations *services.ReservationService
}

func NewBookingHandler(app *pocketbase.PocketBase, reservations *services.ReservationService) *BookingHandler {
	return &BookingHandler{
		app:          app,
		reservations: reservations,
	}
}

type checkoutRequest struct {
	SlotID string `json:"slot_id"`
}

// StartCheckout - claim a slot and open a hosted checkout session
func (h *BookingHandler) StartCheckout(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req checkoutRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.SlotID == "" {
		return apis.NewBadRequestError("slot_id is required", nil)
	}

	ctx := e.Request.Context()

	result, err := h.reservations.Reserve(ctx, req.SlotID, e.Auth.Id)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"booking_id":   result.Booking.ID,
		"status":       result.Booking.Status,
		"amount":       result.Booking.Amount,
		"session_id":   result.SessionID,
		"checkout_url": result.CheckoutURL,
	})
}

// GetBookingBySession - payment status page lookup by checkout session
func (h *BookingHandler) GetBookingBySession(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	sessionID := e.Request.PathValue("sessionId")
	ctx := e.Request.Context()

	booking, err := h.reservations.BookingBySession(ctx, sessionID)
	if err != nil {
		return apiError(err)
	}

	if booking.UserID != e.Auth.Id {
		return apis.NewForbiddenError("Access denied", nil)
	}

	return e.JSON(http.StatusOK, booking)
}

// CancelBooking - user-initiated release of a pending hold
func (h *BookingHandler) CancelBooking(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookingID := e.Request.PathValue("bookingId")
	ctx := e.Request.Context()

	booking, err := h.reservations.Booking(ctx, bookingID)
	if err != nil {
		return apiError(err)
	}
	if booking.UserID != e.Auth.Id {
		return apis.NewForbiddenError("Access denied", nil)
	}

	if err := h.reservations.Release(ctx, bookingID); err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"status": "cancelled"})
}
