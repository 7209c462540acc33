package handlers

import (
	"errors"

	"github.com/pocketbase/pocketbase/apis"

	"turf-booking/internal/status"
)

// apiError maps a service error onto the API error taxonomy. Anything
// unrecognized becomes a 500 with the raw error attached for the logs.
func apiError(err error) error {
	switch {
	case errors.Is(err, status.ErrTurfNotFound),
		errors.Is(err, status.ErrSlotNotFound),
		errors.Is(err, status.ErrBookingNotFound),
		errors.Is(err, status.ErrReviewNotFound):
		return apis.NewNotFoundError("Not found", err)

	case errors.Is(err, status.ErrSlotUnavailable),
		errors.Is(err, status.ErrBookingConflict):
		return apis.NewApiError(409, "Conflict with current state", err)

	case errors.Is(err, status.ErrNotOwner):
		return apis.NewForbiddenError("Access denied", err)

	case errors.Is(err, status.ErrInvalidRating):
		return apis.NewBadRequestError("Invalid rating", err)

	case errors.Is(err, status.ErrUnverifiedEvent):
		return apis.NewBadRequestError("Signature verification failed", err)

	default:
		return apis.NewApiError(500, "Something went wrong", err)
	}
}
