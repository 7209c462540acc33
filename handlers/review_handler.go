package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"turf-booking/internal/services"
)

type ReviewHandler struct {
	app     *pocketbase.PocketBase
	reviews *services.ReviewService
}

func NewReviewHandler(app *pocketbase.PocketBase, reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		app:     app,
		reviews: reviews,
	}
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SubmitReview - rate a confirmed booking
func (h *ReviewHandler) SubmitReview(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookingID := e.Request.PathValue("bookingId")

	var req reviewRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	review, err := h.reviews.SubmitReview(e.Request.Context(), e.Auth.Id, bookingID, req.Rating, req.Comment)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, review)
}

// GetReview - fetch the review attached to a booking
func (h *ReviewHandler) GetReview(e *core.RequestEvent) error {
	bookingID := e.Request.PathValue("bookingId")

	review, err := h.reviews.GetReview(e.Request.Context(), bookingID)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, review)
}
