package services

import (
	"context"
	"fmt"

	"turf-booking/internal/status"
	"turf-booking/internal/store"
	"turf-booking/models"
)

// ReviewService lets a player rate a turf after a confirmed booking.
type ReviewService struct {
	store store.ReservationStore
}

func NewReviewService(st store.ReservationStore) *ReviewService {
	return &ReviewService{store: st}
}

// SubmitReview records a rating for the caller's booking. Only the
// booking's user may review, and only once the booking is confirmed;
// resubmitting replaces the earlier review.
func (s *ReviewService) SubmitReview(ctx context.Context, userID, bookingID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating %d: %w", rating, status.ErrInvalidRating)
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, status.ErrNotOwner
	}
	if booking.Status != models.BookingConfirmed {
		return nil, status.ErrBookingConflict
	}

	return s.store.UpsertReview(ctx, bookingID, rating, comment)
}

// GetReview returns the review attached to a booking, if any.
func (s *ReviewService) GetReview(ctx context.Context, bookingID string) (*models.Review, error) {
	return s.store.GetReviewByBooking(ctx, bookingID)
}
