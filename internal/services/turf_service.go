package services

import (
	"context"
	"time"

	"turf-booking/internal/status"
	"turf-booking/internal/store"
	"turf-booking/models"
	"turf-booking/monitoring"
)

// TurfService serves the public catalog and the owner-side slot
// administration.
type TurfService struct {
	store store.ReservationStore
}

func NewTurfService(st store.ReservationStore) *TurfService {
	return &TurfService{store: st}
}

// TurfPage is a turf with its upcoming slots, the public detail view.
type TurfPage struct {
	Turf  *models.Turf  `json:"turf"`
	Slots []models.Slot `json:"slots"`
}

// GetTurfPage returns a turf by slug with its slots from now onward.
func (s *TurfService) GetTurfPage(ctx context.Context, slug string) (*TurfPage, error) {
	turf, err := s.store.GetTurfBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	slots, err := s.store.ListSlotsByTurf(ctx, turf.ID, time.Now())
	if err != nil {
		return nil, err
	}

	return &TurfPage{Turf: turf, Slots: slots}, nil
}

// GetSlot returns a single slot.
func (s *TurfService) GetSlot(ctx context.Context, slotID string) (*models.Slot, error) {
	return s.store.GetSlot(ctx, slotID)
}

// BlockSlot takes an available slot off the market. Only the turf owner
// may block, and a slot mid-checkout or already booked stays untouched.
func (s *TurfService) BlockSlot(ctx context.Context, ownerID, slotID string) (*models.Slot, error) {
	return s.toggleSlot(ctx, ownerID, slotID, models.SlotBlocked, models.SlotAvailable)
}

// UnblockSlot puts a blocked slot back on the market.
func (s *TurfService) UnblockSlot(ctx context.Context, ownerID, slotID string) (*models.Slot, error) {
	return s.toggleSlot(ctx, ownerID, slotID, models.SlotAvailable, models.SlotBlocked)
}

func (s *TurfService) toggleSlot(ctx context.Context, ownerID, slotID string, to, from models.SlotStatus) (*models.Slot, error) {
	slot, err := s.store.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	turf, err := s.store.GetTurf(ctx, slot.TurfID)
	if err != nil {
		return nil, err
	}
	if turf.OwnerID != ownerID {
		return nil, status.ErrNotOwner
	}

	if slot.Status == to {
		return slot, nil
	}

	if err := s.store.SetSlotStatus(ctx, slotID, from, to); err != nil {
		if err == status.ErrTransitionNotApplied {
			// held or booked, or already at the target; either way the
			// owner does not get to move it from here
			monitoring.TrackBookingOperation("slot_toggle", "conflict")
			return nil, status.ErrBookingConflict
		}
		return nil, err
	}

	monitoring.TrackBookingOperation("slot_toggle", "applied")

	slot.Status = to
	return slot, nil
}
