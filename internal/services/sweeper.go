package services

import (
	"context"
	"errors"
	"log"
	"time"

	"turf-booking/internal/status"
	"turf-booking/internal/store"
	"turf-booking/monitoring"
)

const sweepBatchSize = 100

// HoldSweeper releases pending holds whose checkout never settled. It
// is the backstop behind the gateway's session.expired webhook: if that
// delivery is lost, the sweeper frees the slot once the hold passes the
// age limit.
type HoldSweeper struct {
	store        store.ReservationStore
	reservations *ReservationService

	interval time.Duration
	maxAge   time.Duration
}

func NewHoldSweeper(st store.ReservationStore, reservations *ReservationService, interval, maxAge time.Duration) *HoldSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	return &HoldSweeper{
		store:        st,
		reservations: reservations,
		interval:     interval,
		maxAge:       maxAge,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *HoldSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				log.Printf("hold sweeper: %v", err)
			} else if n > 0 {
				log.Printf("hold sweeper: released %d stale holds", n)
			}
		}
	}
}

// SweepOnce releases every pending booking older than the age limit and
// returns how many it released. A hold that a webhook confirms mid-sweep
// loses nothing: the release lands as a conflict and is skipped.
func (s *HoldSweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.maxAge)

	stale, err := s.store.ListStalePending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range stale {
		err := s.reservations.Release(ctx, stale[i].ID)
		switch {
		case err == nil:
			released++
		case errors.Is(err, status.ErrBookingConflict):
			// settled between the list and the release
		default:
			log.Printf("hold sweeper: release booking %s: %v", stale[i].ID, err)
		}
	}

	if released > 0 {
		monitoring.TrackSweptHolds(released)
	}
	return released, nil
}
