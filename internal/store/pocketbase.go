package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"turf-booking/internal/status"
	"turf-booking/models"
)

// PocketBaseStore implements ReservationStore on the embedded
// PocketBase collections (turfs, slots, bookings, reviews).
//
// Reads go through the record API; the conditional transitions are raw
// UPDATE ... WHERE status = ... statements so that RowsAffected tells us
// whether the claim was won. Both run inside RunInTransaction where a
// slot and a booking change together.
type PocketBaseStore struct {
	app core.App
}

func NewPocketBaseStore(app core.App) *PocketBaseStore {
	return &PocketBaseStore{app: app}
}

func (s *PocketBaseStore) GetTurf(ctx context.Context, id string) (*models.Turf, error) {
	rec, err := s.app.FindRecordById("turfs", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrTurfNotFound
		}
		return nil, fmt.Errorf("find turf: %w", err)
	}
	return turfFromRecord(rec), nil
}

func (s *PocketBaseStore) GetTurfBySlug(ctx context.Context, slug string) (*models.Turf, error) {
	rec, err := s.app.FindFirstRecordByFilter("turfs", "slug = {:slug}", dbx.Params{"slug": slug})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrTurfNotFound
		}
		return nil, fmt.Errorf("find turf by slug: %w", err)
	}
	return turfFromRecord(rec), nil
}

func (s *PocketBaseStore) ListSlotsByTurf(ctx context.Context, turfID string, from time.Time) ([]models.Slot, error) {
	recs, err := s.app.FindRecordsByFilter(
		"slots",
		"turf_id = {:turfId} && end_time > {:from}",
		"start_time",
		-1,
		0,
		dbx.Params{"turfId": turfID, "from": from.UTC().Format(types.DefaultDateLayout)},
	)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	slots := make([]models.Slot, 0, len(recs))
	for _, rec := range recs {
		slots = append(slots, *slotFromRecord(rec))
	}
	return slots, nil
}

func (s *PocketBaseStore) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	rec, err := s.app.FindRecordById("slots", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrSlotNotFound
		}
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return slotFromRecord(rec), nil
}

func (s *PocketBaseStore) SetSlotStatus(ctx context.Context, slotID string, from, to models.SlotStatus) error {
	n, err := s.casUpdate(s.app.DB(),
		"UPDATE slots SET status = {:to} WHERE id = {:id} AND status = {:from}",
		dbx.Params{"to": string(to), "id": slotID, "from": string(from)},
	)
	if err != nil {
		return fmt.Errorf("set slot status: %w", err)
	}
	if n == 0 {
		return status.ErrTransitionNotApplied
	}
	return nil
}

func (s *PocketBaseStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	rec, err := s.app.FindRecordById("bookings", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return bookingFromRecord(rec), nil
}

func (s *PocketBaseStore) GetBookingBySession(ctx context.Context, sessionID string) (*models.Booking, error) {
	// holds that have not had a session attached yet store "" here; an
	// empty lookup must not match one of them
	if sessionID == "" {
		return nil, status.ErrBookingNotFound
	}
	rec, err := s.app.FindFirstRecordByFilter(
		"bookings",
		"gateway_session_id = {:sessionId}",
		dbx.Params{"sessionId": sessionID},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking by session: %w", err)
	}
	return bookingFromRecord(rec), nil
}

func (s *PocketBaseStore) GetBookingByProofToken(ctx context.Context, token string) (*models.Booking, error) {
	rec, err := s.app.FindFirstRecordByFilter(
		"bookings",
		"qr_secret = {:secret}",
		dbx.Params{"secret": token},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking by proof token: %w", err)
	}
	return bookingFromRecord(rec), nil
}

func (s *PocketBaseStore) CreateHold(ctx context.Context, slotID, userID, qrSecret string) (*models.Booking, error) {
	var booking *models.Booking

	err := s.app.RunInTransaction(func(txApp core.App) error {
		// Claim the slot first. Zero rows means it either does not
		// exist or someone else holds it; tell those apart so the
		// client can show "just taken" instead of "not found".
		n, err := s.casUpdate(txApp.DB(),
			"UPDATE slots SET status = {:held} WHERE id = {:id} AND status = {:available}",
			dbx.Params{"held": string(models.SlotHeld), "id": slotID, "available": string(models.SlotAvailable)},
		)
		if err != nil {
			return fmt.Errorf("claim slot: %w", err)
		}
		if n == 0 {
			if _, err := txApp.FindRecordById("slots", slotID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return status.ErrSlotNotFound
				}
				return fmt.Errorf("probe slot: %w", err)
			}
			return status.ErrSlotUnavailable
		}

		slotRec, err := txApp.FindRecordById("slots", slotID)
		if err != nil {
			return fmt.Errorf("reload slot: %w", err)
		}

		collection, err := txApp.FindCollectionByNameOrId("bookings")
		if err != nil {
			return fmt.Errorf("find bookings collection: %w", err)
		}

		rec := core.NewRecord(collection)
		rec.Set("slot_id", slotID)
		rec.Set("user_id", userID)
		rec.Set("amount", slotRec.GetInt("price"))
		rec.Set("status", string(models.BookingPending))
		rec.Set("qr_secret", qrSecret)
		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		booking = bookingFromRecord(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *PocketBaseStore) AttachSession(ctx context.Context, bookingID, sessionID string) error {
	rec, err := s.app.FindRecordById("bookings", bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return status.ErrBookingNotFound
		}
		return fmt.Errorf("find booking: %w", err)
	}

	rec.Set("gateway_session_id", sessionID)
	if err := s.app.Save(rec); err != nil {
		return fmt.Errorf("attach session: %w", err)
	}
	return nil
}

func (s *PocketBaseStore) FinalizeBooking(ctx context.Context, bookingID string, to models.BookingStatus, slotTo models.SlotStatus) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		rec, err := txApp.FindRecordById("bookings", bookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return status.ErrBookingNotFound
			}
			return fmt.Errorf("find booking: %w", err)
		}
		slotID := rec.GetString("slot_id")

		n, err := s.casUpdate(txApp.DB(),
			"UPDATE bookings SET status = {:to} WHERE id = {:id} AND status = {:pending}",
			dbx.Params{"to": string(to), "id": bookingID, "pending": string(models.BookingPending)},
		)
		if err != nil {
			return fmt.Errorf("finalize booking: %w", err)
		}
		if n == 0 {
			return status.ErrTransitionNotApplied
		}

		// The paired slot move must apply with the booking move or not
		// at all; a miss here rolls back both.
		n, err = s.casUpdate(txApp.DB(),
			"UPDATE slots SET status = {:to} WHERE id = {:id} AND status = {:held}",
			dbx.Params{"to": string(slotTo), "id": slotID, "held": string(models.SlotHeld)},
		)
		if err != nil {
			return fmt.Errorf("finalize slot: %w", err)
		}
		if n == 0 {
			return status.ErrTransitionNotApplied
		}
		return nil
	})
}

func (s *PocketBaseStore) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error) {
	recs, err := s.app.FindRecordsByFilter(
		"bookings",
		"status = {:pending} && created < {:cutoff}",
		"created",
		limit,
		0,
		dbx.Params{
			"pending": string(models.BookingPending),
			"cutoff":  cutoff.UTC().Format(types.DefaultDateLayout),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list stale pending: %w", err)
	}

	bookings := make([]models.Booking, 0, len(recs))
	for _, rec := range recs {
		bookings = append(bookings, *bookingFromRecord(rec))
	}
	return bookings, nil
}

func (s *PocketBaseStore) CountSlotsByStatus(ctx context.Context) (map[models.SlotStatus]int64, error) {
	rows, err := s.countByStatus("slots")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.SlotStatus]int64, len(rows))
	for st, n := range rows {
		counts[models.SlotStatus(st)] = n
	}
	return counts, nil
}

func (s *PocketBaseStore) CountBookingsByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	rows, err := s.countByStatus("bookings")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.BookingStatus]int64, len(rows))
	for st, n := range rows {
		counts[models.BookingStatus(st)] = n
	}
	return counts, nil
}

func (s *PocketBaseStore) UpsertReview(ctx context.Context, bookingID string, rating int, comment string) (*models.Review, error) {
	rec, err := s.app.FindFirstRecordByFilter(
		"reviews",
		"booking_id = {:bookingId}",
		dbx.Params{"bookingId": bookingID},
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find review: %w", err)
	}

	if rec == nil {
		collection, err := s.app.FindCollectionByNameOrId("reviews")
		if err != nil {
			return nil, fmt.Errorf("find reviews collection: %w", err)
		}
		rec = core.NewRecord(collection)
		rec.Set("booking_id", bookingID)
	}

	rec.Set("rating", rating)
	rec.Set("comment", comment)
	if err := s.app.Save(rec); err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}

	return reviewFromRecord(rec), nil
}

func (s *PocketBaseStore) GetReviewByBooking(ctx context.Context, bookingID string) (*models.Review, error) {
	rec, err := s.app.FindFirstRecordByFilter(
		"reviews",
		"booking_id = {:bookingId}",
		dbx.Params{"bookingId": bookingID},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return reviewFromRecord(rec), nil
}

func (s *PocketBaseStore) Ping(ctx context.Context) error {
	var one int
	if err := s.app.DB().NewQuery("SELECT 1").Row(&one); err != nil {
		return fmt.Errorf("store ping: %w", err)
	}
	return nil
}

func (s *PocketBaseStore) casUpdate(db dbx.Builder, query string, params dbx.Params) (int64, error) {
	res, err := db.NewQuery(query).Bind(params).Execute()
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *PocketBaseStore) countByStatus(table string) (map[string]int64, error) {
	var rows []struct {
		Status string `db:"status"`
		N      int64  `db:"n"`
	}
	err := s.app.DB().
		NewQuery(fmt.Sprintf("SELECT status, COUNT(*) AS n FROM %s GROUP BY status", table)).
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("count %s by status: %w", table, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}

func turfFromRecord(rec *core.Record) *models.Turf {
	return &models.Turf{
		ID:          rec.Id,
		Slug:        rec.GetString("slug"),
		Name:        rec.GetString("name"),
		Description: rec.GetString("description"),
		OwnerID:     rec.GetString("owner_id"),
		BasePrice:   int64(rec.GetInt("base_price")),
		Amenities:   rec.GetStringSlice("amenities"),
		Created:     rec.GetDateTime("created").Time(),
	}
}

func slotFromRecord(rec *core.Record) *models.Slot {
	return &models.Slot{
		ID:        rec.Id,
		TurfID:    rec.GetString("turf_id"),
		StartTime: rec.GetDateTime("start_time").Time(),
		EndTime:   rec.GetDateTime("end_time").Time(),
		Price:     int64(rec.GetInt("price")),
		Status:    models.SlotStatus(rec.GetString("status")),
		Created:   rec.GetDateTime("created").Time(),
	}
}

func bookingFromRecord(rec *core.Record) *models.Booking {
	return &models.Booking{
		ID:               rec.Id,
		SlotID:           rec.GetString("slot_id"),
		UserID:           rec.GetString("user_id"),
		GatewaySessionID: rec.GetString("gateway_session_id"),
		Amount:           int64(rec.GetInt("amount")),
		Status:           models.BookingStatus(rec.GetString("status")),
		QRSecret:         rec.GetString("qr_secret"),
		Created:          rec.GetDateTime("created").Time(),
	}
}

func reviewFromRecord(rec *core.Record) *models.Review {
	return &models.Review{
		ID:        rec.Id,
		BookingID: rec.GetString("booking_id"),
		Rating:    rec.GetInt("rating"),
		Comment:   rec.GetString("comment"),
		Created:   rec.GetDateTime("created").Time(),
	}
}
