package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"turf-booking/internal/services/gateway"
	"turf-booking/internal/status"
	"turf-booking/models"
)

// fakeStore is an in-memory ReservationStore with the same conditional
// update semantics as the real one: every transition checks the current
// status under the lock and reports ErrTransitionNotApplied on a miss.
type fakeStore struct {
	mu       sync.Mutex
	seq      int
	turfs    map[string]*models.Turf
	slots    map[string]*models.Slot
	bookings map[string]*models.Booking
	reviews  map[string]*models.Review

	// failFinalize fails the next FinalizeBooking call, then clears.
	failFinalize error
	// failGetSlot makes every GetSlot call error.
	failGetSlot error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		turfs:    make(map[string]*models.Turf),
		slots:    make(map[string]*models.Slot),
		bookings: make(map[string]*models.Booking),
		reviews:  make(map[string]*models.Review),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_%d", prefix, f.seq)
}

func (f *fakeStore) addTurf(slug, ownerID string) *models.Turf {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &models.Turf{ID: f.nextID("turf"), Slug: slug, Name: slug, OwnerID: ownerID, Created: time.Now()}
	f.turfs[t.ID] = t
	return t
}

func (f *fakeStore) addSlot(turfID string, price int64, st models.SlotStatus) *models.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &models.Slot{
		ID:        f.nextID("slot"),
		TurfID:    turfID,
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
		Price:     price,
		Status:    st,
		Created:   time.Now(),
	}
	f.slots[s.ID] = s
	return s
}

func (f *fakeStore) GetTurf(_ context.Context, id string) (*models.Turf, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.turfs[id]
	if !ok {
		return nil, status.ErrTurfNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) GetTurfBySlug(_ context.Context, slug string) (*models.Turf, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.turfs {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, status.ErrTurfNotFound
}

func (f *fakeStore) ListSlotsByTurf(_ context.Context, turfID string, from time.Time) ([]models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Slot
	for _, s := range f.slots {
		// same predicate as the SQL store: a slot still in progress counts
		if s.TurfID == turfID && s.EndTime.After(from) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetSlot(_ context.Context, id string) (*models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGetSlot != nil {
		return nil, f.failGetSlot
	}
	s, ok := f.slots[id]
	if !ok {
		return nil, status.ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) SetSlotStatus(_ context.Context, slotID string, from, to models.SlotStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return status.ErrSlotNotFound
	}
	if s.Status != from {
		return status.ErrTransitionNotApplied
	}
	s.Status = to
	return nil
}

func (f *fakeStore) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, status.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) GetBookingBySession(_ context.Context, sessionID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.GatewaySessionID == sessionID && sessionID != "" {
			cp := *b
			return &cp, nil
		}
	}
	return nil, status.ErrBookingNotFound
}

func (f *fakeStore) GetBookingByProofToken(_ context.Context, token string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.QRSecret == token {
			cp := *b
			return &cp, nil
		}
	}
	return nil, status.ErrBookingNotFound
}

func (f *fakeStore) CreateHold(_ context.Context, slotID, userID, qrSecret string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[slotID]
	if !ok {
		return nil, status.ErrSlotNotFound
	}
	if s.Status != models.SlotAvailable {
		return nil, status.ErrSlotUnavailable
	}
	s.Status = models.SlotHeld

	b := &models.Booking{
		ID:       f.nextID("booking"),
		SlotID:   slotID,
		UserID:   userID,
		Amount:   s.Price,
		Status:   models.BookingPending,
		QRSecret: qrSecret,
		Created:  time.Now(),
	}
	f.bookings[b.ID] = b
	cp := *b
	return &cp, nil
}

func (f *fakeStore) AttachSession(_ context.Context, bookingID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return status.ErrBookingNotFound
	}
	b.GatewaySessionID = sessionID
	return nil
}

func (f *fakeStore) FinalizeBooking(_ context.Context, bookingID string, to models.BookingStatus, slotTo models.SlotStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFinalize; err != nil {
		f.failFinalize = nil
		return err
	}
	b, ok := f.bookings[bookingID]
	if !ok {
		return status.ErrBookingNotFound
	}
	if b.Status != models.BookingPending {
		return status.ErrTransitionNotApplied
	}
	s, ok := f.slots[b.SlotID]
	if !ok || s.Status != models.SlotHeld {
		return status.ErrTransitionNotApplied
	}
	b.Status = to
	s.Status = slotTo
	return nil
}

func (f *fakeStore) ListStalePending(_ context.Context, cutoff time.Time, limit int) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Status == models.BookingPending && b.Created.Before(cutoff) {
			out = append(out, *b)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CountSlotsByStatus(_ context.Context) (map[models.SlotStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[models.SlotStatus]int64)
	for _, s := range f.slots {
		out[s.Status]++
	}
	return out, nil
}

func (f *fakeStore) CountBookingsByStatus(_ context.Context) (map[models.BookingStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[models.BookingStatus]int64)
	for _, b := range f.bookings {
		out[b.Status]++
	}
	return out, nil
}

func (f *fakeStore) UpsertReview(_ context.Context, bookingID string, rating int, comment string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[bookingID]
	if !ok {
		r = &models.Review{ID: f.nextID("review"), BookingID: bookingID, Created: time.Now()}
		f.reviews[bookingID] = r
	}
	r.Rating = rating
	r.Comment = comment
	cp := *r
	return &cp, nil
}

func (f *fakeStore) GetReviewByBooking(_ context.Context, bookingID string) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[bookingID]
	if !ok {
		return nil, status.ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

// backdate shifts a booking's creation time, for sweeper tests.
func (f *fakeStore) backdate(bookingID string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[bookingID]; ok {
		b.Created = b.Created.Add(-d)
	}
}

// fakeGateway is a scriptable PaymentGateway.
type fakeGateway struct {
	mu         sync.Mutex
	seq        int
	failCreate error
	created    []*gateway.SessionRequest
}

func (g *fakeGateway) GetProvider() gateway.Provider { return gateway.ProviderSandbox }

func (g *fakeGateway) CreateSession(_ context.Context, req *gateway.SessionRequest) (*gateway.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCreate != nil {
		return nil, g.failCreate
	}
	g.seq++
	g.created = append(g.created, req)
	return &gateway.Session{
		ID:          fmt.Sprintf("sess_%d", g.seq),
		CheckoutURL: fmt.Sprintf("https://pay.test/sess_%d", g.seq),
		ExpiresAt:   time.Now().Add(15 * time.Minute),
	}, nil
}

func (g *fakeGateway) VerifyEvent(payload []byte, signature string) (*gateway.Event, error) {
	return nil, errors.New("not used")
}

func (g *fakeGateway) SetTransactionChannel(chan *status.Transaction) {}

func (g *fakeGateway) Close(context.Context) error { return nil }

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []string
	released  []string
}

func (n *recordingNotifier) BookingConfirmed(_ context.Context, b *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, b.ID)
}

func (n *recordingNotifier) BookingReleased(_ context.Context, b *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.released = append(n.released, b.ID)
}
