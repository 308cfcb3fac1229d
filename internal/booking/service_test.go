package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farrasdika/eventa/internal/models"
)

// fakeStore is an in-memory Store. InTx serializes transactions with a
// mutex and rolls back all writes when fn fails, mirroring the
// serializable row-locked transaction the gorm store provides. Row
// operations assume they run inside InTx and therefore do not lock.
type fakeStore struct {
	mu       sync.Mutex
	tickets  map[uuid.UUID]*models.Ticket
	bookings []models.Booking

	createBookingErr error
	addSoldErr       error
}

func newFakeStore(tickets ...*models.Ticket) *fakeStore {
	s := &fakeStore{tickets: make(map[uuid.UUID]*models.Ticket)}
	for _, t := range tickets {
		s.tickets[t.ID] = t
	}
	return s
}

func (s *fakeStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticketsBefore := make(map[uuid.UUID]models.Ticket, len(s.tickets))
	for id, t := range s.tickets {
		ticketsBefore[id] = *t
	}
	bookingsBefore := len(s.bookings)

	if err := fn(ctx); err != nil {
		for id := range s.tickets {
			restored := ticketsBefore[id]
			s.tickets[id] = &restored
		}
		s.bookings = s.bookings[:bookingsBefore]
		return err
	}
	return nil
}

func (s *fakeStore) TicketForUpdate(ctx context.Context, ticketID uuid.UUID) (*models.Ticket, error) {
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, ErrTicketNotFound
	}
	copy := *t
	return &copy, nil
}

func (s *fakeStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	if s.createBookingErr != nil {
		return s.createBookingErr
	}
	s.bookings = append(s.bookings, *b)
	return nil
}

func (s *fakeStore) AddSold(ctx context.Context, ticketID uuid.UUID, qty int) error {
	if s.addSoldErr != nil {
		return s.addSoldErr
	}
	s.tickets[ticketID].Sold += qty
	return nil
}

func (s *fakeStore) BookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			copy := s.bookings[i]
			return &copy, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (s *fakeStore) BookingsByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) sold(ticketID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickets[ticketID].Sold
}

func newTier(quantity, priceCents int) *models.Ticket {
	return &models.Ticket{
		ID:         uuid.New(),
		EventID:    uuid.New(),
		TierName:   "General",
		PriceCents: priceCents,
		Quantity:   quantity,
	}
}

func TestPlaceBookingComputesTotalAndIncrementsSold(t *testing.T) {
	tier := newTier(100, 5000)
	store := newFakeStore(tier)
	svc := NewService(store)
	userID := uuid.New()

	b, err := svc.PlaceBooking(context.Background(), userID, tier.EventID, tier.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, 15000, b.TotalCents)
	assert.Equal(t, 3, b.Quantity)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
	assert.Equal(t, userID, b.UserID)
	assert.Equal(t, tier.EventID, b.EventID, "event id must come from the ticket row")
	assert.Equal(t, 3, store.sold(tier.ID))

	// A read immediately after the commit must see the new availability.
	left, err := store.TicketForUpdate(context.Background(), tier.ID)
	require.NoError(t, err)
	assert.Equal(t, 97, left.Remaining())
}

func TestPlaceBookingRejectsNonPositiveQuantity(t *testing.T) {
	tier := newTier(10, 1000)
	store := newFakeStore(tier)
	svc := NewService(store)

	for _, qty := range []int{0, -1, -100} {
		_, err := svc.PlaceBooking(context.Background(), uuid.New(), tier.EventID, tier.ID, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Equal(t, 0, store.sold(tier.ID))
	assert.Empty(t, store.bookings)
}

func TestPlaceBookingUnknownTicket(t *testing.T) {
	tier := newTier(10, 1000)
	store := newFakeStore(tier)
	svc := NewService(store)

	_, err := svc.PlaceBooking(context.Background(), uuid.New(), tier.EventID, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.Equal(t, 0, store.sold(tier.ID))
	assert.Empty(t, store.bookings)
}

func TestPlaceBookingInsufficientInventoryLeavesSoldUnchanged(t *testing.T) {
	tier := newTier(10, 1000)
	tier.Sold = 7 // 3 left
	store := newFakeStore(tier)
	svc := NewService(store)

	_, err := svc.PlaceBooking(context.Background(), uuid.New(), tier.EventID, tier.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Equal(t, 7, store.sold(tier.ID))
	assert.Empty(t, store.bookings)
}

func TestPlaceBookingExactRemainingSucceeds(t *testing.T) {
	tier := newTier(10, 1000)
	tier.Sold = 7
	store := newFakeStore(tier)
	svc := NewService(store)

	b, err := svc.PlaceBooking(context.Background(), uuid.New(), tier.EventID, tier.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3000, b.TotalCents)
	assert.Equal(t, 10, store.sold(tier.ID))
}

func TestPlaceBookingRollsBackOnStorageFailure(t *testing.T) {
	tier := newTier(10, 1000)
	store := newFakeStore(tier)
	store.addSoldErr = errors.New("connection reset")
	svc := NewService(store)

	_, err := svc.PlaceBooking(context.Background(), uuid.New(), tier.EventID, tier.ID, 2)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientInventory)

	// Neither write may survive a failed transaction.
	assert.Equal(t, 0, store.sold(tier.ID))
	assert.Empty(t, store.bookings)
}

func TestPlaceBookingLastSeatRace(t *testing.T) {
	tier := newTier(1, 2500)
	store := newFakeStore(tier)
	svc := NewService(store)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceBooking(context.Background(), uuid.New(), tier.EventID, tier.ID, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var confirmed, rejected int
	for err := range results {
		if err == nil {
			confirmed++
		} else if errors.Is(err, ErrInsufficientInventory) {
			rejected++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, confirmed, "exactly one booking must win the last seat")
	assert.Equal(t, 1, rejected, "the loser must fail with insufficient inventory")
	assert.Equal(t, 1, store.sold(tier.ID))
	assert.Len(t, store.bookings, 1)
}

func TestPlaceBookingSoldMatchesCommittedBookings(t *testing.T) {
	tier := newTier(50, 100)
	store := newFakeStore(tier)
	svc := NewService(store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			// Some of these exceed the remaining capacity and must fail.
			_, _ = svc.PlaceBooking(context.Background(), uuid.New(), tier.EventID, tier.ID, qty)
		}(i%5 + 1)
	}
	wg.Wait()

	committed := 0
	for _, b := range store.bookings {
		committed += b.Quantity
	}
	assert.Equal(t, committed, store.sold(tier.ID))
	assert.LessOrEqual(t, store.sold(tier.ID), tier.Quantity)
}

func TestUserBookingsFiltersByUser(t *testing.T) {
	tier := newTier(10, 1000)
	store := newFakeStore(tier)
	svc := NewService(store)

	alice := uuid.New()
	bob := uuid.New()

	_, err := svc.PlaceBooking(context.Background(), alice, tier.EventID, tier.ID, 2)
	require.NoError(t, err)
	_, err = svc.PlaceBooking(context.Background(), bob, tier.EventID, tier.ID, 1)
	require.NoError(t, err)

	bookings, err := svc.UserBookings(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, alice, bookings[0].UserID)
	assert.Equal(t, 2, bookings[0].Quantity)
}
