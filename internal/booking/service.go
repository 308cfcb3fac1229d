// Package booking implements the booking engine: the one transaction in
// the system that must stay correct under concurrent load. Everything
// else in the API can tolerate sloppy interleavings; the sold counter
// cannot.
package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/farrasdika/eventa/internal/models"
)

// Store is the persistence boundary the engine needs: a transaction
// primitive plus the row operations it performs inside one.
// TicketForUpdate must hold an exclusive row lock on the returned
// ticket until the surrounding transaction resolves, so that two
// concurrent bookings of the same tier serialize on the row.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	TicketForUpdate(ctx context.Context, ticketID uuid.UUID) (*models.Ticket, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	AddSold(ctx context.Context, ticketID uuid.UUID, qty int) error
	BookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	BookingsByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// PlaceBooking atomically books qty seats on a ticket tier for a user.
//
// The availability check and the sold increment happen against the same
// locked row inside one transaction. A separate read-then-write would
// let two requests both observe the last free seat and both commit;
// with the row lock exactly one commits and the other fails with
// ErrInsufficientInventory.
//
// The caller's eventID is informational only; the ticket row's event
// association is authoritative and is what gets recorded on the
// booking.
func (s *Service) PlaceBooking(ctx context.Context, userID, eventID, ticketID uuid.UUID, qty int) (*models.Booking, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	var booking *models.Booking
	err := s.store.InTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.store.TicketForUpdate(txCtx, ticketID)
		if err != nil {
			return err
		}

		if qty > ticket.Remaining() {
			return ErrInsufficientInventory
		}

		b := &models.Booking{
			ID:         uuid.New(),
			UserID:     userID,
			EventID:    ticket.EventID,
			TicketID:   ticket.ID,
			Quantity:   qty,
			TotalCents: ticket.PriceCents * qty,
			Status:     models.BookingStatusConfirmed,
		}
		if err := s.store.CreateBooking(txCtx, b); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		if err := s.store.AddSold(txCtx, ticket.ID, qty); err != nil {
			return fmt.Errorf("increment sold: %w", err)
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Booking returns a single booking by id.
func (s *Service) Booking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.store.BookingByID(ctx, id)
}

// UserBookings returns every booking placed by the given user.
func (s *Service) UserBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	return s.store.BookingsByUser(ctx, userID)
}
