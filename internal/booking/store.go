package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/farrasdika/eventa/internal/models"
)

// GormStore implements Store on a gorm database handle. A transaction
// opened by InTx travels in the context so that the row operations run
// on the same connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

type txKey struct{}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func (s *GormStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// TicketForUpdate loads a ticket under SELECT ... FOR UPDATE. Must be
// called inside InTx; the lock is what serializes concurrent bookings
// of the same tier.
func (s *GormStore) TicketForUpdate(ctx context.Context, ticketID uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", ticketID).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("lock ticket row: %w", err)
	}
	return &ticket, nil
}

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.conn(ctx).Create(b).Error
}

func (s *GormStore) AddSold(ctx context.Context, ticketID uuid.UUID, qty int) error {
	return s.conn(ctx).Model(&models.Ticket{}).
		Where("id = ?", ticketID).
		Update("sold", gorm.Expr("sold + ?", qty)).Error
}

func (s *GormStore) BookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	err := s.conn(ctx).Preload("Ticket").Preload("Event").Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

func (s *GormStore) BookingsByUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.conn(ctx).
		Preload("Event").Preload("Ticket").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}
