package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farrasdika/eventa/internal/models"
)

// EventStore is the persistence surface of the event handlers. Lookups
// return (nil, nil) when the row does not exist.
type EventStore interface {
	CreateEventWithTiers(ctx context.Context, event *models.Event, tiers []models.Ticket) error
	EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	OwnedEvent(ctx context.Context, eventID, userID uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context, q string, offset, limit int) ([]models.Event, int64, error)
	SaveEvent(ctx context.Context, event *models.Event) error
	DeleteEventCascade(ctx context.Context, event *models.Event) error
}

// TicketStore is the persistence surface of the ticket-tier handlers.
type TicketStore interface {
	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	TicketByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	OwnedEvent(ctx context.Context, eventID, userID uuid.UUID) (*models.Event, error)
	SaveTicket(ctx context.Context, ticket *models.Ticket) error
	DeleteTicketWithBookings(ctx context.Context, ticket *models.Ticket) error
}

// GormStore backs both handler stores with one gorm handle.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CreateEventWithTiers inserts the event and all its tiers in one
// transaction and attaches the created tiers to the event.
func (s *GormStore) CreateEventWithTiers(ctx context.Context, event *models.Event, tiers []models.Ticket) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		for i := range tiers {
			tiers[i].EventID = event.ID
			if err := tx.Create(&tiers[i]).Error; err != nil {
				return fmt.Errorf("create tier %q: %w", tiers[i].TierName, err)
			}
		}
		event.Tickets = tiers
		return nil
	})
}

func (s *GormStore) EventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).
		Preload("Organizer").Preload("Tickets").
		Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

func (s *GormStore) OwnedEvent(ctx context.Context, eventID, userID uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).
		Where("id = ? AND organizer_id = ?", eventID, userID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get owned event: %w", err)
	}
	return &event, nil
}

func (s *GormStore) ListEvents(ctx context.Context, q string, offset, limit int) ([]models.Event, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Event{})
	if q != "" {
		like := "%" + q + "%"
		query = query.Where(
			"title ILIKE ? OR description ILIKE ? OR location ILIKE ? OR category ILIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	var events []models.Event
	err := query.Preload("Organizer").Preload("Tickets").
		Offset(offset).Limit(limit).
		Order("start_date ASC").
		Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *GormStore) SaveEvent(ctx context.Context, event *models.Event) error {
	return s.db.WithContext(ctx).Save(event).Error
}

// DeleteEventCascade removes the event with its tickets and bookings in
// one transaction, so no booking can ever reference a tier of a
// deleted event.
func (s *GormStore) DeleteEventCascade(ctx context.Context, event *models.Event) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Ticket{}).Error; err != nil {
			return err
		}
		return tx.Delete(event).Error
	})
}

func (s *GormStore) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	return s.db.WithContext(ctx).Create(ticket).Error
}

func (s *GormStore) TicketByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &ticket, nil
}

func (s *GormStore) SaveTicket(ctx context.Context, ticket *models.Ticket) error {
	return s.db.WithContext(ctx).Save(ticket).Error
}

func (s *GormStore) DeleteTicketWithBookings(ctx context.Context, ticket *models.Ticket) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", ticket.ID).Delete(&models.Booking{}).Error; err != nil {
			return err
		}
		return tx.Delete(ticket).Error
	})
}
