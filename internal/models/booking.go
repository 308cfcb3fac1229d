package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const BookingStatusConfirmed = "CONFIRMED"

type Booking struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;index" json:"eventId"`
	Event      *Event    `gorm:"foreignKey:EventID" json:"event,omitempty"`
	TicketID   uuid.UUID `gorm:"type:uuid;not null;index" json:"ticketId"`
	Ticket     *Ticket   `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	TotalCents int       `gorm:"not null" json:"totalCents"`
	Status     string    `gorm:"not null" json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"-"`
}

func (booking *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return
}
