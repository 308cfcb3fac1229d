package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ticket is a priced tier of seats for an event. Sold only ever grows
// and must stay within Quantity; the booking engine owns that invariant.
type Ticket struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_tier" json:"eventId"`
	TierName   string    `gorm:"not null;uniqueIndex:idx_event_tier" json:"tierName"`
	PriceCents int       `gorm:"not null" json:"priceCents"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	Sold       int       `gorm:"not null;default:0" json:"sold"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"-"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}

// Remaining reports seats still available on the tier.
func (ticket *Ticket) Remaining() int {
	return ticket.Quantity - ticket.Sold
}
