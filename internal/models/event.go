package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Category    string     `json:"category"`
	StartDate   time.Time  `gorm:"not null;index" json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Capacity    *int       `json:"capacity"`
	ImagePath   string     `json:"-"`
	ImageURL    string     `gorm:"-" json:"imageUrl"`
	OrganizerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organizerId"`
	Organizer   *User      `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	Tickets     []Ticket   `gorm:"foreignKey:EventID" json:"tickets"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"-"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}
