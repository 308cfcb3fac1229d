package models

import (
	"time"

	"github.com/google/uuid"
)

type RefreshToken struct {
	Token     string    `gorm:"primary_key" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
	Revoked   bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `json:"-"`
}
