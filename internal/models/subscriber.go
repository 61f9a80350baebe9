package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is a newsletter signup. Not a user account.
type Subscriber struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string     `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Name         string     `gorm:"type:text" json:"name,omitempty"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	SubscribedAt *time.Time `gorm:"type:timestamptz" json:"subscribed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
