package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Author is the writer profile attached to a user who produces content.
// Only users with a profile can be assigned articles or drafts.
type Author struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Bio         string            `gorm:"type:text" json:"bio"`
	Website     string            `gorm:"type:text" json:"website"`
	SocialLinks datatypes.JSONMap `gorm:"type:jsonb" json:"social_links"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	User     User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Articles []Article `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Drafts   []Draft   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Name returns the display name from the owning user record.
func (a *Author) Name() string {
	if a.User.Name == "" {
		return "Unknown Author"
	}
	return a.User.Name
}
