package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user account can hold. A single role string per user, matching the
// staff structure of a small newsroom.
const (
	RoleAdmin      = "admin"
	RoleModerator  = "moderator"
	RoleEditor     = "editor"
	RoleAuthor     = "author"
	RoleSubscriber = "subscriber"
	RoleUser       = "user"
)

// User represents an account on the platform, from anonymous readers who
// registered to like articles up to the admins running the newsroom.
type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string         `gorm:"type:text;not null" json:"name"`
	Email           string         `gorm:"type:text;uniqueIndex;not null" json:"email"`
	PasswordHash    string         `gorm:"type:text;not null" json:"-"`
	Role            string         `gorm:"type:text;not null;default:'user'" json:"role"`
	Avatar          *string        `gorm:"type:text" json:"avatar,omitempty"`
	EmailVerifiedAt *time.Time     `gorm:"type:timestamptz" json:"email_verified_at,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Author       *Author       `gorm:"constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Staff        *Staff        `gorm:"constraint:OnDelete:CASCADE" json:"staff,omitempty"`
	Interactions []Interaction `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ResetTokens  []ResetToken  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuditLogs    []AuditLog    `gorm:"foreignKey:ActorID" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsModerator reports whether the user holds the moderator role.
func (u *User) IsModerator() bool { return u.Role == RoleModerator }

// Verified reports whether the account's email address has been confirmed.
func (u *User) Verified() bool { return u.EmailVerifiedAt != nil }
