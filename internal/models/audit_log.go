package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// AuditLog captures one governed mutation. Rows are append-only; nothing in
// the application updates or deletes them. ActorID is nil for system actions.
type AuditLog struct {
	ID         int64          `gorm:"type:bigserial;primaryKey" json:"id"`
	ActorID    *uuid.UUID     `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action     string         `gorm:"type:text;not null" json:"action"`
	TargetType string         `gorm:"type:text;not null;index" json:"target_type"`
	TargetID   *string        `gorm:"type:text" json:"target_id,omitempty"`
	OldValues  datatypes.JSON `gorm:"type:jsonb" json:"old_values,omitempty"`
	NewValues  datatypes.JSON `gorm:"type:jsonb" json:"new_values,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`

	Actor *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;foreignKey:ActorID;references:ID" json:"actor,omitempty"`
}
