package models

import (
	"time"

	"github.com/google/uuid"
)

// Interaction types.
const (
	InteractionLiked  = "liked"
	InteractionShared = "shared"
)

// Interaction is a per-user, per-article engagement record. The composite
// unique index is the correctness backstop for the like toggle and the
// share find-or-create under concurrent requests.
type Interaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_interactions_user_article_type" json:"user_id"`
	ArticleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_interactions_user_article_type" json:"article_id"`
	Type      string    `gorm:"type:text;not null;uniqueIndex:ux_interactions_user_article_type" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User    User    `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Article Article `gorm:"constraint:OnDelete:CASCADE;foreignKey:ArticleID;references:ID" json:"-"`
}
