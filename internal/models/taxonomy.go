package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is slug-keyed reference data grouping articles into sections
// (News, Sports, Opinion, ...). Created on first use and never auto-deleted.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:text;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"type:text;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Articles []Article `gorm:"many2many:article_categories" json:"-"`
}

// Tag is free-form labelling attached to articles, find-or-create by name.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:text;uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"type:text;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Articles []Article `gorm:"many2many:article_tags" json:"-"`
}
