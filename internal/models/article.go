package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article status values. There is no archived state; removal is a soft delete.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Article is a piece of published or in-progress content. The slug is assigned
// once at creation and never changes afterwards, so public URLs stay stable
// even when the title is edited.
type Article struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	Slug          string         `gorm:"type:text;uniqueIndex;not null" json:"slug"`
	Excerpt       string         `gorm:"type:text" json:"excerpt"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	FeaturedImage *string        `gorm:"type:text" json:"featured_image,omitempty"`
	Status        string         `gorm:"type:text;not null;default:'draft';index" json:"status"`
	PublishedAt   *time.Time     `gorm:"type:timestamptz;index" json:"published_at,omitempty"`
	AuthorID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Author       Author        `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Categories   []Category    `gorm:"many2many:article_categories" json:"categories,omitempty"`
	Tags         []Tag         `gorm:"many2many:article_tags" json:"tags,omitempty"`
	Interactions []Interaction `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Published reports whether the article is publicly visible.
func (a *Article) Published() bool { return a.Status == StatusPublished }

// Scopes shared by every listing surface.

// ScopePublished restricts a query to published articles.
func ScopePublished(db *gorm.DB) *gorm.DB {
	return db.Where("articles.status = ?", StatusPublished)
}

// ScopeDraft restricts a query to draft articles.
func ScopeDraft(db *gorm.DB) *gorm.DB {
	return db.Where("articles.status = ?", StatusDraft)
}
