// Package query composes article listings from caller-supplied filters.
// Filters apply in a fixed order so combined requests behave the same no
// matter how the URL spells them: status, category, author, tag, search,
// order, pagination.
package query

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"herald/internal/auth"
	"herald/internal/fault"
	"herald/internal/models"
	"herald/internal/policy"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
	minSearchLen   = 2
)

// Filters narrows an article listing. Zero values mean "no constraint"
// except Status, which defaults to published.
type Filters struct {
	Status   string
	Category string
	AuthorID uuid.UUID
	Tag      string
	Search   string
	Page     int
	PerPage  int
}

// Page is one listing page plus the totals a client needs to paginate.
type Page struct {
	Articles []models.Article `json:"articles"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
}

// List runs the composed listing. Draft listings are authorized before any
// SQL runs so an unauthorized caller gets an error, never an empty page.
func List(ctx context.Context, orm *gorm.DB, caller auth.Identity, f Filters) (*Page, error) {
	f = normalize(f)

	if f.Status == models.StatusDraft {
		if err := policy.Allow(caller, policy.ViewDrafts); err != nil {
			return nil, err
		}
	}

	base := orm.WithContext(ctx).Model(&models.Article{}).
		Where("articles.status = ?", f.Status)

	if f.Category != "" {
		base = base.Joins("JOIN article_categories ac ON ac.article_id = articles.id").
			Joins("JOIN categories c ON c.id = ac.category_id").
			Where("c.name ILIKE ?", escapeLike(f.Category))
	}
	if f.AuthorID != uuid.Nil {
		base = base.Where("articles.author_id = ?", f.AuthorID)
	}
	if f.Tag != "" {
		base = base.Joins("JOIN article_tags at ON at.article_id = articles.id").
			Joins("JOIN tags t ON t.id = at.tag_id").
			Where("t.slug = ?", f.Tag)
	}
	if f.Search != "" {
		base = applySearch(base, f.Search)
	}
	base = base.Distinct("articles.*")

	var total int64
	if err := base.Session(&gorm.Session{}).Distinct("articles.id").Count(&total).Error; err != nil {
		return nil, err
	}

	order := "articles.published_at DESC"
	if f.Status == models.StatusDraft {
		order = "articles.created_at DESC"
	}

	var articles []models.Article
	err := base.
		Preload("Author.User").
		Preload("Categories").
		Preload("Tags").
		Order(order).
		Offset((f.Page - 1) * f.PerPage).
		Limit(f.PerPage).
		Find(&articles).Error
	if err != nil {
		return nil, err
	}

	return &Page{Articles: articles, Total: total, Page: f.Page, PerPage: f.PerPage}, nil
}

// BySlug fetches one article. Drafts are visible to admins and moderators
// only; everyone else sees not-found rather than a hint the slug exists.
func BySlug(ctx context.Context, orm *gorm.DB, caller auth.Identity, slug string) (*models.Article, error) {
	var article models.Article
	err := orm.WithContext(ctx).
		Preload("Author.User").
		Preload("Categories").
		Preload("Tags").
		First(&article, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "article not found")
	}
	if err != nil {
		return nil, err
	}
	if !article.Published() && policy.Allow(caller, policy.ViewDrafts) != nil {
		return nil, fault.New(fault.NotFound, "article not found")
	}
	return &article, nil
}

// ByID is BySlug keyed by id, with the same draft-visibility rule.
func ByID(ctx context.Context, orm *gorm.DB, caller auth.Identity, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := orm.WithContext(ctx).
		Preload("Author.User").
		Preload("Categories").
		Preload("Tags").
		First(&article, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "article not found")
	}
	if err != nil {
		return nil, err
	}
	if !article.Published() && policy.Allow(caller, policy.ViewDrafts) != nil {
		return nil, fault.New(fault.NotFound, "article not found")
	}
	return &article, nil
}

// Related lists up to n other published articles sharing a category with the
// given article, newest first.
func Related(ctx context.Context, orm *gorm.DB, articleID uuid.UUID, categoryIDs []uuid.UUID, n int) ([]models.Article, error) {
	if len(categoryIDs) == 0 || n <= 0 {
		return []models.Article{}, nil
	}
	var articles []models.Article
	err := orm.WithContext(ctx).Model(&models.Article{}).
		Distinct("articles.*").
		Joins("JOIN article_categories ac ON ac.article_id = articles.id").
		Where("ac.category_id IN ?", categoryIDs).
		Where("articles.id <> ?", articleID).
		Scopes(models.ScopePublished).
		Preload("Author.User").
		Preload("Categories").
		Preload("Tags").
		Order("articles.published_at DESC").
		Limit(n).
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func normalize(f Filters) Filters {
	if f.Status == "" {
		f.Status = models.StatusPublished
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
	f.Category = strings.TrimSpace(f.Category)
	f.Tag = strings.TrimSpace(f.Tag)
	f.Search = strings.TrimSpace(f.Search)
	if len([]rune(f.Search)) < minSearchLen {
		f.Search = ""
	}
	return f
}

func applySearch(base *gorm.DB, term string) *gorm.DB {
	pattern := "%" + escapeLike(term) + "%"
	return base.
		Joins("LEFT JOIN authors a ON a.id = articles.author_id").
		Joins("LEFT JOIN users u ON u.id = a.user_id").
		Joins("LEFT JOIN article_tags sat ON sat.article_id = articles.id").
		Joins("LEFT JOIN tags st ON st.id = sat.tag_id").
		Where(`articles.title ILIKE @p OR articles.excerpt ILIKE @p OR articles.content ILIKE @p
			OR u.name ILIKE @p OR st.name ILIKE @p`,
			map[string]any{"p": pattern})
}

// escapeLike neutralizes LIKE wildcards in user input so a search for "10%"
// matches the literal text.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
