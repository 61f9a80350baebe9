// Package workflow owns the article lifecycle: validated submissions in,
// persisted articles with stable slugs and correct status transitions out.
// Every operation takes the caller identity explicitly and checks policy
// before touching storage.
package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"herald/internal/audit"
	"herald/internal/auth"
	"herald/internal/fault"
	"herald/internal/models"
	"herald/internal/policy"
)

// Event subjects published on governed article mutations. The published
// subject fires exactly once per article, on its first transition to the
// published status, regardless of whether that happens at create or update.
const (
	TopicArticleCreated   = "herald.articles.created"
	TopicArticleUpdated   = "herald.articles.updated"
	TopicArticleDeleted   = "herald.articles.deleted"
	TopicArticlePublished = "herald.articles.published"
)

// ImageStore is the narrow contract to the object store holding featured
// images. Store must complete before the owning article row commits.
type ImageStore interface {
	Store(ctx context.Context, r io.Reader, size int64, contentType string) (key string, err error)
}

// Publisher is the optional event bus hook; nil disables publishing.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Service wires the stores the publishing workflow mutates.
type Service struct {
	orm    *gorm.DB
	images ImageStore
	audit  *audit.Recorder
	bus    Publisher
	now    func() time.Time
}

// NewService builds the workflow service. images and bus may be nil when the
// deployment runs without an object store or NATS.
func NewService(orm *gorm.DB, images ImageStore, recorder *audit.Recorder, bus Publisher) *Service {
	return &Service{orm: orm, images: images, audit: recorder, bus: bus, now: time.Now}
}

// ImageUpload carries a featured image through create/update.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// CreateInput is a content submission.
type CreateInput struct {
	Title      string
	Content    string
	Category   string
	Tags       []string
	AuthorName string
	Status     string
	Image      *ImageUpload
}

// UpdateInput mutates an existing article. Nil/empty fields are left alone;
// Category and Tags are replace-all syncs when provided.
type UpdateInput struct {
	Title      string
	Content    string
	Category   string
	Tags       []string
	AuthorName string
	Status     string
	Image      *ImageUpload
}

// Create validates the submission and persists a new article. Order matters:
// policy, then validation, then author resolution, then the image upload, and
// only then any row insert, so a failure at any step leaves no partial writes.
func (s *Service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (*models.Article, error) {
	if err := policy.Allow(caller, policy.CreateArticle); err != nil {
		return nil, err
	}
	if err := validateSubmission(in.Title, in.Content, in.Category, in.AuthorName); err != nil {
		return nil, err
	}

	author, err := s.resolveAuthor(ctx, in.AuthorName)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusPublished
	}

	imageKey, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	article := &models.Article{
		Title:         strings.TrimSpace(in.Title),
		Content:       in.Content,
		Excerpt:       Excerpt(in.Content),
		AuthorID:      author.ID,
		FeaturedImage: imageKey,
	}
	if err := Transition(article, status, s.now()); err != nil {
		return nil, err
	}

	tagNames := ParseTags(in.Tags)

	err = s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := NextSlug(Slugify(article.Title), func(candidate string) (bool, error) {
			var n int64
			err := tx.Model(&models.Article{}).Where("slug = ?", candidate).Count(&n).Error
			return n > 0, err
		})
		if err != nil {
			return err
		}
		article.Slug = slug

		if err := tx.Create(article).Error; err != nil {
			if isUniqueViolation(err) {
				return fault.Wrap(fault.Conflict, "slug already taken", err)
			}
			return err
		}

		category, err := findOrCreateCategory(tx, in.Category)
		if err != nil {
			return err
		}
		if err := tx.Model(article).Association("Categories").Replace(&[]models.Category{*category}); err != nil {
			return err
		}

		tags, err := findOrCreateTags(tx, tagNames)
		if err != nil {
			return err
		}
		return tx.Model(article).Association("Tags").Replace(&tags)
	})
	if err != nil {
		return nil, err
	}

	s.audit.MustRecord(ctx, &caller.UserID, models.ActionCreated, "Article", article.ID.String(), nil, article)
	s.publish(ctx, TopicArticleCreated, article)
	if article.Published() {
		s.publish(ctx, TopicArticlePublished, article)
	}

	return s.load(ctx, article.ID)
}

// Update applies a partial mutation. The slug is never touched; the excerpt
// follows the content; status changes run through Transition.
func (s *Service) Update(ctx context.Context, caller auth.Identity, articleID uuid.UUID, in UpdateInput) (*models.Article, error) {
	if err := policy.Allow(caller, policy.UpdateArticle); err != nil {
		return nil, err
	}

	article, err := s.load(ctx, articleID)
	if err != nil {
		return nil, err
	}
	old := *article

	if in.Title != "" {
		title := strings.TrimSpace(in.Title)
		if utf8.RuneCountInString(title) > maxTitleLen {
			return nil, fault.Invalid(map[string]string{"title": "must be at most 255 characters"})
		}
		article.Title = title
	}
	if in.Content != "" {
		article.Content = in.Content
		article.Excerpt = Excerpt(in.Content)
	}
	if in.AuthorName != "" {
		author, err := s.resolveAuthor(ctx, in.AuthorName)
		if err != nil {
			return nil, err
		}
		article.AuthorID = author.ID
	}
	if in.Status != "" {
		if err := Transition(article, in.Status, s.now()); err != nil {
			return nil, err
		}
	}
	if key, err := s.storeImage(ctx, in.Image); err != nil {
		return nil, err
	} else if key != nil {
		article.FeaturedImage = key
	}

	err = s.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Select the mutable columns explicitly so the slug can never drift.
		if err := tx.Model(article).
			Select("title", "content", "excerpt", "author_id", "status", "published_at", "featured_image").
			Updates(article).Error; err != nil {
			return err
		}

		if in.Category != "" {
			category, err := findOrCreateCategory(tx, in.Category)
			if err != nil {
				return err
			}
			if err := tx.Model(article).Association("Categories").Replace(&[]models.Category{*category}); err != nil {
				return err
			}
		}
		if in.Tags != nil {
			tags, err := findOrCreateTags(tx, ParseTags(in.Tags))
			if err != nil {
				return err
			}
			if err := tx.Model(article).Association("Tags").Replace(&tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.MustRecord(ctx, &caller.UserID, models.ActionUpdated, "Article", article.ID.String(), &old, article)
	s.publish(ctx, TopicArticleUpdated, article)
	// PublishedAt flips nil to non-nil exactly once, on the first publish.
	if old.PublishedAt == nil && article.PublishedAt != nil {
		s.publish(ctx, TopicArticlePublished, article)
	}

	return s.load(ctx, article.ID)
}

// Delete soft-deletes an article.
func (s *Service) Delete(ctx context.Context, caller auth.Identity, articleID uuid.UUID) error {
	if err := policy.Allow(caller, policy.DeleteArticle); err != nil {
		return err
	}

	article, err := s.load(ctx, articleID)
	if err != nil {
		return err
	}

	if err := s.orm.WithContext(ctx).Delete(article).Error; err != nil {
		return err
	}

	s.audit.MustRecord(ctx, &caller.UserID, models.ActionDeleted, "Article", article.ID.String(), article, nil)
	s.publish(ctx, TopicArticleDeleted, map[string]any{"id": article.ID, "slug": article.Slug})
	return nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := s.orm.WithContext(ctx).
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
	return &article, nil
}

// resolveAuthor maps a display name to an author profile: user by name, then
// author by user id. Both misses fail closed before any write.
func (s *Service) resolveAuthor(ctx context.Context, name string) (*models.Author, error) {
	var user models.User
	err := s.orm.WithContext(ctx).First(&user, "name = ?", strings.TrimSpace(name)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "author user not found")
	}
	if err != nil {
		return nil, err
	}

	var author models.Author
	err = s.orm.WithContext(ctx).First(&author, "user_id = ?", user.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "author profile not found")
	}
	if err != nil {
		return nil, err
	}
	author.User = user
	return &author, nil
}

// storeImage uploads a featured image when one is attached. Submissions that
// carry an image fail with a Dependency fault when no object store is wired.
func (s *Service) storeImage(ctx context.Context, up *ImageUpload) (*string, error) {
	if up == nil {
		return nil, nil
	}
	if s.images == nil {
		return nil, fault.New(fault.Dependency, "object store not configured")
	}
	key, err := s.images.Store(ctx, up.Reader, up.Size, up.ContentType)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (s *Service) publish(ctx context.Context, subject string, v any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, v); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("event publish failed")
	}
}

const maxTitleLen = 255

func validateSubmission(title, content, category, authorName string) error {
	fields := map[string]string{}
	title = strings.TrimSpace(title)
	if title == "" {
		fields["title"] = "is required"
	} else if utf8.RuneCountInString(title) > maxTitleLen {
		fields["title"] = "must be at most 255 characters"
	}
	if strings.TrimSpace(content) == "" {
		fields["content"] = "is required"
	}
	if strings.TrimSpace(category) == "" {
		fields["category"] = "is required"
	}
	if strings.TrimSpace(authorName) == "" {
		fields["author_name"] = "is required"
	}
	if len(fields) > 0 {
		return fault.Invalid(fields)
	}
	return nil
}

// isUniqueViolation reports whether err is a postgres duplicate-key error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
