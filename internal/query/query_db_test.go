package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"herald/internal/auth"
	"herald/internal/fault"
	"herald/internal/models"
	"herald/internal/testdb"
)

// seedScenario builds one writer with a published and a draft article in a
// fresh category. All identifiers carry a unique suffix so parallel tests can
// share the database.
type scenario struct {
	writer    models.User
	category  models.Category
	published models.Article
	draft     models.Article
}

func seedScenario(t *testing.T, orm *gorm.DB) scenario {
	t.Helper()
	suffix := uuid.NewString()[:8]

	user := models.User{
		Name:         "Casey Byline " + suffix,
		Email:        "casey-" + suffix + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleAuthor,
	}
	if err := orm.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	author := models.Author{UserID: user.ID}
	if err := orm.Create(&author).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	category := models.Category{Name: "Section " + suffix, Slug: "section-" + suffix}
	if err := orm.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	now := time.Now()
	published := models.Article{
		Title:       "Published piece " + suffix,
		Slug:        "published-piece-" + suffix,
		Content:     "Published body.",
		Excerpt:     "Published body.",
		AuthorID:    author.ID,
		Status:      models.StatusPublished,
		PublishedAt: &now,
	}
	if err := orm.Create(&published).Error; err != nil {
		t.Fatalf("seed published article: %v", err)
	}
	draft := models.Article{
		Title:    "Draft piece " + suffix,
		Slug:     "draft-piece-" + suffix,
		Content:  "Draft body.",
		Excerpt:  "Draft body.",
		AuthorID: author.ID,
		Status:   models.StatusDraft,
	}
	if err := orm.Create(&draft).Error; err != nil {
		t.Fatalf("seed draft article: %v", err)
	}
	for _, a := range []*models.Article{&published, &draft} {
		if err := orm.Model(a).Association("Categories").Replace(&[]models.Category{category}); err != nil {
			t.Fatalf("attach category: %v", err)
		}
	}

	return scenario{writer: user, category: category, published: published, draft: draft}
}

func TestListSearchMatchesAuthorName(t *testing.T) {
	t.Parallel()
	orm, _ := testdb.Setup(t)
	sc := seedScenario(t, orm)

	page, err := List(context.Background(), orm, auth.Anonymous, Filters{
		Status: models.StatusPublished,
		Search: sc.writer.Name,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("search by author name total = %d, want 1", page.Total)
	}
	if page.Articles[0].ID != sc.published.ID {
		t.Fatalf("search by author name returned %s, want %s", page.Articles[0].ID, sc.published.ID)
	}
}

func TestListCategoryAndStatus(t *testing.T) {
	t.Parallel()
	orm, _ := testdb.Setup(t)
	sc := seedScenario(t, orm)
	admin := auth.Identity{UserID: uuid.New(), Role: models.RoleAdmin}

	t.Run("published only for readers", func(t *testing.T) {
		page, err := List(context.Background(), orm, auth.Anonymous, Filters{
			Status:   models.StatusPublished,
			Category: sc.category.Name,
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if page.Total != 1 || page.Articles[0].ID != sc.published.ID {
			t.Fatalf("reader category listing = total %d, want the one published article", page.Total)
		}
	})

	t.Run("drafts for privileged callers", func(t *testing.T) {
		page, err := List(context.Background(), orm, admin, Filters{
			Status:   models.StatusDraft,
			Category: sc.category.Name,
		})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if page.Total != 1 || page.Articles[0].ID != sc.draft.ID {
			t.Fatalf("admin draft listing = total %d, want the one draft", page.Total)
		}
	})
}

func TestListDraftStatusRequiresRole(t *testing.T) {
	t.Parallel()
	orm, _ := testdb.Setup(t)
	seedScenario(t, orm)

	_, err := List(context.Background(), orm, auth.Identity{UserID: uuid.New(), Role: models.RoleUser}, Filters{
		Status: models.StatusDraft,
	})
	if !fault.Is(err, fault.Forbidden) {
		t.Fatalf("draft listing as regular user = %v, want Forbidden", err)
	}

	_, err = List(context.Background(), orm, auth.Anonymous, Filters{Status: models.StatusDraft})
	if !fault.Is(err, fault.Unauthenticated) {
		t.Fatalf("draft listing as anonymous = %v, want Unauthenticated", err)
	}
}

func TestBySlugHidesDrafts(t *testing.T) {
	t.Parallel()
	orm, _ := testdb.Setup(t)
	sc := seedScenario(t, orm)

	_, err := BySlug(context.Background(), orm, auth.Anonymous, sc.draft.Slug)
	if !fault.Is(err, fault.NotFound) {
		t.Fatalf("draft BySlug as anonymous = %v, want NotFound", err)
	}

	got, err := BySlug(context.Background(), orm, auth.Identity{UserID: uuid.New(), Role: models.RoleAdmin}, sc.draft.Slug)
	if err != nil {
		t.Fatalf("draft BySlug as admin: %v", err)
	}
	if got.ID != sc.draft.ID {
		t.Fatalf("draft BySlug as admin returned %s, want %s", got.ID, sc.draft.ID)
	}
}
