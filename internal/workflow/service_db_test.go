package workflow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"herald/internal/audit"
	"herald/internal/auth"
	"herald/internal/models"
	"herald/internal/testdb"
)

// recordingBus captures published subjects for assertions.
type recordingBus struct {
	subjects []string
}

func (r *recordingBus) Publish(_ context.Context, subject string, _ any) error {
	r.subjects = append(r.subjects, subject)
	return nil
}

func (r *recordingBus) count(subject string) int {
	n := 0
	for _, s := range r.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

func newDBService(t *testing.T) (*Service, *gorm.DB, *recordingBus) {
	t.Helper()
	orm, _ := testdb.Setup(t)
	rec := &recordingBus{}
	return NewService(orm, nil, audit.NewRecorder(orm), rec), orm, rec
}

// seedWriter creates a user with an author profile. Names and emails are
// unique per call so tests can share the database.
func seedWriter(t *testing.T, orm *gorm.DB, role string) (models.User, auth.Identity) {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := models.User{
		Name:         "Writer " + suffix,
		Email:        "writer-" + suffix + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	if err := orm.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := orm.Create(&models.Author{UserID: user.ID}).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	return user, auth.Identity{UserID: user.ID, Role: role}
}

func seedArticle(t *testing.T, svc *Service, writer models.User, admin auth.Identity, status string) *models.Article {
	t.Helper()
	article, err := svc.Create(context.Background(), admin, CreateInput{
		Title:      "Seeded " + uuid.NewString()[:8],
		Content:    "Body long enough for an excerpt.",
		Category:   "News",
		AuthorName: writer.Name,
		Status:     status,
	})
	if err != nil {
		t.Fatalf("seed article: %v", err)
	}
	return article
}

func TestLikeToggle(t *testing.T) {
	t.Parallel()
	svc, orm, _ := newDBService(t)
	ctx := context.Background()

	writer, admin := seedWriter(t, orm, models.RoleAdmin)
	article := seedArticle(t, svc, writer, admin, models.StatusPublished)
	_, caller := seedWriter(t, orm, models.RoleUser)

	first, err := svc.Like(ctx, caller, article.ID)
	if err != nil {
		t.Fatalf("first Like: %v", err)
	}
	if !first.Liked || first.Likes != 1 {
		t.Fatalf("first Like = %+v, want liked=true likes=1", first)
	}

	second, err := svc.Like(ctx, caller, article.ID)
	if err != nil {
		t.Fatalf("second Like: %v", err)
	}
	if second.Liked || second.Likes != 0 {
		t.Fatalf("second Like = %+v, want liked=false likes=0", second)
	}
}

func TestShareIdempotent(t *testing.T) {
	t.Parallel()
	svc, orm, _ := newDBService(t)
	ctx := context.Background()

	writer, admin := seedWriter(t, orm, models.RoleAdmin)
	article := seedArticle(t, svc, writer, admin, models.StatusPublished)
	_, caller := seedWriter(t, orm, models.RoleUser)

	for i := 0; i < 2; i++ {
		res, err := svc.Share(ctx, caller, article.ID)
		if err != nil {
			t.Fatalf("Share call %d: %v", i+1, err)
		}
		if !res.Shared || res.Shares != 1 {
			t.Fatalf("Share call %d = %+v, want shared=true shares=1", i+1, res)
		}
	}
}

func TestSlugCollisionSuffixes(t *testing.T) {
	t.Parallel()
	svc, orm, _ := newDBService(t)
	ctx := context.Background()

	writer, admin := seedWriter(t, orm, models.RoleAdmin)
	title := "Collision " + uuid.NewString()[:8]

	var slugs []string
	for i := 0; i < 3; i++ {
		article, err := svc.Create(ctx, admin, CreateInput{
			Title:      title,
			Content:    "Body.",
			Category:   "News",
			AuthorName: writer.Name,
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i+1, err)
		}
		slugs = append(slugs, article.Slug)
	}

	base := Slugify(title)
	want := []string{base, base + "-1", base + "-2"}
	for i := range want {
		if slugs[i] != want[i] {
			t.Fatalf("slugs = %v, want %v", slugs, want)
		}
	}
}

func TestDraftPromotionPublishesOnce(t *testing.T) {
	t.Parallel()
	svc, orm, rec := newDBService(t)
	ctx := context.Background()

	writer, admin := seedWriter(t, orm, models.RoleAdmin)
	article := seedArticle(t, svc, writer, admin, models.StatusDraft)
	if got := rec.count(TopicArticlePublished); got != 0 {
		t.Fatalf("published events after draft create = %d, want 0", got)
	}

	promoted, err := svc.Update(ctx, admin, article.ID, UpdateInput{Status: models.StatusPublished})
	if err != nil {
		t.Fatalf("promote draft: %v", err)
	}
	if promoted.PublishedAt == nil {
		t.Fatal("promoted article has nil published_at")
	}
	if got := rec.count(TopicArticlePublished); got != 1 {
		t.Fatalf("published events after promotion = %d, want 1", got)
	}
	firstPublishedAt := *promoted.PublishedAt

	// Unpublish and re-publish: the timestamp and the notification both stay
	// tied to the first publish.
	if _, err := svc.Update(ctx, admin, article.ID, UpdateInput{Status: models.StatusDraft}); err != nil {
		t.Fatalf("demote: %v", err)
	}
	again, err := svc.Update(ctx, admin, article.ID, UpdateInput{Status: models.StatusPublished})
	if err != nil {
		t.Fatalf("re-promote: %v", err)
	}
	if again.PublishedAt == nil || !again.PublishedAt.Equal(firstPublishedAt) {
		t.Fatalf("re-publish moved published_at: %v, want %v", again.PublishedAt, firstPublishedAt)
	}
	if got := rec.count(TopicArticlePublished); got != 1 {
		t.Fatalf("published events after re-promotion = %d, want 1", got)
	}
}

func TestCreateDirectlyPublishedNotifies(t *testing.T) {
	t.Parallel()
	svc, orm, rec := newDBService(t)

	writer, admin := seedWriter(t, orm, models.RoleAdmin)
	seedArticle(t, svc, writer, admin, models.StatusPublished)

	if got := rec.count(TopicArticlePublished); got != 1 {
		t.Fatalf("published events after published create = %d, want 1", got)
	}
	if got := rec.count(TopicArticleCreated); got != 1 {
		t.Fatalf("created events after published create = %d, want 1", got)
	}
}
