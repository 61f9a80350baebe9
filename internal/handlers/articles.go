package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"herald/internal/fault"
	"herald/internal/models"
	"herald/internal/query"
	"herald/internal/storage"
	"herald/internal/workflow"
)

const latestCount = 6

func (s *Server) handleListPublic(w http.ResponseWriter, r *http.Request) {
	f := filtersFromQuery(r)
	f.Status = models.StatusPublished
	page, err := query.List(r.Context(), s.orm, identity(r), f)
	if err != nil {
		respondError(w, err)
		return
	}
	s.presignAll(r.Context(), page.Articles)
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	page, err := query.List(r.Context(), s.orm, identity(r), query.Filters{PerPage: latestCount})
	if err != nil {
		respondError(w, err)
		return
	}
	s.presignAll(r.Context(), page.Articles)
	respondJSON(w, http.StatusOK, map[string]any{"articles": page.Articles})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(q)) < 2 {
		respondError(w, fault.Invalid(map[string]string{"q": "must be at least 2 characters"}))
		return
	}
	f := filtersFromQuery(r)
	f.Status = models.StatusPublished
	f.Search = q
	page, err := query.List(r.Context(), s.orm, identity(r), f)
	if err != nil {
		respondError(w, err)
		return
	}
	s.presignAll(r.Context(), page.Articles)
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	page, err := query.List(r.Context(), s.orm, identity(r), filtersFromQuery(r))
	if err != nil {
		respondError(w, err)
		return
	}
	s.presignAll(r.Context(), page.Articles)
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleArticleBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	article, err := query.BySlug(r.Context(), s.orm, identity(r), slug)
	if err != nil {
		respondError(w, err)
		return
	}
	s.respondArticleDetail(w, r, article)
}

func (s *Server) handleArticleByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	article, err := query.ByID(r.Context(), s.orm, identity(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	s.respondArticleDetail(w, r, article)
}

// respondArticleDetail adds the relational extras a detail page needs:
// related articles, interaction counts, and a readable image URL.
func (s *Server) respondArticleDetail(w http.ResponseWriter, r *http.Request, article *models.Article) {
	categoryIDs := make([]uuid.UUID, 0, len(article.Categories))
	for _, c := range article.Categories {
		categoryIDs = append(categoryIDs, c.ID)
	}
	related, err := query.Related(r.Context(), s.orm, article.ID, categoryIDs, 3)
	if err != nil {
		respondError(w, err)
		return
	}

	likes, shares, err := s.interactionCounts(r.Context(), article.ID)
	if err != nil {
		respondError(w, err)
		return
	}

	s.presign(r.Context(), article)
	s.presignAll(r.Context(), related)
	respondJSON(w, http.StatusOK, map[string]any{
		"article":      article,
		"related":      related,
		"likes_count":  likes,
		"shares_count": shares,
	})
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	in, err := s.submissionFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}
	article, err := s.workflow.Create(r.Context(), identity(r), workflow.CreateInput(*in))
	if err != nil {
		respondError(w, err)
		return
	}
	s.presign(r.Context(), article)
	respondJSON(w, http.StatusCreated, map[string]any{"article": article})
}

func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	in, err := s.submissionFromRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}
	article, err := s.workflow.Update(r.Context(), identity(r), id, workflow.UpdateInput(*in))
	if err != nil {
		respondError(w, err)
		return
	}
	s.presign(r.Context(), article)
	respondJSON(w, http.StatusOK, map[string]any{"article": article})
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.workflow.Delete(r.Context(), identity(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "article deleted"})
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	result, err := s.workflow.Like(r.Context(), identity(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	result, err := s.workflow.Share(r.Context(), identity(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleLikedArticles(w http.ResponseWriter, r *http.Request) {
	s.handleInteractionArticles(w, r, models.InteractionLiked)
}

func (s *Server) handleSharedArticles(w http.ResponseWriter, r *http.Request) {
	s.handleInteractionArticles(w, r, models.InteractionShared)
}

func (s *Server) handleInteractionArticles(w http.ResponseWriter, r *http.Request, kind string) {
	caller := identity(r)
	var articles []models.Article
	err := s.orm.WithContext(r.Context()).Model(&models.Article{}).
		Joins("JOIN interactions i ON i.article_id = articles.id").
		Where("i.user_id = ? AND i.type = ?", caller.UserID, kind).
		Scopes(models.ScopePublished).
		Preload("Author.User").
		Preload("Categories").
		Preload("Tags").
		Order("i.created_at DESC").
		Find(&articles).Error
	if err != nil {
		respondError(w, err)
		return
	}
	s.presignAll(r.Context(), articles)
	respondJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

func (s *Server) handleAuthorArticles(w http.ResponseWriter, r *http.Request) {
	authorID, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	f := filtersFromQuery(r)
	f.AuthorID = authorID
	page, err := query.List(r.Context(), s.orm, identity(r), f)
	if err != nil {
		respondError(w, err)
		return
	}
	s.presignAll(r.Context(), page.Articles)
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) interactionCounts(ctx context.Context, articleID uuid.UUID) (likes, shares int64, err error) {
	err = s.orm.WithContext(ctx).Model(&models.Interaction{}).
		Where("article_id = ? AND type = ?", articleID, models.InteractionLiked).
		Count(&likes).Error
	if err != nil {
		return 0, 0, err
	}
	err = s.orm.WithContext(ctx).Model(&models.Interaction{}).
		Where("article_id = ? AND type = ?", articleID, models.InteractionShared).
		Count(&shares).Error
	return likes, shares, err
}

func filtersFromQuery(r *http.Request) query.Filters {
	q := r.URL.Query()
	f := query.Filters{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Search:   q.Get("search"),
		Page:     queryInt(r, "page"),
		PerPage:  queryInt(r, "per_page"),
	}
	if raw := q.Get("author_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.AuthorID = id
		}
	}
	return f
}

// submissionFromRequest accepts either JSON or multipart form data. The
// multipart path is how the admin UI uploads a featured image alongside the
// article fields.
func (s *Server) submissionFromRequest(r *http.Request) (*articleSubmission, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		var req struct {
			Title      string   `json:"title"`
			Content    string   `json:"content"`
			Category   string   `json:"category"`
			Tags       []string `json:"tags"`
			AuthorName string   `json:"author_name"`
			Status     string   `json:"status"`
		}
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}
		return &articleSubmission{
			Title:      req.Title,
			Content:    req.Content,
			Category:   req.Category,
			Tags:       req.Tags,
			AuthorName: req.AuthorName,
			Status:     req.Status,
		}, nil
	}

	if err := r.ParseMultipartForm(storage.MaxImageSize + 1<<20); err != nil {
		return nil, fault.Wrap(fault.Validation, "malformed multipart form", err)
	}
	sub := &articleSubmission{
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		Category:   r.FormValue("category"),
		AuthorName: r.FormValue("author_name"),
		Status:     r.FormValue("status"),
	}
	if tags := r.FormValue("tags"); tags != "" {
		sub.Tags = []string{tags}
	}
	file, header, err := r.FormFile("image")
	if err == nil {
		sub.Image = &workflow.ImageUpload{
			Reader:      file,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
		}
	} else if err != http.ErrMissingFile {
		return nil, fault.Wrap(fault.Validation, "bad image upload", err)
	}
	return sub, nil
}

type articleSubmission struct {
	Title      string
	Content    string
	Category   string
	Tags       []string
	AuthorName string
	Status     string
	Image      *workflow.ImageUpload
}

// presign swaps a stored image key for a time-limited URL. Failures degrade
// to the raw key rather than failing the whole response.
func (s *Server) presign(ctx context.Context, article *models.Article) {
	if s.images == nil || article.FeaturedImage == nil {
		return
	}
	url, err := s.images.URL(ctx, *article.FeaturedImage)
	if err != nil {
		log.Warn().Err(err).Str("key", *article.FeaturedImage).Msg("presign failed")
		return
	}
	article.FeaturedImage = &url
}

func (s *Server) presignAll(ctx context.Context, articles []models.Article) {
	for i := range articles {
		s.presign(ctx, &articles[i])
	}
}
