package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"herald/internal/fault"
	"herald/internal/models"
	"herald/internal/policy"
	"herald/internal/query"
	"herald/internal/workflow"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var categories []models.Category
	err := s.orm.WithContext(r.Context()).Order("name ASC").Find(&categories).Error
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleCategoryArticles(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var category models.Category
	err := s.orm.WithContext(r.Context()).First(&category, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "category not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}

	f := filtersFromQuery(r)
	f.Status = models.StatusPublished
	f.Category = category.Name
	page, err := query.List(r.Context(), s.orm, identity(r), f)
	if err != nil {
		respondError(w, err)
		return
	}
	s.presignAll(r.Context(), page.Articles)
	respondJSON(w, http.StatusOK, map[string]any{"category": category, "articles": page.Articles, "total": page.Total, "page": page.Page, "per_page": page.PerPage})
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	var tags []models.Tag
	err := s.orm.WithContext(r.Context()).Order("name ASC").Find(&tags).Error
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (s *Server) handleTagArticles(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var tag models.Tag
	err := s.orm.WithContext(r.Context()).First(&tag, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "tag not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}

	f := filtersFromQuery(r)
	f.Status = models.StatusPublished
	f.Tag = tag.Slug
	page, err := query.List(r.Context(), s.orm, identity(r), f)
	if err != nil {
		respondError(w, err)
		return
	}
	s.presignAll(r.Context(), page.Articles)
	respondJSON(w, http.StatusOK, map[string]any{"tag": tag, "articles": page.Articles, "total": page.Total, "page": page.Page, "per_page": page.PerPage})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageTax); err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, fault.Invalid(map[string]string{"name": "is required"}))
		return
	}

	category := models.Category{Name: req.Name, Slug: workflow.Slugify(req.Name), Description: req.Description}
	if err := s.orm.WithContext(r.Context()).Create(&category).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(w, fault.New(fault.Conflict, "category already exists"))
			return
		}
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionCreated, "Category", category.ID.String(), nil, &category)
	respondJSON(w, http.StatusCreated, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageTax); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, fault.Invalid(map[string]string{"name": "is required"}))
		return
	}

	var category models.Category
	err = s.orm.WithContext(r.Context()).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "category not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	old := category

	category.Name = req.Name
	category.Slug = workflow.Slugify(req.Name)
	category.Description = req.Description
	if err := s.orm.WithContext(r.Context()).Save(&category).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(w, fault.New(fault.Conflict, "category already exists"))
			return
		}
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionUpdated, "Category", category.ID.String(), &old, &category)
	respondJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageTax); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var category models.Category
	err = s.orm.WithContext(r.Context()).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "category not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}

	err = s.orm.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM article_categories WHERE category_id = ?", category.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionDeleted, "Category", category.ID.String(), &category, nil)
	respondJSON(w, http.StatusOK, map[string]any{"message": "category deleted"})
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageTax); err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, fault.Invalid(map[string]string{"name": "is required"}))
		return
	}

	tag := models.Tag{Name: req.Name, Slug: workflow.Slugify(req.Name)}
	if err := s.orm.WithContext(r.Context()).Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(w, fault.New(fault.Conflict, "tag already exists"))
			return
		}
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionCreated, "Tag", tag.ID.String(), nil, &tag)
	respondJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageTax); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, fault.Invalid(map[string]string{"name": "is required"}))
		return
	}

	var tag models.Tag
	err = s.orm.WithContext(r.Context()).First(&tag, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "tag not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	old := tag

	tag.Name = req.Name
	tag.Slug = workflow.Slugify(req.Name)
	if err := s.orm.WithContext(r.Context()).Save(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(w, fault.New(fault.Conflict, "tag already exists"))
			return
		}
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionUpdated, "Tag", tag.ID.String(), &old, &tag)
	respondJSON(w, http.StatusOK, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageTax); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var tag models.Tag
	err = s.orm.WithContext(r.Context()).First(&tag, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "tag not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}

	err = s.orm.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM article_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&tag).Error
	})
	if err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionDeleted, "Tag", tag.ID.String(), &tag, nil)
	respondJSON(w, http.StatusOK, map[string]any{"message": "tag deleted"})
}

// handleListTeamMembers is the public newsroom roster: staff positions joined
// with live user accounts.
func (s *Server) handleListTeamMembers(w http.ResponseWriter, r *http.Request) {
	var staff []models.Staff
	err := s.orm.WithContext(r.Context()).
		Preload("User").
		Joins("JOIN users u ON u.id = staffs.user_id AND u.deleted_at IS NULL").
		Order("staffs.created_at ASC").
		Find(&staff).Error
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"team_members": staff})
}

func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	var authors []models.Author
	err := s.orm.WithContext(r.Context()).
		Preload("User").
		Joins("JOIN users u ON u.id = authors.user_id AND u.deleted_at IS NULL").
		Order("authors.created_at ASC").
		Find(&authors).Error
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"authors": authors})
}
