package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"herald/internal/auth"
	"herald/internal/fault"
	"herald/internal/models"
	"herald/internal/policy"
)

// authorProfile resolves the caller's author profile. Draft endpoints need
// one; users without a profile cannot hold drafts.
func (s *Server) authorProfile(r *http.Request, caller auth.Identity) (*models.Author, error) {
	var author models.Author
	err := s.orm.WithContext(r.Context()).First(&author, "user_id = ?", caller.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.Forbidden, "no author profile")
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// handleListDrafts returns the caller's own drafts, or every draft for
// admins and moderators.
func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	q := s.orm.WithContext(r.Context()).Preload("Author.User").Order("updated_at DESC")

	if policy.Allow(caller, policy.ViewDrafts) != nil {
		author, err := s.authorProfile(r, caller)
		if err != nil {
			respondError(w, err)
			return
		}
		q = q.Where("author_id = ?", author.ID)
	}

	var drafts []models.Draft
	if err := q.Find(&drafts).Error; err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(w, fault.Invalid(map[string]string{"title": "is required"}))
		return
	}

	caller := identity(r)
	author, err := s.authorProfile(r, caller)
	if err != nil {
		respondError(w, err)
		return
	}

	draft := models.Draft{Title: req.Title, Content: req.Content, AuthorID: author.ID}
	if err := s.orm.WithContext(r.Context()).Create(&draft).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionCreated, "Draft", draft.ID.String(), nil, &draft)
	respondJSON(w, http.StatusCreated, map[string]any{"draft": draft})
}

// loadDraft fetches a draft and authorizes the caller: owner or draft-viewer
// role. Unauthorized callers get not-found, not forbidden.
func (s *Server) loadDraft(r *http.Request, caller auth.Identity, id uuid.UUID) (*models.Draft, error) {
	var draft models.Draft
	err := s.orm.WithContext(r.Context()).Preload("Author").First(&draft, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.New(fault.NotFound, "draft not found")
	}
	if err != nil {
		return nil, err
	}
	owns := draft.Author.UserID == caller.UserID
	if err := policy.AllowOwn(caller, policy.ViewDrafts, owns); err != nil {
		return nil, fault.New(fault.NotFound, "draft not found")
	}
	return &draft, nil
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	draft, err := s.loadDraft(r, identity(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	caller := identity(r)
	draft, err := s.loadDraft(r, caller, id)
	if err != nil {
		respondError(w, err)
		return
	}
	old := *draft

	if title := strings.TrimSpace(req.Title); title != "" {
		draft.Title = title
	}
	if req.Content != "" {
		draft.Content = req.Content
	}
	if err := s.orm.WithContext(r.Context()).Model(draft).Select("title", "content").Updates(draft).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionUpdated, "Draft", draft.ID.String(), &old, draft)
	respondJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	caller := identity(r)
	draft, err := s.loadDraft(r, caller, id)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.orm.WithContext(r.Context()).Delete(draft).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionDeleted, "Draft", draft.ID.String(), draft, nil)
	respondJSON(w, http.StatusOK, map[string]any{"message": "draft deleted"})
}
