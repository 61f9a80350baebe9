package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"herald/internal/fault"
	"herald/internal/models"
	"herald/internal/policy"
)

func (s *Server) handleListSubscribers(w http.ResponseWriter, r *http.Request) {
	if err := policy.Allow(identity(r), policy.ManageSubs); err != nil {
		respondError(w, err)
		return
	}
	var subs []models.Subscriber
	if err := s.orm.WithContext(r.Context()).Order("created_at DESC").Find(&subs).Error; err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"subscribers": subs})
}

func (s *Server) handleCreateSubscriber(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageSubs); err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, fault.Invalid(map[string]string{"email": "must be a valid email address"}))
		return
	}

	now := time.Now()
	sub := models.Subscriber{Email: req.Email, Name: strings.TrimSpace(req.Name), IsActive: true, SubscribedAt: &now}
	if err := s.orm.WithContext(r.Context()).Create(&sub).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(w, fault.New(fault.Conflict, "email already subscribed"))
			return
		}
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionCreated, "Subscriber", sub.ID.String(), nil, &sub)
	respondJSON(w, http.StatusCreated, map[string]any{"subscriber": sub})
}

func (s *Server) handleUpdateSubscriber(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageSubs); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		Name     *string `json:"name"`
		IsActive *bool   `json:"is_active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	var sub models.Subscriber
	err = s.orm.WithContext(r.Context()).First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "subscriber not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	old := sub

	if req.Name != nil {
		sub.Name = strings.TrimSpace(*req.Name)
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}
	if err := s.orm.WithContext(r.Context()).Model(&sub).Select("name", "is_active").Updates(&sub).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionUpdated, "Subscriber", sub.ID.String(), &old, &sub)
	respondJSON(w, http.StatusOK, map[string]any{"subscriber": sub})
}

func (s *Server) handleDeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageSubs); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var sub models.Subscriber
	err = s.orm.WithContext(r.Context()).First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "subscriber not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.orm.WithContext(r.Context()).Delete(&sub).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionDeleted, "Subscriber", sub.ID.String(), &sub, nil)
	respondJSON(w, http.StatusOK, map[string]any{"message": "subscriber deleted"})
}
