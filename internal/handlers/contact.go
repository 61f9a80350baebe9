package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"herald/internal/fault"
	"herald/internal/mail"
	"herald/internal/models"
)

type contactBase struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *contactBase) validate() map[string]string {
	fields := map[string]string{}
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Name == "" {
		fields["name"] = "is required"
	}
	if c.Email == "" || !strings.Contains(c.Email, "@") {
		fields["email"] = "must be a valid email address"
	}
	return fields
}

func (s *Server) handleContactFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		contactBase
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	fields := req.validate()
	if strings.TrimSpace(req.Message) == "" {
		fields["message"] = "is required"
	}
	if len(fields) > 0 {
		respondError(w, fault.Invalid(fields))
		return
	}
	if req.Subject == "" {
		req.Subject = "Website feedback"
	}

	msg := mail.Feedback(s.cfg.MailTo, req.Name, req.Email, req.Subject, req.Message)
	if err := s.mailer.Send(msg); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "feedback sent"})
}

func (s *Server) handleContactCoverage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		contactBase
		Topic   string `json:"topic"`
		Details string `json:"details"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	fields := req.validate()
	if strings.TrimSpace(req.Topic) == "" {
		fields["topic"] = "is required"
	}
	if len(fields) > 0 {
		respondError(w, fault.Invalid(fields))
		return
	}

	msg := mail.CoverageRequest(s.cfg.MailTo, req.Name, req.Email, req.Topic, req.Details)
	if err := s.mailer.Send(msg); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "coverage request sent"})
}

func (s *Server) handleContactJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		contactBase
		Role       string `json:"role"`
		Motivation string `json:"motivation"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	fields := req.validate()
	if strings.TrimSpace(req.Role) == "" {
		fields["role"] = "is required"
	}
	if len(fields) > 0 {
		respondError(w, fault.Invalid(fields))
		return
	}

	msg := mail.JoinRequest(s.cfg.MailTo, req.Name, req.Email, req.Role, req.Motivation)
	if err := s.mailer.Send(msg); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "application sent"})
}

// handleContactSubscribe signs an email up for the newsletter. Persistence is
// what matters here; a failed confirmation mail is logged, not surfaced.
func (s *Server) handleContactSubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		contactBase
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, fault.Invalid(map[string]string{"email": "must be a valid email address"}))
		return
	}

	now := time.Now()
	sub := models.Subscriber{Email: req.Email, Name: req.Name, IsActive: true, SubscribedAt: &now}
	if err := s.orm.WithContext(r.Context()).Create(&sub).Error; err != nil {
		if isUniqueViolation(err) {
			// Re-subscribing an existing address reactivates it.
			err = s.orm.WithContext(r.Context()).Model(&models.Subscriber{}).
				Where("email = ?", req.Email).
				Updates(map[string]any{"is_active": true, "subscribed_at": &now}).Error
			if err != nil {
				respondError(w, err)
				return
			}
		} else {
			respondError(w, err)
			return
		}
	}

	if err := s.mailer.Send(mail.SubscribeConfirmation(req.Email)); err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("subscribe confirmation failed")
	}
	respondJSON(w, http.StatusCreated, map[string]any{"message": "subscribed"})
}
