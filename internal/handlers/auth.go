package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"herald/internal/auth"
	"herald/internal/fault"
	"herald/internal/mail"
	"herald/internal/models"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "is required"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fields["email"] = "must be a valid email address"
	}
	if !auth.ValidPassword(req.Password) {
		fields["password"] = "must be at least 8 characters with upper, lower, and digit"
	}
	if len(fields) > 0 {
		respondError(w, fault.Invalid(fields))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.orm.WithContext(r.Context()).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(w, fault.New(fault.Conflict, "email already registered"))
			return
		}
		respondError(w, err)
		return
	}

	link := s.tokens.VerificationLink(s.cfg.FrontendURL, user.ID, user.Email, s.cfg.VerifyLinkTTL)
	if err := s.mailer.Send(mail.Verification(user.Email, user.Name, link, s.cfg.VerifyLinkTTL)); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("verification mail failed")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"token": token, "user": user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := s.orm.WithContext(r.Context()).First(&user, "email = ?", req.Email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Burn a compare so unknown emails cost the same as wrong passwords.
		auth.BurnCompare(req.Password)
		respondError(w, fault.New(fault.Unauthenticated, "invalid credentials"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, fault.New(fault.Unauthenticated, "invalid credentials"))
		return
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

// handleLogout exists for client symmetry. Access tokens are stateless and
// simply age out; the client discards its copy.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	var user models.User
	err := s.orm.WithContext(r.Context()).
		Preload("Author").
		Preload("Staff").
		First(&user, "id = ?", caller.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.Unauthenticated, "account no longer exists"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if !auth.ValidPassword(req.NewPassword) {
		respondError(w, fault.Invalid(map[string]string{
			"new_password": "must be at least 8 characters with upper, lower, and digit",
		}))
		return
	}

	caller := identity(r)
	var user models.User
	if err := s.orm.WithContext(r.Context()).First(&user, "id = ?", caller.UserID).Error; err != nil {
		respondError(w, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		respondError(w, fault.New(fault.Unauthenticated, "current password is incorrect"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.orm.WithContext(r.Context()).Model(&user).Update("password_hash", hash).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionUpdated, "User", user.ID.String(), nil, map[string]any{"password_changed": true})
	respondJSON(w, http.StatusOK, map[string]any{"message": "password changed"})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	caller := identity(r)
	var user models.User
	if err := s.orm.WithContext(r.Context()).First(&user, "id = ?", caller.UserID).Error; err != nil {
		respondError(w, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, fault.New(fault.Unauthenticated, "password is incorrect"))
		return
	}
	if err := removeAccount(s.orm.WithContext(r.Context()), &user); err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionDeleted, "User", user.ID.String(), &user, nil)
	respondJSON(w, http.StatusOK, map[string]any{"message": "account deleted"})
}

// removeAccount tears an account down in one transaction, dependents before
// the user row. The user delete is soft, so the FK cascades never fire and the
// dependent rows must be cleared explicitly.
func removeAccount(db *gorm.DB, user *models.User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.ResetToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Interaction{}).Error; err != nil {
			return err
		}

		var author models.Author
		err := tx.First(&author, "user_id = ?", user.ID).Error
		switch {
		case err == nil:
			if err := tx.Where("author_id = ?", author.ID).Delete(&models.Article{}).Error; err != nil {
				return err
			}
			if err := tx.Where("author_id = ?", author.ID).Delete(&models.Draft{}).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		return tx.Delete(user).Error
	})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	sig := chi.URLParam(r, "hash")
	expires := r.URL.Query().Get("expires")

	var user models.User
	err = s.orm.WithContext(r.Context()).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "user not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}

	if !s.tokens.CheckVerification(user.ID, user.Email, sig, expires) {
		respondError(w, fault.New(fault.Forbidden, "verification link is invalid or expired"))
		return
	}
	if user.Verified() {
		respondJSON(w, http.StatusOK, map[string]any{"message": "email already verified"})
		return
	}

	now := time.Now()
	if err := s.orm.WithContext(r.Context()).Model(&user).Update("email_verified_at", &now).Error; err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "email verified"})
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// The response is the same whether or not the account exists.
	var user models.User
	err := s.orm.WithContext(r.Context()).First(&user, "email = ?", req.Email).Error
	if err == nil && !user.Verified() {
		link := s.tokens.VerificationLink(s.cfg.FrontendURL, user.ID, user.Email, s.cfg.VerifyLinkTTL)
		if err := s.mailer.Send(mail.Verification(user.Email, user.Name, link, s.cfg.VerifyLinkTTL)); err != nil {
			log.Warn().Err(err).Str("email", user.Email).Msg("verification mail failed")
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "if the account exists, a verification email was sent"})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	err := s.orm.WithContext(r.Context()).First(&user, "email = ?", req.Email).Error
	if err == nil {
		raw, hash, err := auth.NewResetToken()
		if err != nil {
			respondError(w, err)
			return
		}
		token := models.ResetToken{
			UserID:    user.ID,
			Token:     hash,
			ExpiresAt: time.Now().Add(s.cfg.ResetTokenTTL),
		}
		if err := s.orm.WithContext(r.Context()).Create(&token).Error; err != nil {
			respondError(w, err)
			return
		}
		link := s.cfg.FrontendURL + "/reset-password?token=" + raw + "&email=" + user.Email
		if err := s.mailer.Send(mail.PasswordReset(user.Email, user.Name, link, s.cfg.ResetTokenTTL)); err != nil {
			log.Warn().Err(err).Str("email", user.Email).Msg("reset mail failed")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "if the account exists, a reset email was sent"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if !auth.ValidPassword(req.Password) {
		respondError(w, fault.Invalid(map[string]string{
			"password": "must be at least 8 characters with upper, lower, and digit",
		}))
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var token models.ResetToken
	err := s.orm.WithContext(r.Context()).
		Preload("User").
		First(&token, "token = ?", auth.HashToken(req.Token)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.Forbidden, "reset token is invalid or expired"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if !token.Usable(time.Now()) || !strings.EqualFold(token.User.Email, req.Email) {
		respondError(w, fault.New(fault.Forbidden, "reset token is invalid or expired"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	now := time.Now()
	err = s.orm.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", token.UserID).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return tx.Model(&token).Update("consumed_at", &now).Error
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "password reset"})
}
