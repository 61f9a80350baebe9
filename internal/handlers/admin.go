package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"herald/internal/auth"
	"herald/internal/fault"
	"herald/internal/models"
	"herald/internal/policy"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reports.Dashboard(r.Context(), identity(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRecentActivity(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reports.RecentActivity(r.Context(), identity(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"articles": rows})
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reports.AuditLog(r.Context(), identity(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"audit_logs": rows})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reports.Admin(r.Context(), identity(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

var validRoles = map[string]bool{
	models.RoleAdmin:      true,
	models.RoleModerator:  true,
	models.RoleEditor:     true,
	models.RoleAuthor:     true,
	models.RoleSubscriber: true,
	models.RoleUser:       true,
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if err := policy.Allow(identity(r), policy.ManageUsers); err != nil {
		respondError(w, err)
		return
	}
	var users []models.User
	err := s.orm.WithContext(r.Context()).
		Preload("Author").
		Preload("Staff").
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageUsers); err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		Bio      string `json:"bio"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = models.RoleUser
	}
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
	if !validRoles[req.Role] {
		fields["role"] = "is not a valid role"
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
	user := models.User{Name: req.Name, Email: req.Email, PasswordHash: hash, Role: req.Role}

	err = s.orm.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		// Authors get a writer profile so articles can be assigned to them.
		if req.Role == models.RoleAuthor || req.Role == models.RoleEditor {
			return tx.Create(&models.Author{UserID: user.ID, Bio: req.Bio}).Error
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			respondError(w, fault.New(fault.Conflict, "email already registered"))
			return
		}
		respondError(w, err)
		return
	}

	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionCreated, "User", user.ID.String(), nil, &user)
	respondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageUsers); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	var user models.User
	err = s.orm.WithContext(r.Context()).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "user not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	old := user

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		user.Email = email
	}
	if req.Role != "" {
		if !validRoles[req.Role] {
			respondError(w, fault.Invalid(map[string]string{"role": "is not a valid role"}))
			return
		}
		// An admin demoting themselves could lock everyone out.
		if user.ID == caller.UserID && req.Role != models.RoleAdmin {
			respondError(w, fault.New(fault.Forbidden, "cannot change your own role"))
			return
		}
		user.Role = req.Role
	}

	if err := s.orm.WithContext(r.Context()).Model(&user).Select("name", "email", "role").Updates(&user).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(w, fault.New(fault.Conflict, "email already registered"))
			return
		}
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionUpdated, "User", user.ID.String(), &old, &user)
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageUsers); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if id == caller.UserID {
		respondError(w, fault.New(fault.Forbidden, "cannot delete your own account here"))
		return
	}

	var user models.User
	err = s.orm.WithContext(r.Context()).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "user not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.orm.WithContext(r.Context()).Delete(&user).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionDeleted, "User", user.ID.String(), &user, nil)
	respondJSON(w, http.StatusOK, map[string]any{"message": "user deleted"})
}

func (s *Server) handleListStaff(w http.ResponseWriter, r *http.Request) {
	if err := policy.Allow(identity(r), policy.ManageStaff); err != nil {
		respondError(w, err)
		return
	}
	var staff []models.Staff
	err := s.orm.WithContext(r.Context()).Preload("User").Order("created_at ASC").Find(&staff).Error
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

func (s *Server) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageStaff); err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		UserID   string `json:"user_id"`
		Position string `json:"position"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	userID, err := parseUUIDField(req.UserID, "user_id")
	if err != nil {
		respondError(w, err)
		return
	}
	if strings.TrimSpace(req.Position) == "" {
		respondError(w, fault.Invalid(map[string]string{"position": "is required"}))
		return
	}

	staff := models.Staff{UserID: userID, Position: strings.TrimSpace(req.Position)}
	if err := s.orm.WithContext(r.Context()).Create(&staff).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(w, fault.New(fault.Conflict, "user already has a staff record"))
			return
		}
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionCreated, "Staff", staff.ID.String(), nil, &staff)
	respondJSON(w, http.StatusCreated, map[string]any{"staff": staff})
}

func (s *Server) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageStaff); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		Position string `json:"position"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if strings.TrimSpace(req.Position) == "" {
		respondError(w, fault.Invalid(map[string]string{"position": "is required"}))
		return
	}

	var staff models.Staff
	err = s.orm.WithContext(r.Context()).First(&staff, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "staff record not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	old := staff

	staff.Position = strings.TrimSpace(req.Position)
	if err := s.orm.WithContext(r.Context()).Model(&staff).Update("position", staff.Position).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionUpdated, "Staff", staff.ID.String(), &old, &staff)
	respondJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

func (s *Server) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageStaff); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var staff models.Staff
	err = s.orm.WithContext(r.Context()).First(&staff, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "staff record not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.orm.WithContext(r.Context()).Delete(&staff).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionDeleted, "Staff", staff.ID.String(), &staff, nil)
	respondJSON(w, http.StatusOK, map[string]any{"message": "staff record deleted"})
}

func (s *Server) handleListModerators(w http.ResponseWriter, r *http.Request) {
	if err := policy.Allow(identity(r), policy.ManageUsers); err != nil {
		respondError(w, err)
		return
	}
	var moderators []models.User
	err := s.orm.WithContext(r.Context()).
		Where("role = ?", models.RoleModerator).
		Order("name ASC").
		Find(&moderators).Error
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"moderators": moderators})
}

func (s *Server) handleAddModerator(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageUsers); err != nil {
		respondError(w, err)
		return
	}
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	userID, err := parseUUIDField(req.UserID, "user_id")
	if err != nil {
		respondError(w, err)
		return
	}

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
	if user.Role == models.RoleAdmin {
		respondError(w, fault.New(fault.Conflict, "admins cannot be demoted to moderator"))
		return
	}
	old := user

	user.Role = models.RoleModerator
	if err := s.orm.WithContext(r.Context()).Model(&user).Update("role", user.Role).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionUpdated, "User", user.ID.String(), &old, &user)
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleRemoveModerator(w http.ResponseWriter, r *http.Request) {
	caller := identity(r)
	if err := policy.Allow(caller, policy.ManageUsers); err != nil {
		respondError(w, err)
		return
	}
	id, err := urlUUID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var user models.User
	err = s.orm.WithContext(r.Context()).First(&user, "id = ? AND role = ?", id, models.RoleModerator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, fault.New(fault.NotFound, "moderator not found"))
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	old := user

	user.Role = models.RoleUser
	if err := s.orm.WithContext(r.Context()).Model(&user).Update("role", user.Role).Error; err != nil {
		respondError(w, err)
		return
	}
	s.audit.MustRecord(r.Context(), &caller.UserID, models.ActionUpdated, "User", user.ID.String(), &old, &user)
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}
