// Package policy centralises every authorization decision. Each governed
// action is checked through Allow so role rules live in one place instead of
// being string-compared per endpoint.
package policy

import (
	"herald/internal/auth"
	"herald/internal/fault"
	"herald/internal/models"
)

// Action names a governed operation.
type Action string

const (
	CreateArticle Action = "article.create"
	UpdateArticle Action = "article.update"
	DeleteArticle Action = "article.delete"
	ViewDrafts    Action = "article.view-drafts"
	ManageTax     Action = "taxonomy.manage"
	ManageUsers   Action = "users.manage"
	ManageStaff   Action = "staff.manage"
	ManageSubs    Action = "subscribers.manage"
	ViewAuditLog  Action = "audit.view"
	ViewReports   Action = "reports.view"
	AdminReports  Action = "reports.admin"
)

// roles maps each action to the roles admitted to it.
var roles = map[Action][]string{
	CreateArticle: {models.RoleAdmin},
	UpdateArticle: {models.RoleAdmin, models.RoleModerator},
	DeleteArticle: {models.RoleAdmin},
	ViewDrafts:    {models.RoleAdmin, models.RoleModerator},
	ManageTax:     {models.RoleAdmin, models.RoleModerator},
	ManageUsers:   {models.RoleAdmin},
	ManageStaff:   {models.RoleAdmin},
	ManageSubs:    {models.RoleAdmin, models.RoleModerator},
	ViewAuditLog:  {models.RoleAdmin, models.RoleModerator},
	ViewReports:   {models.RoleAdmin, models.RoleModerator},
	AdminReports:  {models.RoleAdmin},
}

// Allow returns nil when the identity may perform the action, a Forbidden
// fault when it may not, and Unauthenticated for anonymous callers. All
// checks happen before any mutation is attempted.
func Allow(id auth.Identity, action Action) error {
	if id.IsAnonymous() {
		return fault.New(fault.Unauthenticated, "authentication required")
	}
	admitted, ok := roles[action]
	if !ok {
		return fault.Newf(fault.Forbidden, "unknown action %s", action)
	}
	for _, role := range admitted {
		if id.Role == role {
			return nil
		}
	}
	return fault.Newf(fault.Forbidden, "%s requires elevated access", action)
}

// AllowOwn admits holders of the action's roles, or any non-anonymous caller
// who owns the resource. Used for author-scoped drafts.
func AllowOwn(id auth.Identity, action Action, owns bool) error {
	if id.IsAnonymous() {
		return fault.New(fault.Unauthenticated, "authentication required")
	}
	if owns {
		return nil
	}
	return Allow(id, action)
}
