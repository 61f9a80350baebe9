package policy

import (
	"testing"

	"github.com/google/uuid"

	"herald/internal/auth"
	"herald/internal/fault"
	"herald/internal/models"
)

func ident(role string) auth.Identity {
	return auth.Identity{UserID: uuid.New(), Role: role}
}

func TestAllow(t *testing.T) {
	tests := []struct {
		name     string
		id       auth.Identity
		action   Action
		wantKind fault.Kind
		wantOK   bool
	}{
		{
			name:   "admin creates articles",
			id:     ident(models.RoleAdmin),
			action: CreateArticle,
			wantOK: true,
		},
		{
			name:     "moderator cannot create articles",
			id:       ident(models.RoleModerator),
			action:   CreateArticle,
			wantKind: fault.Forbidden,
		},
		{
			name:   "moderator updates articles",
			id:     ident(models.RoleModerator),
			action: UpdateArticle,
			wantOK: true,
		},
		{
			name:     "moderator cannot delete articles",
			id:       ident(models.RoleModerator),
			action:   DeleteArticle,
			wantKind: fault.Forbidden,
		},
		{
			name:   "moderator views drafts",
			id:     ident(models.RoleModerator),
			action: ViewDrafts,
			wantOK: true,
		},
		{
			name:     "regular user cannot view drafts",
			id:       ident(models.RoleUser),
			action:   ViewDrafts,
			wantKind: fault.Forbidden,
		},
		{
			name:   "moderator manages taxonomy",
			id:     ident(models.RoleModerator),
			action: ManageTax,
			wantOK: true,
		},
		{
			name:     "editor cannot manage taxonomy",
			id:       ident(models.RoleEditor),
			action:   ManageTax,
			wantKind: fault.Forbidden,
		},
		{
			name:     "moderator cannot manage users",
			id:       ident(models.RoleModerator),
			action:   ManageUsers,
			wantKind: fault.Forbidden,
		},
		{
			name:     "anonymous is unauthenticated",
			id:       auth.Anonymous,
			action:   CreateArticle,
			wantKind: fault.Unauthenticated,
		},
		{
			name:     "moderator cannot see admin reports",
			id:       ident(models.RoleModerator),
			action:   AdminReports,
			wantKind: fault.Forbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Allow(tt.id, tt.action)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("Allow() = %v, want nil", err)
				}
				return
			}
			if !fault.Is(err, tt.wantKind) {
				t.Fatalf("Allow() = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestAllowOwn(t *testing.T) {
	t.Run("owner passes regardless of role", func(t *testing.T) {
		if err := AllowOwn(ident(models.RoleUser), ViewDrafts, true); err != nil {
			t.Fatalf("AllowOwn() = %v, want nil", err)
		}
	})
	t.Run("non-owner falls back to role check", func(t *testing.T) {
		if err := AllowOwn(ident(models.RoleAdmin), ViewDrafts, false); err != nil {
			t.Fatalf("AllowOwn() = %v, want nil", err)
		}
		if err := AllowOwn(ident(models.RoleUser), ViewDrafts, false); !fault.Is(err, fault.Forbidden) {
			t.Fatalf("AllowOwn() = %v, want forbidden", err)
		}
	})
	t.Run("anonymous never owns", func(t *testing.T) {
		if err := AllowOwn(auth.Anonymous, ViewDrafts, true); !fault.Is(err, fault.Unauthenticated) {
			t.Fatalf("AllowOwn() = %v, want unauthenticated", err)
		}
	})
}
