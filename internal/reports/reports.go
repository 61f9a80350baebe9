// Package reports answers the admin dashboard with raw SQL aggregates. These
// queries cut across tables and are cheaper and clearer as plain SQL over
// the pgx pool than as ORM compositions.
package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"herald/internal/auth"
	"herald/internal/policy"
	"herald/pkg/db"
)

// Store runs reporting queries. Read only.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// DashboardStats is the moderator-facing overview.
type DashboardStats struct {
	Users     int64 `db:"users" json:"users"`
	Published int64 `db:"published" json:"published_articles"`
	Drafts    int64 `db:"drafts" json:"draft_articles"`
	Likes     int64 `db:"likes" json:"likes"`
	Shares    int64 `db:"shares" json:"shares"`
}

// Dashboard returns sitewide counts. Soft-deleted rows are excluded.
func (s *Store) Dashboard(ctx context.Context, caller auth.Identity) (*DashboardStats, error) {
	if err := policy.Allow(caller, policy.ViewReports); err != nil {
		return nil, err
	}
	const q = `
		SELECT
			(SELECT count(*) FROM users WHERE deleted_at IS NULL)                                              AS users,
			(SELECT count(*) FROM articles WHERE status = 'published' AND deleted_at IS NULL)                  AS published,
			(SELECT count(*) FROM articles WHERE status = 'draft' AND deleted_at IS NULL)                      AS drafts,
			(SELECT count(*) FROM interactions WHERE type = 'liked')                                           AS likes,
			(SELECT count(*) FROM interactions WHERE type = 'shared')                                          AS shares`
	var stats DashboardStats
	if err := db.Get(ctx, s.pool, &stats, q); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ArticleSummary is one row in recent-article listings.
type ArticleSummary struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	Status      string     `db:"status" json:"status"`
	AuthorEmail string     `db:"author_email" json:"author_email"`
	PublishedAt *time.Time `db:"published_at" json:"published_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// AdminStats extends the dashboard with the newest articles. Admin only.
type AdminStats struct {
	DashboardStats
	Recent []ArticleSummary `json:"recent_articles"`
}

func (s *Store) Admin(ctx context.Context, caller auth.Identity) (*AdminStats, error) {
	if err := policy.Allow(caller, policy.AdminReports); err != nil {
		return nil, err
	}
	dash, err := s.Dashboard(ctx, caller)
	if err != nil {
		return nil, err
	}
	recent, err := s.recentArticles(ctx, 5)
	if err != nil {
		return nil, err
	}
	return &AdminStats{DashboardStats: *dash, Recent: recent}, nil
}

// RecentActivity lists the latest published articles with their authors.
func (s *Store) RecentActivity(ctx context.Context, caller auth.Identity) ([]ArticleSummary, error) {
	if err := policy.Allow(caller, policy.ViewReports); err != nil {
		return nil, err
	}
	const q = `
		SELECT a.id, a.title, a.slug, a.status, u.email AS author_email, a.published_at, a.created_at
		FROM articles a
		JOIN authors au ON au.id = a.author_id
		JOIN users u ON u.id = au.user_id
		WHERE a.status = 'published' AND a.deleted_at IS NULL
		ORDER BY a.published_at DESC
		LIMIT 20`
	var rows []ArticleSummary
	if err := db.Select(ctx, s.pool, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// AuditEntry is one audit-log row joined with its actor.
type AuditEntry struct {
	ID         int64           `db:"id" json:"id"`
	Action     string          `db:"action" json:"action"`
	TargetType string          `db:"target_type" json:"target_type"`
	TargetID   *string         `db:"target_id" json:"target_id"`
	ActorEmail *string         `db:"actor_email" json:"actor_email"`
	OldValues  json.RawMessage `db:"old_values" json:"old_values"`
	NewValues  json.RawMessage `db:"new_values" json:"new_values"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// AuditLog lists the most recent audit entries, newest first.
func (s *Store) AuditLog(ctx context.Context, caller auth.Identity) ([]AuditEntry, error) {
	if err := policy.Allow(caller, policy.ViewAuditLog); err != nil {
		return nil, err
	}
	const q = `
		SELECT l.id, l.action, l.target_type, l.target_id, u.email AS actor_email,
			l.old_values, l.new_values, l.created_at
		FROM audit_logs l
		LEFT JOIN users u ON u.id = l.actor_id
		ORDER BY l.id DESC
		LIMIT 50`
	var rows []AuditEntry
	if err := db.Select(ctx, s.pool, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) recentArticles(ctx context.Context, n int) ([]ArticleSummary, error) {
	const q = `
		SELECT a.id, a.title, a.slug, a.status, u.email AS author_email, a.published_at, a.created_at
		FROM articles a
		JOIN authors au ON au.id = a.author_id
		JOIN users u ON u.id = au.user_id
		WHERE a.deleted_at IS NULL
		ORDER BY a.created_at DESC
		LIMIT $1`
	var rows []ArticleSummary
	if err := db.Select(ctx, s.pool, &rows, q, n); err != nil {
		return nil, err
	}
	return rows, nil
}
