// Package handlers exposes the REST surface of the herald API.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"herald/internal/audit"
	"herald/internal/auth"
	"herald/internal/config"
	"herald/internal/mail"
	"herald/internal/reports"
	"herald/internal/storage"
	"herald/internal/version"
	"herald/internal/workflow"
	"herald/pkg/db"
)

// Server bundles the dependencies the HTTP handlers need.
type Server struct {
	cfg      config.Config
	orm      *gorm.DB
	pool     *pgxpool.Pool
	tokens   *auth.TokenManager
	workflow *workflow.Service
	reports  *reports.Store
	images   *storage.Images
	mailer   *mail.Sender
	audit    *audit.Recorder
}

// NewServer wires the handler layer. images may be nil when no object store
// is configured; featured-image URLs are then served as raw keys.
func NewServer(
	cfg config.Config,
	orm *gorm.DB,
	pool *pgxpool.Pool,
	tokens *auth.TokenManager,
	wf *workflow.Service,
	rep *reports.Store,
	images *storage.Images,
	mailer *mail.Sender,
	recorder *audit.Recorder,
) *Server {
	return &Server{
		cfg:      cfg,
		orm:      orm,
		pool:     pool,
		tokens:   tokens,
		workflow: wf,
		reports:  rep,
		images:   images,
		mailer:   mailer,
		audit:    recorder,
	}
}

// Router builds the chi router with the full REST surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	allowed := s.cfg.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", s.handleReadyz)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(httprate.Limit(300, time.Minute, httprate.WithKeyFuncs(httprate.KeyByRealIP)))

		// Public content.
		r.Get("/articles/public", s.handleListPublic)
		r.Get("/latest-articles", s.handleLatest)
		r.Get("/articles/search", s.handleSearch)
		r.Get("/articles/by-slug/{slug}", s.handleArticleBySlug)
		r.Get("/articles/id/{id}", s.handleArticleByID)
		r.Get("/categories", s.handleListCategories)
		r.Get("/categories/{slug}/articles", s.handleCategoryArticles)
		r.Get("/tags", s.handleListTags)
		r.Get("/tags/{slug}/articles", s.handleTagArticles)
		r.Get("/authors", s.handleListAuthors)
		r.Get("/authors/{id}/articles", s.handleAuthorArticles)
		r.Get("/team-members", s.handleListTeamMembers)

		// Account lifecycle. Registration and login are throttled hard.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(5, time.Minute, httprate.WithKeyFuncs(httprate.KeyByRealIP)))
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/forgot-password", s.handleForgotPassword)
			r.Post("/email/resend-verification", s.handleResendVerification)
		})
		r.Get("/email/verify/{id}/{hash}", s.handleVerifyEmail)
		r.Post("/reset-password", s.handleResetPassword)

		// Contact forms.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByRealIP)))
			r.Post("/contact/feedback", s.handleContactFeedback)
			r.Post("/contact/request-coverage", s.handleContactCoverage)
			r.Post("/contact/join", s.handleContactJoin)
			r.Post("/contact/subscribe", s.handleContactSubscribe)
		})

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/user", s.handleCurrentUser)
			r.Post("/logout", s.handleLogout)
			r.Post("/change-password", s.handleChangePassword)
			r.Post("/delete-account", s.handleDeleteAccount)
			r.Get("/user/liked-articles", s.handleLikedArticles)
			r.Get("/user/shared-articles", s.handleSharedArticles)

			r.Get("/articles", s.handleListArticles)
			r.Post("/articles", s.handleCreateArticle)
			r.Get("/articles/{id}", s.handleArticleByID)
			r.Put("/articles/{id}", s.handleUpdateArticle)
			r.Delete("/articles/{id}", s.handleDeleteArticle)
			r.Post("/articles/{id}/like", s.handleLike)
			r.Post("/articles/{id}/share", s.handleShare)
			r.Get("/articles/author/{id}", s.handleAuthorArticles)

			r.Post("/categories", s.handleCreateCategory)
			r.Put("/categories/{id}", s.handleUpdateCategory)
			r.Delete("/categories/{id}", s.handleDeleteCategory)
			r.Post("/tags", s.handleCreateTag)
			r.Put("/tags/{id}", s.handleUpdateTag)
			r.Delete("/tags/{id}", s.handleDeleteTag)

			r.Route("/drafts", func(r chi.Router) {
				r.Get("/", s.handleListDrafts)
				r.Post("/", s.handleCreateDraft)
				r.Get("/{id}", s.handleGetDraft)
				r.Put("/{id}", s.handleUpdateDraft)
				r.Delete("/{id}", s.handleDeleteDraft)
			})

			r.Route("/subscribers", func(r chi.Router) {
				r.Get("/", s.handleListSubscribers)
				r.Post("/", s.handleCreateSubscriber)
				r.Put("/{id}", s.handleUpdateSubscriber)
				r.Delete("/{id}", s.handleDeleteSubscriber)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/dashboard-stats", s.handleDashboardStats)
				r.Get("/recent-activity", s.handleRecentActivity)
				r.Get("/audit-logs", s.handleAuditLogs)
				r.Get("/stats", s.handleAdminStats)

				r.Get("/users", s.handleListUsers)
				r.Post("/users", s.handleCreateUser)
				r.Put("/users/{id}", s.handleUpdateUser)
				r.Delete("/users/{id}", s.handleDeleteUser)

				r.Get("/staff", s.handleListStaff)
				r.Post("/staff", s.handleCreateStaff)
				r.Put("/staff/{id}", s.handleUpdateStaff)
				r.Delete("/staff/{id}", s.handleDeleteStaff)

				r.Get("/moderators", s.handleListModerators)
				r.Post("/moderators", s.handleAddModerator)
				r.Delete("/moderators/{id}", s.handleRemoveModerator)
			})
		})
	})

	return otelhttp.NewHandler(r, version.Name)
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(r.Context(), s.pool); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
