package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sciencehub/sciencehub-api/internal/accounts"
	"github.com/sciencehub/sciencehub-api/internal/attachments"
	"github.com/sciencehub/sciencehub-api/internal/http/handlers"
	httpmiddleware "github.com/sciencehub/sciencehub-api/internal/http/middleware"
	"github.com/sciencehub/sciencehub-api/internal/moderation"
	"github.com/sciencehub/sciencehub-api/internal/observability/metrics"
	"github.com/sciencehub/sciencehub-api/internal/posts"
	"github.com/sciencehub/sciencehub-api/internal/users"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger      *logging.Logger
	HTTPMetrics *metrics.HTTPMetrics

	UsersHandler      *users.Handler
	PostsHandler      *posts.Handler
	ModerationHandler *moderation.Handler
	AccountsHandler   *accounts.Handler
	HealthHandler     *handlers.HealthHandler
	PortalHandler     *handlers.PortalHandler

	// Optional. Routes are not mounted when nil.
	UploadsHandler *attachments.Handler
	FeedHub        http.Handler

	// MetricsHandler defaults to promhttp.Handler().
	MetricsHandler http.Handler

	JWTSecret          string
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.HTTPMetrics))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins, posts.ModerationHeader))
	}
	if cfg.RateLimiter != nil {
		r.Use(httpmiddleware.WriteRateLimit(cfg.RateLimiter))
	}

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r.Group(func(public chi.Router) {
		if cfg.HealthHandler != nil {
			public.Get("/health", cfg.HealthHandler.Health)
		}
		public.Handle("/metrics", metricsHandler)
		if cfg.PortalHandler != nil {
			public.Get("/portal", cfg.PortalHandler.GetPortal)
		}
		if cfg.FeedHub != nil {
			public.Handle("/feed/ws", cfg.FeedHub)
		}
	})

	if cfg.UsersHandler != nil {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", cfg.UsersHandler.ListUsers)
			r.Post("/", cfg.UsersHandler.CreateUser)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", cfg.UsersHandler.GetUser)
				r.Patch("/", cfg.UsersHandler.UpdateUser)
				if cfg.PostsHandler != nil {
					r.Get("/posts", cfg.PostsHandler.ListUserPosts)
				}
			})
		})
	}

	if cfg.PostsHandler != nil {
		r.Get("/tags", cfg.PostsHandler.ListTags)
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", cfg.PostsHandler.ListPosts)
			r.Post("/", cfg.PostsHandler.CreatePost)
			r.Route("/{postID}", func(r chi.Router) {
				r.Get("/", cfg.PostsHandler.GetPost)
				r.Put("/", cfg.PostsHandler.UpdatePost)
				r.Delete("/", cfg.PostsHandler.DeletePost)
				r.Post("/like", cfg.PostsHandler.LikePost)
				r.Post("/share", cfg.PostsHandler.SharePost)
				r.Post("/comments", cfg.PostsHandler.AddComment)
			})
		})
	}

	if cfg.ModerationHandler != nil {
		r.Post("/moderation/check", cfg.ModerationHandler.Check)
	}

	if cfg.AccountsHandler != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AccountsHandler.Register)
			r.Post("/login", cfg.AccountsHandler.Login)
			r.Get("/email-exists", cfg.AccountsHandler.EmailExists)
			r.With(httpmiddleware.BearerJWT(cfg.JWTSecret)).Get("/me", cfg.AccountsHandler.Me)
		})
	}

	if cfg.UploadsHandler != nil {
		r.Post("/uploads", cfg.UploadsHandler.Upload)
		r.Get("/uploads/*", cfg.UploadsHandler.Download)
	}

	return r
}
