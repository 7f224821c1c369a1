package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sciencehub/sciencehub-api/internal/accounts"
	"github.com/sciencehub/sciencehub-api/internal/api/router"
	"github.com/sciencehub/sciencehub-api/internal/app/bootstrap"
	"github.com/sciencehub/sciencehub-api/internal/attachments"
	appconfig "github.com/sciencehub/sciencehub-api/internal/config"
	"github.com/sciencehub/sciencehub-api/internal/feed"
	"github.com/sciencehub/sciencehub-api/internal/http/handlers"
	httpmiddleware "github.com/sciencehub/sciencehub-api/internal/http/middleware"
	"github.com/sciencehub/sciencehub-api/internal/moderation"
	"github.com/sciencehub/sciencehub-api/internal/observability/metrics"
	"github.com/sciencehub/sciencehub-api/internal/posts"
	"github.com/sciencehub/sciencehub-api/internal/seed"
	"github.com/sciencehub/sciencehub-api/internal/users"
	"github.com/sciencehub/sciencehub-api/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting sciencehub API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger, prometheus.DefaultRegisterer, promhttp.Handler())
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.close()

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	// Websocket connections are hijacked and not tracked by Shutdown.
	a.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type app struct {
	handler http.Handler
	hub     *feed.Hub
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires storage, services and the router. Backends that are not
// configured fall back to in-memory implementations.
func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg prometheus.Registerer, metricsHandler http.Handler) (*app, error) {
	a := &app{}

	filter, err := bootstrap.BuildProfanityFilter(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("load profanity denylist: %w", err)
	}
	moderator := moderation.NewService(filter, metrics.NewModerationMetrics(reg), logger)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	var (
		userRepo    users.Repository
		postRepo    posts.Repository
		accountRepo accounts.Store
	)
	pg, err := bootstrap.BuildPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if pg != nil {
		a.closers = append(a.closers, pg.Close)
		userRepo = users.NewPostgresRepository(pg.Pool)
		postRepo = posts.NewPostgresRepository(pg.Pool)
		accountRepo = accounts.NewPostgresStore(pg.Pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		userRepo = users.NewInMemoryRepository()
		postRepo = posts.NewInMemoryRepository()
		accountRepo = accounts.NewInMemoryStore()
	}

	if cfg.SeedDatabase {
		if _, err := seed.Run(ctx, userRepo, postRepo, logger); err != nil {
			return nil, fmt.Errorf("seed database: %w", err)
		}
	}

	a.hub = feed.NewHub(logger)
	postOpts := []posts.Option{posts.WithEvents(a.hub), posts.WithLogger(logger)}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		postOpts = append(postOpts, posts.WithCache(feed.NewCache(redisClient, cfg.FeedCacheTTL)))
	}

	userService := users.NewService(userRepo, moderator)
	postService := posts.NewService(postRepo, userService, moderator, postOpts...)
	accountService := accounts.NewService(accountRepo, userService, accounts.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL), logger)

	if cfg.DevUsersFile != "" {
		devUsers, err := accounts.LoadDevUsersFile(cfg.DevUsersFile)
		if err != nil {
			return nil, err
		}
		n, err := accountService.ImportDevUsers(ctx, devUsers)
		if err != nil {
			return nil, err
		}
		logger.Info("dev users imported", "count", n, "file", cfg.DevUsersFile)
	}

	uploadStore, err := bootstrap.BuildUploadsStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	var uploadsHandler *attachments.Handler
	if uploadStore != nil {
		uploadsHandler = attachments.NewHandler(uploadStore, logger)
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	a.closers = append(a.closers, limiter.Stop, a.hub.Close)

	var healthDB *sql.DB
	if pg != nil {
		healthDB = pg.DB
	}
	a.handler = router.New(&router.Config{
		Logger:             logger,
		HTTPMetrics:        httpMetrics,
		UsersHandler:       users.NewHandler(userService, logger),
		PostsHandler:       posts.NewHandler(postService, logger),
		ModerationHandler:  moderation.NewHandler(moderator, logger),
		AccountsHandler:    accounts.NewHandler(accountService, logger),
		HealthHandler:      handlers.NewHealthHandler(healthDB, redisClient, logger),
		PortalHandler:      handlers.NewPortalHandler(userService, postService, logger),
		UploadsHandler:     uploadsHandler,
		FeedHub:            a.hub,
		MetricsHandler:     metricsHandler,
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})
	return a, nil
}
