// Command server starts the Meal Tap web app.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	_ "mealtap/docs" // swagger docs

	"mealtap/internal/auth"
	"mealtap/internal/cache"
	"mealtap/internal/config"
	"mealtap/internal/db"
	"mealtap/internal/handler"
	"mealtap/internal/logging"
	"mealtap/internal/repository"
	"mealtap/internal/router"
	"mealtap/internal/service"
	"mealtap/internal/session"
	"mealtap/internal/supabase"
	"mealtap/internal/theme"
	"mealtap/internal/view"
)

// @title Meal Tap API
// @version 1.0
// @description Meal logging with photo capture, backed by Supabase.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a Supabase access token.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Dev())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting", zap.String("env", cfg.Env), zap.String("port", cfg.ServerPort))

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A nil client answers every call with ErrNotConfigured.
	var sb *supabase.Client
	if cfg.SupabaseConfigured() {
		sb, err = supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, supabase.WithTimeout(cfg.HTTPTimeout))
		if err != nil {
			logger.Fatal("supabase init", zap.Error(err))
		}
	} else {
		logger.Warn("supabase not configured; sign-in and meal storage are disabled")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cancelPing()

	// Session fan-out
	hub := session.NewHub()
	relay := session.NewRedisRelay(cacheClient, hub, logger)
	go relay.Run(ctx)

	sessionStore := auth.NewSessionStore(cacheClient)
	var refresher session.Refresher
	if sb.Configured() {
		refresher = sb
	}
	tracker := session.NewTracker(sessionStore, refresher, relay, hub, logger)

	// Capture log
	captureLogs := repository.NewNopCaptureLogRepository()
	if cfg.MySQLDSN != "" {
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			logger.Fatal("database init", zap.Error(err))
		}
		if err := db.Migrate(gormDB); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		captureLogs = repository.NewCaptureLogRepository(gormDB)
	}

	// Initialize repositories
	mealRepo := repository.NewMealRepository(sb)
	defaultsRepo := repository.NewUserDefaultsRepository(sb)
	photos := repository.NewSupabasePhotoStore(sb, cfg.PhotoBucket)
	if cfg.StorageBackend == config.StorageS3 {
		photos, err = repository.NewS3PhotoStore(ctx, repository.S3Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.PhotoBucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logger.Fatal("s3 photo store", zap.Error(err))
		}
	}

	// Initialize services
	authService := service.NewAuthService(sb, sessionStore, tracker)
	mealService := service.NewMealService(mealRepo)
	captureService := service.NewCaptureService(mealRepo, photos, captureLogs, logger)
	defaultsService := service.NewDefaultsService(defaultsRepo)

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	verifier := auth.NewTokenVerifier(cfg.SupabaseJWTSecret, sb)
	themes := theme.CookieStore{Secure: cfg.CookieSecure}

	// Register routes
	router.Register(e, cfg, logger, verifier, router.Handlers{
		Pages:    handler.NewPageHandler(authService, mealService, captureService, defaultsService, themes, cfg.SiteURL, logger),
		Session:  handler.NewSessionHandler(tracker, logger),
		Auth:     handler.NewAuthHandler(),
		Meals:    handler.NewMealHandler(mealService),
		Captures: handler.NewCaptureHandler(captureService),
		Defaults: handler.NewDefaultsHandler(defaultsService),
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("listening", zap.String("addr", addr))
		errCh <- e.Start(addr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("stopped")
}
