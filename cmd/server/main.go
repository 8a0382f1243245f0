package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/daleel/daleel-backend/internal/config"
	"github.com/daleel/daleel-backend/internal/database"
	"github.com/daleel/daleel-backend/internal/feed"
	"github.com/daleel/daleel-backend/internal/handler"
	"github.com/daleel/daleel-backend/internal/logger"
	"github.com/daleel/daleel-backend/internal/middleware"
	"github.com/daleel/daleel-backend/internal/repository"
	"github.com/daleel/daleel-backend/internal/router"
	"github.com/daleel/daleel-backend/internal/service"
	"github.com/daleel/daleel-backend/internal/storage"
	"github.com/daleel/daleel-backend/internal/token"
	"github.com/daleel/daleel-backend/internal/validator"
	"github.com/daleel/daleel-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("storage", cfg.StorageDriver).
		Msg("Starting Daleel Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Token Authority ───────────────────────────────────────────────
	// A missing or short signing secret must stop the process here.
	authority, err := token.New(cfg.TokenConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid token configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Material Storage ──────────────────────────────────────────────
	store, err := storage.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	materialRepo := repository.NewMaterialRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	broker := feed.NewBroker(rdb, log)
	downloadQueue := worker.NewDownloadQueue(rdb)

	authService := service.NewAuthService(authority, userRepo, cfg.BcryptCost, log)
	userService := service.NewUserService(userRepo, cfg.BcryptCost, log)
	courseService := service.NewCourseService(courseRepo, log)
	materialService := service.NewMaterialService(materialRepo, store, broker, downloadQueue,
		cfg.MaxUploadBytes, cfg.AllowedFileTypes, log)
	reviewService := service.NewReviewService(reviewRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	healthChecks := map[string]handler.Check{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Course:   handler.NewCourseHandler(courseService),
		Material: handler.NewMaterialHandler(materialService, cfg.MaxUploadBytes),
		Review:   handler.NewReviewHandler(reviewService),
		Feed:     handler.NewFeedHandler(broker, log, cfg.AllowedOrigins),
		System:   handler.NewSystemHandler(healthChecks, downloadQueue, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	downloadWorker := worker.NewDownloadCounterWorker(rdb, materialRepo, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		downloadWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	authLimiter := middleware.NewRateLimiter(middleware.NewRedisWindowCounter(rdb), "auth", cfg.AuthRateLimit, time.Minute, log)
	r := router.SetupRouter(authService, authLimiter, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the download queue to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
